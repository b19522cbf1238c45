package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/dexast/ast"
	"github.com/chazu/dexast/manifest"
	"github.com/chazu/dexast/pipeline"
	"github.com/chazu/dexast/smali"
	"github.com/fxamacker/cbor/v2"
)

const counterListing = "../../smali/testdata/Counter.smali"

func counterSummary(t *testing.T) *pipeline.Summary {
	t.Helper()
	methods, err := smali.LoadFile(counterListing)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	s, err := pipeline.Run(context.Background(), methods, pipeline.Options{Workers: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return s
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// ---------------------------------------------------------------------------
// Input collection
// ---------------------------------------------------------------------------

func TestCollectInputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b", "B.smali"), "")
	writeFile(t, filepath.Join(dir, "A.smali"), "")
	writeFile(t, filepath.Join(dir, "records.jsonl"), "")
	writeFile(t, filepath.Join(dir, "README.md"), "")
	writeFile(t, filepath.Join(dir, ".cache", "C.smali"), "")
	single := filepath.Join(t.TempDir(), "odd.data")
	writeFile(t, single, "")

	files, err := collectInputs([]string{dir, single}, "")
	if err != nil {
		t.Fatalf("collectInputs: %v", err)
	}
	want := []string{
		filepath.Join(dir, "A.smali"),
		filepath.Join(dir, "b", "B.smali"),
		filepath.Join(dir, "records.jsonl"),
		single,
	}
	if strings.Join(files, "\n") != strings.Join(want, "\n") {
		t.Errorf("files =\n%s\nwant\n%s", strings.Join(files, "\n"), strings.Join(want, "\n"))
	}
}

func TestCollectInputs_Forced(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.out"), "")
	writeFile(t, filepath.Join(dir, "b.smali"), "")

	files, err := collectInputs([]string{dir}, smali.FormatListing)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("files = %v, want both", files)
	}
}

func TestCollectInputs_Missing(t *testing.T) {
	if _, err := collectInputs([]string{filepath.Join(t.TempDir(), "nope")}, ""); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestLoadMethods_UnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.bin")
	writeFile(t, path, "")
	if _, err := loadMethods([]string{path}, ""); !errors.Is(err, smali.ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
}

// ---------------------------------------------------------------------------
// Output formats
// ---------------------------------------------------------------------------

func TestWriteResults_JSON(t *testing.T) {
	s := counterSummary(t)
	var buf bytes.Buffer
	if err := writeResults(&buf, s.Results, manifest.FormatJSON); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3 (abstract and native methods skipped)", len(lines))
	}
	var obj struct {
		Triple struct {
			Name string `json:"name"`
		} `json:"triple"`
		Hash string `json:"hash"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &obj); err != nil {
		t.Fatalf("line 2 is not JSON: %v", err)
	}
	if obj.Triple.Name != "add" || obj.Hash == "" {
		t.Errorf("line 2 = %+v", obj)
	}
}

func TestWriteResults_Text(t *testing.T) {
	s := counterSummary(t)
	var buf bytes.Buffer
	if err := writeResults(&buf, s.Results, manifest.FormatText); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var want []string
	for _, r := range s.Results {
		if r.AST != nil {
			want = append(want, ast.RenderMethod(r.AST))
		}
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Errorf("text output =\n%s\nwant\n%s", buf.String(), strings.Join(want, "\n"))
	}
}

func TestWriteResults_Tokens(t *testing.T) {
	s := counterSummary(t)
	var buf bytes.Buffer
	if err := writeResults(&buf, s.Results, manifest.FormatTokens); err != nil {
		t.Fatal(err)
	}
	first := strings.SplitN(buf.String(), "\n", 2)[0]
	if !strings.HasPrefix(first, "{'body': [ 'BlockStatement',") {
		t.Errorf("unexpected token line: %.60s", first)
	}
}

func TestWriteResults_CBOR(t *testing.T) {
	s := counterSummary(t)
	var buf bytes.Buffer
	if err := writeResults(&buf, s.Results, manifest.FormatCBOR); err != nil {
		t.Fatal(err)
	}

	dec := cbor.NewDecoder(&buf)
	var names []string
	for {
		var raw cbor.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Fatalf("Decode: %v", err)
		}
		m, _, err := ast.UnmarshalMethod(raw)
		if err != nil {
			t.Fatalf("UnmarshalMethod: %v", err)
		}
		names = append(names, m.Triple.Name)
	}
	if got := strings.Join(names, ","); got != "<init>,add,switchy" {
		t.Errorf("decoded methods = %s", got)
	}
}

func TestWriteResults_UnknownFormat(t *testing.T) {
	s := counterSummary(t)
	if err := writeResults(io.Discard, s.Results, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

// ---------------------------------------------------------------------------
// Summary and watch helpers
// ---------------------------------------------------------------------------

func TestPrintSummary(t *testing.T) {
	s := counterSummary(t)
	var buf bytes.Buffer
	printSummary(&buf, s, false)
	out := buf.String()

	for _, want := range []string{"dexast: 5 methods", "converted", "absent", "coverage:", "const-string"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("uncolored summary contains escape codes")
	}

	buf.Reset()
	printSummary(&buf, s, true)
	if !strings.Contains(buf.String(), ansiBold) {
		t.Error("colored summary has no escape codes")
	}
}

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(t.TempDir(), "Only.smali")
	paths := []string{dir, file}

	tests := []struct {
		name   string
		forced smali.Format
		want   bool
	}{
		{filepath.Join(dir, "A.smali"), "", true},
		{filepath.Join(dir, "sub", "r.jsonl"), "", true},
		{filepath.Join(dir, "notes.md"), "", false},
		{filepath.Join(dir, "notes.md"), smali.FormatListing, true},
		{file, "", true},
		{filepath.Join(filepath.Dir(file), "Other.smali"), "", false},
	}
	for _, tt := range tests {
		if got := relevant(tt.name, paths, tt.forced); got != tt.want {
			t.Errorf("relevant(%q, %q) = %v, want %v", tt.name, tt.forced, got, tt.want)
		}
	}
}

func TestWatchDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a", "b", "X.smali"), "")
	writeFile(t, filepath.Join(dir, ".git", "HEAD"), "")

	dirs, err := watchDirs([]string{dir})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{dir, filepath.Join(dir, "a"), filepath.Join(dir, "a", "b")}
	if strings.Join(dirs, "\n") != strings.Join(want, "\n") {
		t.Errorf("dirs = %v, want %v", dirs, want)
	}
}

func TestRunOnce(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(counterListing)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "in", "Counter.smali"), string(data))

	cfg := manifest.Default(dir)
	cfg.Input.Paths = []string{"in"}
	cfg.Output.Path = "out/asts.txt"
	cfg.Output.Format = manifest.FormatText
	cfg.Cache.Enabled = true
	cfg.Run.Workers = 2

	r := &runner{cfg: cfg, prune: true}
	for i := 0; i < 2; i++ {
		if err := r.runOnce(context.Background()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	out, err := os.ReadFile(filepath.Join(dir, "out", "asts.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(out), "\n"); n != 3 {
		t.Errorf("output has %d lines, want 3", n)
	}
	if _, err := os.Stat(cfg.CachePath()); err != nil {
		t.Errorf("cache not created: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Flag overrides
// ---------------------------------------------------------------------------

func TestFlags_PathsRelativeToWorkingDir(t *testing.T) {
	root := t.TempDir()
	work := filepath.Join(root, "sub", "work")
	if err := os.MkdirAll(work, 0755); err != nil {
		t.Fatal(err)
	}
	prevWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(prevWD) })
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	// Manifest found in an ancestor directory.
	cfg := manifest.Default(root)

	fs := flag.NewFlagSet("dexast", flag.ContinueOnError)
	flags := registerFlags(fs)
	args := []string{"-o", "out.json", "-cache-path", "c.db", "-log", "run.log", "-format", "text", "in"}
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	flags.apply(fs, cfg)

	checks := []struct {
		name, got, want string
	}{
		{"output", cfg.OutputPath(), filepath.Join(cwd, "out.json")},
		{"cache", cfg.CachePath(), filepath.Join(cwd, "c.db")},
		{"log", cfg.LogFile(), filepath.Join(cwd, "run.log")},
		{"input", cfg.InputPaths()[0], filepath.Join(cwd, "in")},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s path = %q, want %q", c.name, c.got, c.want)
		}
	}
	if cfg.Output.Format != manifest.FormatText {
		t.Errorf("format = %q, want text", cfg.Output.Format)
	}
}

func TestFlags_UnsetKeepManifest(t *testing.T) {
	cfg := manifest.Default(t.TempDir())
	cfg.Output.Path = "asts.jsonl"
	cfg.Cache.Enabled = true

	fs := flag.NewFlagSet("dexast", flag.ContinueOnError)
	flags := registerFlags(fs)
	if err := fs.Parse([]string{"-v", "2"}); err != nil {
		t.Fatal(err)
	}
	flags.apply(fs, cfg)

	if cfg.Output.Path != "asts.jsonl" || !cfg.Cache.Enabled {
		t.Errorf("manifest values overridden: %+v", cfg)
	}
	if cfg.OutputPath() != filepath.Join(cfg.Dir, "asts.jsonl") {
		t.Errorf("manifest path resolved to %q", cfg.OutputPath())
	}
	if cfg.Log.Verbosity != 2 {
		t.Errorf("verbosity = %d, want 2", cfg.Log.Verbosity)
	}
}
