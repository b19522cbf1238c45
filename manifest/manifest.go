// Package manifest handles dexast.toml run configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
)

// FileName is the manifest file looked up by Load and FindAndLoad.
const FileName = "dexast.toml"

// Manifest represents a dexast.toml configuration.
type Manifest struct {
	Input  Input  `toml:"input"`
	Output Output `toml:"output"`
	Cache  Cache  `toml:"cache"`
	Run    Run    `toml:"run"`
	Log    Log    `toml:"log"`

	// Dir is the directory containing the dexast.toml file (set at load time).
	Dir string `toml:"-"`
}

// Input configures where disassembled methods are read from.
type Input struct {
	Paths  []string `toml:"paths"`
	Format string   `toml:"format"` // smali, jsonl, yaml; empty picks by extension
}

// Output configures how converted methods are written.
type Output struct {
	Path   string `toml:"path"` // empty writes to stdout
	Format string `toml:"format"`
}

// Cache configures the converted-method cache.
type Cache struct {
	Path    string `toml:"path"`
	Enabled bool   `toml:"enabled"`
	Compat  string `toml:"compat"` // semver constraint on cached wire versions
}

// Run configures the conversion pool.
type Run struct {
	Workers int `toml:"workers"`
}

// Log configures logging.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Output formats.
const (
	FormatJSON   = "json"
	FormatText   = "text"
	FormatTokens = "tokens"
	FormatCBOR   = "cbor"
)

var outputFormats = map[string]bool{
	FormatJSON:   true,
	FormatText:   true,
	FormatTokens: true,
	FormatCBOR:   true,
}

var inputFormats = map[string]bool{
	"":      true,
	"smali": true,
	"jsonl": true,
	"yaml":  true,
}

// Default returns a manifest rooted at dir with every default applied.
func Default(dir string) *Manifest {
	m := &Manifest{Dir: dir}
	m.applyDefaults()
	return m
}

// Load parses a dexast.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return m, nil
}

// Parse decodes manifest content, applies defaults and validates it.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	if m.Output.Format == "" {
		m.Output.Format = FormatJSON
	}
	if m.Cache.Path == "" {
		m.Cache.Path = filepath.Join(".dexast", "cache.db")
	}
	if m.Cache.Compat == "" {
		m.Cache.Compat = "^1.0.0"
	}
	if m.Run.Workers <= 0 {
		m.Run.Workers = runtime.NumCPU()
	}
}

// Validate checks formats and the cache compatibility constraint.
func (m *Manifest) Validate() error {
	if !inputFormats[m.Input.Format] {
		return fmt.Errorf("unknown input format %q", m.Input.Format)
	}
	if !outputFormats[m.Output.Format] {
		return fmt.Errorf("unknown output format %q", m.Output.Format)
	}
	if _, err := semver.NewConstraint(m.Cache.Compat); err != nil {
		return fmt.Errorf("invalid cache compat %q: %w", m.Cache.Compat, err)
	}
	if m.Log.Verbosity < 0 {
		return fmt.Errorf("log verbosity must be non-negative, got %d", m.Log.Verbosity)
	}
	return nil
}

// FindAndLoad walks up from startDir to find a dexast.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// InputPaths returns the configured inputs resolved against Dir.
func (m *Manifest) InputPaths() []string {
	var paths []string
	for _, p := range m.Input.Paths {
		paths = append(paths, m.resolve(p))
	}
	return paths
}

// CachePath returns the cache database path resolved against Dir.
func (m *Manifest) CachePath() string {
	return m.resolve(m.Cache.Path)
}

// OutputPath returns the output path resolved against Dir, or "" for
// stdout.
func (m *Manifest) OutputPath() string {
	if m.Output.Path == "" {
		return ""
	}
	return m.resolve(m.Output.Path)
}

// LogFile returns the log file path resolved against Dir, or "" for
// stderr.
func (m *Manifest) LogFile() string {
	if m.Log.File == "" {
		return ""
	}
	return m.resolve(m.Log.File)
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
