// dexast CLI - converts disassembled Dalvik methods into ASTs
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/chazu/dexast/manifest"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("dexast.cli")

// cliFlags holds the command-line options.
type cliFlags struct {
	configDir   *string
	format      *string
	inputFormat *string
	output      *string
	workers     *int
	useCache    *bool
	cachePath   *string
	prune       *bool
	verbosity   *int
	logFile     *string
	stats       *bool
	watch       *bool
}

func registerFlags(fs *flag.FlagSet) *cliFlags {
	return &cliFlags{
		configDir:   fs.String("C", "", "Directory containing dexast.toml (default: search upward from cwd)"),
		format:      fs.String("format", "", "Output format: json, text, tokens, cbor"),
		inputFormat: fs.String("input-format", "", "Input format: smali, jsonl, yaml (default: by extension)"),
		output:      fs.String("o", "", "Output file (default: stdout)"),
		workers:     fs.Int("workers", 0, "Number of conversion workers (default: number of CPUs)"),
		useCache:    fs.Bool("cache", false, "Cache converted methods in SQLite"),
		cachePath:   fs.String("cache-path", "", "Cache database path"),
		prune:       fs.Bool("prune", false, "Remove cache entries with incompatible wire versions"),
		verbosity:   fs.Int("v", 0, "Log verbosity (0 = errors only)"),
		logFile:     fs.String("log", "", "Log file (default: stderr)"),
		stats:       fs.Bool("stats", false, "Print a run summary to stderr"),
		watch:       fs.Bool("watch", false, "Re-convert inputs when they change"),
	}
}

// apply copies explicitly given flags and positional inputs into cfg.
// Paths from the command line are relative to the working directory, not
// the manifest.
func (f *cliFlags) apply(fs *flag.FlagSet, cfg *manifest.Manifest) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "format":
			cfg.Output.Format = *f.format
		case "input-format":
			cfg.Input.Format = *f.inputFormat
		case "o":
			cfg.Output.Path = flagPath(*f.output)
		case "workers":
			cfg.Run.Workers = *f.workers
		case "cache":
			cfg.Cache.Enabled = *f.useCache
		case "cache-path":
			cfg.Cache.Path = flagPath(*f.cachePath)
		case "v":
			cfg.Log.Verbosity = *f.verbosity
		case "log":
			cfg.Log.File = flagPath(*f.logFile)
		}
	})
	if args := fs.Args(); len(args) > 0 {
		cfg.Input.Paths = absPaths(args)
	}
}

func main() {
	flags := registerFlags(flag.CommandLine)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dexast [options] [paths...]\n\n")
		fmt.Fprintf(os.Stderr, "Converts disassembled Dalvik methods into ASTs.\n")
		fmt.Fprintf(os.Stderr, "Paths may be .smali listings, .jsonl or .yaml method records, or directories.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  dexast out/smali                     # Convert every listing, JSON lines to stdout\n")
		fmt.Fprintf(os.Stderr, "  dexast -format tokens Foo.smali      # Token streams, one method per line\n")
		fmt.Fprintf(os.Stderr, "  dexast -cache -stats -o asts.jsonl . # Cached run with a summary\n")
		fmt.Fprintf(os.Stderr, "  dexast -watch -format text Foo.smali # Re-convert on change\n")
	}
	flag.Parse()

	cfg, err := loadManifest(*flags.configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	flags.apply(flag.CommandLine, cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(cfg.Input.Paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	configureLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := &runner{cfg: cfg, stats: *flags.stats, prune: *flags.prune}
	if err := r.runOnce(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *flags.watch {
		if err := r.watch(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// loadManifest loads dexast.toml from dir, or searches upward from the
// working directory when dir is empty. Without a manifest the defaults
// apply, rooted at the working directory.
func loadManifest(dir string) (*manifest.Manifest, error) {
	if dir != "" {
		return manifest.Load(dir)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	m, err := manifest.FindAndLoad(cwd)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = manifest.Default(cwd)
	}
	return m, nil
}

func configureLogging(cfg *manifest.Manifest) {
	var path *string
	if f := cfg.LogFile(); f != "" {
		path = &f
	}
	commonlog.Configure(cfg.Log.Verbosity, path)
}
