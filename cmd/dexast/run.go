package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/chazu/dexast/manifest"
	"github.com/chazu/dexast/pipeline"
	"github.com/chazu/dexast/smali"
	"github.com/chazu/dexast/store"
)

// runner holds the state shared by one-shot and watch mode.
type runner struct {
	cfg   *manifest.Manifest
	stats bool
	prune bool
}

// runOnce loads every input, converts it and writes the output.
func (r *runner) runOnce(ctx context.Context) error {
	files, err := collectInputs(r.cfg.InputPaths(), smali.Format(r.cfg.Input.Format))
	if err != nil {
		return err
	}
	methods, err := loadMethods(files, smali.Format(r.cfg.Input.Format))
	if err != nil {
		return err
	}
	log.Infof("loaded %d methods from %d files", len(methods), len(files))

	opts := pipeline.Options{Workers: r.cfg.Run.Workers}

	var st *store.Store
	if r.cfg.Cache.Enabled {
		st, err = store.Open(r.cfg.CachePath(), r.cfg.Cache.Compat)
		if err != nil {
			return err
		}
		defer st.Close()

		if r.prune {
			n, err := st.Prune(ctx)
			if err != nil {
				return err
			}
			log.Infof("pruned %d stale cache entries", n)
		}

		opts.Cache = st
		opts.RunID, err = st.BeginRun(ctx)
		if err != nil {
			return err
		}
	}

	summary, err := pipeline.Run(ctx, methods, opts)
	if err != nil {
		return err
	}

	if st != nil {
		if err := st.FinishRun(ctx, opts.RunID, summary.Stats); err != nil {
			return err
		}
	}

	if err := r.writeOutput(summary.Results); err != nil {
		return err
	}

	if r.stats {
		printSummary(os.Stderr, summary, useColor(os.Stderr))
	}
	return nil
}

func (r *runner) writeOutput(results []pipeline.Result) error {
	path := r.cfg.OutputPath()
	if path == "" {
		return writeResults(os.Stdout, results, r.cfg.Output.Format)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := writeResults(f, results, r.cfg.Output.Format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// collectInputs expands directories into the files beneath them that carry
// a recognized extension. Explicit file paths are kept as given. With a
// forced format, every regular file under a directory is taken.
func collectInputs(paths []string, forced smali.Format) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && d.Name()[0] == '.' {
					return filepath.SkipDir
				}
				return nil
			}
			if forced != "" {
				found = append(found, path)
				return nil
			}
			if _, err := smali.FormatFor(path); err == nil {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", p, err)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

func loadMethods(files []string, forced smali.Format) ([]smali.Method, error) {
	var methods []smali.Method
	for _, f := range files {
		var (
			ms  []smali.Method
			err error
		)
		if forced != "" {
			ms, err = smali.LoadFileAs(f, forced)
		} else {
			ms, err = smali.LoadFile(f)
		}
		if err != nil {
			return nil, err
		}
		log.Debugf("%s: %d methods", f, len(ms))
		methods = append(methods, ms...)
	}
	return methods, nil
}

func absPaths(args []string) []string {
	paths := make([]string, 0, len(args))
	for _, a := range args {
		paths = append(paths, flagPath(a))
	}
	return paths
}

// flagPath makes a command-line path absolute against the working
// directory. Empty stays empty.
func flagPath(p string) string {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
