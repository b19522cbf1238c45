package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chazu/dexast/smali"
	"github.com/fsnotify/fsnotify"
)

const debounce = 200 * time.Millisecond

// watch re-runs the conversion whenever an input changes, until ctx is
// cancelled. Bursts of events within the debounce window trigger one run.
func (r *runner) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	paths := r.cfg.InputPaths()
	dirs, err := watchDirs(paths)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}
	log.Infof("watching %d directories", len(dirs))

	forced := smali.Format(r.cfg.Input.Format)
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.Add(ev.Name); err != nil {
						log.Warningf("watch %s: %s", ev.Name, err)
					}
					continue
				}
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !relevant(ev.Name, paths, forced) {
				continue
			}
			log.Debugf("changed: %s", ev.Name)
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warningf("watch: %s", err)
		case <-timer.C:
			if err := r.runOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}
}

// watchDirs returns the directories to watch for the given inputs: every
// directory beneath a directory input, and the parent of a file input.
func watchDirs(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	add := func(d string) {
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(filepath.Dir(p))
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != p && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return dirs, nil
}

// relevant reports whether a change to name affects the inputs: it is one
// of the input files, or it sits under an input directory and would be
// collected.
func relevant(name string, paths []string, forced smali.Format) bool {
	for _, p := range paths {
		if name == p {
			return true
		}
		rel, err := filepath.Rel(p, name)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if forced != "" {
			return true
		}
		if _, err := smali.FormatFor(name); err == nil {
			return true
		}
	}
	return false
}
