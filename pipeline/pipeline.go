// Package pipeline converts batches of methods on a bounded worker pool.
//
// Conversions are independent, so methods are sharded across workers with
// no ordering between them. Results land in a slice indexed by input
// position, so output order always equals input order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/chazu/dexast/ast"
	"github.com/chazu/dexast/convert"
	"github.com/chazu/dexast/smali"
	"github.com/chazu/dexast/store"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"
)

var log = commonlog.GetLogger("dexast.pipeline")

// Cache is the part of store.Store the pipeline needs.
type Cache interface {
	Get(ctx context.Context, key string) (*ast.MethodAST, error)
	Put(ctx context.Context, key, runID string, m *ast.MethodAST) error
}

// Options configures a run.
type Options struct {
	Workers int   // <= 0 uses runtime.NumCPU()
	Cache   Cache // nil disables caching
	RunID   string

	// Convert replaces convert.Convert when set.
	Convert func(*smali.Method) *ast.MethodAST
}

// Status is the outcome for one method.
type Status int

const (
	StatusConverted Status = iota
	StatusCached
	StatusAbsent
	StatusFailed
)

var statusNames = map[Status]string{
	StatusConverted: "converted",
	StatusCached:    "cached",
	StatusAbsent:    "absent",
	StatusFailed:    "failed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result is the outcome of converting one method.
type Result struct {
	Index    int
	Method   *smali.Method
	Key      string // cache key, set when a cache is configured
	AST      *ast.MethodAST
	Status   Status
	Coverage convert.Report
	Err      error // recovered panic for StatusFailed
}

// Summary is the outcome of a run.
type Summary struct {
	Results  []Result
	Stats    store.RunStats
	Coverage convert.Report
}

// Run converts methods and returns one Result per input, in input order.
// Conversion failures are recorded per Result; Run itself fails only when
// ctx is cancelled during the run.
func Run(ctx context.Context, methods []smali.Method, opts Options) (*Summary, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if opts.Convert == nil {
		opts.Convert = convert.Convert
	}

	results := make([]Result, len(methods))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range methods {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = process(gctx, i, &methods[i], opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	s := &Summary{Results: results}
	s.Stats.Methods = len(methods)
	for _, r := range results {
		switch r.Status {
		case StatusConverted:
			s.Stats.Converted++
		case StatusCached:
			s.Stats.Cached++
		case StatusAbsent:
			s.Stats.Absent++
		case StatusFailed:
			s.Stats.Failed++
		}
		s.Coverage.Merge(r.Coverage)
	}

	log.Infof("run %s: %d methods, %d converted, %d cached, %d absent, %d failed",
		opts.RunID, s.Stats.Methods, s.Stats.Converted, s.Stats.Cached, s.Stats.Absent, s.Stats.Failed)
	return s, nil
}

func process(ctx context.Context, index int, m *smali.Method, opts Options) Result {
	r := Result{Index: index, Method: m}
	if !m.HasBody() {
		r.Status = StatusAbsent
		return r
	}
	r.Coverage = convert.Coverage(m.Instructions)

	if opts.Cache != nil {
		r.Key = store.MethodKey(m)
		cached, err := opts.Cache.Get(ctx, r.Key)
		switch {
		case err == nil:
			r.AST = cached
			r.Status = StatusCached
			return r
		case errors.Is(err, store.ErrNotFound):
		case errors.Is(err, store.ErrIncompatible):
			log.Debugf("%s: stale cache entry: %s", m.Key(), err)
		default:
			log.Warningf("%s: cache lookup: %s", m.Key(), err)
		}
	}

	tree, err := safeConvert(opts.Convert, m)
	if err != nil {
		log.Warningf("%s: %s", m.Key(), err)
		r.Status = StatusFailed
		r.Err = err
		return r
	}
	if tree == nil {
		r.Status = StatusAbsent
		return r
	}
	r.AST = tree
	r.Status = StatusConverted

	log.Debugf("%s: %d of %d instructions lifted", m.Key(), r.Coverage.Emitted, r.Coverage.Total)

	if opts.Cache != nil {
		if err := opts.Cache.Put(ctx, r.Key, opts.RunID, tree); err != nil {
			log.Warningf("%s: cache store: %s", m.Key(), err)
		}
	}
	return r
}

// safeConvert runs fn, recovering from panics.
func safeConvert(fn func(*smali.Method) *ast.MethodAST, m *smali.Method) (tree *ast.MethodAST, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("conversion panicked: %v", r)
		}
	}()
	return fn(m), nil
}
