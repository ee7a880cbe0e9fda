// Package driver runs the throws analysis over a loaded snapshot.
package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"docthrows/internal/codebase"
	"docthrows/internal/diag"
	"docthrows/internal/expand"
	"docthrows/internal/observ"
	"docthrows/internal/sema"
	"docthrows/internal/snapshot"
	"docthrows/internal/suggest"
	"docthrows/internal/trace"
)

// Options configure Analyze.
type Options struct {
	Jobs           int // <= 0 means GOMAXPROCS
	MaxDiagnostics int // <= 0 means unlimited
	MaxDepth       int // <= 0 means expand.DefaultMaxDepth

	InheritThrows   bool
	InheritPolicy   sema.InheritPolicy
	SkipInheritance func(*codebase.Function) bool

	Suggest          bool
	SuggestCacheSize int

	// Timer records phase durations; may be nil.
	Timer *observ.Timer
	// Events receives progress; Analyze closes it before returning.
	Events chan<- Event
}

// Result is the outcome of one analysis run.
type Result struct {
	Snapshot *snapshot.Result
	Oracle   *expand.Oracle
	Bag      *diag.Bag
	Stats    Stats
}

// Analyze validates every function of res. Loader diagnostics of res are
// included in the result. The index is frozen first.
func Analyze(ctx context.Context, res *snapshot.Result, opts Options) (*Result, error) {
	if opts.Events != nil {
		defer close(opts.Events)
	}
	if res == nil || res.Index == nil {
		return nil, fmt.Errorf("analyze: no snapshot")
	}
	tracer := trace.FromContext(ctx)
	root := trace.Begin(tracer, trace.ScopePass, "analyze", trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, root)

	ix := res.Index
	ix.Freeze()

	prep := opts.Timer.Begin("prepare")
	oracle := expand.New(ix, opts.MaxDepth)
	checkerOpts := sema.Options{
		InheritThrows:   opts.InheritThrows,
		InheritPolicy:   opts.InheritPolicy,
		SkipInheritance: opts.SkipInheritance,
	}
	if opts.Suggest {
		engine, err := suggest.New(ix, opts.SuggestCacheSize)
		if err != nil {
			root.End("failed")
			return nil, err
		}
		checkerOpts.Suggester = engine
	}
	checker := sema.NewThrowsChecker(oracle, checkerOpts)
	opts.Timer.EndItems(prep, "", ix.ClassCount())

	functions := ix.Functions()
	validate := opts.Timer.Begin("validate")
	bags, stats, err := validateAll(ctx, checker, res, functions, opts)
	opts.Timer.EndItems(validate, "", len(functions))
	if err != nil {
		root.End("cancelled")
		return nil, err
	}

	merge := opts.Timer.Begin("report")
	out := diag.NewBag(opts.MaxDiagnostics)
	out.Merge(res.Diagnostics)
	for _, b := range bags {
		out.Merge(b)
	}
	out.Sort()
	stats.collect(out)
	opts.Timer.EndItems(merge, "", out.Len())

	root.WithExtra("entities", fmt.Sprint(stats.Entities)).
		WithExtra("diagnostics", fmt.Sprint(out.Len()))
	root.End("")

	return &Result{Snapshot: res, Oracle: oracle, Bag: out, Stats: stats}, nil
}

// validateAll runs the checker with bounded parallelism. Every entity writes
// into its own bag slot, so no locking is needed around reporting.
func validateAll(ctx context.Context, checker *sema.ThrowsChecker, res *snapshot.Result, functions []*codebase.Function, opts Options) ([]*diag.Bag, Stats, error) {
	var stats Stats
	stats.Entities = len(functions)
	bags := make([]*diag.Bag, len(functions))
	outcomes := make([]sema.Outcome, len(functions))
	if len(functions) == 0 {
		return bags, stats, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	ix := res.Index
	progress := newProgress(ctx, opts.Events, res.Files, len(functions))
	progress.begin()

	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(functions)))
	for i, fn := range functions {
		if gctx.Err() != nil {
			break
		}
		i, fn := i, fn
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			name := ix.FQSEN(fn)
			span := trace.Begin(tracer, trace.ScopeEntity, name, parent)

			bag := diag.NewBag(0)
			out := checker.Validate(fn, diag.BagReporter{Bag: bag})
			if out.Aborted {
				trace.Point(tracer, trace.ScopeEntity, name, "hierarchy too deep or cyclic; skipped", span.ID())
			}
			bags[i] = bag
			outcomes[i] = out
			span.WithExtra("diagnostics", fmt.Sprint(bag.Len())).End(outcomeDetail(out))
			progress.entity(fn, name, out, bag.Len())
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, stats, err
	}
	progress.end()

	for _, out := range outcomes {
		if out.Aborted {
			stats.Aborted++
		}
		if out.Inherited {
			stats.Inherited++
		}
	}
	return bags, stats, nil
}

func outcomeDetail(out sema.Outcome) string {
	switch {
	case out.Aborted:
		return "aborted"
	case out.Inherited:
		return "inherited"
	default:
		return "ok"
	}
}
