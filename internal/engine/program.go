package engine

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"vsdiag/internal/semantic"
	"vsdiag/internal/trace"
	"vsdiag/internal/tree"
)

// AnalyzeProgram analyses every tree of prog, at most jobs at a time, and
// returns the results in file order. jobs <= 0 means GOMAXPROCS.
// The oracle must be safe for concurrent readers; each pass gets its own
// memo.
func (r *Registry) AnalyzeProgram(ctx context.Context, prog tree.Program, oracle semantic.Oracle, jobs int) ([]*Result, error) {
	if len(prog) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopePass, "analyze_program", trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)

	// each goroutine writes only its own index
	results := make([]*Result, len(prog))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(prog)))
	for i, t := range prog {
		g.Go(func() error {
			res, err := r.Analyze(gctx, t, oracle)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.End("failed")
		return nil, err
	}
	span.End("")
	return results, nil
}
