package driver

import (
	"context"
	"fmt"
	"time"

	"vsdiag/internal/diag"
	"vsdiag/internal/engine"
	"vsdiag/internal/source"
	"vsdiag/internal/trace"
)

type DiagnoseResult struct {
	FileSet *source.FileSet
	Units   []*Unit
	// Bag holds the diagnostics of every snapshot, sorted by location.
	Bag    *diag.Bag
	Faults []*engine.RuleFault
}

// Diagnose loads the snapshots and runs the enabled rules over each of them.
// Rule faults do not fail the command; they are returned with the result.
func Diagnose(ctx context.Context, paths []string, opts Options) (*DiagnoseResult, error) {
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeDriver, "diagnose", trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)
	defer span.End("")

	reg, err := newRegistry(opts.config())
	if err != nil {
		return nil, err
	}
	fs := source.NewFileSet()
	units, err := LoadSnapshots(ctx, fs, paths, opts)
	if err != nil {
		return nil, err
	}

	res := &DiagnoseResult{
		FileSet: fs,
		Units:   units,
		Bag:     diag.NewBag(opts.maxDiagnostics()),
	}
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag})
	idx := opts.Timer.Begin("analyze")
	for _, u := range units {
		start := time.Now()
		emit(opts.Progress, u.Path, StageAnalyze, StatusWorking, nil, 0)
		results, err := reg.AnalyzeProgram(ctx, u.Prog, u.Table, opts.jobs())
		if err != nil {
			emit(opts.Progress, u.Path, StageAnalyze, StatusError, err, time.Since(start))
			opts.Timer.End(idx, "failed")
			return nil, fmt.Errorf("driver: %s: %w", u.Path, err)
		}
		for _, r := range results {
			r.Report(rep)
			res.Faults = append(res.Faults, r.Faults...)
		}
		emit(opts.Progress, u.Path, StageAnalyze, StatusDone, nil, time.Since(start))
	}
	res.Bag.Sort()
	opts.Timer.End(idx, fmt.Sprintf("diags=%d faults=%d", res.Bag.Len(), len(res.Faults)))
	return res, nil
}
