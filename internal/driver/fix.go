package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vsdiag/internal/diag"
	"vsdiag/internal/engine"
	"vsdiag/internal/fix"
	"vsdiag/internal/rename"
	"vsdiag/internal/semantic"
	"vsdiag/internal/source"
	"vsdiag/internal/trace"
)

const defaultMaxRounds = 16

type FixOptions struct {
	Options
	// Rule restricts fixing to one rule when set.
	Rule diag.RuleID
	// Once applies a single fix and stops.
	Once bool
	// MaxRounds bounds the analyze-and-fix loop; 0 means 16.
	MaxRounds int
}

type FixResult struct {
	FileSet *source.FileSet
	Unit    *Unit
	Applied []fix.AppliedFix
	// Skipped holds the fixes that could not be applied in the last round.
	Skipped []fix.SkippedFix
	Faults  []*engine.RuleFault
	Rounds  int
	// Converged reports that the last round found nothing left to apply.
	Converged bool
}

type renameJob struct {
	finding engine.Finding
	sym     semantic.Symbol
	name    string
}

// Fix repeatedly analyzes the snapshot at path and applies the fixes of the
// findings until a round applies nothing. Renames run in rounds of their
// own because they touch every file; node replacements are batched per
// file.
func Fix(ctx context.Context, path string, opts FixOptions) (*FixResult, error) {
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeDriver, "fix", trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)
	defer span.End("")

	reg, err := newRegistry(opts.config())
	if err != nil {
		return nil, err
	}
	if opts.Rule != "" {
		if _, ok := reg.Lookup(opts.Rule); !ok {
			return nil, fmt.Errorf("driver: %q: %w", opts.Rule, ErrUnknownRule)
		}
	}
	fs := source.NewFileSet()
	units, err := LoadSnapshots(ctx, fs, []string{path}, opts.Options)
	if err != nil {
		return nil, err
	}
	u := units[0]
	res := &FixResult{FileSet: fs, Unit: u}

	maxRounds := opts.MaxRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxRounds
	}
	idx := opts.Timer.Begin("fix")
	start := time.Now()
	emit(opts.Progress, u.Path, StageFix, StatusWorking, nil, 0)
	for res.Rounds < maxRounds {
		if err := ctx.Err(); err != nil {
			emit(opts.Progress, u.Path, StageFix, StatusError, err, time.Since(start))
			opts.Timer.End(idx, "canceled")
			return nil, err
		}
		res.Rounds++
		applied, err := fixRound(ctx, fs, reg, u, opts, res)
		if err != nil {
			emit(opts.Progress, u.Path, StageFix, StatusError, err, time.Since(start))
			opts.Timer.End(idx, "failed")
			return nil, err
		}
		if applied == 0 {
			res.Converged = true
			break
		}
		if opts.Once {
			break
		}
	}
	emit(opts.Progress, u.Path, StageFix, StatusDone, nil, time.Since(start))
	opts.Timer.End(idx, fmt.Sprintf("rounds=%d applied=%d skipped=%d", res.Rounds, len(res.Applied), len(res.Skipped)))
	return res, nil
}

// fixRound analyzes u once and applies what it can. Skips are replaced
// rather than accumulated so that only the outcome of the final round is
// reported.
func fixRound(ctx context.Context, fs *source.FileSet, reg *engine.Registry, u *Unit, opts FixOptions, res *FixResult) (int, error) {
	results, err := reg.AnalyzeProgram(ctx, u.Prog, u.Table, opts.jobs())
	if err != nil {
		return 0, fmt.Errorf("driver: %s: %w", u.Path, err)
	}
	res.Faults = res.Faults[:0]
	for _, r := range results {
		res.Faults = append(res.Faults, r.Faults...)
	}
	res.Skipped = nil

	jobs, skips := renameJobs(results, u.Table, opts.Rule)
	res.Skipped = append(res.Skipped, skips...)
	if n := applyRenames(ctx, fs, u, jobs, opts, res); n > 0 {
		return n, nil
	}

	mode := fix.ApplyModeAll
	switch {
	case opts.Once:
		mode = fix.ApplyModeOnce
	case opts.Rule != "":
		mode = fix.ApplyModeRule
	}
	applied := 0
	for i, r := range results {
		findings := replaceFindings(r.Findings, opts.Rule)
		if len(findings) == 0 {
			continue
		}
		out, batch, err := fix.ApplyBatch(u.Prog[i], findings, fix.ApplyOptions{
			Mode:     mode,
			Rule:     opts.Rule,
			Tracer:   trace.FromContext(ctx),
			Follower: u.Table,
		})
		res.Skipped = append(res.Skipped, batch.Skipped...)
		if err != nil && !errors.Is(err, fix.ErrNoFixes) {
			return applied, fmt.Errorf("driver: %s: %w", u.Path, err)
		}
		if len(batch.Applied) == 0 {
			continue
		}
		u.Prog = u.Prog.With(i, out)
		u.commit(fs, i)
		res.Applied = append(res.Applied, batch.Applied...)
		applied += len(batch.Applied)
		if opts.Once {
			break
		}
	}
	return applied, nil
}

// renameJobs collects one rename per symbol, in file then dispatch order.
func renameJobs(results []*engine.Result, o semantic.Oracle, rule diag.RuleID) ([]renameJob, []fix.SkippedFix) {
	var (
		jobs  []renameJob
		skips []fix.SkippedFix
		seen  = make(map[semantic.SymbolID]bool)
	)
	for _, r := range results {
		for _, f := range r.Findings {
			if !f.Diag.Fixable || f.Rule == nil || (rule != "" && f.Rule.ID() != rule) {
				continue
			}
			rf, ok := f.Rule.(engine.RenameFixer)
			if !ok {
				continue
			}
			sym, name, err := rf.RenameTarget(f.Diag, f.Node, o)
			if err != nil {
				skips = append(skips, renameSkip(f, err))
				continue
			}
			if seen[sym.ID] {
				continue
			}
			seen[sym.ID] = true
			jobs = append(jobs, renameJob{finding: f, sym: sym, name: name})
		}
	}
	return jobs, skips
}

func applyRenames(ctx context.Context, fs *source.FileSet, u *Unit, jobs []renameJob, opts FixOptions, res *FixResult) int {
	applied := 0
	for _, job := range jobs {
		// an earlier rename of this round may have touched the symbol
		sym, ok := u.Table.Symbol(job.sym.ID)
		if !ok {
			res.Skipped = append(res.Skipped, renameSkip(job.finding, rename.ErrUnknownSymbol))
			continue
		}
		before := u.Prog
		out, err := rename.RenameContext(ctx, u.Prog, u.Table, sym, job.name)
		if err != nil {
			res.Skipped = append(res.Skipped, renameSkip(job.finding, err))
			continue
		}
		u.Prog = out
		u.commitChanged(fs, before)
		res.Applied = append(res.Applied, fix.AppliedFix{
			Rule:    job.finding.Rule.ID(),
			Message: job.finding.Diag.Message,
			Span:    job.finding.Diag.Primary,
			Order:   job.finding.Order,
		})
		applied++
		if opts.Once {
			break
		}
	}
	return applied
}

func replaceFindings(findings []engine.Finding, rule diag.RuleID) []engine.Finding {
	out := make([]engine.Finding, 0, len(findings))
	for _, f := range findings {
		if f.Rule == nil || (rule != "" && f.Rule.ID() != rule) {
			continue
		}
		if _, ok := f.Rule.(engine.Fixer); ok {
			out = append(out, f)
		}
	}
	return out
}

func renameSkip(f engine.Finding, err error) fix.SkippedFix {
	return fix.SkippedFix{
		Rule:    f.Rule.ID(),
		Message: f.Diag.Message,
		Span:    f.Diag.Primary,
		Reason:  fix.SkipBuildFailed,
		Err:     err,
	}
}
