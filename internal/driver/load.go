// Package driver runs the commands of vsdiag over program snapshots:
// loading, diagnosing, fixing, renaming and writing results back.
package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"vsdiag/internal/config"
	"vsdiag/internal/engine"
	"vsdiag/internal/interchange"
	"vsdiag/internal/observ"
	"vsdiag/internal/rules"
	"vsdiag/internal/semantic"
	"vsdiag/internal/source"
	"vsdiag/internal/trace"
	"vsdiag/internal/tree"
)

var (
	ErrNoSnapshots     = errors.New("no snapshots given")
	ErrUnknownRule     = errors.New("unknown rule")
	ErrAmbiguousSymbol = errors.New("ambiguous symbol")
)

// Options are shared by every command.
type Options struct {
	// Config supplies rule settings and the analysis defaults; nil means
	// config.Default().
	Config *config.Config
	// MaxDiagnostics and Jobs override the [analysis] section when > 0.
	MaxDiagnostics int
	Jobs           int
	Progress       ProgressSink
	Timer          *observ.Timer
}

func (o *Options) config() *config.Config {
	if o.Config == nil {
		return config.Default()
	}
	return o.Config
}

func (o *Options) maxDiagnostics() int {
	if o.MaxDiagnostics > 0 {
		return o.MaxDiagnostics
	}
	return o.config().Analysis.MaxDiagnostics
}

func (o *Options) jobs() int {
	if o.Jobs > 0 {
		return o.Jobs
	}
	if j := o.config().Analysis.Jobs; j > 0 {
		return j
	}
	return runtime.GOMAXPROCS(0)
}

// Unit is one loaded snapshot. Prog and Table change together as fixes and
// renames are applied.
type Unit struct {
	Path  string
	Prog  tree.Program
	Table *semantic.Table
	// Bound reports that the snapshot carried its own symbol table.
	Bound bool
}

// commit registers the text of the tree at i as a new file version and
// replaces the tree with a laid-out copy, moving the table's bindings onto
// the copy. Diagnostics of later passes then resolve against that text.
func (u *Unit) commit(fs *source.FileSet, i int) {
	t := u.Prog[i]
	id := fs.AddVirtual(t.Name(), []byte(t.Render()))
	fresh := tree.RelayoutAs(t, id)
	semantic.FollowRewrite(u.Table, t.Root(), fresh.Root())
	u.Prog = u.Prog.With(i, fresh)
}

// commitChanged commits every tree of u that is not in before.
func (u *Unit) commitChanged(fs *source.FileSet, before tree.Program) int {
	n := 0
	for i := range u.Prog {
		if i >= len(before) || u.Prog[i] != before[i] {
			u.commit(fs, i)
			n++
		}
	}
	return n
}

func newRegistry(cfg *config.Config) (*engine.Registry, error) {
	reg := engine.NewRegistry()
	if err := rules.Register(reg, cfg); err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}
	return reg, nil
}

// LoadSnapshots reads the snapshots in parallel and decodes them in the
// order given, so file IDs in fs do not depend on scheduling.
func LoadSnapshots(ctx context.Context, fs *source.FileSet, paths []string, opts Options) ([]*Unit, error) {
	if len(paths) == 0 {
		return nil, ErrNoSnapshots
	}
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopePass, "load", trace.CurrentSpan(ctx)).
		WithExtra("snapshots", fmt.Sprint(len(paths)))
	defer span.End("")
	idx := opts.Timer.Begin("load")

	emitQueued(opts.Progress, paths)
	snaps := make([]*interchange.Snapshot, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.jobs(), len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			emit(opts.Progress, path, StageLoad, StatusWorking, nil, 0)
			s, err := interchange.ReadFile(path)
			if err != nil {
				emit(opts.Progress, path, StageLoad, StatusError, err, time.Since(start))
				return err
			}
			snaps[i] = s
			emit(opts.Progress, path, StageLoad, StatusDone, nil, time.Since(start))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		opts.Timer.End(idx, "failed")
		return nil, fmt.Errorf("driver: load: %w", err)
	}

	units := make([]*Unit, 0, len(paths))
	files := 0
	for i, s := range snaps {
		prog, err := interchange.Decode(s, fs)
		if err != nil {
			opts.Timer.End(idx, "failed")
			return nil, fmt.Errorf("driver: %s: %w", paths[i], err)
		}
		files += len(prog.Trees)
		units = append(units, &Unit{Path: paths[i], Prog: prog.Trees, Table: prog.Table, Bound: prog.Bound})
	}
	opts.Timer.End(idx, fmt.Sprintf("snapshots=%d files=%d", len(units), files))
	return units, nil
}
