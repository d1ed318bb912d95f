package driver

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fortio.org/safecast"

	"vsdiag/internal/rename"
	"vsdiag/internal/semantic"
	"vsdiag/internal/source"
	"vsdiag/internal/trace"
)

type RenameResult struct {
	FileSet *source.FileSet
	Unit    *Unit
	Symbol  semantic.Symbol
	// Occurrences is the number of identifiers that were rewritten.
	Occurrences int
	// Files is the number of files whose text changed.
	Files int
}

// RenameSymbol renames the symbol named by ref across every file of the
// snapshot at path. See LookupSymbol for the forms ref may take.
func RenameSymbol(ctx context.Context, path, ref, newName string, opts Options) (*RenameResult, error) {
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeDriver, "rename", trace.CurrentSpan(ctx)).
		WithExtra("ref", ref)
	ctx = trace.WithSpan(ctx, span)
	defer span.End("")

	fs := source.NewFileSet()
	units, err := LoadSnapshots(ctx, fs, []string{path}, opts)
	if err != nil {
		return nil, err
	}
	u := units[0]
	sym, err := LookupSymbol(u.Table, ref)
	if err != nil {
		return nil, err
	}

	idx := opts.Timer.Begin("rename")
	start := time.Now()
	emit(opts.Progress, u.Path, StageRename, StatusWorking, nil, 0)
	occs := rename.Occurrences(u.Prog, u.Table, sym)
	before := u.Prog
	out, err := rename.RenameContext(ctx, u.Prog, u.Table, sym, newName)
	if err != nil {
		emit(opts.Progress, u.Path, StageRename, StatusError, err, time.Since(start))
		opts.Timer.End(idx, "refused")
		return nil, err
	}
	u.Prog = out
	files := u.commitChanged(fs, before)
	emit(opts.Progress, u.Path, StageRename, StatusDone, nil, time.Since(start))
	opts.Timer.End(idx, fmt.Sprintf("occurrences=%d files=%d", len(occs), files))

	renamed, _ := u.Table.Symbol(sym.ID)
	return &RenameResult{FileSet: fs, Unit: u, Symbol: renamed, Occurrences: len(occs), Files: files}, nil
}

// LookupSymbol finds a symbol by ID ("12" or "sym#12") or by qualified name.
// A qualified name is the chain of containers joined with dots, as in
// "Shop.Counter.Inc"; a trailing part of the chain ("Counter.Inc") is
// accepted when it selects a single symbol.
func LookupSymbol(tbl *semantic.Table, ref string) (semantic.Symbol, error) {
	if tbl == nil {
		return semantic.Symbol{}, fmt.Errorf("driver: %q: %w", ref, rename.ErrUnknownSymbol)
	}
	if n, err := strconv.ParseUint(strings.TrimPrefix(ref, "sym#"), 10, 32); err == nil {
		id, err := safecast.Conv[uint32](n)
		if err == nil {
			if sym, ok := tbl.Symbol(semantic.SymbolID(id)); ok {
				return sym, nil
			}
		}
		return semantic.Symbol{}, fmt.Errorf("driver: %q: %w", ref, rename.ErrUnknownSymbol)
	}

	var exact, suffix []semantic.Symbol
	for _, sym := range tbl.Symbols.Data() {
		q := qualifiedName(tbl, sym)
		switch {
		case q == ref:
			exact = append(exact, sym)
		case strings.HasSuffix(q, "."+ref):
			suffix = append(suffix, sym)
		}
	}
	matches := exact
	if len(matches) == 0 {
		matches = suffix
	}
	switch len(matches) {
	case 0:
		return semantic.Symbol{}, fmt.Errorf("driver: %q: %w", ref, rename.ErrUnknownSymbol)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.String()
		}
		return semantic.Symbol{}, fmt.Errorf("driver: %q matches %s: %w", ref, strings.Join(names, ", "), ErrAmbiguousSymbol)
	}
}

func qualifiedName(tbl *semantic.Table, sym semantic.Symbol) string {
	parts := []string{sym.Name}
	seen := map[semantic.SymbolID]bool{sym.ID: true}
	for c := sym.Container; c.IsValid() && !seen[c]; {
		seen[c] = true
		owner, ok := tbl.Symbol(c)
		if !ok {
			break
		}
		parts = append(parts, owner.Name)
		c = owner.Container
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}
