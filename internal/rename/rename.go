// Package rename renames a symbol across every file of a program.
package rename

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"vsdiag/internal/semantic"
	"vsdiag/internal/trace"
	"vsdiag/internal/tree"
)

var (
	ErrInvalidName   = errors.New("invalid identifier")
	ErrNameCollision = errors.New("name collision")
	ErrUnknownSymbol = errors.New("unknown symbol")
)

// NameCollisionError reports the symbols that already use the requested
// name where the renamed symbol is visible.
type NameCollisionError struct {
	Target   semantic.Symbol
	Name     string
	Existing []semantic.Symbol
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("rename: %s to %q collides with %s", e.Target, e.Name, e.Existing[0])
}

func (e *NameCollisionError) Unwrap() error { return ErrNameCollision }

func invalid(name, why string) error {
	return fmt.Errorf("rename: %q: %w: %s", name, ErrInvalidName, why)
}

// Occurrence is one identifier that refers to the renamed symbol.
type Occurrence struct {
	Tree *tree.Tree
	Node *tree.Node
}

// Occurrences lists every identifier of prog resolving to target,
// declaration included, in file then pre-order.
func Occurrences(prog tree.Program, oracle semantic.Oracle, target semantic.Symbol) []Occurrence {
	var out []Occurrence
	for _, t := range prog {
		for _, n := range tree.FindAll(t.Root(), tree.KindIdentifier) {
			if sym, ok := oracle.ResolveSymbol(n); ok && sym.Same(target) {
				out = append(out, Occurrence{Tree: t, Node: n})
			}
		}
	}
	return out
}

// Rename is RenameContext without cancellation or tracing.
func Rename(prog tree.Program, oracle semantic.Oracle, target semantic.Symbol, newName string) (tree.Program, error) {
	return RenameContext(context.Background(), prog, oracle, target, newName)
}

// RenameContext replaces every identifier resolving to target with
// newName. It is all or nothing: on any error the input program is
// returned as is. When the oracle is a semantic.Follower it is updated to
// describe the renamed program once every file has been rewritten.
func RenameContext(ctx context.Context, prog tree.Program, oracle semantic.Oracle, target semantic.Symbol, newName string) (tree.Program, error) {
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopePass, "rename", trace.CurrentSpan(ctx)).
		WithExtra("symbol", target.ID.String())

	out, count, err := rename(ctx, prog, oracle, target, newName)
	if err != nil {
		trace.Point(tr, trace.ScopePass, "rename_refused", err.Error(), map[string]string{
			"symbol": target.ID.String(),
			"name":   newName,
		})
		span.End("refused")
		return prog, err
	}
	span.WithExtra("occurrences", strconv.Itoa(count)).End("")
	return out, nil
}

func rename(ctx context.Context, prog tree.Program, oracle semantic.Oracle, target semantic.Symbol, newName string) (tree.Program, int, error) {
	if oracle == nil || !target.ID.IsValid() {
		return nil, 0, fmt.Errorf("rename: %s: %w", target.ID, ErrUnknownSymbol)
	}
	name, err := CheckName(newName)
	if err != nil {
		return nil, 0, err
	}
	if name == target.Name {
		return prog, 0, nil
	}
	if existing := oracle.LookupVisible(target, name); len(existing) > 0 {
		return nil, 0, &NameCollisionError{Target: target, Name: name, Existing: existing}
	}

	perFile := make(map[*tree.Tree]map[*tree.Node]*tree.Node)
	occs := Occurrences(prog, oracle, target)
	for _, occ := range occs {
		repl := perFile[occ.Tree]
		if repl == nil {
			repl = make(map[*tree.Node]*tree.Node)
			perFile[occ.Tree] = repl
		}
		repl[occ.Node] = occ.Node.WithText(name)
	}

	out := make(tree.Program, len(prog))
	copy(out, prog)
	for i, t := range prog {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		repl := perFile[t]
		if len(repl) == 0 {
			continue
		}
		nt, err := tree.ReplaceMany(t, repl)
		if err != nil {
			return nil, 0, fmt.Errorf("rename: %s: %w", t.Name(), err)
		}
		out[i] = nt
	}

	if f, ok := oracle.(semantic.Follower); ok {
		for i := range prog {
			if out[i] != prog[i] {
				semantic.FollowRewrite(f, prog[i].Root(), out[i].Root())
			}
		}
		f.SetName(target.ID, name)
	}
	return out, len(occs), nil
}
