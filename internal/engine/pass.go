package engine

import (
	"context"

	"vsdiag/internal/semantic"
	"vsdiag/internal/tree"
)

// Pass is the view a rule gets of the analysis in progress. It is only
// valid for the duration of a Match call.
type Pass struct {
	ctx    context.Context
	oracle semantic.Oracle
	tree   *tree.Tree
	cursor *tree.Cursor
}

func (p *Pass) Context() context.Context { return p.ctx }

// Oracle answers semantic questions about nodes of the analysed tree.
// Answers are memoised for the lifetime of the pass.
func (p *Pass) Oracle() semantic.Oracle { return p.oracle }

func (p *Pass) Tree() *tree.Tree { return p.tree }

// Cursor exposes the ancestor chain of the node being matched.
func (p *Pass) Cursor() *tree.Cursor { return p.cursor }

func (p *Pass) Parent() *tree.Node { return p.cursor.Parent() }

// Ancestor returns the k-th ancestor of the node being matched, 1 being
// the parent.
func (p *Pass) Ancestor(k int) *tree.Node { return p.cursor.Ancestor(k) }

// Enclosing returns the nearest ancestor of the given kind, or nil.
func (p *Pass) Enclosing(kind tree.Kind) *tree.Node {
	for k := 1; k <= p.cursor.Depth(); k++ {
		if a := p.cursor.Ancestor(k); a.Kind() == kind {
			return a
		}
	}
	return nil
}
