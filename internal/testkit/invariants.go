package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"vsdiag/internal/tree"
)

// CheckSpanInvariants runs a minimal set of span invariants on a tree that
// was laid out from its own text (a first generation or a Relayout):
// 1) the root span lies within the text and points at the tree's file
// 2) every node span is contained in its parent's span
// 3) every leaf span covers exactly the leaf's text
func CheckSpanInvariants(t *tree.Tree) error {
	if t == nil {
		return fmt.Errorf("nil tree")
	}
	text := t.Text()
	size, err := safecast.Conv[uint32](len(text))
	if err != nil {
		return fmt.Errorf("text length overflow: %w", err)
	}
	root := t.Root().Span()
	if root.File != t.File() {
		return fmt.Errorf("root span points to different file id: got=%d want=%d", root.File, t.File())
	}
	if root.End > size {
		return fmt.Errorf("root span end beyond text: %d > %d", root.End, size)
	}

	var bad error
	tree.Walk(t.Root(), func(c *tree.Cursor) bool {
		if bad != nil {
			return false
		}
		n := c.Node()
		sp := n.Span()
		if p := c.Parent(); p != nil && !p.Span().Contains(sp) {
			bad = fmt.Errorf("%v is outside parent span %v", n, p.Span())
			return false
		}
		if n.Kind().IsLeaf() && n.Kind() != tree.KindElided {
			if got := string(text[sp.Start:sp.End]); got != n.Text() {
				bad = fmt.Errorf("%v covers %q", n, got)
			}
		}
		return true
	})
	return bad
}
