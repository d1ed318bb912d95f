package tree

import (
	"fmt"
	"iter"
	"strings"

	"vsdiag/internal/source"
)

// Node is an immutable syntax node. Identity is pointer identity: two nodes
// with equal content at different positions are different nodes.
//
// Leaf kinds carry Text; all other kinds carry children. Leading and
// trailing trivia (whitespace, comments) are kept verbatim so that
// rendering a tree reproduces its source.
type Node struct {
	kind     Kind
	span     source.Span
	text     string
	leading  string
	trailing string
	children []*Node
	sealed   bool
}

// NewToken creates a leaf node.
func NewToken(kind Kind, text string) *Node {
	if !kind.IsLeaf() {
		panic(fmt.Sprintf("tree: NewToken with non-leaf kind %s", kind))
	}
	return &Node{kind: kind, text: text}
}

// NewNode creates an inner node. Nil children are skipped so optional
// parts can be passed inline.
func NewNode(kind Kind, children ...*Node) *Node {
	if kind.IsLeaf() {
		panic(fmt.Sprintf("tree: NewNode with leaf kind %s", kind))
	}
	kept := make([]*Node, 0, len(children))
	for _, c := range children {
		if c != nil {
			kept = append(kept, c)
		}
	}
	return &Node{kind: kind, children: kept}
}

func (n *Node) Kind() Kind { return n.kind }

// Span covers the node's content, excluding its own leading and trailing
// trivia. Nodes introduced by a rewrite have a zero span until Relayout.
func (n *Node) Span() source.Span { return n.span }

// Text returns the token text of a leaf node.
func (n *Node) Text() string { return n.text }

func (n *Node) Leading() string  { return n.leading }
func (n *Node) Trailing() string { return n.trailing }

func (n *Node) NumChildren() int { return len(n.children) }

// Child returns the i-th child; it panics when i is out of range.
func (n *Node) Child(i int) *Node { return n.children[i] }

// Children iterates over the children in order.
func (n *Node) Children() iter.Seq2[int, *Node] {
	return func(yield func(int, *Node) bool) {
		for i, c := range n.children {
			if !yield(i, c) {
				return
			}
		}
	}
}

// FirstChild returns the first child of the given kind, or nil.
func (n *Node) FirstChild(kind Kind) *Node {
	for _, c := range n.children {
		if c.kind == kind {
			return c
		}
	}
	return nil
}

// IndexOf returns the index of child by identity, or -1.
func (n *Node) IndexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// WithTrivia returns a copy of n with the given own trivia.
func (n *Node) WithTrivia(leading, trailing string) *Node {
	cp := n.clone()
	cp.leading = leading
	cp.trailing = trailing
	return cp
}

// WithText returns a copy of a leaf node with new text, keeping its kind,
// span and trivia.
func (n *Node) WithText(text string) *Node {
	if !n.kind.IsLeaf() {
		panic(fmt.Sprintf("tree: WithText on %s", n.kind))
	}
	cp := n.clone()
	cp.text = text
	return cp
}

// WithChildren returns a copy of an inner node with a new child list.
func (n *Node) WithChildren(children ...*Node) *Node {
	if n.kind.IsLeaf() {
		panic(fmt.Sprintf("tree: WithChildren on %s", n.kind))
	}
	cp := n.clone()
	cp.children = make([]*Node, 0, len(children))
	for _, c := range children {
		if c != nil {
			cp.children = append(cp.children, c)
		}
	}
	return cp
}

// withChildAt returns a copy with child i replaced; a nil repl removes it.
func (n *Node) withChildAt(i int, repl *Node) *Node {
	cp := n.clone()
	if repl == nil {
		cp.children = make([]*Node, 0, len(n.children)-1)
		cp.children = append(cp.children, n.children[:i]...)
		cp.children = append(cp.children, n.children[i+1:]...)
		return cp
	}
	cp.children = make([]*Node, len(n.children))
	copy(cp.children, n.children)
	cp.children[i] = repl
	return cp
}

// withChildInserted returns a copy with child inserted before index i.
func (n *Node) withChildInserted(i int, child *Node) *Node {
	cp := n.clone()
	cp.children = make([]*Node, 0, len(n.children)+1)
	cp.children = append(cp.children, n.children[:i]...)
	cp.children = append(cp.children, child)
	cp.children = append(cp.children, n.children[i:]...)
	return cp
}

// clone copies the node header; the child slice is shared until replaced.
func (n *Node) clone() *Node {
	return &Node{
		kind:     n.kind,
		span:     n.span,
		text:     n.text,
		leading:  n.leading,
		trailing: n.trailing,
		children: n.children,
	}
}

// Render returns the exact source text of the node including trivia.
func Render(n *Node) string {
	var sb strings.Builder
	writeNode(&sb, n)
	return sb.String()
}

// RenderContent renders the node without its outer trivia.
func RenderContent(n *Node) string {
	full := Render(n)
	lead, trail := len(LeadingTrivia(n)), len(TrailingTrivia(n))
	if lead+trail >= len(full) {
		return ""
	}
	return full[lead : len(full)-trail]
}

func writeNode(sb *strings.Builder, n *Node) {
	sb.WriteString(n.leading)
	if n.kind.IsLeaf() {
		sb.WriteString(n.text)
	} else {
		for _, c := range n.children {
			writeNode(sb, c)
		}
	}
	sb.WriteString(n.trailing)
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.kind.IsLeaf() {
		return fmt.Sprintf("%s(%q)@%s", n.kind, n.text, n.span)
	}
	return fmt.Sprintf("%s[%d]@%s", n.kind, len(n.children), n.span)
}
