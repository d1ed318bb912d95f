package tree

import (
	"strings"

	"vsdiag/internal/source"
)

// TriviaPolicy decides what happens to the trivia around a removed node.
type TriviaPolicy uint8

const (
	// TriviaPreserve keeps the removed node's outer trivia in place, held by
	// a KindElided node. A later InsertChild at the same index consumes the
	// placeholder and hands the trivia back to the inserted node.
	TriviaPreserve TriviaPolicy = iota + 1
	// TriviaCollapse drops the removed node together with its trivia.
	TriviaCollapse
)

func (p TriviaPolicy) String() string {
	switch p {
	case TriviaPreserve:
		return "preserve"
	case TriviaCollapse:
		return "collapse"
	default:
		return "unknown"
	}
}

// LeadingTrivia returns the trivia rendered before n's first token: n's own
// leading trivia followed by that of its leftmost descendants.
func LeadingTrivia(n *Node) string {
	var sb strings.Builder
	for cur := n; cur != nil; {
		sb.WriteString(cur.leading)
		if cur.kind.IsLeaf() || len(cur.children) == 0 {
			break
		}
		cur = cur.children[0]
	}
	return sb.String()
}

// TrailingTrivia returns the trivia rendered after n's last token.
func TrailingTrivia(n *Node) string {
	var chain []*Node
	for cur := n; cur != nil; {
		chain = append(chain, cur)
		if cur.kind.IsLeaf() || len(cur.children) == 0 {
			break
		}
		cur = cur.children[len(cur.children)-1]
	}
	var sb strings.Builder
	for i := len(chain) - 1; i >= 0; i-- {
		sb.WriteString(chain[i].trailing)
	}
	return sb.String()
}

// StripTrivia returns n without its outer trivia. Interior trivia is kept.
// Only the leftmost and rightmost chains are copied.
func StripTrivia(n *Node) *Node {
	return stripTrailing(stripLeading(n))
}

// StripLeading returns n without the trivia rendered before its first token.
func StripLeading(n *Node) *Node { return stripLeading(n) }

func stripLeading(n *Node) *Node {
	if LeadingTrivia(n) == "" {
		return n
	}
	cp := n.clone()
	cp.leading = ""
	if !cp.kind.IsLeaf() && len(cp.children) > 0 {
		cp = cp.withChildAt(0, stripLeading(cp.children[0]))
	}
	return cp
}

func stripTrailing(n *Node) *Node {
	if TrailingTrivia(n) == "" {
		return n
	}
	cp := n.clone()
	cp.trailing = ""
	if last := len(cp.children) - 1; !cp.kind.IsLeaf() && last >= 0 {
		cp = cp.withChildAt(last, stripTrailing(cp.children[last]))
	}
	return cp
}

// elide returns the placeholder that keeps n's outer trivia.
func elide(n *Node) *Node {
	return &Node{
		kind:     KindElided,
		span:     source.Span{File: n.span.File, Start: n.span.Start, End: n.span.Start},
		leading:  LeadingTrivia(n),
		trailing: TrailingTrivia(n),
	}
}
