package testkit

import "vsdiag/internal/tree"

// Decl returns the first declaration of the given kind whose declared name
// is name, or nil.
func Decl(root *tree.Node, kind tree.Kind, name string) *tree.Node {
	return tree.FindFirst(root, func(n *tree.Node) bool {
		if n.Kind() != kind {
			return false
		}
		id := tree.DeclName(n)
		return id != nil && id.Text() == name
	})
}

// Idents returns every identifier spelled name, in pre-order.
func Idents(root *tree.Node, name string) []*tree.Node {
	var out []*tree.Node
	for _, n := range tree.FindAll(root, tree.KindIdentifier) {
		if n.Text() == name {
			out = append(out, n)
		}
	}
	return out
}

// First returns the first node of kind in pre-order, or nil.
func First(root *tree.Node, kind tree.Kind) *tree.Node {
	return tree.FindFirst(root, func(n *tree.Node) bool { return n.Kind() == kind })
}
