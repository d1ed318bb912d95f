// Package semantic is the boundary to the host's semantic model: symbols,
// scopes, and the Oracle that resolves syntax nodes to them.
package semantic

import "vsdiag/internal/tree"

// Type is the static type of an expression as reported by the host.
type Type struct {
	Name   string
	Symbol SymbolID // NoSymbolID for predefined types
}

// Constant is a compile-time constant value in source notation.
type Constant struct {
	Text string
}

// Oracle answers semantic questions about the nodes of a program. Answers
// refer to one compilation snapshot; nodes of a tree produced by a rewrite
// are unknown to it unless the oracle follows rewrites (see Follower).
type Oracle interface {
	ResolveSymbol(n *tree.Node) (Symbol, bool)
	TypeOf(n *tree.Node) (Type, bool)
	ConstantValueOf(n *tree.Node) (Constant, bool)
	// LookupVisible returns every symbol other than sym named name that is
	// visible in sym's declaration scope, its ancestors, or its descendants.
	LookupVisible(sym Symbol, name string) []Symbol
}

// Follower is implemented by oracles that can track rewrites of the program
// they describe.
type Follower interface {
	// Follow transfers the bindings of old to its replacement.
	Follow(old, replacement *tree.Node)
	// SetName records that the symbol was renamed.
	SetName(id SymbolID, name string)
}

// FollowRewrite reports to f every node of cur that replaced a node of old.
// Children shared by both versions anchor the pairing; between anchors,
// the remaining children are paired in order by kind, so that inserted or
// removed children do not stop the descent.
func FollowRewrite(f Follower, old, cur *tree.Node) {
	if old == cur || old == nil || cur == nil || old.Kind() != cur.Kind() {
		return
	}
	f.Follow(old, cur)
	for _, p := range pairChildren(old, cur) {
		FollowRewrite(f, p[0], p[1])
	}
}

func pairChildren(old, cur *tree.Node) [][2]*tree.Node {
	at := make(map[*tree.Node]int, cur.NumChildren())
	for i, c := range cur.Children() {
		at[c] = i
	}
	var pairs [][2]*tree.Node
	var gap []*tree.Node
	next := 0
	flush := func(end int) {
		j := next
		for _, o := range gap {
			for k := j; k < end; k++ {
				if cur.Child(k).Kind() == o.Kind() {
					pairs = append(pairs, [2]*tree.Node{o, cur.Child(k)})
					j = k + 1
					break
				}
			}
		}
		gap = gap[:0]
	}
	for _, o := range old.Children() {
		if k, ok := at[o]; ok && k >= next {
			flush(k)
			next = k + 1
			continue
		}
		gap = append(gap, o)
	}
	flush(cur.NumChildren())
	return pairs
}
