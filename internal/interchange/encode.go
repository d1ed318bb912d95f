package interchange

import (
	"cmp"
	"slices"

	"vsdiag/internal/semantic"
	"vsdiag/internal/tree"
)

type nodeRef struct{ file, node int }

// Encode serializes trees and, when tbl is not nil, the table. Bindings of
// nodes that are no longer part of trees are dropped, as is the declaration
// of a symbol whose declaring node was rewritten away.
func Encode(trees tree.Program, tbl *semantic.Table) *Snapshot {
	s := &Snapshot{Schema: SchemaVersion, Files: make([]File, 0, len(trees))}
	refs := make(map[*tree.Node]nodeRef)
	for fi, t := range trees {
		s.Files = append(s.Files, File{Path: t.Name(), Root: encodeNode(t.Root())})
		for i, n := range preorder(t.Root()) {
			refs[n] = nodeRef{file: fi, node: i}
		}
	}
	if tbl == nil {
		return s
	}

	for _, sc := range tbl.Scopes.Data() {
		s.Scopes = append(s.Scopes, Scope{
			ID:     uint32(sc.ID),
			Kind:   sc.Kind.String(),
			Parent: uint32(sc.Parent),
			Owner:  uint32(sc.Owner),
		})
	}
	for _, sym := range tbl.Symbols.Data() {
		out := Symbol{
			ID:        uint32(sym.ID),
			Name:      sym.Name,
			Kind:      sym.Kind.String(),
			Scope:     uint32(sym.Scope),
			Container: uint32(sym.Container),
			Flags:     sym.Flags.Strings(),
		}
		if ref, ok := refs[sym.Decl]; ok && sym.Decl != nil {
			out.Decl = &NodeRef{File: ref.file, Node: ref.node}
		}
		if ty, ok := tbl.SymbolType(sym.ID); ok {
			out.Type = ty.Name
			out.TypeSymbol = uint32(ty.Symbol)
		}
		if c, ok := tbl.SymbolConstant(sym.ID); ok {
			text := c.Text
			out.Constant = &text
		}
		s.Symbols = append(s.Symbols, out)
	}

	for n, id := range tbl.Bindings() {
		ref, ok := refs[n]
		if !ok {
			continue
		}
		if sym, ok := tbl.Symbol(id); ok && sym.Decl == n {
			continue
		}
		f := &s.Files[ref.file]
		f.Bindings = append(f.Bindings, Binding{Node: ref.node, Symbol: uint32(id)})
	}
	for n, ty := range tbl.TypeBindings() {
		if ref, ok := refs[n]; ok {
			f := &s.Files[ref.file]
			f.Types = append(f.Types, TypeBinding{Node: ref.node, Name: ty.Name, Symbol: uint32(ty.Symbol)})
		}
	}
	for n, c := range tbl.ConstantBindings() {
		if ref, ok := refs[n]; ok {
			f := &s.Files[ref.file]
			f.Constants = append(f.Constants, ConstBinding{Node: ref.node, Text: c.Text})
		}
	}

	// map iteration order is random; keep the output stable
	for i := range s.Files {
		f := &s.Files[i]
		slices.SortFunc(f.Bindings, func(a, b Binding) int { return cmp.Compare(a.Node, b.Node) })
		slices.SortFunc(f.Types, func(a, b TypeBinding) int { return cmp.Compare(a.Node, b.Node) })
		slices.SortFunc(f.Constants, func(a, b ConstBinding) int { return cmp.Compare(a.Node, b.Node) })
	}
	return s
}

func encodeNode(n *tree.Node) Node {
	out := Node{Kind: n.Kind().String()}
	if n.Kind().IsLeaf() {
		out.Text = n.Text()
		out.Leading = n.Leading()
		out.Trailing = n.Trailing()
		return out
	}
	out.Children = make([]Node, 0, n.NumChildren())
	for _, c := range n.Children() {
		out.Children = append(out.Children, encodeNode(c))
	}
	return out
}
