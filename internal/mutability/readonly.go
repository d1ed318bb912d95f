// Package mutability finds private fields that are only written during
// construction and could therefore be declared readonly.
//
// The analysis is syntactic over one type declaration. A field is written
// when a reference to it is the target of an assignment (compound
// assignments included), is passed by ref or out, or is incremented or
// decremented. Writes inside constructors are allowed. Writes through
// aliases (interfaces, ref locals, reflection) are not detected.
package mutability

import (
	"vsdiag/internal/semantic"
	"vsdiag/internal/tree"
)

// Candidates returns the private, non-const, non-static, non-readonly
// fields declared directly in typeDecl.
func Candidates(typeDecl *tree.Node, o semantic.Oracle) FieldSet {
	var ids []semantic.SymbolID
	for _, member := range typeDecl.Children() {
		if member.Kind() != tree.KindFieldDecl {
			continue
		}
		name := tree.DeclName(member)
		if name == nil {
			continue
		}
		sym, ok := o.ResolveSymbol(name)
		if !ok || sym.Kind != semantic.SymbolField || !sym.Has(semantic.FlagPrivate) {
			continue
		}
		if sym.Flags&(semantic.FlagConst|semantic.FlagStatic|semantic.FlagReadOnly) != 0 {
			continue
		}
		ids = append(ids, sym.ID)
	}
	return NewFieldSet(ids...)
}

// ReadonlyCandidates removes from in every field of typeDecl that is
// written outside a constructor. The walk stops as soon as the set is
// empty.
func ReadonlyCandidates(typeDecl *tree.Node, o semantic.Oracle, in FieldSet) FieldSet {
	set := in
	tree.Walk(typeDecl, func(c *tree.Cursor) bool {
		if set.Empty() {
			return false
		}
		n := c.Node()
		switch n.Kind() {
		case tree.KindConstructorDecl:
			return false
		case tree.KindIdentifier:
			sym, ok := o.ResolveSymbol(n)
			if ok && set.Contains(sym.ID) && isWritten(c) {
				set = set.Without(sym.ID)
			}
		}
		return true
	})
	return set
}

// Analyze is ReadonlyCandidates over the type's own Candidates.
func Analyze(typeDecl *tree.Node, o semantic.Oracle) FieldSet {
	set := Candidates(typeDecl, o)
	if set.Empty() {
		return set
	}
	return ReadonlyCandidates(typeDecl, o, set)
}

// isWritten reports whether the identifier under the cursor is the
// reference expression of a write: the identifier itself or the member
// access it names, seen through parentheses.
func isWritten(c *tree.Cursor) bool {
	ref := c.Node()
	k := 1
	parent := c.Ancestor(k)
	if parent != nil && parent.Kind() == tree.KindMemberAccess {
		if parent.Child(parent.NumChildren()-1) != ref {
			return false
		}
		ref = parent
		k++
		parent = c.Ancestor(k)
	}
	for parent != nil && parent.Kind() == tree.KindParen {
		ref = parent
		k++
		parent = c.Ancestor(k)
	}
	if parent == nil {
		return false
	}

	switch parent.Kind() {
	case tree.KindAssignment:
		return parent.NumChildren() == 3 && parent.Child(0) == ref
	case tree.KindArgument:
		last := parent.Child(parent.NumChildren() - 1)
		return last == ref && (tree.HasModifier(parent, "ref") || tree.HasModifier(parent, "out"))
	case tree.KindPrefixUnary, tree.KindPostfixUnary:
		op := tree.Operator(parent)
		return (op == "++" || op == "--") && tree.Operand(parent) == ref
	default:
		return false
	}
}
