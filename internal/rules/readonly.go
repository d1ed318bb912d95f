package rules

import (
	"fmt"

	"vsdiag/internal/diag"
	"vsdiag/internal/engine"
	"vsdiag/internal/fix"
	"vsdiag/internal/mutability"
	"vsdiag/internal/semantic"
	"vsdiag/internal/tree"
)

// ReadonlyField flags private fields that are assigned only in
// constructors or initializers. The fix adds the readonly modifier.
type ReadonlyField struct {
	base
}

var _ engine.Fixer = (*ReadonlyField)(nil)

func (r *ReadonlyField) Match(p *engine.Pass, n *tree.Node) (*diag.Diagnostic, error) {
	name := tree.DeclName(n)
	typeDecl := p.Parent()
	if name == nil || typeDecl == nil || typeDecl.Kind() != tree.KindTypeDecl {
		return nil, nil
	}
	// the oracle may predate an earlier fix of this declaration
	if tree.HasModifier(n, "readonly") {
		return nil, nil
	}
	o := p.Oracle()
	sym, ok := o.ResolveSymbol(name)
	if !ok || sym.Kind != semantic.SymbolField {
		return nil, nil
	}
	if !mutability.Candidates(typeDecl, o).Contains(sym.ID) {
		return nil, nil
	}
	if mutability.ReadonlyCandidates(typeDecl, o, mutability.NewFieldSet(sym.ID)).Empty() {
		return nil, nil
	}
	return r.report(name.Span(), "field %s is never assigned outside a constructor and can be readonly", sym.Name), nil
}

func (r *ReadonlyField) BuildReplacement(_ diag.Diagnostic, target *tree.Node, _ *tree.Tree) (*tree.Node, error) {
	if target.Kind() != tree.KindFieldDecl {
		return nil, fmt.Errorf("expected a field declaration, got %s", target.Kind())
	}
	if tree.HasModifier(target, "readonly") {
		return target, nil
	}
	return fix.InsertModifier(target, "readonly"), nil
}
