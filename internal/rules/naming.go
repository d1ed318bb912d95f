package rules

import (
	"fmt"

	"vsdiag/internal/config"
	"vsdiag/internal/diag"
	"vsdiag/internal/engine"
	"vsdiag/internal/naming"
	"vsdiag/internal/semantic"
	"vsdiag/internal/tree"
)

// NamingConvention checks field, method and interface names against the
// configured conventions. The fix renames the symbol everywhere.
type NamingConvention struct {
	base
	convs config.Conventions
}

var _ engine.RenameFixer = (*NamingConvention)(nil)

func (r *NamingConvention) Match(p *engine.Pass, n *tree.Node) (*diag.Diagnostic, error) {
	name := tree.DeclName(n)
	if name == nil {
		return nil, nil
	}
	sym, ok := p.Oracle().ResolveSymbol(name)
	if !ok {
		return nil, nil
	}
	conv, what, ok := r.convention(sym)
	if !ok {
		return nil, nil
	}
	want := naming.Normalize(sym.Name, conv)
	if want == sym.Name {
		return nil, nil
	}
	return r.report(name.Span(), "%s name %q does not follow %s; rename to %q", what, sym.Name, conv, want), nil
}

func (r *NamingConvention) RenameTarget(_ diag.Diagnostic, target *tree.Node, o semantic.Oracle) (semantic.Symbol, string, error) {
	name := tree.DeclName(target)
	if name == nil {
		return semantic.Symbol{}, "", fmt.Errorf("%s declares no name", target.Kind())
	}
	sym, ok := o.ResolveSymbol(name)
	if !ok {
		return semantic.Symbol{}, "", fmt.Errorf("%s does not resolve", name.Text())
	}
	conv, _, ok := r.convention(sym)
	if !ok {
		return semantic.Symbol{}, "", fmt.Errorf("%s is not subject to a naming convention", sym)
	}
	return sym, naming.Normalize(sym.Name, conv), nil
}

func (r *NamingConvention) convention(sym semantic.Symbol) (naming.Convention, string, bool) {
	switch sym.Kind {
	case semantic.SymbolField:
		if sym.Has(semantic.FlagPrivate) && !sym.Has(semantic.FlagConst) {
			return r.convs.PrivateField, "private field", true
		}
		return r.convs.Field, "field", true
	case semantic.SymbolMethod:
		return r.convs.Method, "method", true
	case semantic.SymbolType:
		if sym.Has(semantic.FlagInterface) {
			return r.convs.Interface, "interface", true
		}
	}
	return 0, "", false
}
