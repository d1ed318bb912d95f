package rules

import (
	"fmt"

	"vsdiag/internal/diag"
	"vsdiag/internal/engine"
	"vsdiag/internal/fix"
	"vsdiag/internal/tree"
)

// EmptyArgumentList flags `new T() { ... }`: with an initializer the
// empty parentheses are redundant.
type EmptyArgumentList struct {
	base
}

var _ engine.Fixer = (*EmptyArgumentList)(nil)

func (r *EmptyArgumentList) Match(_ *engine.Pass, n *tree.Node) (*diag.Diagnostic, error) {
	args := emptyArgs(n)
	if args == nil {
		return nil, nil
	}
	return r.report(args.Span(), "empty argument list is redundant with an object initializer"), nil
}

func (r *EmptyArgumentList) BuildReplacement(_ diag.Diagnostic, target *tree.Node, _ *tree.Tree) (*tree.Node, error) {
	if emptyArgs(target) == nil {
		return nil, fmt.Errorf("no redundant argument list")
	}
	return fix.DropChild(target, tree.KindArgumentList), nil
}

func emptyArgs(n *tree.Node) *tree.Node {
	if n.FirstChild(tree.KindInitializer) == nil {
		return nil
	}
	args := n.FirstChild(tree.KindArgumentList)
	if args == nil || args.FirstChild(tree.KindArgument) != nil {
		return nil
	}
	return args
}
