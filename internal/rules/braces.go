package rules

import (
	"fmt"
	"strings"

	"vsdiag/internal/diag"
	"vsdiag/internal/engine"
	"vsdiag/internal/fix"
	"vsdiag/internal/tree"
)

// IfWithoutBraces flags if statements whose branches are not blocks. An
// else branch that is itself an if statement (else if) is fine.
type IfWithoutBraces struct {
	base
}

var _ engine.Fixer = (*IfWithoutBraces)(nil)

func (r *IfWithoutBraces) Match(_ *engine.Pass, n *tree.Node) (*diag.Diagnostic, error) {
	if len(bareBranches(n)) == 0 {
		return nil, nil
	}
	return r.report(n.Child(0).Span(), "if statement branch should be enclosed in braces"), nil
}

func (r *IfWithoutBraces) BuildReplacement(_ diag.Diagnostic, target *tree.Node, t *tree.Tree) (*tree.Node, error) {
	bare := bareBranches(target)
	if len(bare) == 0 {
		return nil, fmt.Errorf("no unbraced branch")
	}
	indent := lineIndent(t, target)
	children := make([]*tree.Node, 0, target.NumChildren())
	for _, c := range target.Children() {
		if bare[c] {
			c = fix.WrapInBlock(c, indent)
		}
		children = append(children, c)
	}
	return target.WithChildren(children...), nil
}

func bareBranches(n *tree.Node) map[*tree.Node]bool {
	var out map[*tree.Node]bool
	for i, s := range tree.Embedded(n) {
		if s.Kind() == tree.KindBlock || (i > 0 && s.Kind() == tree.KindIfStmt) {
			continue
		}
		if out == nil {
			out = make(map[*tree.Node]bool, 2)
		}
		out[s] = true
	}
	return out
}

// lineIndent returns the indentation of the line n starts on. An else-if
// shares its line with the else keyword, so the nearest ancestor that
// starts a line decides.
func lineIndent(t *tree.Tree, n *tree.Node) string {
	path, ok := tree.Path(t.Root(), n)
	if !ok {
		return fix.Indent(n)
	}
	for i := len(path) - 1; i >= 0; i-- {
		if strings.Contains(tree.LeadingTrivia(path[i]), "\n") {
			return fix.Indent(path[i])
		}
	}
	return ""
}
