package engine

import (
	"vsdiag/internal/diag"
	"vsdiag/internal/semantic"
	"vsdiag/internal/tree"
)

// Rule inspects nodes of the kinds it declares. Match returns nil when the
// node is fine. Rules must not retain the Pass or the node between calls.
type Rule interface {
	ID() diag.RuleID
	Kinds() []tree.Kind
	Match(p *Pass, n *tree.Node) (*diag.Diagnostic, error)
}

// Fixer is implemented by rules whose findings can be repaired by replacing
// the flagged node.
type Fixer interface {
	BuildReplacement(d diag.Diagnostic, target *tree.Node, t *tree.Tree) (*tree.Node, error)
}

// RenameFixer is implemented by rules whose findings are repaired by
// renaming a symbol across the program. The oracle must be the one the
// finding was produced with.
type RenameFixer interface {
	RenameTarget(d diag.Diagnostic, target *tree.Node, o semantic.Oracle) (semantic.Symbol, string, error)
}

// MatchFunc adapts a function to the Match half of a Rule.
type MatchFunc func(p *Pass, n *tree.Node) (*diag.Diagnostic, error)

type funcRule struct {
	id    diag.RuleID
	kinds []tree.Kind
	fn    MatchFunc
}

func (r *funcRule) ID() diag.RuleID    { return r.id }
func (r *funcRule) Kinds() []tree.Kind { return r.kinds }

func (r *funcRule) Match(p *Pass, n *tree.Node) (*diag.Diagnostic, error) {
	return r.fn(p, n)
}

// CanFix reports whether r provides any kind of automated fix.
func CanFix(r Rule) bool {
	switch r.(type) {
	case Fixer, RenameFixer:
		return true
	default:
		return false
	}
}
