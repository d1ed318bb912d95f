package fix

import (
	"context"
	"errors"
	"slices"
	"testing"

	"vsdiag/internal/diag"
	"vsdiag/internal/engine"
	"vsdiag/internal/semantic"
	"vsdiag/internal/source"
	"vsdiag/internal/testkit"
	"vsdiag/internal/tree"
)

const callsSrc = "class C\n{\n    void M()\n    {\n        a();\n        b();\n    }\n}"

var errBuild = errors.New("cannot build")

// calleeRule flags calls (or call statements) and fixes them by appending
// suffix to the callee name.
type calleeRule struct {
	id     diag.RuleID
	kind   tree.Kind
	suffix string
	failOn string
}

func (r *calleeRule) ID() diag.RuleID    { return r.id }
func (r *calleeRule) Kinds() []tree.Kind { return []tree.Kind{r.kind} }

func (r *calleeRule) Match(_ *engine.Pass, n *tree.Node) (*diag.Diagnostic, error) {
	d := diag.NewWarning(r.id, n.Span(), "call "+callee(n).Text()).WithFixable()
	return &d, nil
}

func (r *calleeRule) BuildReplacement(_ diag.Diagnostic, target *tree.Node, _ *tree.Tree) (*tree.Node, error) {
	if callee(target).Text() == r.failOn {
		return nil, errBuild
	}
	if target.Kind() == tree.KindExprStmt {
		return target.WithChildren(renameCallee(target.Child(0), r.suffix), target.Child(1)), nil
	}
	return renameCallee(target, r.suffix), nil
}

func callee(n *tree.Node) *tree.Node {
	if n.Kind() == tree.KindExprStmt {
		n = n.Child(0)
	}
	return n.Child(0)
}

func renameCallee(call *tree.Node, suffix string) *tree.Node {
	c := call.Child(0)
	return call.WithChildren(Rename(c, c.Text()+suffix), call.Child(1))
}

func analyze(t *testing.T, src string, rules ...engine.Rule) (*tree.Tree, []engine.Finding) {
	t.Helper()
	prog := testkit.MustProgram(src)
	reg := engine.NewRegistry()
	for _, r := range rules {
		if err := reg.Register(r); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	res, err := reg.Analyze(context.Background(), prog[0], semantic.Bind(prog))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return prog[0], res.Findings
}

func stmtRule() *calleeRule {
	return &calleeRule{id: "stmt-s", kind: tree.KindExprStmt, suffix: "_s"}
}

func callRule() *calleeRule {
	return &calleeRule{id: "call-c", kind: tree.KindInvocation, suffix: "_c"}
}

func TestApplyFix(t *testing.T) {
	tr, findings := analyze(t, callsSrc, callRule())
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(findings))
	}
	out, err := ApplyFix(tr, findings[0])
	if err != nil {
		t.Fatalf("ApplyFix: %v", err)
	}
	want := "class C\n{\n    void M()\n    {\n        a_c();\n        b();\n    }\n}"
	if got := out.Render(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if tr.Render() != callsSrc {
		t.Fatalf("input tree was modified")
	}
	if !out.Contains(findings[1].Node) {
		t.Fatalf("untouched statement is no longer shared")
	}
}

func TestApplyFixNotFixable(t *testing.T) {
	prog := testkit.MustProgram(callsSrc)
	reg := engine.NewRegistry()
	err := reg.RegisterFunc("plain", []tree.Kind{tree.KindInvocation}, func(_ *engine.Pass, n *tree.Node) (*diag.Diagnostic, error) {
		d := diag.NewWarning("plain", n.Span(), "call").WithFixable()
		return &d, nil
	})
	if err != nil {
		t.Fatalf("RegisterFunc: %v", err)
	}
	res, err := reg.Analyze(context.Background(), prog[0], semantic.Bind(prog))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if _, err := ApplyFix(prog[0], res.Findings[0]); !errors.Is(err, ErrNotFixable) {
		t.Fatalf("expected ErrNotFixable, got %v", err)
	}
}

func TestApplyBatchOverlapEarlierRuleWins(t *testing.T) {
	tr, findings := analyze(t, callsSrc, stmtRule(), callRule())
	if len(findings) != 4 {
		t.Fatalf("expected 4 findings, got %d", len(findings))
	}
	out, res, err := ApplyBatch(tr, findings, ApplyOptions{})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	want := "class C\n{\n    void M()\n    {\n        a_s();\n        b_s();\n    }\n}"
	if got := out.Render(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if res.Tree != out {
		t.Fatalf("result tree differs from returned tree")
	}
	if len(res.Applied) != 2 || len(res.Skipped) != 2 {
		t.Fatalf("applied %d, skipped %d", len(res.Applied), len(res.Skipped))
	}
	// back to front
	if res.Applied[0].Span.Start < res.Applied[1].Span.Start {
		t.Fatalf("fixes were not applied back to front: %+v", res.Applied)
	}
	for _, s := range res.Skipped {
		var conflict *OverlapConflict
		if s.Reason != SkipOverlap || !errors.As(s.Err, &conflict) {
			t.Fatalf("unexpected skip %+v", s)
		}
		if conflict.Winner.Rule.ID() != "stmt-s" || conflict.Loser.Rule.ID() != "call-c" {
			t.Fatalf("wrong winner: %v", conflict)
		}
	}
}

func TestApplyBatchOverlapFollowsRegistration(t *testing.T) {
	// the call rule is registered first and wins over the enclosing statements
	tr, findings := analyze(t, callsSrc, callRule(), stmtRule())
	out, res, err := ApplyBatch(tr, findings, ApplyOptions{})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	want := "class C\n{\n    void M()\n    {\n        a_c();\n        b_c();\n    }\n}"
	if got := out.Render(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	for _, a := range res.Applied {
		if a.Rule != "call-c" {
			t.Fatalf("applied %+v", res.Applied)
		}
	}
	if len(res.Skipped) != 2 {
		t.Fatalf("expected 2 skipped, got %+v", res.Skipped)
	}
	for _, s := range res.Skipped {
		var conflict *OverlapConflict
		if !errors.As(s.Err, &conflict) || conflict.Winner.Rule.ID() != "call-c" || conflict.Loser.Rule.ID() != "stmt-s" {
			t.Fatalf("unexpected skip %+v", s)
		}
	}

	_, once, err := ApplyBatch(tr, findings, ApplyOptions{Mode: ApplyModeOnce})
	if err != nil || len(once.Applied) != 1 || once.Applied[0].Rule != "call-c" {
		t.Fatalf("once applied %+v, %v", once, err)
	}
}

func TestApplyBatchIsPermutationInvariant(t *testing.T) {
	tr, findings := analyze(t, callsSrc, stmtRule(), callRule())
	_, base, err := ApplyBatch(tr, findings, ApplyOptions{})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	reversed := slices.Clone(findings)
	slices.Reverse(reversed)
	rotated := append(slices.Clone(findings[2:]), findings[:2]...)
	swapped := []engine.Finding{findings[1], findings[0], findings[3], findings[2]}

	for name, perm := range map[string][]engine.Finding{"reversed": reversed, "rotated": rotated, "swapped": swapped} {
		t.Run(name, func(t *testing.T) {
			_, res, err := ApplyBatch(tr, perm, ApplyOptions{})
			if err != nil {
				t.Fatalf("ApplyBatch: %v", err)
			}
			if res.Tree.Render() != base.Tree.Render() {
				t.Fatalf("got %q, want %q", res.Tree.Render(), base.Tree.Render())
			}
			if !slices.Equal(res.Applied, base.Applied) {
				t.Fatalf("applied %+v, want %+v", res.Applied, base.Applied)
			}
		})
	}
}

func TestApplyBatchRuleFilterAndOnce(t *testing.T) {
	tr, findings := analyze(t, callsSrc, stmtRule(), callRule())

	out, res, err := ApplyBatch(tr, findings, ApplyOptions{Mode: ApplyModeRule, Rule: "call-c"})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	want := "class C\n{\n    void M()\n    {\n        a_c();\n        b_c();\n    }\n}"
	if out.Render() != want || len(res.Skipped) != 0 {
		t.Fatalf("got %q with %d skipped", out.Render(), len(res.Skipped))
	}

	out, res, err = ApplyBatch(tr, findings, ApplyOptions{Mode: ApplyModeOnce})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	want = "class C\n{\n    void M()\n    {\n        a_s();\n        b();\n    }\n}"
	if out.Render() != want || len(res.Applied) != 1 {
		t.Fatalf("got %q with %d applied", out.Render(), len(res.Applied))
	}
}

func TestApplyBatchSkipsStaleFindings(t *testing.T) {
	tr, findings := analyze(t, callsSrc, stmtRule(), callRule())
	out, _, err := ApplyBatch(tr, findings, ApplyOptions{})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	again, res, err := ApplyBatch(out, findings, ApplyOptions{})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
	if again != out {
		t.Fatalf("tree changed although nothing applied")
	}
	if len(res.Skipped) != 4 {
		t.Fatalf("expected 4 stale findings, got %d", len(res.Skipped))
	}
	for _, s := range res.Skipped {
		if s.Reason != SkipStale || !errors.Is(s.Err, tree.ErrNodeNotFound) {
			t.Fatalf("unexpected skip %+v", s)
		}
	}
}

func TestApplyBatchBuildFailure(t *testing.T) {
	r := callRule()
	r.failOn = "b"
	tr, findings := analyze(t, callsSrc, r)
	out, res, err := ApplyBatch(tr, findings, ApplyOptions{})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	want := "class C\n{\n    void M()\n    {\n        a_c();\n        b();\n    }\n}"
	if out.Render() != want {
		t.Fatalf("got %q", out.Render())
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Reason != SkipBuildFailed || !errors.Is(res.Skipped[0].Err, errBuild) {
		t.Fatalf("unexpected skips %+v", res.Skipped)
	}
}

func TestSpansConflict(t *testing.T) {
	span := func(start, end uint32) source.Span { return source.Span{File: 1, Start: start, End: end} }
	tests := []struct {
		name string
		a, b source.Span
		want bool
	}{
		{"partial overlap", span(10, 20), span(15, 25), true},
		{"adjacent", span(10, 15), span(15, 20), false},
		{"nested", span(10, 30), span(12, 14), true},
		{"disjoint", span(0, 5), span(6, 9), false},
		{"empty inside", span(12, 12), span(10, 20), true},
		{"empty at end", span(10, 20), span(20, 20), true},
		{"empty before", span(9, 9), span(10, 20), false},
		{"two empties same position", span(5, 5), span(5, 5), true},
		{"two empties apart", span(5, 5), span(6, 6), false},
		{"other file", span(10, 20), source.Span{File: 2, Start: 10, End: 20}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := spansConflict(tt.a, tt.b); got != tt.want {
				t.Fatalf("spansConflict(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := spansConflict(tt.b, tt.a); got != tt.want {
				t.Fatalf("spansConflict is not symmetric for %v, %v", tt.a, tt.b)
			}
		})
	}
}
