package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"vsdiag/internal/diag"
	"vsdiag/internal/semantic"
	"vsdiag/internal/trace"
	"vsdiag/internal/tree"
)

var (
	ErrNilOracle = errors.New("nil oracle")
	ErrRulePanic = errors.New("rule panicked")
)

// Finding binds a diagnostic to the node and rule that produced it. It is
// what a fix request needs and is only meaningful for the tree version it
// was computed on.
type Finding struct {
	Diag diag.Diagnostic
	Node *tree.Node
	Rule Rule
	// Order is the dispatch position of the finding within its pass:
	// pre-order by node, then registration order by rule.
	Order int
	// Priority is the registration index of Rule. Lower wins overlapping
	// fixes.
	Priority int
}

// RuleFault records a rule that returned an error or panicked on a node.
type RuleFault struct {
	Rule diag.RuleID
	Node *tree.Node
	Err  error
}

func (f *RuleFault) Error() string {
	return fmt.Sprintf("rule %s at %s: %v", f.Rule, f.Node.Span(), f.Err)
}

func (f *RuleFault) Unwrap() error { return f.Err }

// Result is the outcome of one pass over one tree.
type Result struct {
	Tree     *tree.Tree
	Findings []Finding
	Faults   []*RuleFault
}

// Diagnostics returns the diagnostics of all findings in dispatch order.
func (r *Result) Diagnostics() []diag.Diagnostic {
	out := make([]diag.Diagnostic, len(r.Findings))
	for i := range r.Findings {
		out[i] = r.Findings[i].Diag
	}
	return out
}

// Report forwards every diagnostic to rep.
func (r *Result) Report(rep diag.Reporter) {
	for i := range r.Findings {
		rep.Report(r.Findings[i].Diag)
	}
}

// Analyze walks t once and runs the registered rules on every node. The
// oracle is wrapped in a memo that lives as long as the pass. On
// cancellation the partial result is discarded and ctx.Err() returned.
func (r *Registry) Analyze(ctx context.Context, t *tree.Tree, oracle semantic.Oracle) (*Result, error) {
	if oracle == nil {
		return nil, fmt.Errorf("engine: analyze %s: %w", t.Name(), ErrNilOracle)
	}
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeFile, "analyze", trace.CurrentSpan(ctx)).
		WithExtra("file", t.Name())

	res := &Result{Tree: t}
	pass := &Pass{
		ctx:    ctx,
		oracle: semantic.NewMemo(oracle, semantic.DefaultMemoSize),
		tree:   t,
	}

	var cancelled error
	tree.Walk(t.Root(), func(c *tree.Cursor) bool {
		if cancelled != nil {
			return false
		}
		if err := ctx.Err(); err != nil {
			cancelled = err
			return false
		}
		pass.cursor = c
		n := c.Node()
		for _, rule := range r.For(n.Kind()) {
			d, fault := r.match(pass, rule, n)
			if fault != nil {
				res.Faults = append(res.Faults, fault)
				trace.Warn(tr, trace.ScopeNode, "rule_fault", fault.Error(), map[string]string{
					"rule": string(fault.Rule),
					"file": t.Name(),
				})
				continue
			}
			if d == nil {
				continue
			}
			found := *d
			if found.Fixable && !CanFix(rule) {
				found.Fixable = false
			}
			res.Findings = append(res.Findings, Finding{
				Diag:     found,
				Node:     n,
				Rule:     rule,
				Order:    len(res.Findings),
				Priority: r.Priority(rule.ID()),
			})
		}
		return true
	})
	pass.cursor = nil

	if cancelled != nil {
		span.End("cancelled")
		return nil, cancelled
	}
	span.WithExtra("findings", strconv.Itoa(len(res.Findings))).
		WithExtra("faults", strconv.Itoa(len(res.Faults))).
		End("")
	return res, nil
}

func (r *Registry) match(p *Pass, rule Rule, n *tree.Node) (d *diag.Diagnostic, fault *RuleFault) {
	defer func() {
		if rec := recover(); rec != nil {
			d = nil
			fault = &RuleFault{
				Rule: rule.ID(),
				Node: n,
				Err:  fmt.Errorf("%w: %v", ErrRulePanic, rec),
			}
		}
	}()
	d, err := rule.Match(p, n)
	if err != nil {
		return nil, &RuleFault{Rule: rule.ID(), Node: n, Err: err}
	}
	if d != nil && d.Rule == "" {
		cp := *d
		cp.Rule = rule.ID()
		d = &cp
	}
	return d, nil
}
