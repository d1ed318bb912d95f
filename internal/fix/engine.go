package fix

import (
	"errors"
	"fmt"
	"sort"

	"vsdiag/internal/diag"
	"vsdiag/internal/engine"
	"vsdiag/internal/semantic"
	"vsdiag/internal/source"
	"vsdiag/internal/trace"
	"vsdiag/internal/tree"
)

var (
	// ErrNoFixes is returned when no fixes were applied.
	ErrNoFixes = errors.New("no applicable fixes found")
	// ErrNotFixable is returned for findings whose rule cannot rebuild the
	// flagged node.
	ErrNotFixable = errors.New("finding is not fixable")
	// ErrEmptyReplacement is returned when a fixer builds a nil node.
	ErrEmptyReplacement = errors.New("fixer returned no replacement")
)

// ApplyMode determines selection strategy for fixes.
type ApplyMode uint8

const (
	ApplyModeAll ApplyMode = iota
	// ApplyModeRule applies only fixes of ApplyOptions.Rule.
	ApplyModeRule
	// ApplyModeOnce applies the first fix in priority order.
	ApplyModeOnce
)

// ApplyOptions configures how fixes are selected.
type ApplyOptions struct {
	Mode   ApplyMode
	Rule   diag.RuleID
	Tracer trace.Tracer
	// Follower, when set, is told about every node the batch rebuilt so
	// that it keeps describing the rewritten tree.
	Follower semantic.Follower
}

// SkipReason says why a fixable finding was not applied.
type SkipReason uint8

const (
	SkipOverlap SkipReason = iota + 1
	SkipStale
	SkipNotFixable
	SkipBuildFailed
)

func (r SkipReason) String() string {
	switch r {
	case SkipOverlap:
		return "overlap"
	case SkipStale:
		return "stale"
	case SkipNotFixable:
		return "not fixable"
	case SkipBuildFailed:
		return "build failed"
	default:
		return "unknown"
	}
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	Rule    diag.RuleID
	Message string
	Span    source.Span
	Order   int
}

// SkippedFix captures a skipped or failed fix with a reason.
type SkippedFix struct {
	Rule    diag.RuleID
	Message string
	Span    source.Span
	Reason  SkipReason
	Err     error
}

// OverlapConflict is recorded when the nodes of two selected fixes overlap.
// The fix with the earlier dispatch order wins.
type OverlapConflict struct {
	Winner engine.Finding
	Loser  engine.Finding
}

func (c *OverlapConflict) Error() string {
	return fmt.Sprintf("fix: %s at %s overlaps %s at %s",
		c.Loser.Rule.ID(), c.Loser.Node.Span(), c.Winner.Rule.ID(), c.Winner.Node.Span())
}

// Result aggregates applied fixes, skipped ones, and the rewritten tree.
type Result struct {
	Applied []AppliedFix
	Skipped []SkippedFix
	Tree    *tree.Tree
}

type candidate struct {
	finding engine.Finding
	fixer   engine.Fixer
}

// ApplyFix rebuilds the node of a single finding and substitutes it in t.
func ApplyFix(t *tree.Tree, f engine.Finding) (*tree.Tree, error) {
	fixer, ok := fixerOf(f)
	if !ok {
		return nil, fmt.Errorf("fix: %s: %w", ruleID(f), ErrNotFixable)
	}
	return apply(t, candidate{finding: f, fixer: fixer})
}

// ApplyBatch applies every selected fix to t in one transaction. Findings
// are taken in dispatch order; when two fix targets overlap the later one
// is skipped with an OverlapConflict. The survivors are applied back to
// front. The result holds the final tree even when nothing was applied,
// in which case ErrNoFixes is returned too.
func ApplyBatch(t *tree.Tree, findings []engine.Finding, opts ApplyOptions) (*tree.Tree, *Result, error) {
	result := &Result{
		Applied: make([]AppliedFix, 0),
		Skipped: make([]SkippedFix, 0),
		Tree:    t,
	}
	if t == nil {
		return nil, result, fmt.Errorf("fix: tree is nil")
	}

	candidates, gatherSkips := gatherCandidates(t, findings, opts)
	result.Skipped = append(result.Skipped, gatherSkips...)
	if len(candidates) == 0 {
		return t, result, ErrNoFixes
	}

	sortCandidates(candidates)

	selected, selectionSkips := selectCandidates(candidates, opts)
	result.Skipped = append(result.Skipped, selectionSkips...)

	out, applied, applySkips := applyCandidates(t, selected)
	result.Applied = append(result.Applied, applied...)
	result.Skipped = append(result.Skipped, applySkips...)
	result.Tree = out
	if opts.Follower != nil && out != t {
		semantic.FollowRewrite(opts.Follower, t.Root(), out.Root())
	}

	if len(result.Applied) == 0 {
		return out, result, ErrNoFixes
	}
	return out, result, nil
}

// gatherCandidates keeps the fixable findings that belong to t and pass
// the rule filter. Findings of other tree versions are reported as stale.
func gatherCandidates(t *tree.Tree, findings []engine.Finding, opts ApplyOptions) ([]candidate, []SkippedFix) {
	cands := make([]candidate, 0, len(findings))
	skips := make([]SkippedFix, 0)
	for _, f := range findings {
		if !f.Diag.Fixable || f.Rule == nil {
			continue
		}
		if opts.Mode == ApplyModeRule && f.Rule.ID() != opts.Rule {
			continue
		}
		fixer, ok := fixerOf(f)
		if !ok {
			skips = append(skips, skipped(f, SkipNotFixable, ErrNotFixable))
			continue
		}
		if f.Node == nil || !t.Contains(f.Node) {
			skips = append(skips, skipped(f, SkipStale, tree.ErrNodeNotFound))
			continue
		}
		cands = append(cands, candidate{finding: f, fixer: fixer})
	}
	return cands, skips
}

// sortCandidates orders candidates by rule priority, then dispatch order,
// then node span, so that the outcome does not depend on the order findings
// were passed in. Selection keeps the first of overlapping candidates.
func sortCandidates(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		fi, fj := candidates[i].finding, candidates[j].finding
		if fi.Priority != fj.Priority {
			return fi.Priority < fj.Priority
		}
		if fi.Order != fj.Order {
			return fi.Order < fj.Order
		}
		si, sj := fi.Node.Span(), fj.Node.Span()
		if si.Start != sj.Start {
			return si.Start < sj.Start
		}
		if si.End != sj.End {
			return si.End < sj.End
		}
		return fi.Rule.ID() < fj.Rule.ID()
	})
}

func selectCandidates(candidates []candidate, opts ApplyOptions) ([]candidate, []SkippedFix) {
	if opts.Mode == ApplyModeOnce {
		return candidates[:1], nil
	}
	selected := make([]candidate, 0, len(candidates))
	skipped := make([]SkippedFix, 0)
	for _, cand := range candidates {
		var winner *candidate
		for i := range selected {
			if spansConflict(selected[i].finding.Node.Span(), cand.finding.Node.Span()) {
				winner = &selected[i]
				break
			}
		}
		if winner == nil {
			selected = append(selected, cand)
			continue
		}
		conflict := &OverlapConflict{Winner: winner.finding, Loser: cand.finding}
		skipped = append(skipped, skippedWith(cand.finding, SkipOverlap, conflict))
		trace.Point(opts.Tracer, trace.ScopeNode, "fix_overlap", conflict.Error(), map[string]string{
			"rule":   string(cand.finding.Rule.ID()),
			"winner": string(winner.finding.Rule.ID()),
		})
	}
	return selected, skipped
}

// applyCandidates applies the selected fixes back to front. Targets are
// disjoint, so every later target is still present after earlier edits.
func applyCandidates(t *tree.Tree, selected []candidate) (*tree.Tree, []AppliedFix, []SkippedFix) {
	ordered := make([]candidate, len(selected))
	copy(ordered, selected)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].finding.Node.Span().Start > ordered[j].finding.Node.Span().Start
	})

	applied := make([]AppliedFix, 0, len(ordered))
	skipped := make([]SkippedFix, 0)
	cur := t
	for _, cand := range ordered {
		next, err := apply(cur, cand)
		if err != nil {
			skipped = append(skipped, skippedWith(cand.finding, SkipBuildFailed, err))
			continue
		}
		cur = next
		f := cand.finding
		applied = append(applied, AppliedFix{
			Rule:    f.Rule.ID(),
			Message: f.Diag.Message,
			Span:    f.Node.Span(),
			Order:   f.Order,
		})
	}
	return cur, applied, skipped
}

func apply(t *tree.Tree, cand candidate) (*tree.Tree, error) {
	f := cand.finding
	repl, err := cand.fixer.BuildReplacement(f.Diag, f.Node, t)
	if err != nil {
		return nil, fmt.Errorf("fix: %s: %w", f.Rule.ID(), err)
	}
	if repl == nil {
		return nil, fmt.Errorf("fix: %s: %w", f.Rule.ID(), ErrEmptyReplacement)
	}
	out, err := tree.Replace(t, f.Node, repl)
	if err != nil {
		return nil, fmt.Errorf("fix: %s: %w", f.Rule.ID(), err)
	}
	return out, nil
}

// spansConflict reports whether two fix targets overlap.
// Spans are treated as half-open intervals [Start, End). Two zero-length
// spans conflict only when they sit at the same position; a zero-length
// span conflicts with a non-zero span if its position is within that span
// (Start <= pos < End) or at its end, since it is then a descendant.
func spansConflict(a, b source.Span) bool {
	if a.File != b.File {
		return false
	}
	if a.Empty() && b.Empty() {
		return a.Start == b.Start
	}
	if a.Empty() {
		return b.Start <= a.Start && a.Start <= b.End
	}
	if b.Empty() {
		return a.Start <= b.Start && b.Start <= a.End
	}
	return a.Start < b.End && b.Start < a.End
}

func fixerOf(f engine.Finding) (engine.Fixer, bool) {
	if f.Rule == nil || !f.Diag.Fixable {
		return nil, false
	}
	fixer, ok := f.Rule.(engine.Fixer)
	return fixer, ok
}

func ruleID(f engine.Finding) diag.RuleID {
	if f.Rule == nil {
		return f.Diag.Rule
	}
	return f.Rule.ID()
}

func skipped(f engine.Finding, reason SkipReason, err error) SkippedFix {
	return skippedWith(f, reason, fmt.Errorf("fix: %s: %w", ruleID(f), err))
}

func skippedWith(f engine.Finding, reason SkipReason, err error) SkippedFix {
	s := SkippedFix{
		Rule:    ruleID(f),
		Message: f.Diag.Message,
		Reason:  reason,
		Err:     err,
	}
	if f.Node != nil {
		s.Span = f.Node.Span()
	}
	return s
}
