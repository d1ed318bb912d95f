package engine

import (
	"errors"
	"fmt"
	"slices"

	"vsdiag/internal/diag"
	"vsdiag/internal/tree"
)

var (
	ErrDuplicateRule = errors.New("duplicate rule id")
	ErrNoKinds       = errors.New("rule declares no node kinds")
)

// Registry maps node kinds to the rules that inspect them. The zero value
// is not usable; call NewRegistry.
type Registry struct {
	rules  []Rule
	byID   map[diag.RuleID]int
	byKind map[tree.Kind][]int
}

func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[diag.RuleID]int),
		byKind: make(map[tree.Kind][]int),
	}
}

// Register adds rule after every rule registered so far. Registration
// order is the dispatch order for rules sharing a kind and the priority
// used when fixes overlap.
func (r *Registry) Register(rule Rule) error {
	if rule == nil {
		return fmt.Errorf("engine: register: nil rule")
	}
	id := rule.ID()
	if err := id.Validate(); err != nil {
		return fmt.Errorf("engine: register: %w", err)
	}
	if _, dup := r.byID[id]; dup {
		return fmt.Errorf("engine: register %s: %w", id, ErrDuplicateRule)
	}
	kinds := rule.Kinds()
	if len(kinds) == 0 {
		return fmt.Errorf("engine: register %s: %w", id, ErrNoKinds)
	}
	for _, k := range kinds {
		if !k.Valid() {
			return fmt.Errorf("engine: register %s: invalid kind %d", id, k)
		}
	}

	idx := len(r.rules)
	r.rules = append(r.rules, rule)
	r.byID[id] = idx
	seen := make(map[tree.Kind]bool, len(kinds))
	for _, k := range kinds {
		if seen[k] {
			continue
		}
		seen[k] = true
		r.byKind[k] = append(r.byKind[k], idx)
	}
	return nil
}

// RegisterFunc registers a rule built from a plain match function.
func (r *Registry) RegisterFunc(id diag.RuleID, kinds []tree.Kind, fn MatchFunc) error {
	if fn == nil {
		return fmt.Errorf("engine: register %s: nil match function", id)
	}
	return r.Register(&funcRule{id: id, kinds: slices.Clone(kinds), fn: fn})
}

// Lookup returns the rule registered under id.
func (r *Registry) Lookup(id diag.RuleID) (Rule, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return r.rules[idx], true
}

// Priority returns the registration index of id, or -1.
func (r *Registry) Priority(id diag.RuleID) int {
	idx, ok := r.byID[id]
	if !ok {
		return -1
	}
	return idx
}

// Rules returns the registered rules in registration order.
func (r *Registry) Rules() []Rule { return slices.Clone(r.rules) }

func (r *Registry) Len() int { return len(r.rules) }

// For returns the rules dispatched on nodes of kind k.
func (r *Registry) For(k tree.Kind) []Rule {
	idxs := r.byKind[k]
	out := make([]Rule, len(idxs))
	for i, idx := range idxs {
		out[i] = r.rules[idx]
	}
	return out
}
