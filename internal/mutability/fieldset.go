package mutability

import (
	"iter"
	"slices"
	"strings"

	"vsdiag/internal/semantic"
)

// FieldSet is a persistent sorted set of field symbols. Operations that
// change the set return a new one; the receiver is never modified.
type FieldSet struct {
	ids []semantic.SymbolID
}

// NewFieldSet builds a set from ids in any order; duplicates collapse.
func NewFieldSet(ids ...semantic.SymbolID) FieldSet {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return FieldSet{ids: slices.Compact(sorted)}
}

func (s FieldSet) Len() int    { return len(s.ids) }
func (s FieldSet) Empty() bool { return len(s.ids) == 0 }

func (s FieldSet) Contains(id semantic.SymbolID) bool {
	_, found := slices.BinarySearch(s.ids, id)
	return found
}

// Without returns the set minus id.
func (s FieldSet) Without(id semantic.SymbolID) FieldSet {
	i, found := slices.BinarySearch(s.ids, id)
	if !found {
		return s
	}
	out := make([]semantic.SymbolID, 0, len(s.ids)-1)
	out = append(out, s.ids[:i]...)
	out = append(out, s.ids[i+1:]...)
	return FieldSet{ids: out}
}

// With returns the set plus id.
func (s FieldSet) With(id semantic.SymbolID) FieldSet {
	i, found := slices.BinarySearch(s.ids, id)
	if found {
		return s
	}
	out := make([]semantic.SymbolID, 0, len(s.ids)+1)
	out = append(out, s.ids[:i]...)
	out = append(out, id)
	out = append(out, s.ids[i:]...)
	return FieldSet{ids: out}
}

// All iterates over the members in ascending order.
func (s FieldSet) All() iter.Seq[semantic.SymbolID] {
	return slices.Values(s.ids)
}

// IDs returns a copy of the members in ascending order.
func (s FieldSet) IDs() []semantic.SymbolID { return slices.Clone(s.ids) }

func (s FieldSet) String() string {
	parts := make([]string, len(s.ids))
	for i, id := range s.ids {
		parts[i] = id.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
