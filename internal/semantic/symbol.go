package semantic

import (
	"strings"

	"vsdiag/internal/tree"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolNamespace
	SymbolType
	SymbolField
	SymbolProperty
	SymbolMethod
	SymbolConstructor
	SymbolParameter
	SymbolLocal
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolNamespace:
		return "namespace"
	case SymbolType:
		return "type"
	case SymbolField:
		return "field"
	case SymbolProperty:
		return "property"
	case SymbolMethod:
		return "method"
	case SymbolConstructor:
		return "constructor"
	case SymbolParameter:
		return "parameter"
	case SymbolLocal:
		return "local"
	default:
		return "invalid"
	}
}

// ParseSymbolKind maps the String form back to a kind.
func ParseSymbolKind(s string) SymbolKind {
	for k := SymbolNamespace; k <= SymbolLocal; k++ {
		if k.String() == s {
			return k
		}
	}
	return SymbolInvalid
}

// SymbolFlags encode declaration attributes for quick checks.
type SymbolFlags uint16

const (
	FlagConst SymbolFlags = 1 << iota
	FlagStatic
	FlagReadOnly
	FlagHasSetter
	FlagPrivate
	FlagInterface
)

var flagLabels = [...]struct {
	flag  SymbolFlags
	label string
}{
	{FlagConst, "const"},
	{FlagStatic, "static"},
	{FlagReadOnly, "readonly"},
	{FlagHasSetter, "setter"},
	{FlagPrivate, "private"},
	{FlagInterface, "interface"},
}

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	for _, fl := range flagLabels {
		if f&fl.flag != 0 {
			labels = append(labels, fl.label)
		}
	}
	return labels
}

// ParseFlags is the inverse of Strings; unknown labels are ignored.
func ParseFlags(labels []string) SymbolFlags {
	var f SymbolFlags
	for _, l := range labels {
		for _, fl := range flagLabels {
			if fl.label == l {
				f |= fl.flag
			}
		}
	}
	return f
}

func (f SymbolFlags) String() string { return strings.Join(f.Strings(), "|") }

// Symbol is a named program entity. Decl is the identifier token that
// declares it; Container is the enclosing type or namespace symbol; Scope is
// the scope the name is declared in.
type Symbol struct {
	ID        SymbolID
	Name      string
	Kind      SymbolKind
	Decl      *tree.Node
	Container SymbolID
	Scope     ScopeID
	Flags     SymbolFlags
}

// Same reports whether s and other denote the same entity. Names are never
// compared.
func (s Symbol) Same(other Symbol) bool {
	return s.ID.IsValid() && s.ID == other.ID
}

func (s Symbol) Has(f SymbolFlags) bool { return s.Flags&f == f }

func (s Symbol) String() string {
	return s.Kind.String() + " " + s.Name + " (" + s.ID.String() + ")"
}
