package semantic

// ScopeKind enumerates scope categories.
type ScopeKind uint8

const (
	ScopeInvalid   ScopeKind = iota
	ScopeGlobal              // program root
	ScopeNamespace           // namespace body
	ScopeType                // type body (members)
	ScopeMember              // method, constructor or accessor (parameters)
	ScopeBlock               // statement block
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeNamespace:
		return "namespace"
	case ScopeType:
		return "type"
	case ScopeMember:
		return "member"
	case ScopeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// ParseScopeKind maps the String form back to a kind.
func ParseScopeKind(s string) ScopeKind {
	for k := ScopeGlobal; k <= ScopeBlock; k++ {
		if k.String() == s {
			return k
		}
	}
	return ScopeInvalid
}

// Scope models a lexical scope with a parent-child hierarchy. Owner is the
// symbol that introduced the scope, if any.
type Scope struct {
	ID        ScopeID
	Kind      ScopeKind
	Parent    ScopeID
	Owner     SymbolID
	Symbols   []SymbolID
	Children  []ScopeID
	NameIndex map[string][]SymbolID
}
