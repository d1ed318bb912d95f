package semantic

import "strconv"

// ScopeID identifies a scope in a Table.
type ScopeID uint32

// NoScopeID marks the absence of a scope reference.
const NoScopeID ScopeID = 0

// IsValid reports whether the scope ID refers to an allocated scope.
func (id ScopeID) IsValid() bool { return id != NoScopeID }

// SymbolID is the stable identity of a symbol within one compilation
// snapshot. Symbols are equal iff their IDs are.
type SymbolID uint32

// NoSymbolID marks the absence of a symbol reference.
const NoSymbolID SymbolID = 0

// IsValid reports whether the symbol ID refers to an allocated symbol.
func (id SymbolID) IsValid() bool { return id != NoSymbolID }

func (id SymbolID) String() string { return "sym#" + strconv.FormatUint(uint64(id), 10) }
