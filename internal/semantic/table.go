package semantic

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"fortio.org/safecast"

	"vsdiag/internal/tree"
)

// Hints provide optional capacity suggestions for the table arenas.
type Hints struct{ Scopes, Symbols uint }

// Table is an in-memory Oracle. Hosts (or the interchange decoder, or Bind)
// fill it with scopes, symbols and node bindings. A Table may be read
// concurrently but must not be modified while analysis passes run.
type Table struct {
	Scopes  *Scopes
	Symbols *Symbols

	root      ScopeID
	bindings  map[*tree.Node]SymbolID
	types     map[*tree.Node]Type
	consts    map[*tree.Node]Constant
	symTypes  map[SymbolID]Type
	symConsts map[SymbolID]Constant
}

var _ Oracle = (*Table)(nil)
var _ Follower = (*Table)(nil)

// NewTable builds a table with a global root scope.
func NewTable(h Hints) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	t := &Table{
		Scopes:    NewScopes(scopeCap),
		Symbols:   NewSymbols(symCap),
		bindings:  make(map[*tree.Node]SymbolID),
		types:     make(map[*tree.Node]Type),
		consts:    make(map[*tree.Node]Constant),
		symTypes:  make(map[SymbolID]Type),
		symConsts: make(map[SymbolID]Constant),
	}
	t.root = t.Scopes.New(ScopeGlobal, NoScopeID, NoSymbolID)
	return t
}

// Root returns the global scope.
func (t *Table) Root() ScopeID { return t.root }

// NewScope allocates a child scope of parent.
func (t *Table) NewScope(kind ScopeKind, parent ScopeID, owner SymbolID) ScopeID {
	return t.Scopes.New(kind, parent, owner)
}

// Declare stores sym, indexes its name in sym.Scope and binds sym.Decl.
// Symbols with an empty name are stored but not indexed.
func (t *Table) Declare(sym Symbol) SymbolID {
	id := t.Symbols.New(sym)
	if scope := t.Scopes.Get(sym.Scope); scope != nil {
		scope.Symbols = append(scope.Symbols, id)
		if sym.Name != "" {
			scope.NameIndex[sym.Name] = append(scope.NameIndex[sym.Name], id)
		}
	}
	if sym.Decl != nil {
		t.bindings[sym.Decl] = id
	}
	return id
}

// Bind records that n refers to the symbol id.
func (t *Table) Bind(n *tree.Node, id SymbolID) { t.bindings[n] = id }

// BindType records the type of an expression node.
func (t *Table) BindType(n *tree.Node, ty Type) { t.types[n] = ty }

// BindConstant records the constant value of an expression node.
func (t *Table) BindConstant(n *tree.Node, c Constant) { t.consts[n] = c }

// SetSymbolType records the declared type of a symbol; references to the
// symbol report it from TypeOf.
func (t *Table) SetSymbolType(id SymbolID, ty Type) { t.symTypes[id] = ty }

// SetSymbolConstant records the value of a constant symbol.
func (t *Table) SetSymbolConstant(id SymbolID, c Constant) { t.symConsts[id] = c }

// Symbol returns the symbol with the given ID.
func (t *Table) Symbol(id SymbolID) (Symbol, bool) {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return Symbol{}, false
	}
	return *sym, true
}

// Bindings iterates over node bindings in no particular order.
func (t *Table) Bindings() iter.Seq2[*tree.Node, SymbolID] {
	return func(yield func(*tree.Node, SymbolID) bool) {
		for n, id := range t.bindings {
			if !yield(n, id) {
				return
			}
		}
	}
}

// TypeBindings iterates over expression types recorded with BindType.
func (t *Table) TypeBindings() iter.Seq2[*tree.Node, Type] {
	return func(yield func(*tree.Node, Type) bool) {
		for n, ty := range t.types {
			if !yield(n, ty) {
				return
			}
		}
	}
}

// ConstantBindings iterates over values recorded with BindConstant.
func (t *Table) ConstantBindings() iter.Seq2[*tree.Node, Constant] {
	return func(yield func(*tree.Node, Constant) bool) {
		for n, c := range t.consts {
			if !yield(n, c) {
				return
			}
		}
	}
}

// SymbolType returns the declared type recorded for a symbol.
func (t *Table) SymbolType(id SymbolID) (Type, bool) {
	ty, ok := t.symTypes[id]
	return ty, ok
}

// SymbolConstant returns the value recorded for a constant symbol.
func (t *Table) SymbolConstant(id SymbolID) (Constant, bool) {
	c, ok := t.symConsts[id]
	return c, ok
}

func (t *Table) ResolveSymbol(n *tree.Node) (Symbol, bool) {
	id, ok := t.bindings[n]
	if !ok {
		return Symbol{}, false
	}
	return t.Symbol(id)
}

func (t *Table) TypeOf(n *tree.Node) (Type, bool) {
	if ty, ok := t.types[n]; ok {
		return ty, true
	}
	if id, ok := t.bindings[n]; ok {
		ty, ok := t.symTypes[id]
		return ty, ok
	}
	return Type{}, false
}

func (t *Table) ConstantValueOf(n *tree.Node) (Constant, bool) {
	if c, ok := t.consts[n]; ok {
		return c, true
	}
	if n.Kind() == tree.KindLiteral {
		return Constant{Text: n.Text()}, true
	}
	if id, ok := t.bindings[n]; ok {
		c, ok := t.symConsts[id]
		return c, ok
	}
	return Constant{}, false
}

func (t *Table) LookupVisible(sym Symbol, name string) []Symbol {
	origin := t.Scopes.Get(sym.Scope)
	if origin == nil {
		return nil
	}
	var ids []SymbolID
	for scope := origin; scope != nil; scope = t.Scopes.Get(scope.Parent) {
		ids = append(ids, scope.NameIndex[name]...)
	}
	stack := slices.Clone(origin.Children)
	for len(stack) > 0 {
		scope := t.Scopes.Get(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
		if scope == nil {
			continue
		}
		ids = append(ids, scope.NameIndex[name]...)
		stack = append(stack, scope.Children...)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	out := make([]Symbol, 0, len(ids))
	for _, id := range ids {
		if id == sym.ID {
			continue
		}
		if other, ok := t.Symbol(id); ok {
			out = append(out, other)
		}
	}
	return out
}

// Follow moves the bindings of old onto replacement. Declarations whose
// Decl is old are updated too.
func (t *Table) Follow(old, replacement *tree.Node) {
	if id, ok := t.bindings[old]; ok {
		delete(t.bindings, old)
		t.bindings[replacement] = id
		if sym := t.Symbols.Get(id); sym != nil && sym.Decl == old {
			sym.Decl = replacement
		}
	}
	if ty, ok := t.types[old]; ok {
		delete(t.types, old)
		t.types[replacement] = ty
	}
	if c, ok := t.consts[old]; ok {
		delete(t.consts, old)
		t.consts[replacement] = c
	}
}

// SetName renames a symbol and reindexes it in its scope.
func (t *Table) SetName(id SymbolID, name string) {
	sym := t.Symbols.Get(id)
	if sym == nil || sym.Name == name {
		return
	}
	if scope := t.Scopes.Get(sym.Scope); scope != nil {
		if sym.Name != "" {
			ids := slices.DeleteFunc(scope.NameIndex[sym.Name], func(x SymbolID) bool { return x == id })
			if len(ids) == 0 {
				delete(scope.NameIndex, sym.Name)
			} else {
				scope.NameIndex[sym.Name] = ids
			}
		}
		scope.NameIndex[name] = append(scope.NameIndex[name], id)
	}
	sym.Name = name
}

// Validate checks the arenas for dangling references.
func (t *Table) Validate() error {
	var errs []error
	for _, scope := range t.Scopes.Data() {
		if scope.Parent.IsValid() && t.Scopes.Get(scope.Parent) == nil {
			errs = append(errs, fmt.Errorf("scope %d: unknown parent %d", scope.ID, scope.Parent))
		}
		if scope.Owner.IsValid() && t.Symbols.Get(scope.Owner) == nil {
			errs = append(errs, fmt.Errorf("scope %d: unknown owner %s", scope.ID, scope.Owner))
		}
		for _, id := range scope.Symbols {
			if t.Symbols.Get(id) == nil {
				errs = append(errs, fmt.Errorf("scope %d: unknown symbol %s", scope.ID, id))
			}
		}
	}
	for _, sym := range t.Symbols.Data() {
		if t.Scopes.Get(sym.Scope) == nil {
			errs = append(errs, fmt.Errorf("%s: unknown scope %d", sym, sym.Scope))
		}
		if sym.Container.IsValid() && t.Symbols.Get(sym.Container) == nil {
			errs = append(errs, fmt.Errorf("%s: unknown container %s", sym, sym.Container))
		}
	}
	for n, id := range t.bindings {
		if t.Symbols.Get(id) == nil {
			errs = append(errs, fmt.Errorf("binding %v: unknown symbol %s", n, id))
		}
	}
	return errors.Join(errs...)
}
