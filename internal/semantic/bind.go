package semantic

import (
	"vsdiag/internal/tree"
)

// Bind builds a Table for prog from names alone: every declaration is
// entered into a scope, then every other identifier is resolved through
// its enclosing scopes. Member access is resolved through the receiver's
// declared type, `this`, or a unique member name across all types.
//
// Bind stands in for a host semantic model when a snapshot carries no
// bindings. It knows nothing about overloads, inheritance or imports.
func Bind(prog tree.Program) *Table {
	b := &binder{
		t:           NewTable(Hints{}),
		scopeOf:     make(map[*tree.Node]ScopeID),
		declNames:   make(map[*tree.Node]bool),
		typesByName: make(map[string][]SymbolID),
		typeScope:   make(map[SymbolID]ScopeID),
	}
	for _, t := range prog {
		b.declare(t.Root(), b.t.Root(), NoSymbolID)
	}
	for _, t := range prog {
		b.resolve(t.Root(), b.t.Root())
	}
	return b.t
}

type binder struct {
	t           *Table
	scopeOf     map[*tree.Node]ScopeID
	declNames   map[*tree.Node]bool
	typesByName map[string][]SymbolID
	typeScope   map[SymbolID]ScopeID
}

func (b *binder) declare(n *tree.Node, scope ScopeID, container SymbolID) {
	switch n.Kind() {
	case tree.KindNamespace:
		id := b.add(n, SymbolNamespace, scope, container, 0)
		inner := b.open(n, ScopeNamespace, scope, id)
		b.declareChildren(n, inner, id)
		return

	case tree.KindTypeDecl:
		var flags SymbolFlags
		if hasKeyword(n, "interface") {
			flags |= FlagInterface
		}
		flags |= access(n, container, b.t)
		id := b.add(n, SymbolType, scope, container, flags)
		if sym, ok := b.t.Symbol(id); ok {
			b.typesByName[sym.Name] = append(b.typesByName[sym.Name], id)
		}
		inner := b.open(n, ScopeType, scope, id)
		b.typeScope[id] = inner
		b.declareChildren(n, inner, id)
		return

	case tree.KindFieldDecl:
		flags := access(n, container, b.t) | modifierFlags(n)
		id := b.add(n, SymbolField, scope, container, flags)
		b.recordType(n, id)
		if flags&FlagConst != 0 {
			if lit := initializer(n); lit != nil && lit.Kind() == tree.KindLiteral {
				b.t.SetSymbolConstant(id, Constant{Text: lit.Text()})
			}
		}

	case tree.KindPropertyDecl:
		flags := access(n, container, b.t) | modifierFlags(n)
		for _, c := range n.Children() {
			if c.Kind() == tree.KindAccessor && (hasKeyword(c, "set") || hasKeyword(c, "init")) {
				flags |= FlagHasSetter
			}
		}
		id := b.add(n, SymbolProperty, scope, container, flags)
		b.recordType(n, id)
		for _, c := range n.Children() {
			if c.Kind() != tree.KindAccessor {
				continue
			}
			inner := b.open(c, ScopeMember, scope, id)
			if hasKeyword(c, "set") || hasKeyword(c, "init") {
				value := b.t.Declare(Symbol{Name: "value", Kind: SymbolParameter, Container: id, Scope: inner})
				if ty, ok := b.t.SymbolType(id); ok {
					b.t.SetSymbolType(value, ty)
				}
			}
			b.declareChildren(c, inner, id)
		}
		return

	case tree.KindMethodDecl:
		flags := access(n, container, b.t) | modifierFlags(n)
		id := b.add(n, SymbolMethod, scope, container, flags)
		inner := b.open(n, ScopeMember, scope, id)
		b.declareChildren(n, inner, id)
		return

	case tree.KindConstructorDecl:
		flags := access(n, container, b.t) | modifierFlags(n)
		id := b.t.Declare(Symbol{Kind: SymbolConstructor, Container: container, Scope: scope, Flags: flags})
		// the constructor name is a reference to its type
		if name := tree.DeclName(n); name != nil {
			b.declNames[name] = true
			if container.IsValid() {
				b.t.Bind(name, container)
			}
		}
		inner := b.open(n, ScopeMember, scope, id)
		b.declareChildren(n, inner, id)
		return

	case tree.KindParameter:
		id := b.add(n, SymbolParameter, scope, container, modifierFlags(n))
		b.recordType(n, id)

	case tree.KindLocalDecl:
		id := b.add(n, SymbolLocal, scope, container, modifierFlags(n))
		b.recordType(n, id)

	case tree.KindBlock:
		inner := b.open(n, ScopeBlock, scope, NoSymbolID)
		b.declareChildren(n, inner, container)
		return

	case tree.KindForeachStmt:
		inner := b.open(n, ScopeBlock, scope, NoSymbolID)
		id := b.add(n, SymbolLocal, inner, container, 0)
		b.recordType(n, id)
		b.declareChildren(n, inner, container)
		return
	}
	b.declareChildren(n, scope, container)
}

func (b *binder) declareChildren(n *tree.Node, scope ScopeID, container SymbolID) {
	for _, c := range n.Children() {
		if !c.Kind().IsLeaf() {
			b.declare(c, scope, container)
		}
	}
}

// add declares the symbol introduced by n under its DeclName.
func (b *binder) add(n *tree.Node, kind SymbolKind, scope ScopeID, container SymbolID, flags SymbolFlags) SymbolID {
	name := tree.DeclName(n)
	sym := Symbol{Kind: kind, Container: container, Scope: scope, Flags: flags, Decl: name}
	if name != nil {
		sym.Name = name.Text()
		b.declNames[name] = true
	}
	return b.t.Declare(sym)
}

func (b *binder) open(n *tree.Node, kind ScopeKind, parent ScopeID, owner SymbolID) ScopeID {
	id := b.t.NewScope(kind, parent, owner)
	b.scopeOf[n] = id
	return id
}

// recordType stores the declared type: the child right before the name.
func (b *binder) recordType(n *tree.Node, id SymbolID) {
	name := tree.DeclName(n)
	if name == nil {
		return
	}
	i := n.IndexOf(name)
	if i <= 0 {
		return
	}
	ty := n.Child(i - 1)
	if ty.Kind() == tree.KindIdentifier || ty.Kind() == tree.KindKeyword {
		b.t.SetSymbolType(id, Type{Name: ty.Text()})
	}
}

func (b *binder) resolve(n *tree.Node, scope ScopeID) {
	if s, ok := b.scopeOf[n]; ok {
		scope = s
	}
	switch n.Kind() {
	case tree.KindIdentifier:
		if !b.declNames[n] {
			b.bindName(n, scope)
		}
		return
	case tree.KindMemberAccess:
		if n.NumChildren() == 3 && n.Child(2).Kind() == tree.KindIdentifier {
			recv := n.Child(0)
			b.resolve(recv, scope)
			b.bindMember(recv, n.Child(2), scope)
			return
		}
	case tree.KindObjectCreation:
		b.resolveCreation(n, scope)
		return
	}
	for _, c := range n.Children() {
		b.resolve(c, scope)
	}
}

func (b *binder) bindName(n *tree.Node, scope ScopeID) {
	for s := b.t.Scopes.Get(scope); s != nil; s = b.t.Scopes.Get(s.Parent) {
		if ids := s.NameIndex[n.Text()]; len(ids) > 0 {
			b.t.Bind(n, ids[0])
			return
		}
	}
}

func (b *binder) bindMember(recv, name *tree.Node, scope ScopeID) {
	var target ScopeID
	switch {
	case recv.Kind() == tree.KindKeyword && (recv.Text() == "this" || recv.Text() == "base"):
		for s := b.t.Scopes.Get(scope); s != nil; s = b.t.Scopes.Get(s.Parent) {
			if s.Kind == ScopeType {
				target = s.ID
				break
			}
		}
	default:
		if sym, ok := b.t.ResolveSymbol(recv); ok {
			if sym.Kind == SymbolType {
				target = b.typeScope[sym.ID]
			} else if ty, ok := b.t.SymbolType(sym.ID); ok {
				target = b.uniqueTypeScope(ty.Name)
			}
		}
	}
	if s := b.t.Scopes.Get(target); s != nil {
		if ids := s.NameIndex[name.Text()]; len(ids) > 0 {
			b.t.Bind(name, ids[0])
		}
		return
	}
	// unknown receiver: accept a member name declared by exactly one type
	var found []SymbolID
	for _, sc := range b.typeScope {
		found = append(found, b.t.Scopes.Get(sc).NameIndex[name.Text()]...)
	}
	if len(found) == 1 {
		b.t.Bind(name, found[0])
	}
}

// resolveCreation binds the member names assigned in an object
// initializer against the created type.
func (b *binder) resolveCreation(n *tree.Node, scope ScopeID) {
	var created ScopeID
	for _, c := range n.Children() {
		switch c.Kind() {
		case tree.KindIdentifier:
			b.bindName(c, scope)
			if sym, ok := b.t.ResolveSymbol(c); ok && sym.Kind == SymbolType {
				created = b.typeScope[sym.ID]
			}
		case tree.KindInitializer:
			for _, item := range c.Children() {
				if item.Kind() != tree.KindAssignment || item.NumChildren() != 3 {
					b.resolve(item, scope)
					continue
				}
				lhs := item.Child(0)
				if s := b.t.Scopes.Get(created); s != nil && lhs.Kind() == tree.KindIdentifier {
					if ids := s.NameIndex[lhs.Text()]; len(ids) > 0 {
						b.t.Bind(lhs, ids[0])
					}
				}
				b.resolve(item.Child(2), scope)
			}
		default:
			b.resolve(c, scope)
		}
	}
}

func (b *binder) uniqueTypeScope(name string) ScopeID {
	if ids := b.typesByName[name]; len(ids) == 1 {
		return b.typeScope[ids[0]]
	}
	return NoScopeID
}

func hasKeyword(n *tree.Node, text string) bool {
	for _, c := range n.Children() {
		if c.Kind() == tree.KindKeyword && c.Text() == text {
			return true
		}
	}
	return false
}

// access reports FlagPrivate for explicitly private members and for
// members without an access modifier outside interfaces.
func access(n *tree.Node, container SymbolID, t *Table) SymbolFlags {
	if tree.HasModifier(n, "private") {
		return FlagPrivate
	}
	for _, m := range []string{"public", "protected", "internal"} {
		if tree.HasModifier(n, m) {
			return 0
		}
	}
	if sym, ok := t.Symbol(container); ok && sym.Has(FlagInterface) {
		return 0
	}
	if n.Kind() == tree.KindTypeDecl && !container.IsValid() {
		return 0
	}
	return FlagPrivate
}

func modifierFlags(n *tree.Node) SymbolFlags {
	var f SymbolFlags
	if tree.HasModifier(n, "const") {
		f |= FlagConst
	}
	if tree.HasModifier(n, "static") {
		f |= FlagStatic
	}
	if tree.HasModifier(n, "readonly") {
		f |= FlagReadOnly
	}
	return f
}

// initializer returns the expression after "=" in a declaration.
func initializer(n *tree.Node) *tree.Node {
	seen := false
	for _, c := range n.Children() {
		if seen {
			return c
		}
		if c.Kind() == tree.KindPunct && c.Text() == "=" {
			seen = true
		}
	}
	return nil
}
