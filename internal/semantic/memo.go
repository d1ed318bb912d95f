package semantic

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"vsdiag/internal/tree"
)

// DefaultMemoSize bounds the entries of each cache in a Memo.
const DefaultMemoSize = 4096

type symbolAnswer struct {
	sym Symbol
	ok  bool
}

type typeAnswer struct {
	ty Type
	ok bool
}

type constAnswer struct {
	c  Constant
	ok bool
}

// Memo caches the node-keyed answers of an Oracle for the duration of one
// analysis pass. A Memo must be dropped with the tree version it was
// created for; LookupVisible is not cached.
type Memo struct {
	inner  Oracle
	syms   *lru.Cache[*tree.Node, symbolAnswer]
	types  *lru.Cache[*tree.Node, typeAnswer]
	consts *lru.Cache[*tree.Node, constAnswer]
}

var _ Oracle = (*Memo)(nil)

// NewMemo wraps o. size <= 0 selects DefaultMemoSize.
func NewMemo(o Oracle, size int) *Memo {
	if size <= 0 {
		size = DefaultMemoSize
	}
	syms, err := lru.New[*tree.Node, symbolAnswer](size)
	if err != nil {
		panic(err)
	}
	types, err := lru.New[*tree.Node, typeAnswer](size)
	if err != nil {
		panic(err)
	}
	consts, err := lru.New[*tree.Node, constAnswer](size)
	if err != nil {
		panic(err)
	}
	return &Memo{inner: o, syms: syms, types: types, consts: consts}
}

func (m *Memo) ResolveSymbol(n *tree.Node) (Symbol, bool) {
	if a, ok := m.syms.Get(n); ok {
		return a.sym, a.ok
	}
	sym, ok := m.inner.ResolveSymbol(n)
	m.syms.Add(n, symbolAnswer{sym: sym, ok: ok})
	return sym, ok
}

func (m *Memo) TypeOf(n *tree.Node) (Type, bool) {
	if a, ok := m.types.Get(n); ok {
		return a.ty, a.ok
	}
	ty, ok := m.inner.TypeOf(n)
	m.types.Add(n, typeAnswer{ty: ty, ok: ok})
	return ty, ok
}

func (m *Memo) ConstantValueOf(n *tree.Node) (Constant, bool) {
	if a, ok := m.consts.Get(n); ok {
		return a.c, a.ok
	}
	c, ok := m.inner.ConstantValueOf(n)
	m.consts.Add(n, constAnswer{c: c, ok: ok})
	return c, ok
}

func (m *Memo) LookupVisible(sym Symbol, name string) []Symbol {
	return m.inner.LookupVisible(sym, name)
}

// Len reports the number of cached symbol answers.
func (m *Memo) Len() int { return m.syms.Len() }
