// Package interchange reads and writes program snapshots: the syntax trees
// of every file, with trivia, plus the host's semantic model (scopes,
// symbols and node bindings). Snapshots come in two encodings, JSON
// (.vsd.json) for hand-written fixtures and msgpack (.vsd) for hosts.
//
// Nodes are referenced by their pre-order index within a file's tree; the
// root is 0.
package interchange

import (
	"errors"
	"fmt"

	"vsdiag/internal/semantic"
	"vsdiag/internal/source"
	"vsdiag/internal/tree"
)

// SchemaVersion is bumped whenever the snapshot layout changes.
const SchemaVersion uint16 = 1

var (
	ErrSchema    = errors.New("interchange: unsupported schema")
	ErrMalformed = errors.New("interchange: malformed snapshot")
)

// Snapshot is the serialized form of a program.
type Snapshot struct {
	Schema  uint16   `json:"schema" msgpack:"schema"`
	Files   []File   `json:"files" msgpack:"files"`
	Scopes  []Scope  `json:"scopes,omitempty" msgpack:"scopes,omitempty"`
	Symbols []Symbol `json:"symbols,omitempty" msgpack:"symbols,omitempty"`
}

// File is one source file: its tree and the bindings of its nodes.
type File struct {
	Path      string         `json:"path" msgpack:"path"`
	Root      Node           `json:"root" msgpack:"root"`
	Bindings  []Binding      `json:"bindings,omitempty" msgpack:"bindings,omitempty"`
	Types     []TypeBinding  `json:"types,omitempty" msgpack:"types,omitempty"`
	Constants []ConstBinding `json:"constants,omitempty" msgpack:"constants,omitempty"`
}

// Node mirrors tree.Node. Leaf kinds carry Text, the others Children.
type Node struct {
	Kind     string `json:"kind" msgpack:"k"`
	Text     string `json:"text,omitempty" msgpack:"t,omitempty"`
	Leading  string `json:"lead,omitempty" msgpack:"l,omitempty"`
	Trailing string `json:"trail,omitempty" msgpack:"r,omitempty"`
	Children []Node `json:"children,omitempty" msgpack:"c,omitempty"`
}

type Binding struct {
	Node   int    `json:"node" msgpack:"node"`
	Symbol uint32 `json:"symbol" msgpack:"symbol"`
}

type TypeBinding struct {
	Node   int    `json:"node" msgpack:"node"`
	Name   string `json:"name" msgpack:"name"`
	Symbol uint32 `json:"symbol,omitempty" msgpack:"symbol,omitempty"`
}

type ConstBinding struct {
	Node int    `json:"node" msgpack:"node"`
	Text string `json:"text" msgpack:"text"`
}

// Scope mirrors semantic.Scope. IDs are dense and start at 1, which is
// always the global scope.
type Scope struct {
	ID     uint32 `json:"id" msgpack:"id"`
	Kind   string `json:"kind" msgpack:"kind"`
	Parent uint32 `json:"parent,omitempty" msgpack:"parent,omitempty"`
	Owner  uint32 `json:"owner,omitempty" msgpack:"owner,omitempty"`
}

// Symbol mirrors semantic.Symbol. IDs are dense and start at 1.
type Symbol struct {
	ID         uint32   `json:"id" msgpack:"id"`
	Name       string   `json:"name" msgpack:"name"`
	Kind       string   `json:"kind" msgpack:"kind"`
	Scope      uint32   `json:"scope" msgpack:"scope"`
	Container  uint32   `json:"container,omitempty" msgpack:"container,omitempty"`
	Flags      []string `json:"flags,omitempty" msgpack:"flags,omitempty"`
	Decl       *NodeRef `json:"decl,omitempty" msgpack:"decl,omitempty"`
	Type       string   `json:"type,omitempty" msgpack:"type,omitempty"`
	TypeSymbol uint32   `json:"type_symbol,omitempty" msgpack:"type_symbol,omitempty"`
	Constant   *string  `json:"constant,omitempty" msgpack:"constant,omitempty"`
}

// NodeRef points at a node of another file: File indexes Snapshot.Files.
type NodeRef struct {
	File int `json:"file" msgpack:"file"`
	Node int `json:"node" msgpack:"node"`
}

// Program is a decoded snapshot.
type Program struct {
	Files *source.FileSet
	Trees tree.Program
	Table *semantic.Table
	// Bound is false when the snapshot carried no symbols and the table
	// was built by semantic.Bind.
	Bound bool
}

// Decode rebuilds trees and the symbol table. Each file is registered in fs
// under its path with the rendered tree as content, so diagnostic spans
// resolve against it.
func Decode(s *Snapshot, fs *source.FileSet) (*Program, error) {
	if s.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrSchema, s.Schema, SchemaVersion)
	}
	out := &Program{Files: fs, Trees: make(tree.Program, 0, len(s.Files))}
	index := make([][]*tree.Node, len(s.Files))
	for i := range s.Files {
		f := &s.Files[i]
		root, err := buildNode(&f.Root)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Path, err)
		}
		id := fs.AddVirtual(f.Path, []byte(tree.Render(root)))
		t := tree.New(id, f.Path, root)
		out.Trees = append(out.Trees, t)
		index[i] = preorder(t.Root())
	}

	if len(s.Symbols) == 0 && len(s.Scopes) == 0 {
		out.Table = semantic.Bind(out.Trees)
		return out, nil
	}
	tbl, err := decodeTable(s, index)
	if err != nil {
		return nil, err
	}
	out.Table = tbl
	out.Bound = true
	return out, nil
}

func buildNode(n *Node) (*tree.Node, error) {
	kind, ok := tree.ParseKind(n.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: unknown node kind %q", ErrMalformed, n.Kind)
	}
	if kind.IsLeaf() {
		if len(n.Children) > 0 {
			return nil, fmt.Errorf("%w: %s node with children", ErrMalformed, kind)
		}
		return tree.NewToken(kind, n.Text).WithTrivia(n.Leading, n.Trailing), nil
	}
	if n.Text != "" || n.Leading != "" || n.Trailing != "" {
		return nil, fmt.Errorf("%w: %s node with text or trivia", ErrMalformed, kind)
	}
	children := make([]*tree.Node, 0, len(n.Children))
	for i := range n.Children {
		c, err := buildNode(&n.Children[i])
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	return tree.NewNode(kind, children...), nil
}

func preorder(root *tree.Node) []*tree.Node {
	var nodes []*tree.Node
	tree.Walk(root, func(c *tree.Cursor) bool {
		nodes = append(nodes, c.Node())
		return true
	})
	return nodes
}

func decodeTable(s *Snapshot, index [][]*tree.Node) (*semantic.Table, error) {
	tbl := semantic.NewTable(semantic.Hints{Scopes: uint(len(s.Scopes)), Symbols: uint(len(s.Symbols))})
	lookup := func(file, node int) (*tree.Node, error) {
		if file < 0 || file >= len(index) || node < 0 || node >= len(index[file]) {
			return nil, fmt.Errorf("%w: node %d of file %d out of range", ErrMalformed, node, file)
		}
		return index[file][node], nil
	}

	for i, sc := range s.Scopes {
		kind := semantic.ParseScopeKind(sc.Kind)
		if kind == semantic.ScopeInvalid {
			return nil, fmt.Errorf("%w: scope %d: unknown kind %q", ErrMalformed, sc.ID, sc.Kind)
		}
		if i == 0 {
			if sc.ID != uint32(tbl.Root()) || kind != semantic.ScopeGlobal {
				return nil, fmt.Errorf("%w: first scope must be the global scope %d", ErrMalformed, tbl.Root())
			}
			continue
		}
		if sc.Parent == 0 || sc.Parent >= sc.ID {
			return nil, fmt.Errorf("%w: scope %d: parent %d must precede it", ErrMalformed, sc.ID, sc.Parent)
		}
		id := tbl.NewScope(kind, semantic.ScopeID(sc.Parent), semantic.SymbolID(sc.Owner))
		if uint32(id) != sc.ID {
			return nil, fmt.Errorf("%w: scope ids must be dense, got %d at position %d", ErrMalformed, sc.ID, i)
		}
	}

	for i, sym := range s.Symbols {
		kind := semantic.ParseSymbolKind(sym.Kind)
		if kind == semantic.SymbolInvalid {
			return nil, fmt.Errorf("%w: symbol %d: unknown kind %q", ErrMalformed, sym.ID, sym.Kind)
		}
		var decl *tree.Node
		if sym.Decl != nil {
			n, err := lookup(sym.Decl.File, sym.Decl.Node)
			if err != nil {
				return nil, fmt.Errorf("symbol %d: %w", sym.ID, err)
			}
			decl = n
		}
		id := tbl.Declare(semantic.Symbol{
			Name:      sym.Name,
			Kind:      kind,
			Decl:      decl,
			Container: semantic.SymbolID(sym.Container),
			Scope:     semantic.ScopeID(sym.Scope),
			Flags:     semantic.ParseFlags(sym.Flags),
		})
		if uint32(id) != sym.ID {
			return nil, fmt.Errorf("%w: symbol ids must be dense, got %d at position %d", ErrMalformed, sym.ID, i)
		}
		if sym.Type != "" {
			tbl.SetSymbolType(id, semantic.Type{Name: sym.Type, Symbol: semantic.SymbolID(sym.TypeSymbol)})
		}
		if sym.Constant != nil {
			tbl.SetSymbolConstant(id, semantic.Constant{Text: *sym.Constant})
		}
	}

	for fi, f := range s.Files {
		for _, b := range f.Bindings {
			n, err := lookup(fi, b.Node)
			if err != nil {
				return nil, fmt.Errorf("%s: binding: %w", f.Path, err)
			}
			tbl.Bind(n, semantic.SymbolID(b.Symbol))
		}
		for _, b := range f.Types {
			n, err := lookup(fi, b.Node)
			if err != nil {
				return nil, fmt.Errorf("%s: type: %w", f.Path, err)
			}
			tbl.BindType(n, semantic.Type{Name: b.Name, Symbol: semantic.SymbolID(b.Symbol)})
		}
		for _, b := range f.Constants {
			n, err := lookup(fi, b.Node)
			if err != nil {
				return nil, fmt.Errorf("%s: constant: %w", f.Path, err)
			}
			tbl.BindConstant(n, semantic.Constant{Text: b.Text})
		}
	}

	if err := tbl.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return tbl, nil
}
