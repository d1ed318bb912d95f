package tree

import (
	"fmt"
	"sync"

	"fortio.org/safecast"

	"vsdiag/internal/source"
)

// Tree is an immutable root node together with the file it came from.
// Rewrites never touch a Tree; they return a new one sharing every subtree
// that was not on the path to the edit.
type Tree struct {
	root *Node
	file source.FileID
	name string
	gen  uint64

	textOnce sync.Once
	text     []byte
}

// New seals root into a tree. Spans are assigned by layout to every node
// that does not already belong to a tree; nodes shared with another tree
// keep the spans they had there.
func New(file source.FileID, name string, root *Node) *Tree {
	if root == nil {
		panic("tree: New with nil root")
	}
	var pos uint32
	layout(root, file, &pos, false)
	return &Tree{root: root, file: file, name: name, gen: 1}
}

// Relayout returns a structurally equal tree made of fresh nodes whose spans
// match the current text. Nothing is shared with t.
func Relayout(t *Tree) *Tree {
	root := deepCopy(t.root)
	var pos uint32
	layout(root, t.file, &pos, true)
	return &Tree{root: root, file: t.file, name: t.name, gen: t.gen + 1}
}

// RelayoutAs is Relayout for a tree whose text was registered as a new file.
func RelayoutAs(t *Tree, file source.FileID) *Tree {
	root := deepCopy(t.root)
	var pos uint32
	layout(root, file, &pos, true)
	return &Tree{root: root, file: file, name: t.name, gen: t.gen + 1}
}

// derive builds the successor of t after a rewrite.
func (t *Tree) derive(root *Node) *Tree {
	seal(root)
	return &Tree{root: root, file: t.file, name: t.name, gen: t.gen + 1}
}

func (t *Tree) Root() *Node         { return t.root }
func (t *Tree) File() source.FileID { return t.file }
func (t *Tree) Name() string        { return t.name }

// Generation increases by one with every rewrite of the original tree.
// Spans of a tree with Generation() > 1 are expressed in the coordinates
// of the text the first generation was built from.
func (t *Tree) Generation() uint64 { return t.gen }

// Text returns the rendered source of the tree. The slice must not be
// modified.
func (t *Tree) Text() []byte {
	t.textOnce.Do(func() {
		t.text = []byte(Render(t.root))
	})
	return t.text
}

// Render returns the tree's source as a string.
func (t *Tree) Render() string { return string(t.Text()) }

// Contains reports whether n is reachable from the root.
func (t *Tree) Contains(n *Node) bool {
	_, ok := locate(t.root, n)
	return ok
}

func (t *Tree) String() string {
	return fmt.Sprintf("%s#%d", t.name, t.gen)
}

// layout assigns spans in render order. Sealed nodes are skipped unless
// force is set, but the cursor still advances over their width.
func layout(n *Node, file source.FileID, pos *uint32, force bool) {
	if n.sealed && !force {
		*pos += width(n)
		return
	}
	*pos += conv(len(n.leading))
	var start, end uint32
	if n.kind.IsLeaf() {
		start = *pos
		*pos += conv(len(n.text))
		end = *pos
	} else {
		// inner spans exclude the trivia of their edge descendants too
		start = *pos + conv(len(LeadingTrivia(n))-len(n.leading))
		for _, c := range n.children {
			layout(c, file, pos, force)
		}
		end = max(start, *pos-conv(len(TrailingTrivia(n))-len(n.trailing)))
	}
	n.span = source.Span{File: file, Start: start, End: end}
	*pos += conv(len(n.trailing))
	n.sealed = true
}

func width(n *Node) uint32 {
	w := conv(len(n.leading) + len(n.text) + len(n.trailing))
	for _, c := range n.children {
		w += width(c)
	}
	return w
}

func conv(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("tree: offset overflow: %w", err))
	}
	return v
}

func seal(n *Node) {
	if n.sealed {
		return
	}
	n.sealed = true
	for _, c := range n.children {
		seal(c)
	}
}

func deepCopy(n *Node) *Node {
	cp := n.clone()
	if len(n.children) > 0 {
		cp.children = make([]*Node, len(n.children))
		for i, c := range n.children {
			cp.children[i] = deepCopy(c)
		}
	}
	return cp
}
