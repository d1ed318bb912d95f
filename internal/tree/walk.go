package tree

// step is one hop on a root-to-target path: the node and the index of the
// child the path continues through (-1 for the target itself).
type step struct {
	node  *Node
	index int
}

// locate finds target by identity with a depth-first search.
func locate(root, target *Node) ([]step, bool) {
	if root == nil || target == nil {
		return nil, false
	}
	var path []step
	var visit func(n *Node) bool
	visit = func(n *Node) bool {
		if n == target {
			path = append(path, step{node: n, index: -1})
			return true
		}
		for i, c := range n.children {
			path = append(path, step{node: n, index: i})
			if visit(c) {
				return true
			}
			path = path[:len(path)-1]
		}
		return false
	}
	if !visit(root) {
		return nil, false
	}
	return path, true
}

// Path returns the nodes from root down to target, both included.
func Path(root, target *Node) ([]*Node, bool) {
	steps, ok := locate(root, target)
	if !ok {
		return nil, false
	}
	out := make([]*Node, len(steps))
	for i, s := range steps {
		out[i] = s.node
	}
	return out, true
}

// Cursor describes the node currently visited by Walk. It is only valid
// for the duration of the callback.
type Cursor struct {
	node      *Node
	ancestors []*Node
	indices   []int
}

func (c *Cursor) Node() *Node { return c.node }

// Parent returns the parent of the current node, or nil at the root.
func (c *Cursor) Parent() *Node { return c.Ancestor(1) }

// Ancestor returns the k-th ancestor (1 is the parent), or nil.
func (c *Cursor) Ancestor(k int) *Node {
	if k <= 0 || k > len(c.ancestors) {
		return nil
	}
	return c.ancestors[len(c.ancestors)-k]
}

// Index returns the position of the current node in its parent, -1 at the root.
func (c *Cursor) Index() int {
	if len(c.indices) == 0 {
		return -1
	}
	return c.indices[len(c.indices)-1]
}

// Depth is the number of ancestors.
func (c *Cursor) Depth() int { return len(c.ancestors) }

// Ancestors returns a copy of the ancestor chain, root first.
func (c *Cursor) Ancestors() []*Node {
	out := make([]*Node, len(c.ancestors))
	copy(out, c.ancestors)
	return out
}

// Walk visits root and its descendants depth-first, parents before
// children, children in order. Returning false from fn skips the
// children of the current node.
func Walk(root *Node, fn func(c *Cursor) bool) {
	if root == nil {
		return
	}
	c := &Cursor{}
	walk(c, root, -1, fn)
}

func walk(c *Cursor, n *Node, index int, fn func(c *Cursor) bool) {
	c.node = n
	if index >= 0 {
		c.indices = append(c.indices, index)
	}
	descend := fn(c)
	if descend && len(n.children) > 0 {
		c.ancestors = append(c.ancestors, n)
		for i, child := range n.children {
			walk(c, child, i, fn)
		}
		c.ancestors = c.ancestors[:len(c.ancestors)-1]
	}
	if index >= 0 {
		c.indices = c.indices[:len(c.indices)-1]
	}
}

// Inspect calls fn for every node in pre-order.
func Inspect(root *Node, fn func(n *Node) bool) {
	Walk(root, func(c *Cursor) bool { return fn(c.Node()) })
}

// FindAll returns every node of the given kind in pre-order.
func FindAll(root *Node, kind Kind) []*Node {
	var out []*Node
	Inspect(root, func(n *Node) bool {
		if n.kind == kind {
			out = append(out, n)
		}
		return true
	})
	return out
}

// FindFirst returns the first node in pre-order matching pred, or nil.
func FindFirst(root *Node, pred func(n *Node) bool) *Node {
	var found *Node
	Inspect(root, func(n *Node) bool {
		if found != nil {
			return false
		}
		if pred(n) {
			found = n
			return false
		}
		return true
	})
	return found
}
