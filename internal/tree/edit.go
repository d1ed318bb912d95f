package tree

import "fmt"

// Replace returns a new tree in which target (found by identity) is
// substituted by replacement. Every ancestor of target is rebuilt with a new
// child list; all other subtrees are shared with t.
func Replace(t *Tree, target, replacement *Node) (*Tree, error) {
	if t == nil || target == nil || replacement == nil {
		return nil, structural("replace", t, target, ErrNodeNotFound)
	}
	path, ok := locate(t.root, target)
	if !ok {
		return nil, structural("replace", t, target, ErrNodeNotFound)
	}
	return t.derive(rebuild(path, replacement)), nil
}

// MustReplace is Replace for callers that hold the invariant that target is
// in t; it panics with the StructuralError otherwise.
func MustReplace(t *Tree, target, replacement *Node) *Tree {
	out, err := Replace(t, target, replacement)
	if err != nil {
		panic(err)
	}
	return out
}

// ReplaceMany substitutes several disjoint targets in one rebuild. A target
// nested inside another target is never reached and is reported as missing.
func ReplaceMany(t *Tree, repl map[*Node]*Node) (*Tree, error) {
	if t == nil {
		return nil, structural("replace", t, nil, ErrNodeNotFound)
	}
	if len(repl) == 0 {
		return t, nil
	}
	found := make(map[*Node]bool, len(repl))
	var rebuildAll func(n *Node) *Node
	rebuildAll = func(n *Node) *Node {
		if r, ok := repl[n]; ok {
			found[n] = true
			return r
		}
		var children []*Node
		for i, c := range n.children {
			nc := rebuildAll(c)
			if nc != c && children == nil {
				children = make([]*Node, len(n.children))
				copy(children, n.children)
			}
			if children != nil {
				children[i] = nc
			}
		}
		if children == nil {
			return n
		}
		cp := n.clone()
		cp.children = children
		return cp
	}
	root := rebuildAll(t.root)
	if len(found) != len(repl) {
		for target := range repl {
			if !found[target] {
				return nil, structural("replace", t, target, ErrNodeNotFound)
			}
		}
	}
	return t.derive(root), nil
}

// RemoveNode removes target from its parent. With TriviaPreserve the
// target's outer trivia stays where it was (see KindElided); with
// TriviaCollapse it is dropped along with the node.
func RemoveNode(t *Tree, target *Node, policy TriviaPolicy) (*Tree, error) {
	if t == nil || target == nil {
		return nil, structural("remove", t, target, ErrNodeNotFound)
	}
	path, ok := locate(t.root, target)
	if !ok {
		return nil, structural("remove", t, target, ErrNodeNotFound)
	}
	if len(path) == 1 {
		return nil, structural("remove", t, target, ErrRootRemoval)
	}
	switch policy {
	case TriviaPreserve:
		return t.derive(rebuild(path, elide(target))), nil
	case TriviaCollapse:
		return t.derive(rebuild(path, nil)), nil
	default:
		panic(fmt.Sprintf("tree: unknown trivia policy %d", policy))
	}
}

// InsertChild inserts child under parent before position index
// (index == NumChildren appends). When the child currently at index is an
// Elided placeholder, the placeholder is consumed and its trivia wraps the
// inserted child, restoring the text a preserving RemoveNode left behind.
func InsertChild(t *Tree, parent *Node, index int, child *Node) (*Tree, error) {
	if t == nil || parent == nil || child == nil {
		return nil, structural("insert", t, parent, ErrNodeNotFound)
	}
	if parent.kind.IsLeaf() {
		return nil, structural("insert", t, parent, ErrLeafParent)
	}
	if index < 0 || index > len(parent.children) {
		return nil, structural("insert", t, parent, ErrBadIndex)
	}
	path, ok := locate(t.root, parent)
	if !ok {
		return nil, structural("insert", t, parent, ErrNodeNotFound)
	}
	var updated *Node
	if index < len(parent.children) && parent.children[index].kind == KindElided {
		ph := parent.children[index]
		wrapped := child.WithTrivia(ph.leading+child.leading, child.trailing+ph.trailing)
		updated = parent.withChildAt(index, wrapped)
	} else {
		updated = parent.withChildInserted(index, child)
	}
	return t.derive(rebuild(path, updated)), nil
}

// rebuild walks the path bottom-up, copying each ancestor with the new
// child. A nil replacement removes the target from its parent.
func rebuild(path []step, replacement *Node) *Node {
	cur := replacement
	for i := len(path) - 2; i >= 0; i-- {
		s := path[i]
		next := s.node.withChildAt(s.index, cur)
		cur = next
	}
	return cur
}
