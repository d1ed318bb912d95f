package tree

import (
	"errors"
	"fmt"
)

var (
	// ErrNodeNotFound is wrapped by StructuralError when a target node is not
	// part of the tree an operation was given.
	ErrNodeNotFound = errors.New("node not present in tree")
	// ErrRootRemoval is returned when RemoveNode targets the root.
	ErrRootRemoval = errors.New("cannot remove the root node")
	// ErrBadIndex is returned when InsertChild gets an index out of range.
	ErrBadIndex = errors.New("child index out of range")
	// ErrLeafParent is returned when a child is inserted under a leaf.
	ErrLeafParent = errors.New("leaf nodes have no children")
)

// StructuralError reports an operation that referenced a node the tree does
// not contain, or otherwise violated the tree's shape. It indicates a bug in
// the caller and is never recovered silently.
type StructuralError struct {
	Op   string // "replace", "remove", "insert"
	Tree string // tree name
	Node *Node
	Err  error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("tree: %s in %s: %v: %v", e.Op, e.Tree, e.Node, e.Err)
}

func (e *StructuralError) Unwrap() error { return e.Err }

func structural(op string, t *Tree, n *Node, err error) error {
	name := "<nil tree>"
	if t != nil {
		name = t.name
	}
	return &StructuralError{Op: op, Tree: name, Node: n, Err: err}
}
