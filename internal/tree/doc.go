// Package tree is the immutable syntax tree every analysis and rewrite
// operates on.
//
// A Node is a tagged variant over Kind. Leaves carry token text, inner nodes
// carry an ordered child list, and every node may carry leading and trailing
// trivia so that Render reproduces the source byte for byte.
//
// Nodes never change once they belong to a Tree. Replace, ReplaceMany,
// RemoveNode and InsertChild return a new Tree: the ancestors of the edited
// node are copied, everything else is shared by pointer with the old tree.
// Nodes are identified by pointer, so a node passed to one of these
// operations must come from the tree it is applied to; anything else is a
// StructuralError.
//
// Spans are assigned once, when New lays out a freshly built tree. A
// rewritten tree keeps the spans of the shared nodes, i.e. positions in the
// text of the first generation; Relayout produces a tree whose spans match
// its current text.
package tree
