// Package engine dispatches rules over syntax trees.
//
// Rules are registered explicitly into a Registry, keyed by the node kinds
// they inspect. Analyze performs one pre-order walk of a tree and, for each
// node, runs the rules registered for its kind in registration order before
// descending into the children. A rule that fails or panics is recorded as a
// RuleFault and the walk continues.
package engine
