package tree

// Program is the ordered set of trees analysed together, one per file.
type Program []*Tree

// With returns a copy of p in which the tree at i is replaced.
func (p Program) With(i int, t *Tree) Program {
	out := make(Program, len(p))
	copy(out, p)
	out[i] = t
	return out
}
