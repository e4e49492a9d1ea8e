// Package bktree implements a Burkhard-Keller tree over 64-bit
// perceptual hashes under Hamming distance, with triangle-inequality
// pruning for range queries.
//
// Nodes live in a flat arena (a growable slice) rather than a graph of
// individually-allocated pointers: edges are distance labels (1..64)
// from a node to its children, so each node only needs a small map from
// label to child index. This keeps Reset to a single slice truncation
// and avoids pointer-chasing during traversal.
package bktree

import "github.com/SecurityLab-UCD/gamecov/hash"

// noChild marks the absence of a child edge.
const noChild = -1

type node struct {
	val      uint64
	children map[int]int32 // edge label (Hamming distance) -> child index
}

// Tree is a BK-tree over uint64 hashes. Create one with New; the zero
// value is not ready to use.
type Tree struct {
	nodes []node
	root  int32
}

// New returns an empty BK-tree.
func New() *Tree {
	return &Tree{root: noChild}
}

// Len returns the number of distinct values stored in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Insert adds x to the tree. Inserting a value already present is a
// no-op.
func (t *Tree) Insert(x uint64) {
	if t.root == noChild {
		t.root = t.newNode(x)
		return
	}
	cur := t.root
	for {
		n := &t.nodes[cur]
		d := hash.Hamming(x, n.val)
		if d == 0 {
			return // exact duplicate.
		}
		child, ok := n.children[d]
		if !ok {
			idx := t.newNode(x)
			n = &t.nodes[cur] // newNode may have reallocated the arena.
			if n.children == nil {
				n.children = make(map[int]int32)
			}
			n.children[d] = idx
			return
		}
		cur = child
	}
}

func (t *Tree) newNode(x uint64) int32 {
	t.nodes = append(t.nodes, node{val: x})
	return int32(len(t.nodes) - 1)
}

// AnyWithin reports whether the tree contains any value within Hamming
// distance r of x. r < 0 always returns false; r >= 64 returns true for
// any non-empty tree.
func (t *Tree) AnyWithin(x uint64, r int) bool {
	if r < 0 || t.root == noChild {
		return false
	}
	found := false
	t.walk(x, r, func(int32) bool {
		found = true
		return false // stop.
	})
	return found
}

// FindAllWithin returns every value in the tree within Hamming distance
// r of x. The order of results is unspecified.
func (t *Tree) FindAllWithin(x uint64, r int) []uint64 {
	if r < 0 || t.root == noChild {
		return nil
	}
	var out []uint64
	t.walk(x, r, func(idx int32) bool {
		out = append(out, t.nodes[idx].val)
		return true // keep going.
	})
	return out
}

// walk performs the depth-first, triangle-inequality-pruned traversal
// shared by AnyWithin and FindAllWithin, using an explicit stack instead
// of recursion (traversal depth can reach the hash width). visit is
// called for every node within distance r of x, in unspecified order; it
// returns false to stop the walk early.
func (t *Tree) walk(x uint64, r int, visit func(idx int32) bool) {
	if t.root == noChild {
		return
	}
	stack := []int32{t.root}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &t.nodes[idx]
		d := hash.Hamming(x, n.val)
		if d <= r {
			if !visit(idx) {
				return
			}
		}
		lo, hi := d-r, d+r
		for label, child := range n.children {
			if label >= lo && label <= hi {
				stack = append(stack, child)
			}
		}
	}
}

// Reset discards every node, returning the tree to its empty state. The
// underlying arena is truncated, not individually freed.
func (t *Tree) Reset() {
	t.nodes = t.nodes[:0]
	t.root = noChild
}
