// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"fmt"
	"slices"
)

// Preorder returns the IDs of the nodes attached to the tree
// in preorder
// (a node always before its descendants,
// and siblings in the order of the children list).
func (t *Tree) Preorder() []int {
	return t.preorder(0)
}

func (t *Tree) preorder(id int) []int {
	var ids []int
	stack := []int{id}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ids = append(ids, id)

		ch := t.nodes[id].children
		for i := len(ch) - 1; i >= 0; i-- {
			stack = append(stack, ch[i])
		}
	}
	return ids
}

// Terms returns the IDs of the terminal nodes
// descendant of a node.
// If the node is a terminal,
// it returns the node itself.
func (t *Tree) Terms(id int) []int {
	var terms []int
	for _, d := range t.preorder(id) {
		if t.IsTerm(d) {
			terms = append(terms, d)
		}
	}
	return terms
}

// TermNames returns the sorted names
// of the terminals of the tree.
func (t *Tree) TermNames() []string {
	var names []string
	for _, id := range t.Terms(0) {
		if n := t.nodes[id].name; n != "" {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names
}

// Path returns the IDs of the nodes
// from the root to the indicated node
// (both included).
// If the node is not attached to the tree,
// it returns nil.
func (t *Tree) Path(id int) []int {
	if !t.Attached(id) {
		return nil
	}

	var path []int
	for ; id >= 0; id = t.nodes[id].parent {
		path = append(path, id)
	}
	slices.Reverse(path)
	return path
}

// IsDescendant returns true if the node
// is a descendant of the indicated ancestor.
// A node is not a descendant of itself.
func (t *Tree) IsDescendant(id, anc int) bool {
	if id < 0 || id >= len(t.nodes) {
		return false
	}
	for p := t.nodes[id].parent; p >= 0; p = t.nodes[p].parent {
		if p == anc {
			return true
		}
	}
	return false
}

// MRCA returns the most recent common ancestor
// of a set of nodes.
// The MRCA of a single node is the node itself.
func (t *Tree) MRCA(ids ...int) (int, error) {
	if len(ids) == 0 {
		return -1, fmt.Errorf("mrca: empty node set")
	}

	var mrca []int
	for i, id := range ids {
		path := t.Path(id)
		if path == nil {
			return -1, fmt.Errorf("mrca: node %d is not in the tree", id)
		}
		if i == 0 {
			mrca = path
			continue
		}

		j := 0
		for j < len(mrca) && j < len(path) && mrca[j] == path[j] {
			j++
		}
		mrca = mrca[:j]
	}
	return mrca[len(mrca)-1], nil
}
