// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import "slices"

// DefaultCollapse is the default threshold
// used to collapse short internal branches.
const DefaultCollapse = 1e-7

// Collapse removes the internal branches
// with a length smaller than a threshold.
// The children of a collapsed node
// are appended to the children of its parent,
// and the length and mutations of the collapsed branch
// are added to the branch of each child.
// The root and the terminals are never collapsed.
//
// Nodes are collapsed in level order.
// It returns the number of collapsed nodes.
func (t *Tree) Collapse(threshold float64) int {
	var targets []int
	for _, id := range t.levelOrder() {
		n := t.nodes[id]
		if id == 0 || len(n.children) == 0 {
			continue
		}
		if n.length < threshold {
			targets = append(targets, id)
		}
	}

	for _, id := range targets {
		n := t.nodes[id]
		p := t.nodes[n.parent]
		i := slices.Index(p.children, id)
		p.children = slices.Delete(p.children, i, i+1)

		for _, c := range n.children {
			cn := t.nodes[c]
			cn.length += n.length
			cn.muts = append(slices.Clone(n.muts), cn.muts...)
			for _, m := range n.relevant.Sorted() {
				cn.relevant.Add(m)
			}
			cn.parent = p.id
			p.children = append(p.children, c)
		}
		n.children = nil
		n.parent = -1
	}
	return len(targets)
}

// Scale multiplies all branch lengths
// of the tree by a factor.
func (t *Tree) Scale(factor float64) {
	for _, id := range t.Preorder() {
		t.SetLen(id, t.nodes[id].length*factor)
	}
}

func (t *Tree) levelOrder() []int {
	ids := []int{0}
	for i := 0; i < len(ids); i++ {
		ids = append(ids, t.nodes[ids[i]].children...)
	}
	return ids
}
