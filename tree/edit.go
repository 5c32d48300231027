// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"fmt"
	"slices"
)

// RemoveChild removes a child from its parent.
// The child is detached from the tree
// but keeps its own descendants.
func (t *Tree) RemoveChild(parent, child int) error {
	p, err := t.node(parent)
	if err != nil {
		return err
	}
	c, err := t.node(child)
	if err != nil {
		return err
	}

	i := slices.Index(p.children, child)
	if i < 0 || c.parent != parent {
		return fmt.Errorf("%w: node %d is not a child of node %d", ErrInvariant, child, parent)
	}
	p.children = slices.Delete(p.children, i, i+1)
	c.parent = -1
	return nil
}

// AppendChild adds a detached node
// as the last child of a parent node.
func (t *Tree) AppendChild(parent, child int) error {
	p, err := t.node(parent)
	if err != nil {
		return err
	}
	c, err := t.node(child)
	if err != nil {
		return err
	}

	if child == 0 {
		return fmt.Errorf("%w: root node can not be a child", ErrInvariant)
	}
	if c.parent >= 0 {
		return fmt.Errorf("%w: node %d already has parent %d", ErrInvariant, child, c.parent)
	}
	if slices.Contains(p.children, child) {
		return fmt.Errorf("%w: node %d is already a child of node %d", ErrInvariant, child, parent)
	}
	if parent == child || t.IsDescendant(parent, child) {
		return fmt.Errorf("%w: adding node %d to node %d creates a cycle", ErrInvariant, child, parent)
	}

	p.children = append(p.children, child)
	c.parent = parent
	return nil
}

// Reparent moves a node
// (and all of its descendants)
// to a new parent.
func (t *Tree) Reparent(child, parent int) error {
	c, err := t.node(child)
	if err != nil {
		return err
	}
	if c.parent < 0 {
		return fmt.Errorf("%w: node %d is not in the tree", ErrInvariant, child)
	}
	if parent == child || t.IsDescendant(parent, child) {
		return fmt.Errorf("%w: moving node %d to node %d creates a cycle", ErrInvariant, child, parent)
	}
	if _, err := t.node(parent); err != nil {
		return err
	}

	if err := t.RemoveChild(c.parent, child); err != nil {
		return err
	}
	return t.AppendChild(parent, child)
}

// Validate checks that the tree is a valid rooted tree:
// every attached node has a single parent,
// there are no cycles,
// and no node is repeated in a children list.
func (t *Tree) Validate() error {
	if t.nodes[0].parent != -1 {
		return fmt.Errorf("%w: root has parent %d", ErrInvariant, t.nodes[0].parent)
	}

	seen := make(map[int]bool, len(t.nodes))
	stack := []int{0}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			return fmt.Errorf("%w: node %d reached twice", ErrInvariant, id)
		}
		seen[id] = true

		for _, c := range t.nodes[id].children {
			if c < 0 || c >= len(t.nodes) {
				return fmt.Errorf("%w: unknown node %d", ErrInvariant, c)
			}
			if p := t.nodes[c].parent; p != id {
				return fmt.Errorf("%w: node %d is a child of %d, but its parent is %d", ErrInvariant, c, id, p)
			}
			stack = append(stack, c)
		}
	}
	return nil
}
