// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package tree implements rooted phylogenetic trees
// with mutations assigned to each branch.
//
// Nodes are stored in an arena
// and identified by an integer ID,
// so a node keeps its identity
// when it is moved to a different parent.
// The root is always the node with ID 0.
package tree

import (
	"errors"
	"fmt"
	"slices"

	"github.com/js-arias/phyfix/mutation"
)

// ErrInvariant is returned when an edit
// would break the structure of the tree.
var ErrInvariant = errors.New("tree invariant violation")

// A Tree is a rooted phylogenetic tree.
type Tree struct {
	name  string
	nodes []*node
}

type node struct {
	id     int
	name   string
	length float64

	muts     []mutation.Mutation
	relevant mutation.Set

	parent   int
	children []int
}

// New creates a new tree
// with a single root node.
func New() *Tree {
	t := &Tree{}
	t.nodes = append(t.nodes, &node{
		id:       0,
		parent:   -1,
		relevant: mutation.Set{},
	})
	return t
}

// Add adds a new node as a child of the parent node.
// It returns the ID of the new node.
func (t *Tree) Add(parent int, name string, length float64) (int, error) {
	id := t.NewNode(name, length)
	if err := t.AppendChild(parent, id); err != nil {
		return -1, err
	}
	return id, nil
}

// NewNode creates a new node
// that is not attached to the tree.
// It returns the ID of the new node.
func (t *Tree) NewNode(name string, length float64) int {
	n := &node{
		id:       len(t.nodes),
		name:     name,
		length:   length,
		parent:   -1,
		relevant: mutation.Set{},
	}
	t.nodes = append(t.nodes, n)
	return n.id
}

// Name returns the name of the tree.
func (t *Tree) Name() string {
	return t.name
}

// SetName sets the name of the tree.
func (t *Tree) SetName(name string) {
	t.name = name
}

// Root returns the ID of the root node.
func (t *Tree) Root() int {
	return 0
}

func (t *Tree) node(id int) (*node, error) {
	if id < 0 || id >= len(t.nodes) {
		return nil, fmt.Errorf("%w: unknown node %d", ErrInvariant, id)
	}
	return t.nodes[id], nil
}

// Attached returns true if the node is reachable
// from the root.
func (t *Tree) Attached(id int) bool {
	if id < 0 || id >= len(t.nodes) {
		return false
	}
	for id != 0 {
		id = t.nodes[id].parent
		if id < 0 {
			return false
		}
	}
	return true
}

// Children returns the IDs of the children of a node.
func (t *Tree) Children(id int) []int {
	return slices.Clone(t.nodes[id].children)
}

// IsRoot returns true if the node is the root of the tree.
func (t *Tree) IsRoot(id int) bool {
	return id == 0
}

// IsTerm returns true if the node is a terminal
// (i.e., it has no children).
func (t *Tree) IsTerm(id int) bool {
	return len(t.nodes[id].children) == 0
}

// Len returns the length of the branch
// that ends in the node.
func (t *Tree) Len(id int) float64 {
	return t.nodes[id].length
}

// SetLen sets the length of the branch
// that ends in the node.
func (t *Tree) SetLen(id int, length float64) {
	if length < 0 {
		length = 0
	}
	t.nodes[id].length = length
}

// Mutations returns the mutations
// assigned to the branch that ends in the node.
func (t *Tree) Mutations(id int) []mutation.Mutation {
	return slices.Clone(t.nodes[id].muts)
}

// SetMutations sets the mutations
// of the branch that ends in the node.
// It also resets the relevant mutations of the node.
func (t *Tree) SetMutations(id int, muts []mutation.Mutation) {
	n := t.nodes[id]
	n.muts = slices.Clone(muts)
	n.relevant = mutation.Relevant(muts)
}

// NodeName returns the name of a node.
func (t *Tree) NodeName(id int) string {
	return t.nodes[id].name
}

// SetNodeName sets the name of a node.
func (t *Tree) SetNodeName(id int, name string) {
	t.nodes[id].name = name
}

// NodeByName returns the ID of an attached node
// with the given name.
func (t *Tree) NodeByName(name string) (int, bool) {
	if name == "" {
		return -1, false
	}
	for _, id := range t.Preorder() {
		if t.nodes[id].name == name {
			return id, true
		}
	}
	return -1, false
}

// Parent returns the ID of the parent of a node.
// It returns -1 for the root
// or a detached node.
func (t *Tree) Parent(id int) int {
	return t.nodes[id].parent
}

// Relevant returns a copy of the relevant mutations
// (i.e., between unambiguous nucleotides)
// of the branch that ends in the node.
func (t *Tree) Relevant(id int) mutation.Set {
	return t.nodes[id].relevant.Clone()
}

// SetRelevant sets the relevant mutations
// of the branch that ends in the node.
func (t *Tree) SetRelevant(id int, s mutation.Set) {
	t.nodes[id].relevant = s.Clone()
}
