// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package reconcile

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/js-arias/phyfix/mutation"
	"github.com/js-arias/phyfix/tree"
)

// A Homoplasy is a set of mutations
// shared by two or more children of the same node.
type Homoplasy struct {
	Node      int
	Children  []int
	Mutations []mutation.Mutation
}

// DetectHomoplasies returns the mutations shared
// by the children of each internal node.
// Mutations shared by the same set of children
// are grouped together.
//
// Groups are sorted by the number of shared mutations,
// from the largest to the smallest,
// and ties are kept in the order in which they were found
// (nodes in preorder
// and mutations in position order).
func DetectHomoplasies(t *tree.Tree) []Homoplasy {
	var hs []Homoplasy
	for _, n := range t.Preorder() {
		if t.IsTerm(n) {
			continue
		}

		shared := make(map[mutation.Mutation][]int)
		var muts []mutation.Mutation
		for _, c := range t.Children(n) {
			for m := range t.Relevant(c) {
				if _, ok := shared[m]; !ok {
					muts = append(muts, m)
				}
				shared[m] = append(shared[m], c)
			}
		}
		slices.SortFunc(muts, mutation.Compare)

		idx := make(map[string]int)
		for _, m := range muts {
			children := shared[m]
			if len(children) < 2 {
				continue
			}

			key := groupKey(children)
			i, ok := idx[key]
			if !ok {
				i = len(hs)
				idx[key] = i
				hs = append(hs, Homoplasy{
					Node:     n,
					Children: children,
				})
			}
			hs[i].Mutations = append(hs[i].Mutations, m)
		}
	}

	slices.SortStableFunc(hs, func(a, b Homoplasy) int {
		return len(b.Mutations) - len(a.Mutations)
	})
	return hs
}

// GroupKey returns a key for a set of children.
// As children are always collected
// in the order of the children list of the node,
// the key is independent of the mutation.
func groupKey(children []int) string {
	str := make([]string, 0, len(children))
	for _, c := range children {
		str = append(str, strconv.Itoa(c))
	}
	return strings.Join(str, ",")
}

// MergeHomoplasies detects and merges the homoplasies of a tree.
// For each group of children sharing mutations,
// a new node is created with the shared mutations,
// and the children are moved into the new node
// with the shared mutations removed.
// A non-terminal child without mutations left is discarded,
// and its children are moved into the new node.
//
// A child is only merged once in a pass:
// groups with a child already merged are skipped,
// as well as groups of a node discarded in the same pass.
//
// It returns the number of groups merged.
func MergeHomoplasies(t *tree.Tree, p Param, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	hs := DetectHomoplasies(t)
	touched := make(map[int]bool)
	n := 0
	for _, h := range hs {
		if slices.ContainsFunc(h.Children, func(c int) bool { return touched[c] }) {
			continue
		}
		if !t.Attached(h.Node) {
			continue
		}

		logger.Debug("merge",
			"node", nodeLabel(t, h.Node),
			"children", childLabels(t, h.Children),
			"shared", mutation.Join(h.Mutations),
		)
		if err := merge(t, h, p); err != nil {
			return n, err
		}
		for _, c := range h.Children {
			touched[c] = true
		}
		n++
	}
	return n, nil
}

func merge(t *tree.Tree, h Homoplasy, p Param) error {
	for _, c := range h.Children {
		if err := t.RemoveChild(h.Node, c); err != nil {
			return err
		}
	}

	shared := mutation.NewSet(h.Mutations...)
	nn := t.NewNode("", p.OneMutation*float64(len(h.Mutations)))
	t.SetMutations(nn, h.Mutations)

	for _, c := range h.Children {
		left := t.Relevant(c).Difference(shared)
		if left.Len() > 0 || t.IsTerm(c) {
			t.SetRelevant(c, left)
			t.SetLen(c, p.OneMutation*float64(left.Len()))
			if err := t.AppendChild(nn, c); err != nil {
				return err
			}
			continue
		}

		// the child is discarded
		for _, d := range t.Children(c) {
			if err := t.Reparent(d, nn); err != nil {
				return err
			}
		}
	}

	if err := t.AppendChild(h.Node, nn); err != nil {
		return fmt.Errorf("while merging children of node %d: %w", h.Node, err)
	}
	return nil
}

func childLabels(t *tree.Tree, ids []int) string {
	str := make([]string, 0, len(ids))
	for _, id := range ids {
		str = append(str, fmt.Sprintf("%s (%d terms)", nodeLabel(t, id), len(t.Terms(id))))
	}
	return strings.Join(str, ", ")
}
