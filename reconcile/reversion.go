// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package reconcile

import (
	"fmt"
	"log/slog"

	"github.com/js-arias/phyfix/mutation"
	"github.com/js-arias/phyfix/tree"
)

// A Reversion is a set of mutations in a grandchild branch
// that undo mutations of the child branch,
// below a given parent.
type Reversion struct {
	Parent     int
	Child      int
	Grandchild int

	// Mutations of the child branch
	// and the mutations in the grandchild
	// that revert them,
	// in the same order.
	ChildMuts      []mutation.Mutation
	GrandchildMuts []mutation.Mutation
}

type triple struct {
	parent, child, grandchild int
}

// DetectReversions returns the reversions found in the tree,
// grouped by each parent, child, grandchild triple.
// Only internal children and grandchildren are checked.
//
// Triples are returned with parents in preorder,
// and children and grandchildren
// in the order of the children lists.
func DetectReversions(t *tree.Tree) []Reversion {
	var revs []Reversion
	idx := make(map[triple]int)
	for _, p := range t.Preorder() {
		for _, c := range t.Children(p) {
			if t.IsTerm(c) {
				continue
			}
			cMuts := t.Relevant(c).Sorted()
			for _, g := range t.Children(c) {
				if t.IsTerm(g) {
					continue
				}
				gMuts := t.Relevant(g).Sorted()
				for _, cm := range cMuts {
					for _, gm := range gMuts {
						if !cm.Reverts(gm) {
							continue
						}
						key := triple{p, c, g}
						i, ok := idx[key]
						if !ok {
							i = len(revs)
							idx[key] = i
							revs = append(revs, Reversion{
								Parent:     p,
								Child:      c,
								Grandchild: g,
							})
						}
						revs[i].ChildMuts = append(revs[i].ChildMuts, cm)
						revs[i].GrandchildMuts = append(revs[i].GrandchildMuts, gm)
					}
				}
			}
		}
	}
	return revs
}

// ResolveReversions detects and fixes the reversions of a tree.
// For each reversion triple,
// the reverted mutations are removed from the grandchild,
// and the grandchild is moved as a child of the parent.
// If the grandchild has the same mutations as the parent,
// then the grandchild is discarded
// and its children moved to the parent.
//
// Only one edit is made for each triple.
// A triple is skipped if its parent is inside the subtree
// of a parent already edited in the same pass,
// so it will be checked again in the next pass.
//
// It returns the number of triples resolved.
func ResolveReversions(t *tree.Tree, p Param, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	revs := DetectReversions(t)
	touched := make(map[int]bool)
	n := 0
	for _, r := range revs {
		if isInTouched(t, r.Parent, touched) {
			logger.Debug("skip reversion",
				"parent", nodeLabel(t, r.Parent),
				"grandchild", nodeLabel(t, r.Grandchild),
			)
			continue
		}
		if err := resolve(t, r, p); err != nil {
			return n, err
		}
		logger.Debug("reversion",
			"parent", nodeLabel(t, r.Parent),
			"child", nodeLabel(t, r.Child),
			"grandchild", nodeLabel(t, r.Grandchild),
			"child-mutations", mutation.Join(r.ChildMuts),
			"reverted", mutation.Join(r.GrandchildMuts),
		)
		touched[r.Parent] = true
		n++
	}
	return n, nil
}

func resolve(t *tree.Tree, r Reversion, p Param) error {
	if t.Parent(r.Child) != r.Parent || t.Parent(r.Grandchild) != r.Child {
		return fmt.Errorf("%w: reversion on nodes %d-%d-%d: not a parent-child-grandchild chain", tree.ErrInvariant, r.Parent, r.Child, r.Grandchild)
	}

	gm := t.Relevant(r.Grandchild)
	for _, m := range r.GrandchildMuts {
		gm.Delete(m)
	}
	t.SetRelevant(r.Grandchild, gm)

	if err := t.RemoveChild(r.Child, r.Grandchild); err != nil {
		return err
	}

	if !gm.Equal(t.Relevant(r.Parent)) {
		t.SetLen(r.Grandchild, p.OneMutation*float64(gm.Len()))
		return t.AppendChild(r.Parent, r.Grandchild)
	}

	// the grandchild is discarded
	for _, d := range t.Children(r.Grandchild) {
		if err := t.Reparent(d, r.Parent); err != nil {
			return err
		}
	}
	return nil
}

// IsInTouched returns true if any node in the path
// from the root to the node
// (including the node)
// is in the touched set.
// A node removed from the tree
// by a previous edit
// is always taken as touched.
func isInTouched(t *tree.Tree, id int, touched map[int]bool) bool {
	if len(touched) == 0 {
		return false
	}
	path := t.Path(id)
	if path == nil {
		return true
	}
	for _, a := range path {
		if touched[a] {
			return true
		}
	}
	return false
}

func nodeLabel(t *tree.Tree, id int) string {
	if n := t.NodeName(id); n != "" {
		return n
	}
	return fmt.Sprintf("#%d", id)
}
