// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package reconcile implements the clean up
// of the mutations inferred on a phylogenetic tree.
//
// Two kinds of artefacts are fixed.
// Immediate reversions,
// in which a mutation of a branch is undone
// in one of its descendant branches,
// are collapsed by moving the descendant
// to the parent of the reverted branch.
// Homoplasies,
// in which the same mutation is found
// in several children of the same node,
// are merged in a new node that holds
// the shared mutations.
//
// Both procedures are applied iteratively
// until no more changes are made,
// or a maximum number of iterations is reached.
package reconcile

import (
	"fmt"
	"log/slog"

	"github.com/js-arias/phyfix/tree"
)

// DefaultIterations is the default maximum number of iterations.
const DefaultIterations = 5

// Param is a collection of parameters
// for the reconciliation.
type Param struct {
	// Branch length of a single mutation.
	OneMutation float64

	// Maximum number of iterations.
	Iterations int
}

// Step is the number of changes made
// in a single iteration.
type Step struct {
	Reversions int
	Merges     int
}

// Result is the outcome of a reconciliation.
type Result struct {
	// Changes made at each iteration.
	Steps []Step

	// True if the last iteration
	// made no changes.
	Converged bool
}

// Iterations returns the number of iterations made.
func (r Result) Iterations() int {
	return len(r.Steps)
}

// Reversions returns the total number of reversions resolved.
func (r Result) Reversions() int {
	var n int
	for _, s := range r.Steps {
		n += s.Reversions
	}
	return n
}

// Merges returns the total number of homoplasy groups merged.
func (r Result) Merges() int {
	var n int
	for _, s := range r.Steps {
		n += s.Merges
	}
	return n
}

// Run fixes reversions and merges homoplasies
// until no more changes are made on the tree,
// or the maximum number of iterations is reached.
// In each iteration,
// reversions are fixed before merging homoplasies.
//
// If the iterations are exhausted
// while the tree is still changing,
// a warning is logged
// and the partially reconciled tree is kept.
// An error is only returned
// if an edit would break the tree.
func Run(t *tree.Tree, p Param, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if p.Iterations <= 0 {
		p.Iterations = DefaultIterations
	}
	if p.OneMutation < 0 {
		return Result{}, fmt.Errorf("invalid branch length for one mutation: %g", p.OneMutation)
	}
	if t.Name() != "" {
		logger = logger.With("tree", t.Name())
	}

	var res Result
	for i := range p.Iterations {
		rev, err := ResolveReversions(t, p, logger)
		if err != nil {
			return res, fmt.Errorf("iteration %d: %w", i+1, err)
		}
		mrg, err := MergeHomoplasies(t, p, logger)
		if err != nil {
			return res, fmt.Errorf("iteration %d: %w", i+1, err)
		}
		if err := t.Validate(); err != nil {
			return res, fmt.Errorf("iteration %d: %w", i+1, err)
		}

		res.Steps = append(res.Steps, Step{Reversions: rev, Merges: mrg})
		logger.Info("iteration",
			"step", i+1,
			"reversions", rev,
			"merges", mrg,
		)
		if rev == 0 && mrg == 0 {
			res.Converged = true
			return res, nil
		}
	}

	logger.Warn("reconciliation did not converge",
		"iterations", p.Iterations,
		"reversions", res.Reversions(),
		"merges", res.Merges(),
	)
	return res, nil
}
