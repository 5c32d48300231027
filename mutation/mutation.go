// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package mutation implements single nucleotide substitutions
// as inferred on the branches of a phylogenetic tree.
//
// A mutation is written in the usual notation
// of ancestral base,
// 1-based position in the alignment,
// and derived base,
// for example "G123A".
package mutation

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Mutation is a single nucleotide substitution
// at a given position.
type Mutation struct {
	Anc byte // ancestral base
	Pos int  // 1-based position
	Der byte // derived base
}

// Valid nucleotide codes,
// including IUPAC ambiguity codes
// and gaps.
const bases = "ACGTRYSWKMBDHVN-"

// Unambiguous nucleotides.
const nucleotides = "ACGT"

// Parse reads a mutation
// in the form <ancestral><position><derived>.
func Parse(s string) (Mutation, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 3 {
		return Mutation{}, fmt.Errorf("invalid mutation %q", s)
	}

	anc := s[0]
	der := s[len(s)-1]
	if strings.IndexByte(bases, anc) < 0 {
		return Mutation{}, fmt.Errorf("invalid mutation %q: unknown ancestral base %q", s, anc)
	}
	if strings.IndexByte(bases, der) < 0 {
		return Mutation{}, fmt.Errorf("invalid mutation %q: unknown derived base %q", s, der)
	}

	pos, err := strconv.Atoi(s[1 : len(s)-1])
	if err != nil {
		return Mutation{}, fmt.Errorf("invalid mutation %q: %v", s, err)
	}
	if pos < 1 {
		return Mutation{}, fmt.Errorf("invalid mutation %q: position must be positive", s)
	}

	return Mutation{Anc: anc, Pos: pos, Der: der}, nil
}

// ParseList reads a list of mutations
// separated by commas or spaces.
// Malformed tokens are not returned as mutations,
// instead they are returned in a separate list.
func ParseList(s string) (muts []Mutation, bad []string) {
	f := func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	}
	for _, tk := range strings.FieldsFunc(s, f) {
		m, err := Parse(tk)
		if err != nil {
			bad = append(bad, tk)
			continue
		}
		muts = append(muts, m)
	}
	return muts, bad
}

// IsRelevant returns true if both bases of the mutation
// are unambiguous nucleotides.
func (m Mutation) IsRelevant() bool {
	return strings.IndexByte(nucleotides, m.Anc) >= 0 && strings.IndexByte(nucleotides, m.Der) >= 0
}

// Reverts returns true if the other mutation
// restores the base changed by m
// (i.e., it is at the same position
// with the bases swapped).
func (m Mutation) Reverts(other Mutation) bool {
	return m.Pos == other.Pos && m.Anc == other.Der && m.Der == other.Anc
}

// String returns the mutation in the standard notation.
func (m Mutation) String() string {
	return string(m.Anc) + strconv.Itoa(m.Pos) + string(m.Der)
}

// Compare compares two mutations,
// first by position,
// then by the ancestral base,
// and then by the derived base.
func Compare(a, b Mutation) int {
	if c := cmp.Compare(a.Pos, b.Pos); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Anc, b.Anc); c != 0 {
		return c
	}
	return cmp.Compare(a.Der, b.Der)
}
