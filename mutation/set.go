// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package mutation

import (
	"slices"
	"strings"
)

// Set is a set of mutations.
type Set map[Mutation]bool

// NewSet returns a set with the indicated mutations.
func NewSet(muts ...Mutation) Set {
	s := make(Set, len(muts))
	for _, m := range muts {
		s[m] = true
	}
	return s
}

// Relevant returns a set with the mutations
// between unambiguous nucleotides.
func Relevant(muts []Mutation) Set {
	s := make(Set, len(muts))
	for _, m := range muts {
		if !m.IsRelevant() {
			continue
		}
		s[m] = true
	}
	return s
}

// Add adds a mutation to the set.
func (s Set) Add(m Mutation) {
	s[m] = true
}

// Clone returns a copy of the set.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for m := range s {
		c[m] = true
	}
	return c
}

// Delete removes a mutation from the set.
func (s Set) Delete(m Mutation) {
	delete(s, m)
}

// Difference returns a new set
// with the mutations of s
// that are not in o.
func (s Set) Difference(o Set) Set {
	d := make(Set, len(s))
	for m := range s {
		if o[m] {
			continue
		}
		d[m] = true
	}
	return d
}

// Equal returns true if both sets
// have the same mutations.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for m := range s {
		if !o[m] {
			return false
		}
	}
	return true
}

// Has returns true if the mutation is in the set.
func (s Set) Has(m Mutation) bool {
	return s[m]
}

// Len returns the number of mutations in the set.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the mutations of the set
// sorted by position.
func (s Set) Sorted() []Mutation {
	ls := make([]Mutation, 0, len(s))
	for m := range s {
		ls = append(ls, m)
	}
	slices.SortFunc(ls, Compare)
	return ls
}

// String returns the sorted mutations
// separated by commas.
func (s Set) String() string {
	return Join(s.Sorted())
}

// Join returns a list of mutations
// as a string separated by commas.
func Join(muts []Mutation) string {
	str := make([]string, 0, len(muts))
	for _, m := range muts {
		str = append(str, m.String())
	}
	return strings.Join(str, ",")
}
