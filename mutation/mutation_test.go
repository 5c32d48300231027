// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package mutation_test

import (
	"reflect"
	"testing"

	"github.com/js-arias/phyfix/mutation"
)

func TestParse(t *testing.T) {
	tests := map[string]struct {
		in   string
		want mutation.Mutation
		err  bool
	}{
		"simple":     {in: "G123A", want: mutation.Mutation{Anc: 'G', Pos: 123, Der: 'A'}},
		"lower case": {in: " c5t ", want: mutation.Mutation{Anc: 'C', Pos: 5, Der: 'T'}},
		"gap":        {in: "A7-", want: mutation.Mutation{Anc: 'A', Pos: 7, Der: '-'}},
		"ambiguous":  {in: "N10A", want: mutation.Mutation{Anc: 'N', Pos: 10, Der: 'A'}},
		"short":      {in: "G1", err: true},
		"no number":  {in: "GXA", err: true},
		"zero":       {in: "G0A", err: true},
		"bad base":   {in: "Z10A", err: true},
	}

	for name, test := range tests {
		m, err := mutation.Parse(test.in)
		if test.err {
			if err == nil {
				t.Errorf("%s: expecting error, got %v", name, m)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
			continue
		}
		if m != test.want {
			t.Errorf("%s: got %v, want %v", name, m, test.want)
		}
	}
}

func TestParseList(t *testing.T) {
	muts, bad := mutation.ParseList("G1A, A2G;C10T bogus T3")
	want := []mutation.Mutation{
		{Anc: 'G', Pos: 1, Der: 'A'},
		{Anc: 'A', Pos: 2, Der: 'G'},
		{Anc: 'C', Pos: 10, Der: 'T'},
	}
	if !reflect.DeepEqual(muts, want) {
		t.Errorf("mutations: got %v, want %v", muts, want)
	}
	if wb := []string{"bogus", "T3"}; !reflect.DeepEqual(bad, wb) {
		t.Errorf("malformed: got %v, want %v", bad, wb)
	}
}

func TestRelevant(t *testing.T) {
	tests := map[string]bool{
		"G1A": true,
		"C2T": true,
		"N3A": false,
		"A4N": false,
		"A5-": false,
		"R6G": false,
	}
	for s, want := range tests {
		m, err := mutation.Parse(s)
		if err != nil {
			t.Fatalf("unable to parse %q: %v", s, err)
		}
		if got := m.IsRelevant(); got != want {
			t.Errorf("%s: relevant: got %v, want %v", s, got, want)
		}
	}
}

func TestReverts(t *testing.T) {
	g1a := mutation.Mutation{Anc: 'G', Pos: 1, Der: 'A'}
	tests := map[string]struct {
		other mutation.Mutation
		want  bool
	}{
		"reversion":      {other: mutation.Mutation{Anc: 'A', Pos: 1, Der: 'G'}, want: true},
		"other position": {other: mutation.Mutation{Anc: 'A', Pos: 2, Der: 'G'}},
		"other base":     {other: mutation.Mutation{Anc: 'A', Pos: 1, Der: 'C'}},
		"same":           {other: g1a},
	}
	for name, test := range tests {
		if got := g1a.Reverts(test.other); got != test.want {
			t.Errorf("%s: got %v, want %v", name, got, test.want)
		}
	}
}

func TestSet(t *testing.T) {
	muts, _ := mutation.ParseList("C12T,A1G,C10T,A2G,C11T,A1G")
	s := mutation.NewSet(muts...)
	if s.Len() != 5 {
		t.Errorf("len: got %d, want %d", s.Len(), 5)
	}
	if str := s.String(); str != "A1G,A2G,C10T,C11T,C12T" {
		t.Errorf("string: got %q, want %q", str, "A1G,A2G,C10T,C11T,C12T")
	}

	rm, _ := mutation.ParseList("A1G,A2G")
	d := s.Difference(mutation.NewSet(rm...))
	if str := d.String(); str != "C10T,C11T,C12T" {
		t.Errorf("difference: got %q, want %q", str, "C10T,C11T,C12T")
	}
	if s.Len() != 5 {
		t.Errorf("difference modifies the receiver")
	}

	c := d.Clone()
	c.Delete(mutation.Mutation{Anc: 'C', Pos: 10, Der: 'T'})
	if c.Equal(d) {
		t.Errorf("clone: modification on the clone changes the original set")
	}
	c.Add(mutation.Mutation{Anc: 'C', Pos: 10, Der: 'T'})
	if !c.Equal(d) {
		t.Errorf("equal: got %v, want %v", c, d)
	}

	amb, _ := mutation.ParseList("N1A,G2A,A3-")
	if r := mutation.Relevant(amb); r.String() != "G2A" {
		t.Errorf("relevant: got %q, want %q", r.String(), "G2A")
	}
}
