// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package draw

import (
	"image/color"
	"strings"
	"testing"

	"github.com/js-arias/phyfix/tree"
)

func TestCopyTree(t *testing.T) {
	s := `((a:0.002[&mutations="C1T,G2A"],b:0)x:0.001[&mutations="A5G"],c:0.003)root;`
	ts, err := tree.ReadNewick(strings.NewReader(s))
	if err != nil {
		t.Fatalf("unable to read tree: %v", err)
	}

	st := copyTree(ts[0], 0.001, 10)
	if st.taxSz != 4 {
		t.Errorf("label size: got %d, want %d", st.taxSz, 4)
	}
	if st.y != 3*yStep {
		t.Errorf("height: got %d, want %d", st.y, 3*yStep)
	}

	x := st.root.desc[0]
	a := x.desc[0]
	b := x.desc[1]
	tests := map[string]struct {
		n    *node
		x    float64
		muts int
	}{
		"root": {st.root, 10, 0},
		"x":    {x, 20, 1},
		"a":    {a, 40, 2},
		"b":    {b, 20, 0},
	}
	for name, test := range tests {
		if d := test.n.x - test.x; d > 1e-9 || d < -1e-9 {
			t.Errorf("node %s: x: got %g, want %g", name, test.n.x, test.x)
		}
		if test.n.muts != test.muts {
			t.Errorf("node %s: mutations: got %d, want %d", name, test.n.muts, test.muts)
		}
	}
	if b.color != color.Black {
		t.Errorf("node b: got color %v, want black", b.color)
	}

	var w strings.Builder
	if err := st.draw(&w, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := w.String()
	for _, tx := range []string{"<svg", ">a</text>", ">x</text>", ">root</text>"} {
		if !strings.Contains(out, tx) {
			t.Errorf("svg output: expecting %q", tx)
		}
	}
}
