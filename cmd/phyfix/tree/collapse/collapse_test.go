// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package collapse

import (
	"reflect"
	"strings"
	"testing"

	"github.com/js-arias/phyfix/tree"
)

func TestCollapseTrees(t *testing.T) {
	in := `((a:2,b:2)x:0,c:4)one;
((d:2,e:2)y:2,f:4)two;
`
	ts, err := tree.ReadNewick(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unable to read trees: %v", err)
	}

	got := collapseTrees(ts, tree.DefaultCollapse, 2)
	if want := []int{1, 0}; !reflect.DeepEqual(got, want) {
		t.Errorf("collapsed: got %v, want %v", got, want)
	}

	var w strings.Builder
	if err := writeTrees(&w, ts, tree.NewickOptions{}); err != nil {
		t.Fatalf("unable to write trees: %v", err)
	}
	want := `(c:2.00000000,a:1.00000000,b:1.00000000)one;
((d:1.00000000,e:1.00000000)y:1.00000000,f:2.00000000)two;
`
	if w.String() != want {
		t.Errorf("trees: got %q, want %q", w.String(), want)
	}
}
