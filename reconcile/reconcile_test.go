// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package reconcile_test

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/js-arias/phyfix/reconcile"
	"github.com/js-arias/phyfix/tree"
)

const oneMut = 0.001

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func readTree(t testing.TB, s string) *tree.Tree {
	t.Helper()

	ts, err := tree.ReadNewick(strings.NewReader(s))
	if err != nil {
		t.Fatalf("unable to read tree: %v", err)
	}
	return ts[0]
}

func nodeID(t testing.TB, tr *tree.Tree, name string) int {
	t.Helper()

	id, ok := tr.NodeByName(name)
	if !ok {
		t.Fatalf("node %q not found", name)
	}
	return id
}

func childNames(tr *tree.Tree, id int) []string {
	var ns []string
	for _, c := range tr.Children(id) {
		ns = append(ns, tr.NodeName(c))
	}
	return ns
}

func termNames(tr *tree.Tree, id int) []string {
	var ns []string
	for _, c := range tr.Terms(id) {
		if tr.NodeName(c) == "" {
			continue
		}
		ns = append(ns, tr.NodeName(c))
	}
	slices.Sort(ns)
	return ns
}

// MutationCount returns the number of times each mutation
// is found in the branches of the tree.
func mutationCount(tr *tree.Tree) map[string]int {
	c := make(map[string]int)
	for _, id := range tr.Preorder() {
		for m := range tr.Relevant(id) {
			c[m.String()]++
		}
	}
	return c
}

func newick(t testing.TB, tr *tree.Tree) string {
	t.Helper()

	var w bytes.Buffer
	if err := tr.Newick(&w, tree.NewickOptions{Mutations: true}); err != nil {
		t.Fatalf("unable to write tree: %v", err)
	}
	return w.String()
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

const reversionTree = `(
	(
		(g1:0.1,g2:0.1)G:0.005[&mutations="A1G,A2G,C10T,C11T,C12T"],
		c1:0.1
	)C:0.002[&mutations="G1A,G2A"],
	o:0.1
)P;`

func TestDetectReversions(t *testing.T) {
	tr := readTree(t, reversionTree)

	revs := reconcile.DetectReversions(tr)
	if len(revs) != 1 {
		t.Fatalf("reversions: got %d triples, want %d", len(revs), 1)
	}
	r := revs[0]
	if r.Parent != nodeID(t, tr, "P") || r.Child != nodeID(t, tr, "C") || r.Grandchild != nodeID(t, tr, "G") {
		t.Errorf("triple: got %d-%d-%d", r.Parent, r.Child, r.Grandchild)
	}
	if len(r.GrandchildMuts) != 2 || len(r.ChildMuts) != 2 {
		t.Errorf("mutations: got %v and %v, want two pairs", r.ChildMuts, r.GrandchildMuts)
	}
	for i, m := range r.ChildMuts {
		if !m.Reverts(r.GrandchildMuts[i]) {
			t.Errorf("mutations: %v is not reverted by %v", m, r.GrandchildMuts[i])
		}
	}
}

func TestResolveReversions(t *testing.T) {
	tr := readTree(t, reversionTree)
	before := mutationCount(tr)

	n, err := reconcile.ResolveReversions(tr, reconcile.Param{OneMutation: oneMut}, discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("resolved: got %d, want %d", n, 1)
	}
	if err := tr.Validate(); err != nil {
		t.Fatalf("invalid tree: %v", err)
	}

	p := nodeID(t, tr, "P")
	c := nodeID(t, tr, "C")
	g := nodeID(t, tr, "G")

	// the grandchild is attached once
	// even if several positions are reverted
	if got, want := childNames(tr, p), []string{"C", "o", "G"}; !reflect.DeepEqual(got, want) {
		t.Errorf("parent children: got %v, want %v", got, want)
	}
	if got, want := childNames(tr, c), []string{"c1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("child children: got %v, want %v", got, want)
	}
	if got, want := tr.Relevant(g).String(), "C10T,C11T,C12T"; got != want {
		t.Errorf("grandchild mutations: got %q, want %q", got, want)
	}
	if got, want := tr.Relevant(c).String(), "G1A,G2A"; got != want {
		t.Errorf("child mutations: got %q, want %q", got, want)
	}
	if l := tr.Len(g); !almostEqual(l, 3*oneMut) {
		t.Errorf("grandchild length: got %.8f, want %.8f", l, 3*oneMut)
	}

	// reverted mutations are the only ones removed
	after := mutationCount(tr)
	before["A1G"]--
	before["A2G"]--
	for m, v := range before {
		if v == 0 {
			delete(before, m)
		}
	}
	if !reflect.DeepEqual(after, before) {
		t.Errorf("mutations: got %v, want %v", after, before)
	}
}

func TestReversionDiscard(t *testing.T) {
	tr := readTree(t, `(((g1:0.1,g2:0.1)G:0.001[&mutations="A1G"],c1:0.1)C:0.001[&mutations="G1A"],o:0.1)P;`)

	n, err := reconcile.ResolveReversions(tr, reconcile.Param{OneMutation: oneMut}, discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("resolved: got %d, want %d", n, 1)
	}
	if err := tr.Validate(); err != nil {
		t.Fatalf("invalid tree: %v", err)
	}

	p := nodeID(t, tr, "P")
	if got, want := childNames(tr, p), []string{"C", "o", "g1", "g2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("parent children: got %v, want %v", got, want)
	}
	if _, ok := tr.NodeByName("G"); ok {
		t.Errorf("grandchild %q should be removed from the tree", "G")
	}

	// the child is kept even if it becomes a terminal
	tr = readTree(t, `(((g1:0.1,g2:0.1)G:0.001[&mutations="A1G,C5T"])C:0.001[&mutations="G1A"],o:0.1)P;`)
	if _, err := reconcile.ResolveReversions(tr, reconcile.Param{OneMutation: oneMut}, discard); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := nodeID(t, tr, "C")
	if !tr.IsTerm(c) || tr.Parent(c) != nodeID(t, tr, "P") {
		t.Errorf("child %q should be kept as a terminal of %q", "C", "P")
	}
}

func TestReversionAmbiguous(t *testing.T) {
	tr := readTree(t, `(((g1:0.1,g2:0.1)G:0.001[&mutations="A1N,A2-"],c1:0.1)C:0.001[&mutations="G1A,G2A"],o:0.1)P;`)
	if revs := reconcile.DetectReversions(tr); len(revs) != 0 {
		t.Errorf("reversions: got %d triples, want %d", len(revs), 0)
	}

	// terminal grandchildren are not checked
	tr = readTree(t, `((g:0.001[&mutations="A1G"],c1:0.1)C:0.001[&mutations="G1A"],o:0.1)P;`)
	if revs := reconcile.DetectReversions(tr); len(revs) != 0 {
		t.Errorf("terminal grandchild: got %d triples, want %d", len(revs), 0)
	}
}

// NestedTree is a tree with two reversions,
// the parent of the deeper reversion
// is the grandchild of the shallower one.
const nestedTree = `(
	(
		(
			(
				(gc1:0.1,gc2:0.1)GRANDCHILD[&mutations="A30G,A31G,C40T"],
				ch1:0.1
			)CHILD[&mutations="G30A,G31A"],
			p1:0.1
		)PARENT[&mutations="A10G,A11G,C20T"],
		gp1:0.1
	)GP[&mutations="G10A,G11A"],
	out:0.1
)ROOT;`

func TestNestedConflict(t *testing.T) {
	tr := readTree(t, nestedTree)
	p := reconcile.Param{OneMutation: oneMut}

	revs := reconcile.DetectReversions(tr)
	if len(revs) != 2 {
		t.Fatalf("reversions: got %d triples, want %d", len(revs), 2)
	}

	n, err := reconcile.ResolveReversions(tr, p, discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("first pass: got %d resolved, want %d", n, 1)
	}
	if err := tr.Validate(); err != nil {
		t.Fatalf("first pass: invalid tree: %v", err)
	}
	if got, want := childNames(tr, nodeID(t, tr, "ROOT")), []string{"GP", "out", "PARENT"}; !reflect.DeepEqual(got, want) {
		t.Errorf("first pass: root children: got %v, want %v", got, want)
	}
	if got := tr.NodeName(tr.Parent(nodeID(t, tr, "GRANDCHILD"))); got != "CHILD" {
		t.Errorf("first pass: nested reversion should be skipped, grandchild parent is %q", got)
	}

	n, err = reconcile.ResolveReversions(tr, p, discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("second pass: got %d resolved, want %d", n, 1)
	}
	if got, want := childNames(tr, nodeID(t, tr, "PARENT")), []string{"CHILD", "p1", "GRANDCHILD"}; !reflect.DeepEqual(got, want) {
		t.Errorf("second pass: parent children: got %v, want %v", got, want)
	}
	if got, want := tr.Relevant(nodeID(t, tr, "GRANDCHILD")).String(), "C40T"; got != want {
		t.Errorf("second pass: grandchild mutations: got %q, want %q", got, want)
	}
}

const homoplasyTree = `(
	c1:0.002[&mutations="A5G,C20T"],
	c2:0.001[&mutations="C20T"],
	c3:0.001[&mutations="G7A"]
)n;`

func TestMergeHomoplasies(t *testing.T) {
	tr := readTree(t, homoplasyTree)
	before := mutationCount(tr)

	hs := reconcile.DetectHomoplasies(tr)
	if len(hs) != 1 {
		t.Fatalf("homoplasies: got %d groups, want %d", len(hs), 1)
	}

	n, err := reconcile.MergeHomoplasies(tr, reconcile.Param{OneMutation: oneMut}, discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("merged: got %d, want %d", n, 1)
	}
	if err := tr.Validate(); err != nil {
		t.Fatalf("invalid tree: %v", err)
	}

	root := nodeID(t, tr, "n")
	ch := tr.Children(root)
	if len(ch) != 2 || tr.NodeName(ch[0]) != "c3" {
		t.Fatalf("root children: got %v, want [c3 <new>]", childNames(tr, root))
	}
	nn := ch[1]
	if got, want := tr.Relevant(nn).String(), "C20T"; got != want {
		t.Errorf("new node mutations: got %q, want %q", got, want)
	}
	if l := tr.Len(nn); !almostEqual(l, oneMut) {
		t.Errorf("new node length: got %.8f, want %.8f", l, oneMut)
	}
	if got, want := childNames(tr, nn), []string{"c1", "c2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("new node children: got %v, want %v", got, want)
	}

	c1 := nodeID(t, tr, "c1")
	if got, want := tr.Relevant(c1).String(), "A5G"; got != want {
		t.Errorf("c1 mutations: got %q, want %q", got, want)
	}
	if l := tr.Len(c1); !almostEqual(l, oneMut) {
		t.Errorf("c1 length: got %.8f, want %.8f", l, oneMut)
	}
	c2 := nodeID(t, tr, "c2")
	if tr.Relevant(c2).Len() != 0 || tr.Len(c2) != 0 {
		t.Errorf("c2: got mutations %q and length %.8f, want none", tr.Relevant(c2).String(), tr.Len(c2))
	}

	// shared mutations are moved to the new node
	before["C20T"] = 1
	if after := mutationCount(tr); !reflect.DeepEqual(after, before) {
		t.Errorf("mutations: got %v, want %v", after, before)
	}
}

func TestMergeMonophyly(t *testing.T) {
	tr := readTree(t, `(
		(a:0.1,b:0.1)c1:0.001[&mutations="C20T"],
		(c:0.1,d:0.1)c2:0.002[&mutations="C20T,G5A"],
		e:0.1
	)n;`)
	want := append(termNames(tr, nodeID(t, tr, "c1")), termNames(tr, nodeID(t, tr, "c2"))...)
	slices.Sort(want)
	all := termNames(tr, tr.Root())

	if _, err := reconcile.MergeHomoplasies(tr, reconcile.Param{OneMutation: oneMut}, discard); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Validate(); err != nil {
		t.Fatalf("invalid tree: %v", err)
	}

	ch := tr.Children(tr.Root())
	nn := ch[len(ch)-1]
	if got := termNames(tr, nn); !reflect.DeepEqual(got, want) {
		t.Errorf("new node terminals: got %v, want %v", got, want)
	}
	if got := termNames(tr, tr.Root()); !reflect.DeepEqual(got, all) {
		t.Errorf("tree terminals: got %v, want %v", got, all)
	}

	// c1 has no mutations left, so it is discarded
	if _, ok := tr.NodeByName("c1"); ok {
		t.Errorf("node %q should be removed", "c1")
	}
	if got, want := childNames(tr, nn), []string{"a", "b", "c2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("new node children: got %v, want %v", got, want)
	}
}

func TestMergeOrder(t *testing.T) {
	// c1 and c2 share two mutations,
	// c2 and c3 share one;
	// the larger group is merged first
	// and the other group is deferred.
	tr := readTree(t, `(
		c1:0.1[&mutations="A1G,A2G"],
		c2:0.1[&mutations="A1G,A2G,C3T"],
		c3:0.1[&mutations="C3T"]
	)n;`)

	hs := reconcile.DetectHomoplasies(tr)
	if len(hs) != 2 {
		t.Fatalf("homoplasies: got %d groups, want %d", len(hs), 2)
	}
	if len(hs[0].Mutations) != 2 {
		t.Errorf("first group: got %d mutations, want %d", len(hs[0].Mutations), 2)
	}

	n, err := reconcile.MergeHomoplasies(tr, reconcile.Param{OneMutation: oneMut}, discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("merged: got %d, want %d", n, 1)
	}
	if got, want := childNames(tr, tr.Root()), []string{"c3", ""}; !reflect.DeepEqual(got, want) {
		t.Errorf("root children: got %v, want %v", got, want)
	}
}

func TestRun(t *testing.T) {
	tr := readTree(t, nestedTree)
	res, err := reconcile.Run(tr, reconcile.Param{OneMutation: oneMut}, discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Converged {
		t.Errorf("expecting convergence")
	}
	want := []reconcile.Step{
		{Reversions: 1},
		{Reversions: 1},
		{},
	}
	if !reflect.DeepEqual(res.Steps, want) {
		t.Errorf("steps: got %v, want %v", res.Steps, want)
	}
	if res.Iterations() != 3 || res.Reversions() != 2 || res.Merges() != 0 {
		t.Errorf("result: got %d iterations, %d reversions, %d merges", res.Iterations(), res.Reversions(), res.Merges())
	}

	// a reconciled tree is already at a fixed point
	out := newick(t, tr)
	res, err = reconcile.Run(tr, reconcile.Param{OneMutation: oneMut}, discard)
	if err != nil {
		t.Fatalf("second run: unexpected error: %v", err)
	}
	if !res.Converged || !reflect.DeepEqual(res.Steps, []reconcile.Step{{}}) {
		t.Errorf("second run: got %v, want a single iteration without changes", res.Steps)
	}
	if got := newick(t, tr); got != out {
		t.Errorf("second run: tree changed:\n%s\n%s", out, got)
	}
}

func TestRunLowBudget(t *testing.T) {
	tr := readTree(t, nestedTree)
	terms := termNames(tr, tr.Root())

	res, err := reconcile.Run(tr, reconcile.Param{OneMutation: oneMut, Iterations: 1}, discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Converged {
		t.Errorf("expecting no convergence")
	}
	if res.Iterations() != 1 {
		t.Errorf("iterations: got %d, want %d", res.Iterations(), 1)
	}
	if err := tr.Validate(); err != nil {
		t.Fatalf("invalid tree: %v", err)
	}
	if got := termNames(tr, tr.Root()); !reflect.DeepEqual(got, terms) {
		t.Errorf("terminals: got %v, want %v", got, terms)
	}

	// the deferred reversion is fixed in a new run
	res, err = reconcile.Run(tr, reconcile.Param{OneMutation: oneMut}, discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Converged || res.Reversions() != 1 {
		t.Errorf("second run: got %v, want one reversion and convergence", res.Steps)
	}

	full := readTree(t, nestedTree)
	if _, err := reconcile.Run(full, reconcile.Param{OneMutation: oneMut}, discard); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := newick(t, tr), newick(t, full); got != want {
		t.Errorf("deferred run: got %s, want %s", got, want)
	}
}

func TestRunWarning(t *testing.T) {
	var w bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&w, nil))

	tr := readTree(t, nestedTree)
	if _, err := reconcile.Run(tr, reconcile.Param{OneMutation: oneMut, Iterations: 1}, logger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(w.String(), "level=WARN") {
		t.Errorf("expecting a warning, got:\n%s", w.String())
	}
}

func TestRunInvalidParam(t *testing.T) {
	tr := readTree(t, nestedTree)
	if _, err := reconcile.Run(tr, reconcile.Param{OneMutation: -1}, discard); err == nil {
		t.Errorf("expecting error")
	}
}

func TestRunDeterministic(t *testing.T) {
	in := `(
		((a:0.1,b:0.1)x[&mutations="C20T,G5A"],(c:0.1,d:0.1)y[&mutations="C20T,G5A,T9C"],e:0.1[&mutations="T9C"])n1[&mutations="G1A"],
		((f:0.1[&mutations="A1G"],g:0.1)z[&mutations="A1G,C30T"],h:0.1[&mutations="C30T"])n2[&mutations="G1A"]
	)root;`

	var outs []string
	for range 5 {
		tr := readTree(t, in)
		if _, err := reconcile.Run(tr, reconcile.Param{OneMutation: oneMut}, discard); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		outs = append(outs, newick(t, tr))
	}
	for i, o := range outs[1:] {
		if o != outs[0] {
			t.Errorf("run %d: got %s, want %s", i+2, o, outs[0])
		}
	}
}
