// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/js-arias/phyfix/mutation"
	"github.com/js-arias/phyfix/project"
)

type setPath struct {
	set  project.Dataset
	path string
}

func TestProject(t *testing.T) {
	p := project.New()

	sets := []setPath{
		{project.Mutations, "nt-muts.json"},
		{project.Params, "params.tab"},
		{project.Trees, "tree.nwk"},
	}

	for _, s := range sets {
		p.Add(s.set, s.path)
	}
	testProject(t, p, sets)

	name := "tmp-project-for-test.tab"
	defer os.Remove(name)

	p.SetName(name)
	if err := p.Write(); err != nil {
		t.Fatalf("error when writing data: %v", err)
	}

	b, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("unable to read file: %v", err)
	}
	for _, h := range []string{
		"# phyfix project files\n",
		"# mutations: mutations of each node",
		"# params: parameters of the reconciliation\n",
		"# trees: phylogenetic trees, in Newick format\n",
	} {
		if !strings.Contains(string(b), h) {
			t.Errorf("header: expecting %q", h)
		}
	}

	np, err := project.Read(name)
	if err != nil {
		t.Fatalf("error when reading data: %v", err)
	}
	testProject(t, np, sets)

	if prev := np.Add(project.Params, ""); prev != "params.tab" {
		t.Errorf("remove params: got previous %q, want %q", prev, "params.tab")
	}
	if path := np.Path(project.Params); path != "" {
		t.Errorf("remove params: got path %q", path)
	}
}

func TestProjectUnknownDataset(t *testing.T) {
	name := "tmp-project-unknown-for-test.tab"
	defer os.Remove(name)

	data := "dataset\tpath\nlandscape\tlandscape.tab\n"
	if err := os.WriteFile(name, []byte(data), 0644); err != nil {
		t.Fatalf("unable to write file: %v", err)
	}
	if _, err := project.Read(name); err == nil {
		t.Errorf("expecting error on unknown dataset")
	}
}

func TestProjectRepeatedDataset(t *testing.T) {
	name := "tmp-project-repeated-for-test.tab"
	defer os.Remove(name)

	data := "dataset\tpath\ntrees\tone.nwk\nTrees\ttwo.nwk\n"
	if err := os.WriteFile(name, []byte(data), 0644); err != nil {
		t.Fatalf("unable to write file: %v", err)
	}
	if _, err := project.Read(name); err == nil {
		t.Errorf("expecting error on repeated dataset")
	}
}

func TestProjectData(t *testing.T) {
	treeFile := "tmp-tree-for-test.nwk"
	mutFile := "tmp-muts-for-test.json"
	defer os.Remove(treeFile)
	defer os.Remove(mutFile)

	nwk := "((a:1,b:1)NODE_2:1,c:1)NODE_1;\n((a:1,c:1)x:1,b:1);\n"
	if err := os.WriteFile(treeFile, []byte(nwk), 0644); err != nil {
		t.Fatalf("unable to write file: %v", err)
	}
	js := `{"nodes": {"NODE_2": {"muts": ["G10A", "C11T"]}, "a": {"muts": ["A5C"]}}}`
	if err := os.WriteFile(mutFile, []byte(js), 0644); err != nil {
		t.Fatalf("unable to write file: %v", err)
	}

	p := project.New()
	p.Add(project.Trees, treeFile)
	p.Add(project.Mutations, mutFile)

	ts, err := p.Trees()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ts) != 2 {
		t.Fatalf("trees: got %d, want %d", len(ts), 2)
	}
	names := []string{ts[0].Name(), ts[1].Name()}
	if want := []string{"tmp-tree-for-test-1", "tmp-tree-for-test-2"}; !reflect.DeepEqual(names, want) {
		t.Errorf("tree names: got %v, want %v", names, want)
	}

	id, ok := ts[0].NodeByName("NODE_2")
	if !ok {
		t.Fatalf("node %q not found", "NODE_2")
	}
	want := []mutation.Mutation{
		{Anc: 'C', Pos: 11, Der: 'T'},
		{Anc: 'G', Pos: 10, Der: 'A'},
	}
	if got := ts[0].Relevant(id).Sorted(); !reflect.DeepEqual(got, sortedMuts(want)) {
		t.Errorf("node %q: got %v, want %v", "NODE_2", got, sortedMuts(want))
	}

	pm, err := p.Params()
	if err != nil {
		t.Fatalf("params: unexpected error: %v", err)
	}
	if pm.Iterations() != 5 {
		t.Errorf("default params: got %d iterations, want %d", pm.Iterations(), 5)
	}
}

func TestProjectFixedTrees(t *testing.T) {
	treeFile := "tmp-fixed-tree-for-test.nwk"
	paramFile := "tmp-fixed-params-for-test.tab"
	defer os.Remove(treeFile)
	defer os.Remove(paramFile)

	nwk := `((a:1[&mutations="C5T"],b:1[&mutations="C5T"])x:1,c:1)root;`
	if err := os.WriteFile(treeFile, []byte(nwk), 0644); err != nil {
		t.Fatalf("unable to write file: %v", err)
	}
	pm := "parameter\tvalue\nonemutation\t0.5\n"
	if err := os.WriteFile(paramFile, []byte(pm), 0644); err != nil {
		t.Fatalf("unable to write file: %v", err)
	}

	p := project.New()
	p.Add(project.Trees, treeFile)
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := p.FixedTrees(context.Background(), discard); err == nil {
		t.Errorf("expecting error without a branch length for one mutation")
	}

	p.Add(project.Params, paramFile)
	ts, err := p.FixedTrees(context.Background(), discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	x, ok := ts[0].NodeByName("x")
	if !ok {
		t.Fatalf("node %q not found", "x")
	}
	ch := ts[0].Children(x)
	if len(ch) != 1 {
		t.Fatalf("node %q: got %d children, want %d", "x", len(ch), 1)
	}
	if got := ts[0].Relevant(ch[0]).String(); got != "C5T" {
		t.Errorf("merged node: got mutations %q, want %q", got, "C5T")
	}
	if l := ts[0].Len(ch[0]); l != 0.5 {
		t.Errorf("merged node: got length %g, want %g", l, 0.5)
	}
}

func sortedMuts(muts []mutation.Mutation) []mutation.Mutation {
	muts = slices.Clone(muts)
	slices.SortFunc(muts, mutation.Compare)
	return muts
}

func testProject(t testing.TB, p *project.Project, sets []setPath) {
	t.Helper()

	for _, s := range sets {
		if path := p.Path(s.set); path != s.path {
			t.Errorf("set %s: got path %q, want %q", s.set, path, s.path)
		}
	}
	datasets := make([]project.Dataset, 0, len(sets))
	for _, v := range sets {
		datasets = append(datasets, v.set)
	}
	slices.Sort(datasets)

	if ls := p.Sets(); !reflect.DeepEqual(ls, datasets) {
		t.Errorf("sets: got %v, want %v", ls, datasets)
	}
}
