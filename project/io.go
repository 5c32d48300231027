// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/js-arias/phyfix/mutation"
	"github.com/js-arias/phyfix/param"
	"github.com/js-arias/phyfix/reconcile"
	"github.com/js-arias/phyfix/tree"
)

// Mutations reads a mutation table
// as defined in a project.
// Files with the ".json" extension
// are read as node-data JSON files,
// any other file is read as a TSV table.
func (p *Project) Mutations() (*mutation.Table, error) {
	name := p.Path(Mutations)
	if name == "" {
		return nil, fmt.Errorf("mutations not defined in project %q", p.name)
	}
	return ReadMutations(name)
}

// ReadMutations reads a mutation table from a file.
func ReadMutations(name string) (*mutation.Table, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	read := mutation.ReadTSV
	if strings.ToLower(filepath.Ext(name)) == ".json" {
		read = mutation.ReadJSON
	}
	tab, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return tab, nil
}

// Params reads the parameter file
// as defined in a project.
// If no file is defined,
// it returns the default parameters.
func (p *Project) Params() (*param.P, error) {
	name := p.Path(Params)
	if name == "" {
		return param.New(""), nil
	}
	return param.Read(name)
}

// Trees reads the trees
// as defined in a project.
// If the project has a mutation table,
// the mutations are assigned to the nodes
// of each tree.
func (p *Project) Trees() ([]*tree.Tree, error) {
	name := p.Path(Trees)
	if name == "" {
		return nil, fmt.Errorf("trees not defined in project %q", p.name)
	}
	ts, err := ReadTrees(name)
	if err != nil {
		return nil, err
	}

	if p.Path(Mutations) == "" {
		return ts, nil
	}
	tab, err := p.Mutations()
	if err != nil {
		return nil, err
	}
	for _, t := range ts {
		t.ApplyTable(tab)
	}
	return ts, nil
}

// FixedTrees reads the trees
// as defined in a project,
// and fixes their reversions and homoplasies
// using the project parameters.
func (p *Project) FixedTrees(ctx context.Context, logger *slog.Logger) ([]*tree.Tree, error) {
	pm, err := p.Params()
	if err != nil {
		return nil, err
	}
	if pm.OneMutation() == 0 {
		return nil, fmt.Errorf("project %q: branch length of a single mutation undefined", p.name)
	}

	ts, err := p.Trees()
	if err != nil {
		return nil, err
	}
	if _, err := reconcile.RunAll(ctx, ts, pm.Reconcile(), logger, 0); err != nil {
		return nil, err
	}
	return ts, nil
}

// ReadTrees reads the trees from a Newick file.
// Trees without a name
// are named after the file
// and their position in it.
func ReadTrees(name string) ([]*tree.Tree, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ts, err := readTrees(f, filepath.Base(name))
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return ts, nil
}

func readTrees(r io.Reader, base string) ([]*tree.Tree, error) {
	ts, err := tree.ReadNewick(r)
	if err != nil {
		return nil, err
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	for i, t := range ts {
		if t.Name() != "" {
			continue
		}
		if len(ts) == 1 {
			t.SetName(base)
			continue
		}
		t.SetName(fmt.Sprintf("%s-%d", base, i+1))
	}
	return ts, nil
}
