// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package project implements reading and writing
// of PhyFix project files.
//
// A PhyFix project is a tab-delimited file (TSV)
// used to store the different data files
// required by PhyFix commands.
package project

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"
)

// Dataset is a keyword to identify
// the type of a dataset file in a project.
type Dataset string

// Valid dataset types.
const (
	// File for the mutations assigned to each node,
	// either a TSV table,
	// or a node-data JSON file.
	Mutations Dataset = "mutations"

	// File for the reconciliation parameters.
	Params Dataset = "params"

	// File for phylogenetic trees,
	// in Newick format.
	Trees Dataset = "trees"
)

var descriptions = map[Dataset]string{
	Mutations: "mutations of each node, as a TSV table or a node-data JSON file",
	Params:    "parameters of the reconciliation",
	Trees:     "phylogenetic trees, in Newick format",
}

// IsValid returns true if the dataset
// is a known dataset type.
func (d Dataset) IsValid() bool {
	_, ok := descriptions[d]
	return ok
}

// A Project represents a collection of paths
// for particular datasets.
type Project struct {
	name  string
	paths map[Dataset]string
}

// New creates a new empty project.
func New() *Project {
	return &Project{
		name:  "",
		paths: make(map[Dataset]string),
	}
}

var header = []string{
	"dataset",
	"path",
}

// Read reads a project file from a TSV file.
//
// The TSV must contain the following fields:
//
//   - dataset, for the kind of file
//   - path, for the path of the file
//
// Here is an example file:
//
//	# phyfix project files
//	# mutations: mutations of each node, as a TSV table or a node-data JSON file
//	# params: parameters of the reconciliation
//	# trees: phylogenetic trees, in Newick format
//	dataset	path
//	mutations	nt-muts.json
//	params	params.tab
//	trees	tree.nwk
//
// A dataset can be defined only once.
// Rows with an empty path are ignored.
func Read(name string) (*Project, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	p.name = name
	return p, nil
}

func read(r io.Reader) (*Project, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	p := New()
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "dataset"
		set := Dataset(strings.ToLower(strings.TrimSpace(row[fields[f]])))
		if !set.IsValid() {
			return nil, fmt.Errorf("on row %d, field %q: unknown dataset %q", ln, f, set)
		}
		if prev, ok := p.paths[set]; ok {
			return nil, fmt.Errorf("on row %d, field %q: dataset %q already defined with path %q", ln, f, set, prev)
		}

		f = "path"
		if path := strings.TrimSpace(row[fields[f]]); path != "" {
			p.paths[set] = path
		}
	}
	return p, nil
}

// Add sets the path of a dataset,
// and returns the previous path of the dataset.
// An empty path removes the dataset from the project.
func (p *Project) Add(set Dataset, path string) string {
	prev := p.paths[set]
	if path = strings.TrimSpace(path); path == "" {
		delete(p.paths, set)
	} else {
		p.paths[set] = path
	}
	return prev
}

// Name returns the file name of the project.
func (p *Project) Name() string {
	return p.name
}

// Path returns the path of the given dataset.
func (p *Project) Path(set Dataset) string {
	return p.paths[set]
}

// Sets returns the datasets defined on a project,
// sorted by name.
func (p *Project) Sets() []Dataset {
	return slices.Sorted(maps.Keys(p.paths))
}

// SetName sets the project file name.
func (p *Project) SetName(name string) {
	p.name = name
}

// Write writes a project into a file.
// The header of the file describes
// each dataset defined in the project.
func (p *Project) Write() (err error) {
	f, err := os.Create(p.name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := p.write(f); err != nil {
		return fmt.Errorf("on file %q: %v", p.name, err)
	}
	return nil
}

func (p *Project) write(w io.Writer) error {
	sets := p.Sets()

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# phyfix project files\n")
	for _, s := range sets {
		fmt.Fprintf(bw, "# %s: %s\n", s, descriptions[s])
	}
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))

	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true
	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}
	for _, s := range sets {
		if err := tsv.Write([]string{string(s), p.paths[s]}); err != nil {
			return err
		}
	}
	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	return bw.Flush()
}
