// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package mutation

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Table is a collection of mutations
// assigned to the branches of a tree,
// identified by the name of the node
// at the end of the branch.
type Table struct {
	nodes map[string][]Mutation
	bad   []string
}

// NewTable creates a new empty table.
func NewTable() *Table {
	return &Table{
		nodes: make(map[string][]Mutation),
	}
}

// Add adds mutations to a node.
// Repeated mutations are ignored.
func (t *Table) Add(node string, muts ...Mutation) {
	node = strings.TrimSpace(node)
	if node == "" {
		return
	}

	prev := t.nodes[node]
	for _, m := range muts {
		if slices.Contains(prev, m) {
			continue
		}
		prev = append(prev, m)
	}
	t.nodes[node] = prev
}

// Malformed returns the mutation strings
// that were not read
// because they were malformed.
func (t *Table) Malformed() []string {
	return t.bad
}

// Mutations returns the mutations of a node,
// in the order in which they were added.
func (t *Table) Mutations(node string) []Mutation {
	muts, ok := t.nodes[strings.TrimSpace(node)]
	if !ok {
		return nil
	}
	return slices.Clone(muts)
}

// Nodes returns the names of the nodes
// defined in the table.
func (t *Table) Nodes() []string {
	nodes := make([]string, 0, len(t.nodes))
	for n := range t.nodes {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	return nodes
}

// ReadTSV reads a mutation table
// from a TSV file.
//
// The TSV file must contain the following fields:
//
//   - node, the name of the node at the end of the branch
//   - mutations, a comma separated list of mutations
//
// Here is an example file:
//
//	# branch mutations
//	node	mutations
//	NODE_0000001	G10A,G11A
//	NODE_0000002	A10G,A11G,C20T
//	hMpxV/USA/MA001/2022	C40T
func ReadTSV(r io.Reader) (*Table, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range []string{"node", "mutations"} {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	t := NewTable()
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "node"
		node := strings.TrimSpace(row[fields[f]])
		if node == "" {
			continue
		}

		f = "mutations"
		muts, bad := ParseList(row[fields[f]])
		t.bad = append(t.bad, bad...)
		t.Add(node, muts...)
	}
	return t, nil
}

// TSV writes a mutation table as a TSV file.
func (t *Table) TSV(w io.Writer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	// header
	header := []string{"node", "mutations"}
	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	for _, n := range t.Nodes() {
		row := []string{
			n,
			Join(t.nodes[n]),
		}
		if err := tab.Write(row); err != nil {
			return fmt.Errorf("when writing data: %v", err)
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("when writing data: %v", err)
	}
	return nil
}

// NodeData is the node data format
// used by ancestral reconstruction tools
// to store the mutations of each branch.
type nodeData struct {
	Nodes map[string]struct {
		Muts []string `json:"muts"`
	} `json:"nodes"`
}

// ReadJSON reads a mutation table
// from a JSON node data file.
//
// Here is an example file:
//
//	{
//	  "nodes": {
//	    "NODE_0000001": {"muts": ["G10A", "G11A"]},
//	    "hMpxV/USA/MA001/2022": {"muts": ["C40T"]}
//	  }
//	}
//
// Any other field will be ignored.
func ReadJSON(r io.Reader) (*Table, error) {
	var nd nodeData
	if err := json.NewDecoder(r).Decode(&nd); err != nil {
		return nil, fmt.Errorf("while decoding node data: %v", err)
	}

	t := NewTable()
	names := make([]string, 0, len(nd.Nodes))
	for n := range nd.Nodes {
		names = append(names, n)
	}
	slices.Sort(names)

	for _, n := range names {
		t.Add(n)
		for _, s := range nd.Nodes[n].Muts {
			m, err := Parse(s)
			if err != nil {
				t.bad = append(t.bad, s)
				continue
			}
			t.Add(n, m)
		}
	}
	return t, nil
}
