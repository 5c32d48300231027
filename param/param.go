// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package param implements reading and writing
// of the parameters used to fix a tree.
package param

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/js-arias/phyfix/reconcile"
	"github.com/js-arias/phyfix/tree"
)

// Param is a keyword to identify
// the type of parameter in a parameter file.
type Param string

// Valid parameters
const (
	// Iterations is the maximum number of iterations
	// of the reconciliation.
	Iterations Param = "iterations"

	// OneMutation is the branch length
	// of a single mutation.
	OneMutation Param = "onemutation"

	// Precision is the number of decimal digits
	// used for branch lengths in output trees.
	Precision Param = "precision"

	// SeqLen is the length of the aligned sequences.
	// If defined,
	// and there is no explicit value for one mutation,
	// the branch length of a single mutation
	// is 1 / SeqLen.
	SeqLen Param = "seqlen"
)

// P represents a collection of parameters.
type P struct {
	name string // file name

	oneMut float64
	seqLen int

	iter int
	prec int
}

// New creates a new parameter collection
// with default values.
func New(name string) *P {
	return &P{
		name: name,
		iter: reconcile.DefaultIterations,
		prec: tree.DefaultPrecision,
	}
}

var header = []string{
	"parameter",
	"value",
}

// Read reads a parameter file from a TSV file.
//
// The TSV must contains the following fields:
//
//   - parameter, the name of the parameter
//   - value, the value of the parameter
//
// Here is an example file:
//
//	# phyfix parameters
//	parameter	value
//	seqlen	197209
//	iterations	5
//	precision	8
func Read(name string) (*P, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := read(f, name)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return p, nil
}

func read(r io.Reader, name string) (*P, error) {
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

	p := New(name)
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "parameter"
		pm := Param(strings.ToLower(strings.TrimSpace(row[fields[f]])))

		f = "value"
		v := strings.TrimSpace(row[fields[f]])
		switch pm {
		case Iterations:
			i, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
			}
			if err := p.SetIterations(i); err != nil {
				return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
			}
		case OneMutation:
			m, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
			}
			if err := p.SetOneMutation(m); err != nil {
				return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
			}
		case Precision:
			pr, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
			}
			if err := p.SetPrecision(pr); err != nil {
				return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
			}
		case SeqLen:
			l, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
			}
			if err := p.SetSeqLen(l); err != nil {
				return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, err)
			}
		}
	}
	return p, nil
}

// Iterations returns the maximum number of iterations.
func (p *P) Iterations() int {
	return p.iter
}

// Name returns the name used for a set of parameters.
func (p *P) Name() string {
	return p.name
}

// OneMutation returns the branch length of a single mutation.
// If no value is set,
// it will use the inverse of the sequence length.
// It returns 0 if neither value is defined.
func (p *P) OneMutation() float64 {
	if p.oneMut > 0 {
		return p.oneMut
	}
	if p.seqLen > 0 {
		return 1 / float64(p.seqLen)
	}
	return 0
}

// Precision returns the number of decimal digits
// used for branch lengths.
func (p *P) Precision() int {
	return p.prec
}

// Reconcile returns the parameters
// used for a reconciliation.
func (p *P) Reconcile() reconcile.Param {
	return reconcile.Param{
		OneMutation: p.OneMutation(),
		Iterations:  p.iter,
	}
}

// SeqLen returns the sequence length.
func (p *P) SeqLen() int {
	return p.seqLen
}

// SetIterations sets the maximum number of iterations.
func (p *P) SetIterations(i int) error {
	if i < 1 {
		return fmt.Errorf("invalid number of iterations: %d", i)
	}
	p.iter = i
	return nil
}

// SetName sets the name of a parameter collection.
func (p *P) SetName(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	p.name = name
}

// SetOneMutation sets the branch length of a single mutation.
// A zero value removes the explicit value.
func (p *P) SetOneMutation(m float64) error {
	if m < 0 {
		return fmt.Errorf("invalid branch length: %g", m)
	}
	p.oneMut = m
	return nil
}

// SetPrecision sets the number of decimal digits
// of branch lengths.
func (p *P) SetPrecision(pr int) error {
	if pr < 1 || pr > 17 {
		return fmt.Errorf("invalid precision: %d", pr)
	}
	p.prec = pr
	return nil
}

// SetSeqLen sets the sequence length.
func (p *P) SetSeqLen(l int) error {
	if l < 0 {
		return fmt.Errorf("invalid sequence length: %d", l)
	}
	p.seqLen = l
	return nil
}

// Write writes a parameter collection into a file.
func (p *P) Write() (err error) {
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

	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "# phyfix parameters\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("on file %q: while writing header: %v", p.name, err)
	}

	rows := [][]string{
		{string(Iterations), strconv.Itoa(p.iter)},
		{string(Precision), strconv.Itoa(p.prec)},
	}
	if p.oneMut > 0 {
		rows = append(rows, []string{string(OneMutation), strconv.FormatFloat(p.oneMut, 'g', -1, 64)})
	}
	if p.seqLen > 0 {
		rows = append(rows, []string{string(SeqLen), strconv.Itoa(p.seqLen)})
	}
	for _, row := range rows {
		if err := tsv.Write(row); err != nil {
			return fmt.Errorf("on file %q: %v", p.name, err)
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", p.name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", p.name, err)
	}
	return nil
}
