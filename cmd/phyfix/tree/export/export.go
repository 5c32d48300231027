// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package export implements a command to export
// the trees of a PhyFix project
// as time calibrated trees.
package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/phyfix/logger"
	"github.com/js-arias/phyfix/project"
	"github.com/js-arias/phyfix/tree"
	"github.com/js-arias/timetree"
)

var Command = &command.Command{
	Usage: `export [--age <value>] [--fixed]
	[-o|--output <file>] <project-file>`,
	Short: "export trees as time calibrated trees",
	Long: `
Command export reads the trees of a PhyFix project and writes them as a
tab-delimited tree file, the format used by PhyGeo and other tools that work
with time calibrated trees.

The argument of the command is the name of the project file.

Branch lengths are transformed into mutation units, using the branch length of
a single mutation defined in the project parameters, and each mutation unit is
interpreted as a million years. By default, the age of the root will be
calculated from the largest distance between any terminal and the root. To set
a different root age, use the flag --age, with a value in million years.

By default, the trees are exported as found in the tree file. If the flag
--fixed is given, the reversions and homoplasies of the trees will be fixed
before exporting them.

By default, the trees will be printed in the standard output. Use the flag
--output, or -o, to define an output file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

const millionYears = 1_000_000

var rootAge float64
var fixed bool
var output string

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&fixed, "fixed", false, "")
	c.Flags().Float64Var(&rootAge, "age", 0, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	pm, err := p.Params()
	if err != nil {
		return err
	}
	unit := pm.OneMutation()
	if unit == 0 {
		unit = 1
	}

	var ts []*tree.Tree
	if fixed {
		lg := logger.New(c.Stderr(), logger.Options{Level: slog.LevelWarn})
		ts, err = p.FixedTrees(context.Background(), lg.Logger)
	} else {
		ts, err = p.Trees()
	}
	if err != nil {
		return err
	}

	tc := timetree.NewCollection()
	for _, t := range ts {
		nc, err := timeTree(t, unit)
		if err != nil {
			return err
		}
		for _, tn := range nc.Names() {
			if err := tc.Add(nc.Tree(tn)); err != nil {
				return fmt.Errorf("when adding tree %q: %v", tn, err)
			}
		}
	}

	if output == "" {
		return tc.TSV(c.Stdout())
	}
	return writeTrees(output, tc)
}

// TimeTree converts a tree into a time tree
// in which each mutation is a million years.
// The branch lengths of the tree are modified.
func timeTree(t *tree.Tree, unit float64) (*timetree.Collection, error) {
	for _, id := range t.Preorder() {
		t.SetLen(id, t.Len(id)/unit)
	}

	var buf bytes.Buffer
	if err := t.Newick(&buf, tree.NewickOptions{Precision: 6}); err != nil {
		return nil, err
	}
	c, err := timetree.Newick(&buf, t.Name(), int64(rootAge*millionYears))
	if err != nil {
		return nil, fmt.Errorf("tree %q: %v", t.Name(), err)
	}
	return c, nil
}

func writeTrees(name string, tc *timetree.Collection) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := tc.TSV(f); err != nil {
		return fmt.Errorf("while writing to %q: %v", name, err)
	}
	return nil
}
