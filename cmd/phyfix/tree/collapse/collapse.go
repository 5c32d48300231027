// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package collapse implements a command to collapse
// the short internal branches
// of the trees in a PhyFix project.
package collapse

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/phyfix/logger"
	"github.com/js-arias/phyfix/project"
	"github.com/js-arias/phyfix/tree"
)

var Command = &command.Command{
	Usage: `collapse [--threshold <value>] [--divide-by <value>]
	[--mutations] [-o|--output <file>] <project-file>`,
	Short: "collapse short internal branches",
	Long: `
Command collapse reads the trees of a PhyFix project and removes the internal
branches with a length smaller than a threshold. The children of a collapsed
node are attached to the parent of the node, and the length, and mutations,
of the collapsed branch are added to the branch of each child. Terminals are
never removed.

The argument of the command is the name of the project file.

By default, branches shorter than 1e-7 are collapsed. Use the flag
--threshold to set a different value.

If the flag --divide-by is defined, all the branch lengths of the collapsed
trees are divided by the given value.

By default, the collapsed trees are printed in the standard output, with 8
decimal digits for branch lengths. Use the flag --output, or -o, to define an
output file. If the flag --mutations is defined, the mutations of each branch
will be printed as Newick comments.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var threshold float64
var divideBy float64
var withMuts bool
var output string

func setFlags(c *command.Command) {
	c.Flags().Float64Var(&threshold, "threshold", tree.DefaultCollapse, "")
	c.Flags().Float64Var(&divideBy, "divide-by", 0, "")
	c.Flags().BoolVar(&withMuts, "mutations", false, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) (err error) {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	if divideBy < 0 {
		return c.UsageError(fmt.Sprintf("invalid --divide-by value: %g", divideBy))
	}

	lg := logger.New(c.Stderr(), logger.Options{Level: slog.LevelInfo})
	defer func() {
		e := lg.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	if p.Path(project.Trees) == "" {
		return fmt.Errorf("trees not defined in project %q", p.Name())
	}
	ts, err := p.Trees()
	if err != nil {
		return err
	}

	for i, n := range collapseTrees(ts, threshold, divideBy) {
		lg.Info("tree collapsed",
			"tree", ts[i].Name(),
			"nodes", n,
		)
	}

	opt := tree.NewickOptions{
		Precision: tree.DefaultPrecision,
		Mutations: withMuts,
	}
	if output == "" {
		return writeTrees(c.Stdout(), ts, opt)
	}
	return writeFile(output, ts, opt)
}

// CollapseTrees collapses the trees
// and returns the number of collapsed nodes
// of each tree.
func collapseTrees(ts []*tree.Tree, threshold, divideBy float64) []int {
	n := make([]int, len(ts))
	for i, t := range ts {
		n[i] = t.Collapse(threshold)
		if divideBy > 0 {
			t.Scale(1 / divideBy)
		}
	}
	return n
}

func writeFile(name string, ts []*tree.Tree, opt tree.NewickOptions) (err error) {
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

	if err := writeTrees(f, ts, opt); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	return nil
}

func writeTrees(w io.Writer, ts []*tree.Tree, opt tree.NewickOptions) error {
	bw := bufio.NewWriter(w)
	for _, t := range ts {
		if err := t.Newick(bw, opt); err != nil {
			return err
		}
	}
	return bw.Flush()
}
