// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package fix implements a command to fix
// the reversions and homoplasies
// of the trees in a PhyFix project.
package fix

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/phyfix/logger"
	"github.com/js-arias/phyfix/param"
	"github.com/js-arias/phyfix/project"
	"github.com/js-arias/phyfix/reconcile"
	"github.com/js-arias/phyfix/tree"
)

var Command = &command.Command{
	Usage: `fix [-o|--output <file>] [--mutations]
	[--iter <number>] [--onemut <value>]
	[--cpu <number>] [--verbose] [--level <level>]
	[--log <file>]
	<project-file>`,
	Short: "fix reversions and homoplasies",
	Long: `
Command fix reads the trees of a PhyFix project, and the mutations assigned to
their branches, and fixes the immediate reversions and the homoplasies of the
trees.

An immediate reversion is found when a mutation of a branch is undone in one
of its descendant branches. It is fixed by moving the descendant node to the
parent of the reverted branch, removing the reverted mutations.

A homoplasy is found when the same mutation is present in two or more
children of the same node. It is fixed by grouping the children in a new node
that holds the shared mutations.

Both procedures are applied until the tree does not change, or a maximum
number of iterations is reached. If the tree is still changing when the
iterations are exhausted, a warning is printed and the partially fixed tree is
written.

The argument of the command is the name of the project file.

By default, the parameters are read from the parameter file of the project
(see 'phyfix help param-files'). Use the flag --iter to set a different number
of iterations, and the flag --onemut to set the branch length of a single
mutation.

By default, the fixed trees are printed in the standard output. Use the flag
--output, or -o, to define an output file. The branch length of the trees will
be printed with the precision defined in the parameters. If the flag
--mutations is defined, the mutations of each branch will be printed as Newick
comments.

If the tree file has several trees, the trees are fixed in parallel. By
default, all available CPUs will be used. Use the flag --cpu to set a
different number of CPUs.

By default, only the summary of each iteration is logged in the standard
error. Use the flag --verbose to log each change made on the trees. Use the
flag --level to set the minimum level of the records printed in the standard
error: either "debug", "info", "warn", "error", or a number. The flag
--verbose is equivalent to "--level debug". Use the flag --log to define a
file in which all the changes will be logged.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string
var logFile string
var levelFlag string
var withMuts bool
var verbose bool
var iter int
var numCPU int
var oneMut float64

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&withMuts, "mutations", false, "")
	c.Flags().BoolVar(&verbose, "verbose", false, "")
	c.Flags().StringVar(&levelFlag, "level", "", "")
	c.Flags().Float64Var(&oneMut, "onemut", 0, "")
	c.Flags().IntVar(&iter, "iter", 0, "")
	c.Flags().IntVar(&numCPU, "cpu", 0, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().StringVar(&logFile, "log", "", "")
}

func run(c *command.Command, args []string) (err error) {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	lg := logger.New(c.Stderr(), logger.Options{
		Level: consoleLevel(),
		File:  logFile,
	})
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

	pm, err := readParams(p)
	if err != nil {
		return err
	}

	ts, err := readTrees(p, lg.Logger)
	if err != nil {
		return err
	}

	res, err := reconcile.RunAll(context.Background(), ts, pm.Reconcile(), lg.Logger, numCPU)
	if err != nil {
		return err
	}
	for i, r := range res {
		lg.Info("tree fixed",
			"tree", ts[i].Name(),
			"iterations", r.Iterations(),
			"reversions", r.Reversions(),
			"merges", r.Merges(),
			"converged", r.Converged,
		)
	}

	opt := tree.NewickOptions{
		Precision: pm.Precision(),
		Mutations: withMuts,
	}
	if output == "" {
		return writeTrees(c.Stdout(), ts, opt)
	}
	return writeFile(output, ts, opt)
}

// ConsoleLevel returns the minimum level
// of the records printed in the console.
func consoleLevel() slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return logger.ParseLevel(levelFlag, slog.LevelInfo)
}

func readParams(p *project.Project) (*param.P, error) {
	pm, err := p.Params()
	if err != nil {
		return nil, err
	}
	if iter > 0 {
		if err := pm.SetIterations(iter); err != nil {
			return nil, err
		}
	}
	if oneMut > 0 {
		if err := pm.SetOneMutation(oneMut); err != nil {
			return nil, err
		}
	}
	if pm.OneMutation() == 0 {
		return nil, fmt.Errorf("project %q: branch length of a single mutation undefined", p.Name())
	}
	return pm, nil
}

func readTrees(p *project.Project, lg *slog.Logger) ([]*tree.Tree, error) {
	tf := p.Path(project.Trees)
	if tf == "" {
		return nil, fmt.Errorf("trees not defined in project %q", p.Name())
	}
	ts, err := project.ReadTrees(tf)
	if err != nil {
		return nil, err
	}

	if p.Path(project.Mutations) == "" {
		lg.Warn("mutations not defined in project", "project", p.Name())
		return ts, nil
	}
	tab, err := p.Mutations()
	if err != nil {
		return nil, err
	}
	if bad := tab.Malformed(); len(bad) > 0 {
		lg.Warn("malformed mutations ignored",
			"file", p.Path(project.Mutations),
			"count", len(bad),
		)
		for _, b := range bad {
			lg.Debug("malformed mutation", "token", b)
		}
	}

	for _, t := range ts {
		missing := t.ApplyTable(tab)
		if len(missing) == 0 {
			continue
		}
		lg.Warn("nodes not found in tree",
			"tree", t.Name(),
			"count", len(missing),
		)
		for _, n := range missing {
			lg.Debug("node not found", "tree", t.Name(), "node", n)
		}
	}
	return ts, nil
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
