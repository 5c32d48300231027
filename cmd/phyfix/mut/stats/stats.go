// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package stats implements a command to print
// statistics of the mutations
// of the trees in a PhyFix project.
package stats

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/js-arias/command"
	"github.com/js-arias/phyfix/logger"
	"github.com/js-arias/phyfix/project"
	"github.com/js-arias/phyfix/reconcile"
	"github.com/js-arias/phyfix/tree"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var Command = &command.Command{
	Usage: `stats [--fixed] [--plot <prefix>] [--bins <number>]
	<project-file>`,
	Short: "print statistics of branch mutations",
	Long: `
Command stats reads the trees of a PhyFix project, and the mutations assigned
to their branches, and prints some statistics of the trees in the standard
output.

The argument of the command is the name of the project file.

For each tree, the following statistics are printed:

	- tree        the name of the tree
	- terms       the number of terminals
	- branches    the number of branches
	- mutated     the number of branches with mutations
	- mutations   the total number of mutations
	- mean        the mean number of mutations per branch
	- median      the median number of mutations per branch
	- q95         the 95% quantile of mutations per branch
	- max         the maximum number of mutations in a branch
	- reversions  the number of immediate reversions
	- homoplasies the number of homoplasy groups

Only mutations between unambiguous bases are counted.

By default, the statistics are calculated on the trees as found in the tree
file. If the flag --fixed is given, the reversions and homoplasies of the
trees will be fixed before calculating the statistics.

If the flag --plot is given, a histogram of the number of mutations per branch
will be drawn for each tree, using the value of the flag as the prefix of the
image file names. By default the histogram has 20 bins; use the flag --bins to
set a different number.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var fixed bool
var plotPrefix string
var bins int

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&fixed, "fixed", false, "")
	c.Flags().IntVar(&bins, "bins", 20, "")
	c.Flags().StringVar(&plotPrefix, "plot", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
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

	sts := make([]treeStats, 0, len(ts))
	for _, t := range ts {
		st := calcStats(t)
		sts = append(sts, st)
		if plotPrefix == "" || len(st.muts) == 0 {
			continue
		}
		name := fmt.Sprintf("%s-%s.png", plotPrefix, t.Name())
		if err := histogram(name, st.muts); err != nil {
			return fmt.Errorf("while drawing %q: %v", name, err)
		}
	}

	return printStats(c.Stdout(), sts)
}

type treeStats struct {
	name        string
	terms       int
	mutated     int
	total       int
	reversions  int
	homoplasies int

	// sorted number of mutations per branch
	muts []float64
}

func calcStats(t *tree.Tree) treeStats {
	st := treeStats{
		name:        t.Name(),
		terms:       len(t.Terms(t.Root())),
		reversions:  len(reconcile.DetectReversions(t)),
		homoplasies: len(reconcile.DetectHomoplasies(t)),
	}
	for _, id := range t.Preorder() {
		if t.IsRoot(id) {
			continue
		}
		n := t.Relevant(id).Len()
		if n > 0 {
			st.mutated++
		}
		st.total += n
		st.muts = append(st.muts, float64(n))
	}
	slices.Sort(st.muts)
	return st
}

func (st treeStats) mean() float64 {
	if len(st.muts) == 0 {
		return 0
	}
	return stat.Mean(st.muts, nil)
}

func (st treeStats) quantile(p float64) float64 {
	if len(st.muts) == 0 {
		return 0
	}
	return stat.Quantile(p, stat.Empirical, st.muts, nil)
}

func (st treeStats) max() float64 {
	if len(st.muts) == 0 {
		return 0
	}
	return st.muts[len(st.muts)-1]
}

func printStats(w io.Writer, sts []treeStats) error {
	tab := tablewriter.NewWriter(w)
	tab.SetAutoFormatHeaders(false)
	tab.SetAutoWrapText(false)
	tab.SetAlignment(tablewriter.ALIGN_LEFT)
	tab.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tab.SetBorder(false)
	tab.SetHeaderLine(false)
	tab.SetCenterSeparator("")
	tab.SetColumnSeparator("")
	tab.SetRowSeparator("")
	tab.SetTablePadding("\t")
	tab.SetNoWhiteSpace(true)

	tab.SetHeader([]string{
		"tree",
		"terms",
		"branches",
		"mutated",
		"mutations",
		"mean",
		"median",
		"q95",
		"max",
		"reversions",
		"homoplasies",
	})
	for _, st := range sts {
		tab.Append([]string{
			st.name,
			strconv.Itoa(st.terms),
			strconv.Itoa(len(st.muts)),
			strconv.Itoa(st.mutated),
			strconv.Itoa(st.total),
			strconv.FormatFloat(st.mean(), 'f', 3, 64),
			strconv.FormatFloat(st.quantile(0.5), 'f', 1, 64),
			strconv.FormatFloat(st.quantile(0.95), 'f', 1, 64),
			strconv.FormatFloat(st.max(), 'f', 0, 64),
			strconv.Itoa(st.reversions),
			strconv.Itoa(st.homoplasies),
		})
	}
	tab.Render()
	return nil
}

func histogram(name string, muts []float64) error {
	p := plot.New()
	p.X.Label.Text = "mutations per branch"
	p.Y.Label.Text = "branches"

	h, err := plotter.NewHist(plotter.Values(muts), bins)
	if err != nil {
		return fmt.Errorf("while building histogram: %v", err)
	}
	p.Add(h)

	if err := p.Save(5*vg.Inch, 3*vg.Inch, name); err != nil {
		return err
	}
	return nil
}
