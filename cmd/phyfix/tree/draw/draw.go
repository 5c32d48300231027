// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package draw implements a command to draw
// trees in a PhyFix project as SVG files.
package draw

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/phyfix/logger"
	"github.com/js-arias/phyfix/project"
	"github.com/js-arias/phyfix/tree"
)

var Command = &command.Command{
	Usage: `draw [--tree <tree>] [--fixed]
	[--step <value>] [--nonodes]
	[-o|--output <out-prefix>]
	<project-file>`,
	Short: "draw project trees as SVG files",
	Long: `
Command draw reads a PhyFix project and draws the trees into SVG-encoded
files.

The argument of the command is the name of the project file.

Branch lengths are drawn in mutation units, using the branch length of a
single mutation defined in the project parameters. Branches are colored by
the number of mutations: from dark blue (few mutations) to dark red (the
branch with most mutations). Branches without mutations are drawn in black.

By default, 10 pixel units will be used per mutation; use the flag --step to
define a different value (it can have decimal points).

By default, the trees are drawn as found in the tree file. If the flag --fixed
is given, the reversions and homoplasies of the trees will be fixed before
drawing them.

By default, all trees in the project will be drawn. If the flag --tree is set,
only the indicated tree will be printed.

By default, the names of internal nodes will be drawn. If the flag --nonodes is
given, then it will draw the tree without internal node names.

By default, the names of the trees will be used as the output file names. Use
the flag -o, or --output, to define a prefix for the resulting files.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var noNodes bool
var fixed bool
var stepX float64
var treeName string
var outPrefix string

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&noNodes, "nonodes", false, "")
	c.Flags().BoolVar(&fixed, "fixed", false, "")
	c.Flags().Float64Var(&stepX, "step", 10, "")
	c.Flags().StringVar(&outPrefix, "output", "", "")
	c.Flags().StringVar(&outPrefix, "o", "", "")
	c.Flags().StringVar(&treeName, "tree", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	if p.Path(project.Trees) == "" {
		return nil
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

	for _, t := range ts {
		if treeName != "" && t.Name() != treeName {
			continue
		}
		st := copyTree(t, unit, stepX)
		if err := writeSVG(t.Name(), st); err != nil {
			return err
		}
	}
	return nil
}

func writeSVG(name string, t svgTree) (err error) {
	if outPrefix != "" {
		name = fmt.Sprintf("%s-%s.svg", outPrefix, name)
	} else {
		name += ".svg"
	}

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

	bw := bufio.NewWriter(f)
	if err := t.draw(bw, !noNodes); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	return nil
}
