// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package prj implements a command to print
// the basic information of a project.
package prj

import (
	"fmt"
	"io"

	"github.com/js-arias/command"
	"github.com/js-arias/phyfix/project"
)

var Command = &command.Command{
	Usage: "prj <project-file>",
	Short: "print information about a project",
	Long: `
Command prj reads a PhyFix project and prints the information of the different
project elements into the standard output.

The argument of the command is the name of the project file.
	`,
	Run: run,
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	if err := readTrees(c.Stdout(), p.Path(project.Trees)); err != nil {
		return err
	}
	if err := readMutations(c.Stdout(), p.Path(project.Mutations)); err != nil {
		return err
	}
	pm, err := p.Params()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Stdout(), "Parameters [%s]:\n", p.Path(project.Params))
	if m := pm.OneMutation(); m > 0 {
		fmt.Fprintf(c.Stdout(), "\tone mutation: %g\n", m)
	} else {
		fmt.Fprintf(c.Stdout(), "\tone mutation: undefined\n")
	}
	fmt.Fprintf(c.Stdout(), "\titerations: %d\n", pm.Iterations())
	fmt.Fprintf(c.Stdout(), "\tprecision: %d\n", pm.Precision())
	return nil
}

func readTrees(w io.Writer, name string) error {
	if name == "" {
		fmt.Fprintf(w, "Trees: undefined\n")
		return nil
	}

	ts, err := project.ReadTrees(name)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Trees [%s]:\n", name)
	for _, t := range ts {
		fmt.Fprintf(w, "\t%s\tnodes: %d\tterms: %d\n", t.Name(), len(t.Preorder()), len(t.TermNames()))
	}
	return nil
}

func readMutations(w io.Writer, name string) error {
	if name == "" {
		fmt.Fprintf(w, "Mutations: undefined\n")
		return nil
	}

	tab, err := project.ReadMutations(name)
	if err != nil {
		return err
	}
	var muts int
	for _, n := range tab.Nodes() {
		muts += len(tab.Mutations(n))
	}
	fmt.Fprintf(w, "Mutations [%s]:\n", name)
	fmt.Fprintf(w, "\tnodes: %d\n", len(tab.Nodes()))
	fmt.Fprintf(w, "\tmutations: %d\n", muts)
	if bad := tab.Malformed(); len(bad) > 0 {
		fmt.Fprintf(w, "\tmalformed: %d\n", len(bad))
	}
	return nil
}
