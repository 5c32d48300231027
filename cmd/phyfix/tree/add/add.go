// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package add implements a command to add a tree file
// to a PhyFix project.
package add

import (
	"errors"
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/phyfix/project"
)

var Command = &command.Command{
	Usage: "add <project-file> <tree-file>",
	Short: "add a tree file to a PhyFix project",
	Long: `
Command add reads a tree file in Newick format, and sets it as the tree file
of a PhyFix project.

The first argument of the command is the name of the project file. If no
project file exists, a new project will be created.

The second argument is the name of the tree file. The file is read to check
that it is a valid Newick file, and the names of the trees found in the file
are printed in the standard output. If the project already has a tree file,
it will be replaced by the new file.
	`,
	Run: run,
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	if len(args) < 2 {
		return c.UsageError("expecting tree file")
	}

	p, err := openProject(args[0])
	if err != nil {
		return err
	}

	tf := args[1]
	ts, err := project.ReadTrees(tf)
	if err != nil {
		return err
	}
	for _, t := range ts {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("on file %q: tree %q: %v", tf, t.Name(), err)
		}
		fmt.Fprintf(c.Stdout(), "%s\t%d terminals\n", t.Name(), len(t.TermNames()))
	}

	if prev := p.Add(project.Trees, tf); prev != "" && prev != tf {
		fmt.Fprintf(c.Stderr(), "WARNING: tree file %q replaced\n", prev)
	}
	if err := p.Write(); err != nil {
		return err
	}
	return nil
}

func openProject(name string) (*project.Project, error) {
	p, err := project.Read(name)
	if errors.Is(err, os.ErrNotExist) {
		p := project.New()
		p.SetName(name)
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open project %q: %v", name, err)
	}
	return p, nil
}
