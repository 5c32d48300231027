// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package add implements a command to add a mutation table
// to a PhyFix project.
package add

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/js-arias/command"
	"github.com/js-arias/phyfix/mutation"
	"github.com/js-arias/phyfix/project"
)

var Command = &command.Command{
	Usage: "add [--tsv <file>] <project-file> <mutation-file>",
	Short: "add a mutation table to a PhyFix project",
	Long: `
Command add reads a mutation table, and sets it as the mutation table of a
PhyFix project.

The first argument of the command is the name of the project file. If no
project file exists, a new project will be created.

The second argument is the name of the mutation file. Files with the ".json"
extension are read as node-data JSON files, any other file is read as a
tab-delimited file (see 'phyfix help mutation-files'). The file is read to
check that it is a valid mutation file, and any malformed mutation will be
reported in the standard error.

If the flag --tsv is given, the mutation table will be written as a
tab-delimited file with the indicated name, and this new file will be used as
the mutation table of the project. Malformed mutations are not written into
the new file.

If the project has a tree file, the nodes in the mutation table that are not
found in the trees of the project will be reported in the standard error.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var tsvFile string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&tsvFile, "tsv", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	if len(args) < 2 {
		return c.UsageError("expecting mutation file")
	}

	p, err := openProject(args[0])
	if err != nil {
		return err
	}

	mf := args[1]
	tab, err := project.ReadMutations(mf)
	if err != nil {
		return err
	}
	for _, b := range tab.Malformed() {
		fmt.Fprintf(c.Stderr(), "WARNING: on file %q: malformed mutation %q\n", mf, b)
	}

	if tf := p.Path(project.Trees); tf != "" {
		ts, err := project.ReadTrees(tf)
		if err != nil {
			return err
		}
		for _, t := range ts {
			for _, n := range t.ApplyTable(tab) {
				fmt.Fprintf(c.Stderr(), "WARNING: tree %q: node %q not found\n", t.Name(), n)
			}
		}
	}

	if tsvFile != "" {
		if err := writeTable(tsvFile, tab); err != nil {
			return err
		}
		mf = tsvFile
	}

	p.Add(project.Mutations, mf)
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

func writeTable(name string, tab *mutation.Table) (err error) {
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
	fmt.Fprintf(bw, "# phyfix mutations\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	if err := tab.TSV(bw); err != nil {
		return fmt.Errorf("while writing to %q: %v", name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing to %q: %v", name, err)
	}
	return nil
}
