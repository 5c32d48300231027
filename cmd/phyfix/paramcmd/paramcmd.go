// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package paramcmd implements a command to manage
// the parameters used to fix the trees.
package paramcmd

import (
	"fmt"
	"io"

	"github.com/js-arias/command"
	"github.com/js-arias/phyfix/param"
	"github.com/js-arias/phyfix/project"
)

var Command = &command.Command{
	Usage: `param [--add <param-file>] [--file <file-name>]
	[--onemut <value>] [--seqlen <number>]
	[--iter <number>] [--precision <number>]
	<project-file>`,
	Short: "manage fixing parameters",
	Long: `
Command param manages the parameters used to fix the trees of a PhyFix
project.

The argument of the command is the name of the project file.

By default, the command will print the currently defined parameters.

If the flag --add is defined, it will use the indicated file for the
parameters.

By default, any change on the parameters will be stored in the current
parameters file. If the project does not have a parameters file, a new one
will be created with the name 'params.tab'. Use the flag --file to define a
new parameters file.

To set the branch length of a single mutation use the flag --onemut.
Alternatively, the flag --seqlen can be used to set the length of the aligned
sequences, and the branch length of a single mutation will be set as the
inverse of the sequence length. If both values are defined, the value of
--onemut has precedence.

To set the maximum number of iterations use the flag --iter. The default
value is 5.

To set the number of decimal digits used to write the branch lengths use the
flag --precision. The default value is 8.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var addFile string
var paramFile string
var oneMut float64
var seqLen int
var iter int
var precision int

func setFlags(c *command.Command) {
	c.Flags().StringVar(&addFile, "add", "", "")
	c.Flags().StringVar(&paramFile, "file", "", "")
	c.Flags().Float64Var(&oneMut, "onemut", 0, "")
	c.Flags().IntVar(&seqLen, "seqlen", 0, "")
	c.Flags().IntVar(&iter, "iter", 0, "")
	c.Flags().IntVar(&precision, "precision", 0, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	if addFile != "" {
		if _, err := param.Read(addFile); err != nil {
			return err
		}
		p.Add(project.Params, addFile)
		if err := p.Write(); err != nil {
			return err
		}
		return nil
	}

	pm, err := p.Params()
	if err != nil {
		return err
	}
	if paramFile != "" {
		pm.SetName(paramFile)
	}
	if pm.Name() == "" {
		pm.SetName("params.tab")
	}

	ed := false
	if oneMut > 0 {
		if err := pm.SetOneMutation(oneMut); err != nil {
			return err
		}
		ed = true
	}
	if seqLen > 0 {
		if err := pm.SetSeqLen(seqLen); err != nil {
			return err
		}
		ed = true
	}
	if iter > 0 {
		if err := pm.SetIterations(iter); err != nil {
			return err
		}
		ed = true
	}
	if precision > 0 {
		if err := pm.SetPrecision(precision); err != nil {
			return err
		}
		ed = true
	}

	if p.Path(project.Params) != pm.Name() {
		if !ed && paramFile == "" {
			printParams(c.Stdout(), pm)
			return nil
		}
		if err := pm.Write(); err != nil {
			return err
		}
		p.Add(project.Params, pm.Name())
		if err := p.Write(); err != nil {
			return err
		}
		return nil
	}
	if ed {
		if err := pm.Write(); err != nil {
			return err
		}
		return nil
	}

	printParams(c.Stdout(), pm)
	return nil
}

func printParams(w io.Writer, pm *param.P) {
	fmt.Fprintf(w, "file:         %s\n", pm.Name())
	if l := pm.SeqLen(); l > 0 {
		fmt.Fprintf(w, "seq. length:  %d\n", l)
	}
	if m := pm.OneMutation(); m > 0 {
		fmt.Fprintf(w, "one mutation: %g\n", m)
	} else {
		fmt.Fprintf(w, "one mutation: undefined\n")
	}
	fmt.Fprintf(w, "iterations:   %d\n", pm.Iterations())
	fmt.Fprintf(w, "precision:    %d\n", pm.Precision())
}
