// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// PhyFix is a tool to clean up the mutations
// inferred on a phylogenetic tree.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/phyfix/cmd/phyfix/fix"
	"github.com/js-arias/phyfix/cmd/phyfix/mut"
	"github.com/js-arias/phyfix/cmd/phyfix/paramcmd"
	"github.com/js-arias/phyfix/cmd/phyfix/prj"
	"github.com/js-arias/phyfix/cmd/phyfix/tree"
)

var app = &command.Command{
	Usage: "phyfix <command> [<argument>...]",
	Short: "a tool to fix reversions and homoplasies on mutation trees",
}

func init() {
	app.Add(fix.Command)
	app.Add(mut.Command)
	app.Add(paramcmd.Command)
	app.Add(prj.Command)
	app.Add(tree.Command)
}

func main() {
	app.Main()
}
