// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package mut is a metapackage for commands
// that dealt with the mutations of the tree branches.
package mut

import (
	"github.com/js-arias/command"
	"github.com/js-arias/phyfix/cmd/phyfix/mut/add"
	"github.com/js-arias/phyfix/cmd/phyfix/mut/stats"
)

var Command = &command.Command{
	Usage: "mut <command> [<argument>...]",
	Short: "commands for branch mutations",
}

func init() {
	Command.Add(add.Command)
	Command.Add(stats.Command)
}
