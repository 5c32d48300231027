// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package main

import "github.com/js-arias/command"

func init() {
	app.Add(mutationFilesGuide)
	app.Add(paramFilesGuide)
	app.Add(projectsGuide)
	app.Add(treeFilesGuide)
}

var projectsGuide = &command.Command{
	Usage: "projects",
	Short: "about project files",
	Long: `
PhyFix requires a tree and the mutations assigned to its branches. To reduce
the burden of keeping track of several files, a single project file is used to
hold the reference of all files required in the analysis. This guide explains
the structure of the file, but most of the time, the best way to edit or view
this file is by using phyfix commands.

A project file is a tab-delimited file with the following fields:

	- dataset  for the kind of file
	- path     for the path of the file

Here is an example file:

	# phyfix project files
	dataset	path
	mutations	nt-muts.json
	params	params.tab
	trees	tree.nwk

The valid file types are:

- Mutation tables. Defined by the dataset keyword "mutations". This file
  contains the mutations inferred for each node of the trees, either as a
  tab-delimited file, or as a node-data JSON file. The recommended way to add
  a mutation table is by using the command 'phyfix mut add'.
- Parameters. Defined by the dataset keyword "params". This file contains the
  parameters used to fix the trees in the form of a tab-delimited file. The
  recommended way to add or edit the parameters is by using the command
  'phyfix param'.
- Trees. Defined by the dataset keyword "trees". This file contains one or
  more trees in Newick format. The recommended way to add a tree file is by
  using the command 'phyfix tree add'.
	`,
}

var treeFilesGuide = &command.Command{
	Usage: "tree-files",
	Short: "about tree files",
	Long: `
In PhyFix, trees are stored as Newick (parenthetical) files. A file might
contain several trees, each one ending with a semicolon.

Branch lengths are read as given, and internal nodes can be named. Names with
spaces or special characters must be enclosed in single quotes.

Comments (enclosed in square brackets) are ignored, except for mutation
annotations, which define the mutations of the branch that ends in the node,
for example:

	((a:0.1,b:0.2[&mutations="C40T"])NODE_2:0.05[&mutations="G10A,G11A"],c:0.3)NODE_1;

The annotation can be placed after the node name or after the branch length,
but not before the node. The key "muts" is also accepted, and the list of
mutations can be enclosed in curly braces. Terminal names must be unique.

Trees written by 'phyfix fix' use the same format, with branch lengths
written with a fixed number of decimal digits (8 by default).

If a file has a single unnamed tree, the tree will be named after the file.
If it has several unnamed trees, the position of the tree in the file will be
added to the name.
	`,
}

var mutationFilesGuide = &command.Command{
	Usage: "mutation-files",
	Short: "about mutation files",
	Long: `
A mutation is written as the ancestral base, the position (starting at 1) in
the alignment, and the derived base, for example, G123A. Bases are IUPAC
nucleotide codes, or a gap ('-'). Only mutations between unambiguous bases
(A, C, G, T) are taken into account when fixing a tree. Tokens that are not
valid mutations are reported and ignored.

Mutation tables can be given as a tab-delimited file with the following
fields:

	- node       the name of the node
	- mutations  the mutations of the branch that ends in the node,
	             separated by commas

Here is an example file:

	# phyfix mutations
	node	mutations
	NODE_1
	NODE_2	G10A,G11A
	hMpxV/USA/MA001/2022	C40T

Mutation tables can also be given as node-data JSON files, in which only the
"muts" field of each node is read:

	{
	  "nodes": {
	    "NODE_2": {"muts": ["G10A", "G11A"]},
	    "hMpxV/USA/MA001/2022": {"muts": ["C40T"]}
	  }
	}

Files with the ".json" extension are read as node-data JSON files. Any other
file is read as a tab-delimited file.
	`,
}

var paramFilesGuide = &command.Command{
	Usage: "param-files",
	Short: "about parameter files",
	Long: `
The parameters used to fix a tree are stored in a tab-delimited file with the
following fields:

	- parameter  the name of the parameter
	- value      the value of the parameter

Here is an example file:

	# phyfix parameters
	parameter	value
	iterations	5
	precision	8
	seqlen	197209

The valid parameters are:

- iterations: the maximum number of iterations of the fixing procedure. By
  default it is 5.
- onemutation: the branch length of a single mutation.
- precision: the number of decimal digits of the branch lengths in output
  trees. By default it is 8.
- seqlen: the length of the aligned sequences. If there is no explicit value
  for onemutation, the branch length of a single mutation will be
  1 / seqlen.
	`,
}
