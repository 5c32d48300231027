// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/evolbioinfo/gotree/io/newick"
	gtree "github.com/evolbioinfo/gotree/tree"
	"github.com/js-arias/phyfix/mutation"
)

// ReadNewick reads one or more trees in Newick format.
// Each tree must end with a semicolon.
//
// Branch lengths are read as given.
// Comments (enclosed in square brackets) are ignored,
// except annotations of the mutations of a branch,
// in the form:
//
//	[&mutations="G10A,G11A"]
//
// The annotation can be placed after the node label
// or after the branch length.
// The key "muts" is also accepted.
// Malformed mutations in annotations are ignored.
func ReadNewick(r io.Reader) ([]*Tree, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var trees []*Tree
	for _, s := range splitNewick(string(b)) {
		if !strings.HasSuffix(s, ";") {
			return nil, fmt.Errorf("tree %d: expecting ';' at end of tree", len(trees)+1)
		}
		gt, err := newick.NewParser(strings.NewReader(s)).Parse()
		if err != nil {
			return nil, fmt.Errorf("tree %d: %v", len(trees)+1, err)
		}
		t := New()
		copyNode(t, 0, gt.Root(), nil)
		trees = append(trees, t)
	}
	if len(trees) == 0 {
		return nil, fmt.Errorf("no trees found")
	}
	return trees, nil
}

// SplitNewick returns each tree of a Newick string,
// semicolons inside quoted labels
// or comments
// are not tree terminators.
func splitNewick(s string) []string {
	var trees []string
	var quoted bool
	var comment int
	start := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case quoted:
			if c == '\'' {
				quoted = false
			}
		case c == '\'':
			quoted = true
		case c == '[':
			comment++
		case c == ']':
			if comment > 0 {
				comment--
			}
		case c == ';' && comment == 0:
			trees = append(trees, strings.TrimSpace(s[start:i+1]))
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" {
		trees = append(trees, rest)
	}
	return trees
}

// CopyNode copies a parsed node
// (and all of its descendants)
// into an already created node.
func copyNode(t *Tree, id int, n, prev *gtree.Node) {
	t.SetNodeName(id, n.Name())
	setAnnotations(t, id, n.Comments())

	edges := n.Edges()
	for i, c := range n.Neigh() {
		if c == prev {
			continue
		}
		e := edges[i]
		l := e.Length()
		if l < 0 {
			// unset length
			l = 0
		}
		cID, _ := t.Add(id, "", l)
		setAnnotations(t, cID, e.Comments())
		copyNode(t, cID, c, n)
	}
}

func setAnnotations(t *Tree, id int, comments []string) {
	for _, cm := range comments {
		cm = strings.TrimSpace(strings.Trim(cm, "[]"))
		if !strings.HasPrefix(cm, "&") {
			continue
		}
		kv := parseAnnotation(cm[1:])
		v, ok := kv["mutations"]
		if !ok {
			v, ok = kv["muts"]
		}
		if !ok {
			continue
		}
		muts, _ := mutation.ParseList(v)
		t.SetMutations(id, muts)
	}
}

// ParseAnnotation reads the key=value pairs
// of a comment,
// values can be quoted
// or enclosed in braces.
func parseAnnotation(s string) map[string]string {
	kv := make(map[string]string)
	for s != "" {
		s = strings.TrimLeft(s, ", ")
		eq := strings.IndexByte(s, '=')
		if eq < 0 {
			break
		}
		key := strings.ToLower(strings.TrimSpace(s[:eq]))
		s = s[eq+1:]

		var val string
		switch {
		case strings.HasPrefix(s, `"`):
			end := strings.IndexByte(s[1:], '"')
			if end < 0 {
				val, s = s[1:], ""
				break
			}
			val, s = s[1:end+1], s[end+2:]
		case strings.HasPrefix(s, "{"):
			end := strings.IndexByte(s, '}')
			if end < 0 {
				val, s = s[1:], ""
				break
			}
			val, s = s[1:end], s[end+1:]
		default:
			end := strings.IndexByte(s, ',')
			if end < 0 {
				val, s = s, ""
				break
			}
			val, s = s[:end], s[end:]
		}
		kv[key] = val
	}
	return kv
}

// NewickOptions are the options
// used to write a tree in Newick format.
type NewickOptions struct {
	// Number of decimal digits of branch lengths.
	Precision int

	// If true, the relevant mutations of each branch
	// are written as a comment.
	Mutations bool
}

// DefaultPrecision is the default number of decimal digits
// used for branch lengths.
const DefaultPrecision = 8

// Newick writes a tree in Newick format.
func (t *Tree) Newick(w io.Writer, opt NewickOptions) error {
	if opt.Precision <= 0 {
		opt.Precision = DefaultPrecision
	}

	bw := bufio.NewWriter(w)
	t.writeNode(bw, 0, opt)
	bw.WriteString(";\n")
	return bw.Flush()
}

func (t *Tree) writeNode(w *bufio.Writer, id int, opt NewickOptions) {
	n := t.nodes[id]
	if len(n.children) > 0 {
		w.WriteByte('(')
		for i, c := range n.children {
			if i > 0 {
				w.WriteByte(',')
			}
			t.writeNode(w, c, opt)
		}
		w.WriteByte(')')
	}

	w.WriteString(quoteLabel(n.name))
	if opt.Mutations && n.relevant.Len() > 0 {
		fmt.Fprintf(w, "[&mutations=\"%s\"]", n.relevant.String())
	}
	if id != 0 || n.length > 0 {
		w.WriteByte(':')
		w.WriteString(strconv.FormatFloat(n.length, 'f', opt.Precision, 64))
	}
}

func quoteLabel(s string) string {
	if !strings.ContainsAny(s, "(),:;[]' \t") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// ApplyTable sets the mutations of the nodes of the tree
// from a mutation table.
// It returns the names of the nodes in the table
// not found in the tree.
func (t *Tree) ApplyTable(tab *mutation.Table) []string {
	ids := make(map[string]int)
	for _, id := range t.Preorder() {
		if n := t.nodes[id].name; n != "" {
			ids[n] = id
		}
	}

	var missing []string
	for _, name := range tab.Nodes() {
		id, ok := ids[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		t.SetMutations(id, tab.Mutations(name))
	}
	return missing
}
