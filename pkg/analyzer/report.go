package analyzer

import (
	"fmt"
	"io"
	"strings"
)

// Render writes the textual size report for the tree rooted at n:
// one line per node, indented two spaces per depth level, each showing the
// full id and the node's own size in bytes, followed by a single total
// line at the root.
//
//	org.example:app:1.0 (1024)
//	  org.example:lib:2.0 (512)
//	Total size: 1 Kb (1536)
func (n *Node) Render(w io.Writer) error {
	if err := renderTree(w, n, 0); err != nil {
		return err
	}
	total := n.TotalSize()
	_, err := fmt.Fprintf(w, "Total size: %d Kb (%d)\n", total/1024, total)
	return err
}

func renderTree(w io.Writer, n *Node, depth int) error {
	if _, err := fmt.Fprintf(w, "%s%s (%d)\n",
		strings.Repeat("  ", depth), n.Coordinate.FullID(), n.Size); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := renderTree(w, c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// String returns the rendered report.
func (n *Node) String() string {
	var sb strings.Builder
	_ = n.Render(&sb)
	return sb.String()
}
