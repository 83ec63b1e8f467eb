package analyzer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT converts an analysis tree to Graphviz DOT format. Each artifact
// appears once, labeled with its full id and own size; edges follow the
// parent-child structure of the tree. The resulting DOT string can be
// rendered with [RenderSVG].
func ToDOT(root *Node) string {
	var buf bytes.Buffer
	buf.WriteString("digraph deps {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white];\n")
	buf.WriteString("\n")

	declared := make(map[string]bool)
	var edges []string
	seenEdge := make(map[string]bool)
	collectDOT(root, declared, &buf, &edges, seenEdge)

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func collectDOT(n *Node, declared map[string]bool, buf *bytes.Buffer, edges *[]string, seenEdge map[string]bool) {
	id := n.Coordinate.FullID()
	if !declared[id] {
		declared[id] = true
		label := fmt.Sprintf("%s\n%d bytes", id, n.Size)
		fmt.Fprintf(buf, "  %q [label=%q];\n", id, label)
	}
	for _, c := range n.Children {
		edge := fmt.Sprintf("  %q -> %q;\n", id, c.Coordinate.FullID())
		if !seenEdge[edge] {
			seenEdge[edge] = true
			*edges = append(*edges, edge)
		}
		collectDOT(c, declared, buf, edges, seenEdge)
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
