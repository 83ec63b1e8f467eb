package analyzer

import (
	"sort"
	"sync"

	"github.com/matzehuels/depsize/pkg/maven"
)

// Node is one artifact in the analyzed dependency tree: its coordinate,
// the manifest location it was fetched from, its own artifact size in
// bytes, and the set of child nodes.
//
// The child slice behaves as a set: structurally equal subtrees reached
// through different branches of a diamond collapse into a single entry.
// Children are ordered by descending total size, then by full id, which
// makes rendered reports deterministic.
//
// Nodes are immutable once built.
type Node struct {
	Coordinate maven.Coordinate
	Location   string
	Size       int64
	Children   []*Node

	totalOnce sync.Once
	total     int64
}

// newNode finalizes a node: children are deduplicated by structural
// equality and sorted into the documented order.
func newNode(coord maven.Coordinate, location string, size int64, children []*Node) *Node {
	children = dedupe(children)
	sort.Slice(children, func(i, j int) bool {
		a, b := children[i], children[j]
		if a.TotalSize() != b.TotalSize() {
			return a.TotalSize() > b.TotalSize()
		}
		return a.Coordinate.FullID() < b.Coordinate.FullID()
	})
	return &Node{Coordinate: coord, Location: location, Size: size, Children: children}
}

// TotalSize returns the node's own size plus every descendant's own size.
// The sum is computed bottom-up on first use and cached; the tree is
// immutable once built.
func (n *Node) TotalSize() int64 {
	n.totalOnce.Do(func() {
		n.total = n.Size
		for _, c := range n.Children {
			n.total += c.TotalSize()
		}
	})
	return n.total
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	count := 1
	for _, c := range n.Children {
		count += c.Count()
	}
	return count
}

// Equal reports deep structural equality: two nodes are equal iff their
// coordinate, own size, and entire child sets match. The manifest location
// is deliberately not part of identity — the same artifact fetched from a
// mirror is still the same artifact.
func (n *Node) Equal(o *Node) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil {
		return false
	}
	if n.Coordinate != o.Coordinate || n.Size != o.Size {
		return false
	}
	return childSetsEqual(n.Children, o.Children)
}

// childSetsEqual compares two child slices as sets under Node.Equal.
func childSetsEqual(a, b []*Node) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
outer:
	for _, x := range a {
		for i, y := range b {
			if !used[i] && x.Equal(y) {
				used[i] = true
				continue outer
			}
		}
		return false
	}
	return true
}

// dedupe drops structurally equal duplicates, keeping first occurrences.
func dedupe(children []*Node) []*Node {
	if len(children) < 2 {
		return children
	}
	out := children[:0]
outer:
	for _, c := range children {
		for _, kept := range out {
			if kept.Equal(c) {
				continue outer
			}
		}
		out = append(out, c)
	}
	return out
}
