package graph

import (
	"fmt"
	"slices"
)

// Graph is the transitive dependency graph of one root package. Every key
// was visited exactly once; its value is the package's filtered direct
// dependency list in declaration order.
//
// The zero value is not usable - Build constructs valid graphs. Graph is
// not safe for concurrent mutation, but reads may be shared after Build
// returns.
type Graph struct {
	root  string
	nodes map[string][]string
}

// Root returns the root package name the graph was built from.
func (g *Graph) Root() string { return g.root }

// Len returns the number of packages in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// Has reports whether pkg was visited during the build.
func (g *Graph) Has(pkg string) bool {
	_, ok := g.nodes[pkg]
	return ok
}

// Nodes returns all package names in lexicographic order.
func (g *Graph) Nodes() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Dependencies returns the filtered direct dependencies of pkg in
// declaration order, or nil when pkg is not in the graph. The returned
// slice is a read-only view.
func (g *Graph) Dependencies(pkg string) []string {
	return g.nodes[pkg]
}

// CycleEdge marks a dependency edge that points back to an ancestor on the
// traversal path that discovered it. From depends on To, and To is an
// ancestor of From.
type CycleEdge struct {
	From string
	To   string
}

// String renders the edge the way reports print it.
func (e CycleEdge) String() string {
	return fmt.Sprintf("%s -> %s (cycle)", e.From, e.To)
}
