package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/cratemap/pkg/graph"
)

// renderText formats the graph as the flat dependency listing. One line per
// package in sorted order, `name: dep1, dep2` or `name: (no dependencies)`,
// followed by one line per cycle edge. This byte layout is the command's
// output contract; keep it free of styling.
func renderText(g *graph.Graph, cycles []graph.CycleEdge) string {
	var b strings.Builder
	for _, name := range g.Nodes() {
		deps := g.Dependencies(name)
		if len(deps) == 0 {
			fmt.Fprintf(&b, "%s: (no dependencies)\n", name)
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", name, strings.Join(deps, ", "))
	}
	for _, e := range cycles {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// renderTree formats the graph as an ASCII tree rooted at the root package,
// following each package's dependency list in declaration order.
//
// A dependency that is an ancestor of the current branch renders as
// `name (cycle)` and is not descended into. A package whose subtree was
// already printed renders as `name (*)` when that subtree is non-empty;
// leaf packages repeat without a mark since nothing is elided.
func renderTree(g *graph.Graph) string {
	var b strings.Builder
	root := g.Root()
	b.WriteString(root + "\n")
	treeWalk(&b, g, root, "", []string{root}, map[string]bool{root: true})
	return b.String()
}

// Tree drawing connectors, plain ASCII so output survives any terminal.
const (
	treeBranch     = "|-- "
	treeLastBranch = "`-- "
	treePipe       = "|   "
	treeBlank      = "    "
)

func treeWalk(b *strings.Builder, g *graph.Graph, pkg, prefix string, path []string, printed map[string]bool) {
	deps := g.Dependencies(pkg)
	for i, dep := range deps {
		connector, childPrefix := treeBranch, treePipe
		if i == len(deps)-1 {
			connector, childPrefix = treeLastBranch, treeBlank
		}

		switch {
		case slices.Contains(path, dep):
			fmt.Fprintf(b, "%s%s%s (cycle)\n", prefix, connector, dep)
		case printed[dep]:
			mark := ""
			if len(g.Dependencies(dep)) > 0 {
				mark = " (*)"
			}
			fmt.Fprintf(b, "%s%s%s%s\n", prefix, connector, dep, mark)
		default:
			fmt.Fprintf(b, "%s%s%s\n", prefix, connector, dep)
			printed[dep] = true
			childPath := make([]string, len(path)+1)
			copy(childPath, path)
			childPath[len(path)] = dep
			treeWalk(b, g, dep, prefix+childPrefix, childPath, printed)
		}
	}
}
