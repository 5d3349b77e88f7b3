// Package graph builds the transitive dependency graph of a single root
// package by repeatedly asking a source.Source for direct dependencies.
//
// # Architecture
//
// The package separates the traversal from the result:
//
//   - [Build]: iterative depth-first traversal with cycle detection
//   - [Graph]: the finished node set, immutable once returned
//   - [CycleEdge]: one back edge discovered during traversal
//
// Renderers and exporters consume [Graph] and []CycleEdge; they never see
// traversal internals such as the stack or ancestry paths.
//
// # Traversal Semantics
//
// Build uses an explicit stack instead of recursion, so arbitrarily deep
// dependency chains cannot overflow the goroutine stack. Each stack frame
// carries the ancestry path that discovered it; a dependency already on that
// path is recorded as a [CycleEdge] and never pushed, which guarantees
// termination. Every package is expanded at most once: later frames for an
// already-expanded name are skipped when popped.
//
// Dependency resolution failures are asymmetric. A failure on the root
// package aborts Build with the source's error; a failure on any other
// package degrades that package to an empty dependency list, reported
// through Options.Logger, and the traversal continues.
//
// # Filtering
//
// Options.Filter drops every dependency whose name contains the filter as a
// substring, before it is recorded or expanded. Filtering is transitive (a
// dropped package's own dependencies are never fetched) but not retroactive:
// packages reached earlier through unfiltered paths stay in the graph. A
// root whose name matches the filter is rejected up front.
//
// # Example
//
//	src, _ := source.NewFixture("deps.txt")
//	g, cycles, err := graph.Build(ctx, src, "app", graph.Options{Filter: "test"})
//	if err != nil {
//	    return err
//	}
//	for _, name := range g.Nodes() {
//	    fmt.Println(name, g.Dependencies(name))
//	}
//	for _, e := range cycles {
//	    fmt.Println(e)
//	}
package graph
