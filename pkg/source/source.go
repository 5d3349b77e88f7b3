// Package source abstracts where dependency data comes from.
//
// A [Source] answers one question: what are the direct dependencies of a
// package? Three strategies implement it. [FixtureSource] reads a static
// map from a line-oriented file, [RepoSource] walks a local or cloned tree
// for manifests, and [RegistrySource] downloads crate archives from a
// package registry. The strategy is selected once at startup; the graph
// builder only sees the interface.
package source

import (
	"context"
)

// Source yields the direct dependencies of packages by name. Implementations
// memoize per package, so a dependency list is resolved at most once per run
// no matter how many packages share it.
//
// Sources do not decide what is fatal: they return errors with full context
// and leave the degrade-or-abort policy to the caller.
type Source interface {
	// Name returns the strategy identifier (e.g., "fixture", "repo", "registry").
	Name() string
	// DependenciesOf returns the direct dependencies of pkg in declaration
	// order, deduplicated.
	DependenciesOf(ctx context.Context, pkg string) ([]string, error)
	// Close releases resources held by the source.
	Close() error
}
