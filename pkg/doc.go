// Package pkg provides the core libraries for Cratemap dependency mapping.
//
// # Overview
//
// Cratemap computes the transitive dependency graph of a Cargo package and
// renders it as text, an ASCII tree, or an exportable diagram. The pkg
// directory is organized into four main areas:
//
//  1. [source] - Dependency sources (fixture files, repository checkouts, crates.io)
//  2. [graph] - Graph construction, cycle detection, and filtering
//  3. [export] - Serialization and diagram rendering (JSON, DOT, SVG, PNG)
//  4. [cache] - Cache backends shared by the registry client (file, Redis, MongoDB)
//
// # Architecture
//
// The typical data flow through Cratemap:
//
//	Fixture File/Repository/crates.io
//	         ↓
//	    [source] package (resolve direct dependencies)
//	         ↓
//	    [graph] package (transitive traversal + cycle detection)
//	         ↓
//	    [export] package (JSON/DOT/SVG/PNG output)
//
// # Quick Start
//
// Resolve a crate against crates.io and export its graph:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/cratemap/pkg/export"
//	    "github.com/matzehuels/cratemap/pkg/graph"
//	    "github.com/matzehuels/cratemap/pkg/integrations/crates"
//	    "github.com/matzehuels/cratemap/pkg/source"
//	)
//
//	// 1. Create a dependency source
//	client := crates.NewClient(crates.Options{})
//	src, _ := source.NewRegistry(client)
//	defer src.Close()
//
//	// 2. Build the transitive graph
//	g, cycles, _ := graph.Build(context.Background(), src, "serde", graph.Options{})
//
//	// 3. Export it
//	_ = export.ToFile(g, cycles, "serde.svg", export.FormatSVG)
//
// # Main Packages
//
// ## Dependency Resolution
//
// [source] - The Source interface plus its three implementations: FixtureSource
// (plain-text dependency lists for tests and demos), RepoSource (a checked-out
// repository tree with Cargo manifests), and RegistrySource (live crates.io
// resolution with durable manifest caching). Also hosts Clone for fetching a
// repository into a scratch directory.
//
// [manifest] - Minimal Cargo.toml reading: Parse extracts the package name and
// declared dependencies, Locate walks a repository tree to find the manifest
// belonging to a named package.
//
// [graph] - The dependency graph model and Build, the traversal that expands a
// root package into its full transitive closure. Detects cycles without
// descending into them and supports substring filtering of package names.
//
// ## External Integrations
//
// [integrations] - Shared HTTP client with transparent response caching.
//
// [integrations/crates] - crates.io API client: latest-version lookup and
// source tarball download/unpacking.
//
// ## Output
//
// [export] - Graph serialization (node-link JSON, Graphviz DOT) and rendered
// diagrams (SVG, PNG) with format detection from file extensions.
//
// [render/nodelink] - Node-link diagram construction on top of Graphviz.
//
// ## Infrastructure
//
// [cache] - Cache backends behind a single interface: FileCache for the CLI,
// RedisCache and MongoCache for shared deployments, NullCache to disable
// caching, and ScopedCache for key namespacing.
//
// [config] - TOML configuration for registry access and cache selection.
//
// [errors] - Coded errors with user-facing messages, plus input validation
// helpers for package names and URLs.
//
// [scratch] - Disposable working directories for downloads and clones.
//
// [observability] - Debug hooks that stream resolution events to a logger.
//
// [buildinfo] - Version metadata and the User-Agent string sent to crates.io.
//
// # Common Workflows
//
// Resolve from a local repository instead of the registry:
//
//	src, _ := source.NewRepo("/path/to/checkout")
//	g, cycles, _ := graph.Build(ctx, src, "my-crate", graph.Options{})
//
// Restrict the graph to matching package names:
//
//	g, cycles, _ := graph.Build(ctx, src, "serde", graph.Options{Filter: "serde"})
//
// Share one cache backend across key namespaces:
//
//	backend, _ := cache.NewFileCache(dir)
//	versions := cache.NewScoped(backend, "crates:")
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/graph/...        # Specific package
//	go test -run Example           # Examples only
//
// [source]: https://pkg.go.dev/github.com/matzehuels/cratemap/pkg/source
// [manifest]: https://pkg.go.dev/github.com/matzehuels/cratemap/pkg/manifest
// [graph]: https://pkg.go.dev/github.com/matzehuels/cratemap/pkg/graph
// [integrations]: https://pkg.go.dev/github.com/matzehuels/cratemap/pkg/integrations
// [integrations/crates]: https://pkg.go.dev/github.com/matzehuels/cratemap/pkg/integrations/crates
// [export]: https://pkg.go.dev/github.com/matzehuels/cratemap/pkg/export
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/cratemap/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/cratemap/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/cratemap/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/cratemap/pkg/errors
// [scratch]: https://pkg.go.dev/github.com/matzehuels/cratemap/pkg/scratch
// [observability]: https://pkg.go.dev/github.com/matzehuels/cratemap/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/cratemap/pkg/buildinfo
package pkg
