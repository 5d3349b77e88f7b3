// Package integrations provides HTTP clients for package registry APIs.
//
// # Overview
//
// This package contains low-level API clients for fetching package metadata
// and archives from remote registries. Each registry has its own subpackage:
//
//   - [crates]: Rust crates.io
//
// # Client Pattern
//
// Registry clients follow a consistent pattern:
//
//	client, err := crates.NewClient(crates.Options{})
//	version, err := client.LatestVersion(ctx, "serde")
//
// Clients handle:
//   - Single-attempt HTTP requests (no retries; the caller decides what is fatal)
//   - Response caching via a [cache.Cache] backend (configurable TTL)
//   - API-specific parsing and normalization
//
// # Shared Infrastructure
//
// The [Client] type provides shared HTTP functionality used by registry
// clients, including response caching and observability hooks.
//
// [crates]: github.com/matzehuels/cratemap/pkg/integrations/crates
// [cache.Cache]: github.com/matzehuels/cratemap/pkg/cache.Cache
package integrations
