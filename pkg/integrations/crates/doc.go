// Package crates provides an HTTP client for the crates.io API.
//
// # Overview
//
// This package resolves crate versions and downloads crate sources from
// crates.io (https://crates.io), the Rust community's package registry.
//
// # Usage
//
//	client := crates.NewClient(crates.Options{})
//
//	version, err := client.LatestVersion(ctx, "serde")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = client.DownloadTo(ctx, "serde", version, dir)
//
// # Version Selection
//
// [Client.LatestVersion] prefers max_stable_version and falls back to
// max_version for crates that have only pre-releases.
//
// # Caching
//
// The client scopes every cache key under the "crates:" namespace, so one
// backend can be shared with other integrations. Version lookups land under
// "crates:<name>" with the configured TTL. Tarball downloads stream straight
// to disk and are never cached.
//
// # User-Agent
//
// The client includes a User-Agent header as requested by crates.io policy.
package crates
