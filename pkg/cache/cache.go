// Package cache provides pluggable byte caches for registry lookups and
// downloaded manifests.
//
// A Cache maps string keys to opaque byte values with an optional TTL.
// Four backends are provided:
//   - FileCache: JSON entry files under a local directory (the CLI default)
//   - RedisCache: backed by a Redis server
//   - MongoCache: backed by a MongoDB collection
//   - NullCache: stores nothing, for disabling caching
//
// Cache failures are advisory: callers treat errors as misses and continue,
// so a broken backend degrades performance, never correctness.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Hash computes the SHA-256 hex digest of data. Backends use it to turn
// arbitrary keys into fixed-length, filesystem-safe names.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
