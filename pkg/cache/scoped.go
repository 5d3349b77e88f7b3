package cache

import (
	"context"
	"time"
)

// ScopedCache wraps a Cache with a key prefix so different value kinds
// (version lookups, downloaded manifests) can share one backend without
// colliding.
//
// Example usage:
//
//	versions := cache.NewScoped(backend, "crates:")
//	manifests := cache.NewScoped(backend, "manifest:")
type ScopedCache struct {
	inner  Cache
	prefix string
}

// NewScoped creates a cache whose keys are all prefixed.
// A nil inner cache falls back to NullCache.
func NewScoped(inner Cache, prefix string) Cache {
	if inner == nil {
		inner = NewNullCache()
	}
	return &ScopedCache{
		inner:  inner,
		prefix: prefix,
	}
}

// Get retrieves the prefixed key from the inner cache.
func (c *ScopedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, c.prefix+key)
}

// Set stores the value under the prefixed key.
func (c *ScopedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, c.prefix+key, data, ttl)
}

// Delete removes the prefixed key.
func (c *ScopedCache) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, c.prefix+key)
}

// Close is a no-op; the inner cache's lifetime belongs to whoever created it.
func (c *ScopedCache) Close() error {
	return nil
}

// Ensure ScopedCache implements Cache.
var _ Cache = (*ScopedCache)(nil)
