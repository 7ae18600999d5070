package cache

import (
	"context"
)

// Cache defines the interface for resource caching implementations.
// The generic type T represents the value type being cached.
type Cache[T any] interface {
	// Get retrieves a value from the cache.
	// Returns the value, whether it was found, and any error.
	Get(ctx context.Context, key string) (T, bool, error)

	// Set stores a value in the cache. Entries expire after the
	// implementation's configured TTL; expiry is checked at read time.
	Set(ctx context.Context, key string, value T) error

	// Invalidate removes a single value from the cache.
	Invalidate(ctx context.Context, key string) error

	// Clear evicts all entries unconditionally.
	Clear(ctx context.Context) error

	// Stats reports the cache hit/miss counters and current key count.
	// Observability only: calling it has no effect on cache contents.
	Stats(ctx context.Context) (Stats, error)

	// Close releases any resources held by the cache.
	Close() error
}

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Keys   int    `json:"keys"`
}
