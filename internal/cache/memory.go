package cache

import (
	"context"
	"time"

	"github.com/maypok86/otter/v2"
	"github.com/maypok86/otter/v2/stats"
)

// Memory is an in-memory cache implementation using otter.
// The generic type T represents the value type being cached.
type Memory[T any] struct {
	cache   *otter.Cache[string, T]
	ttl     time.Duration
	counter *stats.Counter
}

// NewMemory creates a new in-memory cache with the specified TTL and max
// size. Expiry is calculated from entry creation, so an entry refreshed by
// Set starts a new TTL window.
func NewMemory[T any](ttl time.Duration, maxSize int) (*Memory[T], error) {
	counter := stats.NewCounter()
	cache := otter.Must(&otter.Options[string, T]{
		MaximumSize:      maxSize,
		StatsRecorder:    counter,
		ExpiryCalculator: otter.ExpiryCreating[string, T](ttl),
	})

	return &Memory[T]{
		cache:   cache,
		ttl:     ttl,
		counter: counter,
	}, nil
}

// Get retrieves a value from the cache.
// Returns the value, whether it was found, and any error.
func (m *Memory[T]) Get(ctx context.Context, key string) (T, bool, error) {
	entry, ok := m.cache.GetEntry(key)
	if !ok {
		var zero T
		return zero, false, nil
	}

	return entry.Value, true, nil
}

// Set stores a value in the cache.
func (m *Memory[T]) Set(ctx context.Context, key string, value T) error {
	m.cache.Set(key, value)
	return nil
}

// Invalidate removes a value from the cache.
func (m *Memory[T]) Invalidate(ctx context.Context, key string) error {
	m.cache.Invalidate(key)
	return nil
}

// Clear evicts all entries.
func (m *Memory[T]) Clear(ctx context.Context) error {
	m.cache.InvalidateAll()
	return nil
}

// Stats reports hit/miss counters and the current entry count.
func (m *Memory[T]) Stats(ctx context.Context) (Stats, error) {
	snapshot := m.counter.Snapshot()
	return Stats{
		Hits:   snapshot.Hits,
		Misses: snapshot.Misses,
		Keys:   m.cache.EstimatedSize(),
	}, nil
}

// Close releases cache resources. The otter cache has no background
// goroutines requiring shutdown.
func (m *Memory[T]) Close() error {
	return nil
}
