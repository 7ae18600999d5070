package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/valkey-io/valkey-go"
)

// storageKeyPrefix namespaces cache entries within a shared Valkey
// instance, keeping them separate from document store keys.
const storageKeyPrefix = "loot-bridge:cache:"

// Distributed implements Cache using Valkey. Entries are JSON-serialized
// and expired server-side via EX, so read-time expiry checks are handled by
// the server. The generic type T represents the value type being cached.
type Distributed[T any] struct {
	client valkey.Client
	ttl    time.Duration
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewDistributed creates a new Valkey-backed cache.
// The ttl parameter specifies how long entries remain valid.
func NewDistributed[T any](valkeyClient valkey.Client, ttl time.Duration) (*Distributed[T], error) {
	return &Distributed[T]{
		client: valkeyClient,
		ttl:    ttl,
	}, nil
}

// Get retrieves a value from the cache.
// Returns the value, whether it was found, and any error.
func (d *Distributed[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T

	cmd := d.client.B().Get().Key(storageKeyPrefix + key).Build()
	result := d.client.Do(ctx, cmd)

	if err := result.Error(); err != nil {
		// Key not found is not an error in our semantics
		if valkey.IsValkeyNil(err) {
			d.misses.Add(1)
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("failed to get cached value: %w", err)
	}

	data, err := result.AsBytes()
	if err != nil {
		return zero, false, fmt.Errorf("failed to read cached value: %w", err)
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return zero, false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}

	d.hits.Add(1)
	return value, true, nil
}

// Set stores a value in the cache with the configured TTL.
func (d *Distributed[T]) Set(ctx context.Context, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	cmd := d.client.B().Set().Key(storageKeyPrefix + key).Value(string(data)).ExSeconds(int64(d.ttl.Seconds())).Build()
	if err := d.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to set cached value: %w", err)
	}
	return nil
}

// Invalidate removes a value from the cache.
func (d *Distributed[T]) Invalidate(ctx context.Context, key string) error {
	cmd := d.client.B().Del().Key(storageKeyPrefix + key).Build()
	if err := d.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to invalidate cached value: %w", err)
	}
	return nil
}

// Clear evicts all entries under the cache prefix. Other keys in the
// Valkey instance (including document store entries) are untouched.
func (d *Distributed[T]) Clear(ctx context.Context) error {
	keys, err := d.scanKeys(ctx)
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}

	cmd := d.client.B().Del().Key(keys...).Build()
	if err := d.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Stats reports hit/miss counters (tracked client-side, per process) and
// the server-side key count under the cache prefix.
func (d *Distributed[T]) Stats(ctx context.Context) (Stats, error) {
	keys, err := d.scanKeys(ctx)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		Hits:   d.hits.Load(),
		Misses: d.misses.Load(),
		Keys:   len(keys),
	}, nil
}

func (d *Distributed[T]) scanKeys(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)

	for {
		cmd := d.client.B().Scan().Cursor(cursor).Match(storageKeyPrefix + "*").Count(512).Build()
		entry, err := d.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("failed to scan cache keys: %w", err)
		}

		keys = append(keys, entry.Elements...)

		cursor = entry.Cursor
		if cursor == 0 {
			return keys, nil
		}
	}
}

// Close releases resources associated with the cache client.
func (d *Distributed[T]) Close() error {
	d.client.Close()
	return nil
}
