package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/equinox-loot/loot-bridge/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/valkey-io/valkey-go"
)

// NewFromConfig creates a cache implementation based on the provided
// configuration. The cache type must be either "memory" or "valkey"; any
// other value returns an error.
func NewFromConfig[T any](
	ctx context.Context,
	cacheConfig config.CacheConfig,
) (Cache[T], error) {
	ttl := time.Duration(cacheConfig.TTLSeconds) * time.Second

	switch cacheConfig.Type {
	case "valkey":
		log.Info().
			Str("cache_type", "valkey").
			Str("address", cacheConfig.Valkey.Address).
			Bool("tls", cacheConfig.Valkey.TLS).
			Msg("initializing distributed cache")

		valkeyClient, err := NewValkeyClient(cacheConfig.Valkey)
		if err != nil {
			return nil, err
		}

		distributed, err := NewDistributed[T](valkeyClient, ttl)
		if err != nil {
			valkeyClient.Close()
			return nil, fmt.Errorf("failed to create distributed cache: %w", err)
		}

		return NewInstrumented[T](distributed, "distributed"), nil

	case "memory":
		log.Info().
			Str("cache_type", "memory").
			Dur("ttl", ttl).
			Msg("initializing in-memory cache")

		memory, err := NewMemory[T](ttl, cacheConfig.MaxSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create memory cache: %w", err)
		}

		return NewInstrumented[T](memory, "memory"), nil

	default:
		return nil, fmt.Errorf("invalid cache type %q: must be either \"memory\" or \"valkey\"", cacheConfig.Type)
	}
}

// NewValkeyClient builds a Valkey client from the shared connection
// settings. Used by the distributed cache and the document store.
func NewValkeyClient(cfg config.ValkeyConfig) (valkey.Client, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("valkey address is required")
	}

	opts := valkey.ClientOption{
		InitAddress: []string{cfg.Address},
		Username:    cfg.Username,
		Password:    cfg.Password,
	}

	if cfg.TLS {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	return client, nil
}
