// Package store provides the document read/write collaborator the roster
// UI persists through: whole JSON documents addressed by name.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/equinox-loot/loot-bridge/internal/cache"
	"github.com/equinox-loot/loot-bridge/internal/config"
	"github.com/rs/zerolog/log"
)

// DocumentStore reads and writes whole JSON documents by name. Writes
// replace the document; there is no partial update.
type DocumentStore interface {
	// Read returns the named document, whether it exists, and any error.
	Read(ctx context.Context, name string) (json.RawMessage, bool, error)

	// Write stores the named document, replacing any previous content.
	Write(ctx context.Context, name string, doc json.RawMessage) error

	// Close releases any resources held by the store.
	Close() error
}

// documentNames are the documents the roster UI maintains. Anything else
// is rejected at the router boundary.
var documentNames = []string{"assignments", "characters"}

// ValidName reports whether name addresses a known document.
func ValidName(name string) bool {
	return slices.Contains(documentNames, name)
}

// NewFromConfig creates a document store based on the configured type,
// "memory" or "valkey". The valkey store shares connection settings with
// the distributed cache but owns its own client.
func NewFromConfig(ctx context.Context, storeConfig config.StoreConfig, valkeyConfig config.ValkeyConfig) (DocumentStore, error) {
	switch storeConfig.Type {
	case "valkey":
		log.Info().
			Str("store_type", "valkey").
			Str("address", valkeyConfig.Address).
			Msg("initializing document store")

		client, err := cache.NewValkeyClient(valkeyConfig)
		if err != nil {
			return nil, err
		}
		return NewValkey(client), nil

	case "memory":
		log.Info().Str("store_type", "memory").Msg("initializing document store")
		return NewMemory(), nil

	default:
		return nil, fmt.Errorf("invalid store type %q: must be either \"memory\" or \"valkey\"", storeConfig.Type)
	}
}
