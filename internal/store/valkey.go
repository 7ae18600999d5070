package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valkey-io/valkey-go"
)

// documentKeyPrefix namespaces documents within a shared Valkey instance,
// keeping them separate from cache entries.
const documentKeyPrefix = "loot-bridge:doc:"

// Valkey is a DocumentStore backed by a Valkey instance. Documents are
// persisted without TTL: they live until replaced.
type Valkey struct {
	client valkey.Client
}

// NewValkey creates a Valkey-backed document store.
func NewValkey(client valkey.Client) *Valkey {
	return &Valkey{client: client}
}

// Read returns the named document, whether it exists, and any error.
func (v *Valkey) Read(ctx context.Context, name string) (json.RawMessage, bool, error) {
	cmd := v.client.B().Get().Key(documentKeyPrefix + name).Build()
	result := v.client.Do(ctx, cmd)

	if err := result.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read document %q: %w", name, err)
	}

	data, err := result.AsBytes()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read document %q: %w", name, err)
	}

	return json.RawMessage(data), true, nil
}

// Write stores the named document, replacing any previous content.
func (v *Valkey) Write(ctx context.Context, name string, doc json.RawMessage) error {
	cmd := v.client.B().Set().Key(documentKeyPrefix + name).Value(string(doc)).Build()
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to write document %q: %w", name, err)
	}
	return nil
}

// Close releases the underlying client.
func (v *Valkey) Close() error {
	v.client.Close()
	return nil
}
