package store

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
)

// Memory is a process-local DocumentStore. Documents do not survive a
// restart; it is the default for development and tests.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]json.RawMessage
}

// NewMemory creates an empty in-memory document store.
func NewMemory() *Memory {
	return &Memory{
		docs: make(map[string]json.RawMessage),
	}
}

// Read returns the named document, whether it exists, and any error.
func (m *Memory) Read(ctx context.Context, name string) (json.RawMessage, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[name]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(doc), true, nil
}

// Write stores the named document, replacing any previous content.
func (m *Memory) Write(ctx context.Context, name string, doc json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[name] = slices.Clone(doc)
	return nil
}

// Close releases store resources.
func (m *Memory) Close() error {
	return nil
}
