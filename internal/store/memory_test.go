package store_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/equinox-loot/loot-bridge/internal/config"
	"github.com/equinox-loot/loot-bridge/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_ReadWrite(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	defer m.Close()

	_, found, err := m.Read(ctx, "assignments")
	require.NoError(t, err)
	assert.False(t, found)

	doc := json.RawMessage(`{"rows":[{"boss":1,"item":"Astral Antenna","player":"Varsovia"}]}`)
	require.NoError(t, m.Write(ctx, "assignments", doc))

	got, found, err := m.Read(ctx, "assignments")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, string(doc), string(got))
}

func TestMemory_WriteReplaces(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	defer m.Close()

	require.NoError(t, m.Write(ctx, "characters", json.RawMessage(`{"v":1}`)))
	require.NoError(t, m.Write(ctx, "characters", json.RawMessage(`{"v":2}`)))

	got, found, err := m.Read(ctx, "characters")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"v":2}`, string(got))
}

func TestMemory_ReadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	defer m.Close()

	require.NoError(t, m.Write(ctx, "characters", json.RawMessage(`{"v":1}`)))

	got, _, err := m.Read(ctx, "characters")
	require.NoError(t, err)
	got[1] = 'X'

	again, _, err := m.Read(ctx, "characters")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(again), "caller mutation must not leak into the store")
}

func TestValidName(t *testing.T) {
	assert.True(t, store.ValidName("assignments"))
	assert.True(t, store.ValidName("characters"))

	assert.False(t, store.ValidName("secrets"))
	assert.False(t, store.ValidName(""))
	assert.False(t, store.ValidName("Assignments"))
}

func TestNewFromConfig_InvalidType(t *testing.T) {
	_, err := store.NewFromConfig(context.Background(), config.StoreConfig{Type: "firestore"}, config.ValkeyConfig{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid store type")
}

func TestNewFromConfig_Memory(t *testing.T) {
	s, err := store.NewFromConfig(context.Background(), config.StoreConfig{Type: "memory"}, config.ValkeyConfig{})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Write(context.Background(), "assignments", json.RawMessage(`{}`)))
}
