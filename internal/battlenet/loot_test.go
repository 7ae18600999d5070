package battlenet_test

import (
	"context"
	"testing"
	"time"

	"github.com/equinox-loot/loot-bridge/internal/battlenet"
	"github.com/equinox-loot/loot-bridge/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerEncounterFixture(upstream *testhelpers.MockGameDataServer) {
	upstream.RegisterEncounter(2902, map[string]any{
		"id":   2902,
		"name": "Loom'ithar",
		"instance": map[string]any{
			"id":   1302,
			"name": "Manaforge Omega",
		},
		"items": []any{
			map[string]any{
				"item":    map[string]any{"id": 101, "name": "Piercing Strandbow"},
				"quality": map[string]any{"type": "EPIC", "name": "Epic"},
			},
			map[string]any{
				"item":    map[string]any{"id": 102, "name": "Colossal Lifetether"},
				"quality": map[string]any{"type": "EPIC", "name": "Epic"},
			},
		},
	})

	upstream.RegisterItem(101, map[string]any{
		"id":   101,
		"name": "Piercing Strandbow",
		"item_class": map[string]any{
			"id": 2, "name": "Weapon",
		},
		"item_subclass": map[string]any{
			"id": 2, "name": "Bows",
		},
		"is_equippable": true,
	})
	upstream.RegisterItemMedia(101, map[string]any{
		"id": 101,
		"assets": []any{
			map[string]any{"key": "icon", "value": "https://example.invalid/icon-101.jpg"},
		},
	})

	upstream.RegisterItem(102, map[string]any{
		"id":   102,
		"name": "Colossal Lifetether",
		"item_class": map[string]any{
			"id": 4, "name": "Armor",
		},
		"item_subclass": map[string]any{
			"id": 3, "name": "Mail",
		},
		"is_equippable": true,
	})
	// item 102 has no media registered: icon is simply absent
}

func TestEncounterLoot_Aggregates(t *testing.T) {
	upstream := testhelpers.NewGameDataServer()
	defer upstream.Close()
	registerEncounterFixture(upstream)

	client := newTestClient(t, upstream.URL, time.Hour)

	encounter, loot, err := client.EncounterLoot(context.Background(), 2902)
	require.NoError(t, err)

	assert.Equal(t, "Loom'ithar", encounter.Name)
	require.Len(t, loot, 2)

	byID := map[int]battlenet.LootItem{}
	for _, item := range loot {
		byID[item.ID] = item
	}

	bow := byID[101]
	assert.Equal(t, "Piercing Strandbow", bow.Name)
	assert.Equal(t, "EPIC", bow.Quality)
	assert.Equal(t, "https://example.invalid/icon-101.jpg", bow.IconURL)
	assert.Equal(t, []string{"Warrior", "Rogue", "Hunter"}, bow.EquippableClasses)

	tether := byID[102]
	assert.Empty(t, tether.IconURL, "missing media must not exclude the item")
	assert.Equal(t, []string{"Hunter", "Shaman", "Evoker"}, tether.EquippableClasses)
}

func TestEncounterLoot_PartialFailureExcludesItem(t *testing.T) {
	upstream := testhelpers.NewGameDataServer()
	defer upstream.Close()

	upstream.RegisterEncounter(2902, map[string]any{
		"id":   2902,
		"name": "Loom'ithar",
		"items": []any{
			map[string]any{"item": map[string]any{"id": 101, "name": "Piercing Strandbow"}},
			map[string]any{"item": map[string]any{"id": 404, "name": "Vanished Item"}},
		},
	})
	upstream.RegisterItem(101, map[string]any{"id": 101, "name": "Piercing Strandbow"})
	// item 404 left unregistered: its detail fetch fails

	client := newTestClient(t, upstream.URL, time.Hour)

	_, loot, err := client.EncounterLoot(context.Background(), 2902)
	require.NoError(t, err, "one failed item must not fail the aggregation")

	require.Len(t, loot, 1)
	assert.Equal(t, 101, loot[0].ID)
}

func TestEncounterLoot_EncounterFailureIsFatal(t *testing.T) {
	upstream := testhelpers.NewGameDataServer()
	defer upstream.Close()

	client := newTestClient(t, upstream.URL, time.Hour)

	_, _, err := client.EncounterLoot(context.Background(), 9999)
	require.Error(t, err)

	var upErr *battlenet.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, 404, upErr.StatusCode)
}
