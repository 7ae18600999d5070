package battlenet

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// itemFetchConcurrency bounds parallel item lookups during aggregation.
// Most of these reads hit the cache after the first pass over an
// encounter.
const itemFetchConcurrency = 5

// LootItem is one aggregated loot entry: item detail joined with media
// and the derived class-eligibility set.
type LootItem struct {
	ID                int             `json:"id"`
	Name              string          `json:"name"`
	Quality           string          `json:"quality,omitempty"`
	Level             int             `json:"level,omitempty"`
	ItemClass         string          `json:"item_class,omitempty"`
	ItemSubclass      string          `json:"item_subclass,omitempty"`
	InventoryType     string          `json:"inventory_type,omitempty"`
	IconURL           string          `json:"icon_url,omitempty"`
	EquippableClasses []string        `json:"equippable_classes"`
	Stats             json.RawMessage `json:"stats,omitempty"`
	IsEquippable      bool            `json:"is_equippable"`
}

// EncounterLoot fetches the encounter and aggregates the full detail of
// every loot drop. A single item's fetch failure excludes that item from
// the result instead of failing the whole aggregation; only the encounter
// fetch itself is fatal.
func (c *Client) EncounterLoot(ctx context.Context, encounterID int) (*EncounterDetail, []LootItem, error) {
	encounter, err := c.EncounterDetail(ctx, encounterID)
	if err != nil {
		return nil, nil, err
	}

	// each goroutine writes a distinct index; Wait establishes the
	// happens-before for the collection pass
	results := make([]*LootItem, len(encounter.Items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(itemFetchConcurrency)

	for i, drop := range encounter.Items {
		if drop.Item == nil || drop.Item.ID == 0 {
			continue
		}

		g.Go(func() error {
			item, err := c.aggregateItem(gctx, drop)
			if err != nil {
				// partial-failure policy: log and exclude
				log.Warn().Err(err).
					Int("item_id", drop.Item.ID).
					Int("encounter_id", encounterID).
					Msg("loot item fetch failed, excluding from result")
				return nil
			}

			results[i] = item
			return nil
		})
	}

	// goroutines never return errors; Wait orders the results slice reads
	_ = g.Wait()

	loot := make([]LootItem, 0, len(results))
	for _, item := range results {
		if item != nil {
			loot = append(loot, *item)
		}
	}

	return encounter, loot, nil
}

func (c *Client) aggregateItem(ctx context.Context, drop EncounterItem) (*LootItem, error) {
	item, err := c.ItemDetail(ctx, drop.Item.ID)
	if err != nil {
		return nil, err
	}

	// media may legitimately not exist for an item
	media, err := c.ItemMedia(ctx, drop.Item.ID)
	if err != nil {
		log.Debug().Err(err).Int("item_id", drop.Item.ID).Msg("item media unavailable")
		media = nil
	}

	loot := &LootItem{
		ID:                item.ID,
		Name:              item.Name,
		Level:             item.Level,
		IconURL:           media.IconURL(),
		EquippableClasses: EquippableClasses(item),
		Stats:             item.Stats,
		IsEquippable:      item.IsEquippable,
	}

	if drop.Quality != nil {
		loot.Quality = drop.Quality.Type
	}
	if item.ItemClass != nil {
		loot.ItemClass = item.ItemClass.Name
	}
	if item.ItemSubclass != nil {
		loot.ItemSubclass = item.ItemSubclass.Name
	}
	if item.InventoryType != nil {
		loot.InventoryType = item.InventoryType.Name
	}

	return loot, nil
}
