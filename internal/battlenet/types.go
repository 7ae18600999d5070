package battlenet

import "encoding/json"

// Upstream payload types. Every field the upstream may omit is a pointer
// or zero-tolerant type: a missing field means "feature absent", never a
// decode failure.

// Link is an upstream hypermedia reference.
type Link struct {
	Href string `json:"href"`
}

// NamedRef is the common {id, name, key} shape used across the journal
// API.
type NamedRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Key  *Link  `json:"key,omitempty"`
}

// TypeName is the common {type, name} enumeration shape.
type TypeName struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// InstanceIndex is the journal instance index payload.
type InstanceIndex struct {
	Instances []InstanceSummary `json:"instances"`
}

// InstanceSummary is one entry of the instance index.
type InstanceSummary struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Key      *Link     `json:"key,omitempty"`
	Category *TypeName `json:"category,omitempty"`
}

// InstanceDetail is the journal instance detail payload.
type InstanceDetail struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	MinimumLevel int        `json:"minimum_level,omitempty"`
	Encounters   []NamedRef `json:"encounters,omitempty"`
	Category     *TypeName  `json:"category,omitempty"`
}

// EncounterDetail is the journal encounter detail payload.
type EncounterDetail struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Instance    *NamedRef       `json:"instance,omitempty"`
	Items       []EncounterItem `json:"items,omitempty"`
}

// EncounterItem is one loot drop reference within an encounter.
type EncounterItem struct {
	Item    *NamedRef `json:"item,omitempty"`
	Quality *TypeName `json:"quality,omitempty"`
}

// ItemDetail is the item detail payload. Stats, spells and preview are
// passed through opaquely: the service reshapes but does not interpret
// them.
type ItemDetail struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Quality       *TypeName       `json:"quality,omitempty"`
	Level         int             `json:"level,omitempty"`
	RequiredLevel int             `json:"required_level,omitempty"`
	ItemClass     *NamedRef       `json:"item_class,omitempty"`
	ItemSubclass  *NamedRef       `json:"item_subclass,omitempty"`
	InventoryType *TypeName       `json:"inventory_type,omitempty"`
	PurchasePrice int64           `json:"purchase_price,omitempty"`
	SellPrice     int64           `json:"sell_price,omitempty"`
	MaxCount      int             `json:"max_count,omitempty"`
	IsEquippable  bool            `json:"is_equippable,omitempty"`
	IsStackable   bool            `json:"is_stackable,omitempty"`
	PreviewItem   json.RawMessage `json:"preview_item,omitempty"`
	Stats         json.RawMessage `json:"stats,omitempty"`
	Spells        json.RawMessage `json:"spells,omitempty"`
	Description   string          `json:"description,omitempty"`
}

// ItemMedia is the item media payload.
type ItemMedia struct {
	ID     int          `json:"id"`
	Assets []MediaAsset `json:"assets,omitempty"`
}

// MediaAsset is one media asset entry.
type MediaAsset struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// IconURL returns the icon asset URL, or "" when the media carries none.
func (m *ItemMedia) IconURL() string {
	if m == nil {
		return ""
	}
	for _, asset := range m.Assets {
		if asset.Key == "icon" {
			return asset.Value
		}
	}
	return ""
}
