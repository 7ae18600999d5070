package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/equinox-loot/loot-bridge/internal/battlenet"
	"github.com/equinox-loot/loot-bridge/internal/config"
	"github.com/equinox-loot/loot-bridge/internal/gamedata"
	"github.com/equinox-loot/loot-bridge/internal/store"
	"github.com/rs/zerolog/log"
)

// HTTPStatuser provides HTTP status information for errors
type HTTPStatuser interface {
	Status() (int, string)
}

// errorEnvelope is the uniform error response shape.
type errorEnvelope struct {
	Success  bool   `json:"success"`
	Error    string `json:"error"`
	Endpoint string `json:"endpoint"`
}

// errorStatus extracts HTTP status code and message from an error.
// Returns (StatusInternalServerError, StatusText) for errors that don't
// implement HTTPStatuser.
func errorStatus(err error) (int, string) {
	// oversized bodies are caller input errors, not server failures
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge, "Request body too large"
	}

	var statuser HTTPStatuser
	if errors.As(err, &statuser) {
		return statuser.Status()
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

// writeError translates an error into the uniform JSON error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := errorStatus(err)
	log.Info().Err(err).Str("endpoint", r.URL.Path).Msg("request failed")
	writeErrorMessage(w, r, status, message)
}

func writeErrorMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, errorEnvelope{
		Success:  false,
		Error:    message,
		Endpoint: r.URL.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		// status already written; log is all that's left
		log.Info().Msgf("failed to write JSON response: %v", err)
	}
}

// pathID parses the numeric path segment, failing with a ValidationError
// on non-numeric input.
func pathID(r *http.Request) (int, error) {
	raw := r.PathValue("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &battlenet.ValidationError{Message: "Invalid id. Must be a number."}
	}
	return id, nil
}

type namedRefResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Key  string `json:"key,omitempty"`
}

func refKey(key *battlenet.Link) string {
	if key == nil {
		return ""
	}
	return key.Href
}

// handleListInstances serves the full journal instance index, raids and
// dungeons alike.
func handleListInstances(client *battlenet.Client, cfg config.BattlenetConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		index, err := client.InstanceIndex(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}

		type instanceResponse struct {
			ID       int    `json:"id"`
			Name     string `json:"name"`
			Key      string `json:"key,omitempty"`
			Category string `json:"category,omitempty"`
		}

		instances := make([]instanceResponse, 0, len(index.Instances))
		for _, instance := range index.Instances {
			entry := instanceResponse{
				ID:   instance.ID,
				Name: instance.Name,
				Key:  refKey(instance.Key),
			}
			if instance.Category != nil {
				entry.Category = instance.Category.Type
			}
			instances = append(instances, entry)
		}

		writeJSON(w, http.StatusOK, struct {
			Success   bool               `json:"success"`
			Region    string             `json:"region"`
			Locale    string             `json:"locale"`
			Count     int                `json:"count"`
			Instances []instanceResponse `json:"instances"`
		}{
			Success:   true,
			Region:    cfg.Region,
			Locale:    client.Locale(),
			Count:     len(instances),
			Instances: instances,
		})
	})
}

// handleListRaids serves the instance index filtered to raids.
func handleListRaids(client *battlenet.Client, cfg config.BattlenetConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		index, err := client.InstanceIndex(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}

		raids := make([]namedRefResponse, 0, len(index.Instances))
		for _, instance := range index.Instances {
			if !isRaid(instance) {
				continue
			}
			raids = append(raids, namedRefResponse{
				ID:   instance.ID,
				Name: instance.Name,
				Key:  refKey(instance.Key),
			})
		}

		writeJSON(w, http.StatusOK, struct {
			Success bool               `json:"success"`
			Region  string             `json:"region"`
			Locale  string             `json:"locale"`
			Count   int                `json:"count"`
			Raids   []namedRefResponse `json:"raids"`
		}{
			Success: true,
			Region:  cfg.Region,
			Locale:  client.Locale(),
			Count:   len(raids),
			Raids:   raids,
		})
	})
}

// isRaid includes an instance when its category says RAID or its name
// says so. Category is not always populated on index entries, and some
// raids are categorized oddly, so either signal is enough.
func isRaid(instance battlenet.InstanceSummary) bool {
	if instance.Category != nil && instance.Category.Type == "RAID" {
		return true
	}
	return strings.Contains(strings.ToLower(instance.Name), "raid")
}

// handleRaidDetail serves one instance with its encounters.
func handleRaidDetail(client *battlenet.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		detail, err := client.InstanceDetail(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}

		encounters := make([]namedRefResponse, 0, len(detail.Encounters))
		for _, encounter := range detail.Encounters {
			encounters = append(encounters, namedRefResponse{
				ID:   encounter.ID,
				Name: encounter.Name,
				Key:  refKey(encounter.Key),
			})
		}

		writeJSON(w, http.StatusOK, struct {
			Success bool `json:"success"`
			Raid    any  `json:"raid"`
		}{
			Success: true,
			Raid: struct {
				ID           int                `json:"id"`
				Name         string             `json:"name"`
				Description  string             `json:"description,omitempty"`
				MinimumLevel int                `json:"minimum_level,omitempty"`
				Encounters   []namedRefResponse `json:"encounters"`
			}{
				ID:           detail.ID,
				Name:         detail.Name,
				Description:  detail.Description,
				MinimumLevel: detail.MinimumLevel,
				Encounters:   encounters,
			},
		})
	})
}

type encounterResponse struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Instance    any    `json:"instance"`
}

func encounterSummary(detail *battlenet.EncounterDetail) encounterResponse {
	resp := encounterResponse{
		ID:          detail.ID,
		Name:        detail.Name,
		Description: detail.Description,
	}
	if detail.Instance != nil {
		resp.Instance = namedRefResponse{ID: detail.Instance.ID, Name: detail.Instance.Name}
	}
	return resp
}

// handleEncounterLoot serves the loot drop summary for one encounter.
func handleEncounterLoot(client *battlenet.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		detail, err := client.EncounterDetail(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}

		type lootRef struct {
			ID      int    `json:"id"`
			Name    string `json:"name"`
			Quality string `json:"quality,omitempty"`
			Key     string `json:"key,omitempty"`
		}

		loot := make([]lootRef, 0, len(detail.Items))
		for _, drop := range detail.Items {
			if drop.Item == nil {
				continue
			}
			entry := lootRef{
				ID:   drop.Item.ID,
				Name: drop.Item.Name,
				Key:  refKey(drop.Item.Key),
			}
			if drop.Quality != nil {
				entry.Quality = drop.Quality.Type
			}
			loot = append(loot, entry)
		}

		writeJSON(w, http.StatusOK, struct {
			Success   bool              `json:"success"`
			Encounter encounterResponse `json:"encounter"`
			Loot      []lootRef         `json:"loot"`
		}{
			Success:   true,
			Encounter: encounterSummary(detail),
			Loot:      loot,
		})
	})
}

// handleFilteredLoot serves an encounter's loot filtered to the classes
// that can equip each item. playerClass is required; specialization is
// echoed into the filter block for the UI but does not change the class
// filter.
func handleFilteredLoot(client *battlenet.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		playerClass := r.URL.Query().Get("playerClass")
		if playerClass == "" {
			writeError(w, r, &battlenet.ValidationError{Message: "playerClass parameter is required"})
			return
		}

		specialization := r.URL.Query().Get("specialization")
		if specialization == "" {
			specialization = "All"
		}

		encounter, allItems, err := client.EncounterLoot(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}

		filtered := make([]battlenet.LootItem, 0, len(allItems))
		for _, item := range allItems {
			if slices.Contains(item.EquippableClasses, playerClass) {
				filtered = append(filtered, item)
			}
		}

		writeJSON(w, http.StatusOK, struct {
			Success   bool                 `json:"success"`
			Encounter encounterResponse    `json:"encounter"`
			Filter    any                  `json:"filter"`
			Loot      []battlenet.LootItem `json:"loot"`
			Total     int                  `json:"total_items"`
			Filtered  int                  `json:"filtered_items"`
		}{
			Success:   true,
			Encounter: encounterSummary(encounter),
			Filter: struct {
				PlayerClass    string `json:"playerClass"`
				Specialization string `json:"specialization"`
			}{playerClass, specialization},
			Loot:     filtered,
			Total:    len(allItems),
			Filtered: len(filtered),
		})
	})
}

// handleItemDetail serves one item's detail, media and derived
// class-eligibility set.
func handleItemDetail(client *battlenet.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		item, err := client.ItemDetail(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}

		// media may legitimately not exist for an item
		media, err := client.ItemMedia(r.Context(), id)
		if err != nil {
			log.Debug().Err(err).Int("item_id", id).Msg("item media unavailable")
			media = nil
		}

		type itemResponse struct {
			ID                int             `json:"id"`
			Name              string          `json:"name"`
			Quality           string          `json:"quality,omitempty"`
			Level             int             `json:"level,omitempty"`
			RequiredLevel     int             `json:"required_level,omitempty"`
			ItemClass         string          `json:"item_class,omitempty"`
			ItemSubclass      string          `json:"item_subclass,omitempty"`
			InventoryType     string          `json:"inventory_type,omitempty"`
			IsEquippable      bool            `json:"is_equippable"`
			IsStackable       bool            `json:"is_stackable"`
			IconURL           string          `json:"icon_url,omitempty"`
			EquippableClasses []string        `json:"equippable_classes"`
			Stats             json.RawMessage `json:"stats,omitempty"`
			Spells            json.RawMessage `json:"spells,omitempty"`
			PreviewItem       json.RawMessage `json:"preview_item,omitempty"`
			Description       string          `json:"description,omitempty"`
		}

		resp := itemResponse{
			ID:                item.ID,
			Name:              item.Name,
			Level:             item.Level,
			RequiredLevel:     item.RequiredLevel,
			IsEquippable:      item.IsEquippable,
			IsStackable:       item.IsStackable,
			IconURL:           media.IconURL(),
			EquippableClasses: battlenet.EquippableClasses(item),
			Stats:             item.Stats,
			Spells:            item.Spells,
			PreviewItem:       item.PreviewItem,
			Description:       item.Description,
		}
		if item.Quality != nil {
			resp.Quality = item.Quality.Type
		}
		if item.ItemClass != nil {
			resp.ItemClass = item.ItemClass.Name
		}
		if item.ItemSubclass != nil {
			resp.ItemSubclass = item.ItemSubclass.Name
		}
		if item.InventoryType != nil {
			resp.InventoryType = item.InventoryType.Name
		}

		writeJSON(w, http.StatusOK, struct {
			Success bool         `json:"success"`
			Item    itemResponse `json:"item"`
		}{Success: true, Item: resp})
	})
}

// handleCacheStats serves cache statistics; observability only.
func handleCacheStats(client *battlenet.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		stats, err := client.CacheStats(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Success bool `json:"success"`
			Cache   any  `json:"cache"`
		}{Success: true, Cache: stats})
	})
}

// handleCacheClear evicts every cached resource.
func handleCacheClear(client *battlenet.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		if err := client.ClearCache(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}{Success: true, Message: "Cache cleared successfully"})
	})
}

// handleListBosses serves the static boss roster.
func handleListBosses() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		bosses := gamedata.Bosses()
		writeJSON(w, http.StatusOK, struct {
			Success bool           `json:"success"`
			Count   int            `json:"count"`
			Bosses  []gamedata.Boss `json:"bosses"`
		}{Success: true, Count: len(bosses), Bosses: bosses})
	})
}

// handleBossLoot serves the static loot table for one boss.
func handleBossLoot() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		id, err := pathID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		loot, ok := gamedata.LootForBoss(id)
		if !ok {
			writeErrorMessage(w, r, http.StatusNotFound, "Unknown boss id")
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Success bool                 `json:"success"`
			BossID  int                  `json:"bossId"`
			Loot    []gamedata.LootEntry `json:"loot"`
		}{Success: true, BossID: id, Loot: loot})
	})
}

// handleGetDocument serves a stored roster document.
func handleGetDocument(documents store.DocumentStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		name := r.PathValue("name")
		if !store.ValidName(name) {
			writeError(w, r, &battlenet.ValidationError{Message: "Unknown document name"})
			return
		}

		doc, found, err := documents.Read(r.Context(), name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !found {
			writeErrorMessage(w, r, http.StatusNotFound, "Document not found")
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Success  bool            `json:"success"`
			Name     string          `json:"name"`
			Document json.RawMessage `json:"document"`
		}{Success: true, Name: name, Document: doc})
	})
}

// handlePutDocument replaces a stored roster document.
func handlePutDocument(documents store.DocumentStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		name := r.PathValue("name")
		if !store.ValidName(name) {
			writeError(w, r, &battlenet.ValidationError{Message: "Unknown document name"})
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !json.Valid(body) {
			writeError(w, r, &battlenet.ValidationError{Message: "Document body must be valid JSON"})
			return
		}

		if err := documents.Write(r.Context(), name, body); err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Success bool   `json:"success"`
			Name    string `json:"name"`
			Message string `json:"message"`
		}{Success: true, Name: name, Message: "Document saved"})
	})
}

// handleHealthCheck reports liveness plus token state; it never triggers
// an authentication.
func handleHealthCheck(authority *battlenet.Authority, cfg config.BattlenetConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		writeJSON(w, http.StatusOK, struct {
			Status     string    `json:"status"`
			Timestamp  time.Time `json:"timestamp"`
			Region     string    `json:"region"`
			Locale     string    `json:"locale"`
			TokenValid bool      `json:"token_valid"`
		}{
			Status:     "ok",
			Timestamp:  time.Now().UTC(),
			Region:     cfg.Region,
			Locale:     cfg.Locale,
			TokenValid: authority.Valid(),
		})
	})
}

func maxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.MaxBytesHandler(next, limit)
	}
}

// drainRequestBody drains the request body by reading and discarding the
// contents, keeping HTTP/1 connections reusable.
func drainRequestBody(r *http.Request) {
	if r.Body != nil {
		// 5MB max: after this we'll assume the client is broken or malicious
		// and close the connection
		io.CopyN(io.Discard, r.Body, 5*1024*1024)
	}
}
