package battlenet_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/equinox-loot/loot-bridge/internal/battlenet"
	"github.com/equinox-loot/loot-bridge/internal/cache"
	"github.com/equinox-loot/loot-bridge/internal/config"
	"github.com/equinox-loot/loot-bridge/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// staticTokens is a TokenSource returning a fixed token.
type staticTokens struct{}

func (staticTokens) Token(ctx context.Context) (*oauth2.Token, error) {
	return &oauth2.Token{
		AccessToken: "test-token",
		Expiry:      time.Now().Add(time.Hour),
	}, nil
}

func clientConfig(apiURL string) config.BattlenetConfig {
	return config.BattlenetConfig{
		ClientID:               "client-id",
		ClientSecret:           "client-secret",
		Region:                 "eu",
		Locale:                 "es_ES",
		UpstreamTimeoutSeconds: 5,
		APIURL:                 apiURL,
	}
}

func newTestClient(t *testing.T, apiURL string, ttl time.Duration) *battlenet.Client {
	t.Helper()

	resourceCache, err := cache.NewMemory[json.RawMessage](ttl, 100)
	require.NoError(t, err)

	return battlenet.NewClient(clientConfig(apiURL), staticTokens{}, resourceCache)
}

func TestClient_Fetch_CachesResponses(t *testing.T) {
	upstream := testhelpers.NewGameDataServer()
	defer upstream.Close()
	upstream.RegisterItem(12345, map[string]any{"id": 12345, "name": "Obliteration Beamglaive"})

	client := newTestClient(t, upstream.URL, time.Hour)

	first, err := client.ItemDetail(context.Background(), 12345)
	require.NoError(t, err)
	assert.Equal(t, "Obliteration Beamglaive", first.Name)

	second, err := client.ItemDetail(context.Background(), 12345)
	require.NoError(t, err)
	assert.Equal(t, first.Name, second.Name)

	assert.Equal(t, int64(1), upstream.RequestCount(), "repeat fetch must be served from cache")

	stats, err := client.CacheStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestClient_Fetch_ExpiredEntryRefetched(t *testing.T) {
	upstream := testhelpers.NewGameDataServer()
	defer upstream.Close()
	upstream.RegisterItem(12345, map[string]any{"id": 12345, "name": "Astral Antenna"})

	client := newTestClient(t, upstream.URL, 30*time.Millisecond)

	_, err := client.ItemDetail(context.Background(), 12345)
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)

	_, err = client.ItemDetail(context.Background(), 12345)
	require.NoError(t, err)

	assert.Equal(t, int64(2), upstream.RequestCount(), "expired entry must be fetched upstream again")
}

func TestClient_Fetch_DistinctLocalesDistinctEntries(t *testing.T) {
	upstream := testhelpers.NewGameDataServer()
	defer upstream.Close()
	upstream.RegisterItem(12345, map[string]any{"id": 12345, "name": "Eye of Kezan"})

	client := newTestClient(t, upstream.URL, time.Hour)

	_, err := client.Fetch(context.Background(), battlenet.ResourceRequest{
		Kind: battlenet.KindItemDetail, ID: 12345, Locale: "es_ES",
	})
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), battlenet.ResourceRequest{
		Kind: battlenet.KindItemDetail, ID: 12345, Locale: "en_US",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), upstream.RequestCount(), "different locales must not share cache entries")
}

func TestClient_Fetch_UpstreamFailureNotCached(t *testing.T) {
	upstream := testhelpers.NewGameDataServer()
	defer upstream.Close()

	client := newTestClient(t, upstream.URL, time.Hour)

	// unregistered item: upstream 404
	_, err := client.ItemDetail(context.Background(), 99999)
	require.Error(t, err)

	var upErr *battlenet.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, 404, upErr.StatusCode)
	assert.Equal(t, "Not Found", upErr.Message)

	// failure must not poison the cache: a later request goes upstream
	upstream.RegisterItem(99999, map[string]any{"id": 99999, "name": "Late Item"})

	item, err := client.ItemDetail(context.Background(), 99999)
	require.NoError(t, err)
	assert.Equal(t, "Late Item", item.Name)
}

func TestClient_Fetch_SendsAuthAndNamespace(t *testing.T) {
	var captured *http.Request
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"instances":[]}`))
	}))
	defer upstream.Close()

	client := newTestClient(t, upstream.URL, time.Hour)

	_, err := client.InstanceIndex(context.Background())
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "Bearer test-token", captured.Header.Get("Authorization"))
	assert.Equal(t, "static-eu", captured.Header.Get("Battlenet-Namespace"))
	assert.Equal(t, "es_ES", captured.Header.Get("Accept-Language"))
	assert.Equal(t, "static-eu", captured.URL.Query().Get("namespace"))
	assert.Equal(t, "es_ES", captured.URL.Query().Get("locale"))
}

func TestClient_ClearCache(t *testing.T) {
	upstream := testhelpers.NewGameDataServer()
	defer upstream.Close()
	upstream.RegisterItem(1, map[string]any{"id": 1, "name": "First"})
	upstream.RegisterItem(2, map[string]any{"id": 2, "name": "Second"})

	client := newTestClient(t, upstream.URL, time.Hour)

	_, err := client.ItemDetail(context.Background(), 1)
	require.NoError(t, err)
	_, err = client.ItemDetail(context.Background(), 2)
	require.NoError(t, err)

	require.NoError(t, client.ClearCache(context.Background()))

	_, err = client.ItemDetail(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(3), upstream.RequestCount(), "cleared entries must be fetched upstream again")
}

func TestClient_Fetch_MalformedPayload(t *testing.T) {
	upstream := testhelpers.NewGameDataServer()
	defer upstream.Close()
	upstream.RegisterItem(7, "not-an-object")

	client := newTestClient(t, upstream.URL, time.Hour)

	_, err := client.ItemDetail(context.Background(), 7)
	require.Error(t, err)

	var upErr *battlenet.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, 500, upErr.StatusCode)
	assert.Contains(t, upErr.Message, "malformed upstream payload")
}
