package battlenet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/equinox-loot/loot-bridge/internal/cache"
	"github.com/equinox-loot/loot-bridge/internal/config"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// regionAPIURLs maps regions to their Game Data API hosts.
var regionAPIURLs = map[string]string{
	"us": "https://us.api.blizzard.com",
	"eu": "https://eu.api.blizzard.com",
	"kr": "https://kr.api.blizzard.com",
	"tw": "https://tw.api.blizzard.com",
	"cn": "https://gateway.battlenet.com.cn",
}

// ResourceKind enumerates the upstream entities the client can fetch.
type ResourceKind string

const (
	KindInstanceIndex   ResourceKind = "instance-index"
	KindInstanceDetail  ResourceKind = "instance-detail"
	KindEncounterDetail ResourceKind = "encounter-detail"
	KindItemDetail      ResourceKind = "item-detail"
	KindItemMedia       ResourceKind = "item-media"
)

// path returns the endpoint path for the kind, parameterized by id. The
// instance index ignores the id.
func (k ResourceKind) path(id int) (string, error) {
	switch k {
	case KindInstanceIndex:
		return "/data/wow/journal-instance/index", nil
	case KindInstanceDetail:
		return fmt.Sprintf("/data/wow/journal-instance/%d", id), nil
	case KindEncounterDetail:
		return fmt.Sprintf("/data/wow/journal-encounter/%d", id), nil
	case KindItemDetail:
		return fmt.Sprintf("/data/wow/item/%d", id), nil
	case KindItemMedia:
		return fmt.Sprintf("/data/wow/media/item/%d", id), nil
	default:
		return "", fmt.Errorf("unknown resource kind %q", string(k))
	}
}

// ResourceRequest identifies one upstream resource.
type ResourceRequest struct {
	Kind      ResourceKind
	ID        int
	Namespace string
	Locale    string
}

// CacheKey derives the logical cache identity of the request. Identical
// (kind, id, namespace, locale) tuples always produce the same key;
// requests differing in any field never collide.
func (r ResourceRequest) CacheKey() string {
	return fmt.Sprintf("%s://%s/%s/%d", r.Kind, r.Namespace, r.Locale, r.ID)
}

// TokenSource supplies a currently-valid bearer token. Satisfied by
// *Authority.
type TokenSource interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

// Client serves resource reads from the Battle.net Game Data API through a
// TTL cache keyed by logical resource identity. The cache is a pure side
// channel: it affects latency and upstream load, never response content.
type Client struct {
	tokens     TokenSource
	httpClient *http.Client
	baseURL    string
	namespace  string
	locale     string
	cache      cache.Cache[json.RawMessage]
	flight     singleflight.Group
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientHTTPClient sets the HTTP client used for upstream fetches.
func WithClientHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a caching resource client for the configured region
// and locale.
func NewClient(cfg config.BattlenetConfig, tokens TokenSource, resourceCache cache.Cache[json.RawMessage], opts ...ClientOption) *Client {
	baseURL := cfg.APIURL
	if baseURL == "" {
		baseURL = regionAPIURLs[cfg.Region]
	}

	c := &Client{
		tokens: tokens,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.UpstreamTimeoutSeconds) * time.Second,
		},
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		namespace: "static-" + cfg.Region,
		locale:    cfg.Locale,
		cache:     resourceCache,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Namespace returns the default static namespace for the client's region.
func (c *Client) Namespace() string { return c.namespace }

// Locale returns the client's configured locale.
func (c *Client) Locale() string { return c.locale }

// Fetch returns the resource identified by req, from cache when a
// non-expired entry exists, otherwise from upstream. Concurrent misses for
// the same key are coalesced into one upstream call. Upstream failures are
// returned as UpstreamError and never cached.
func (c *Client) Fetch(ctx context.Context, req ResourceRequest) (json.RawMessage, error) {
	if req.Namespace == "" {
		req.Namespace = c.namespace
	}
	if req.Locale == "" {
		req.Locale = c.locale
	}

	key := req.CacheKey()

	cached, found, err := c.cache.Get(ctx, key)
	if err != nil {
		// degraded cache must not fail the read path
		log.Warn().Err(err).Str("key", key).Msg("cache read failed, fetching upstream")
	} else if found {
		log.Debug().Str("key", key).Msg("cache hit")
		return cached, nil
	}

	v, err, _ := c.flight.Do(key, func() (any, error) {
		body, err := c.fetchUpstream(ctx, req)
		if err != nil {
			return nil, err
		}

		if err := c.cache.Set(ctx, key, body); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}

		return body, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(json.RawMessage), nil
}

func (c *Client) fetchUpstream(ctx context.Context, req ResourceRequest) (json.RawMessage, error) {
	path, err := req.Kind.path(req.ID)
	if err != nil {
		return nil, &UpstreamError{StatusCode: http.StatusInternalServerError, Endpoint: "", Message: err.Error()}
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &UpstreamError{StatusCode: http.StatusInternalServerError, Endpoint: path, Message: err.Error()}
	}

	httpReq.Header.Set("Authorization", "Bearer "+token.AccessToken)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Accept-Language", req.Locale)
	httpReq.Header.Set("Battlenet-Namespace", req.Namespace)

	// namespace and locale are accepted as header or query parameter;
	// supplying both tolerates upstream behavior differences between hosts
	q := httpReq.URL.Query()
	q.Set("namespace", req.Namespace)
	q.Set("locale", req.Locale)
	httpReq.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &UpstreamError{StatusCode: http.StatusInternalServerError, Endpoint: path, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := upstreamDetail(resp.Body)
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Endpoint:   path,
			Message:    detail,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{StatusCode: http.StatusInternalServerError, Endpoint: path, Message: err.Error()}
	}

	return json.RawMessage(body), nil
}

// upstreamDetail extracts the "detail" field Battle.net error payloads
// carry, falling back to the raw body.
func upstreamDetail(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, 2048))

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}

	detail := strings.TrimSpace(string(body))
	if detail == "" {
		detail = "upstream request failed"
	}
	return detail
}

// InstanceIndex fetches the journal instance index.
func (c *Client) InstanceIndex(ctx context.Context) (*InstanceIndex, error) {
	return fetchAs[InstanceIndex](ctx, c, ResourceRequest{Kind: KindInstanceIndex})
}

// InstanceDetail fetches one journal instance with its encounters.
func (c *Client) InstanceDetail(ctx context.Context, id int) (*InstanceDetail, error) {
	return fetchAs[InstanceDetail](ctx, c, ResourceRequest{Kind: KindInstanceDetail, ID: id})
}

// EncounterDetail fetches one journal encounter with its loot drops.
func (c *Client) EncounterDetail(ctx context.Context, id int) (*EncounterDetail, error) {
	return fetchAs[EncounterDetail](ctx, c, ResourceRequest{Kind: KindEncounterDetail, ID: id})
}

// ItemDetail fetches one item's detail payload.
func (c *Client) ItemDetail(ctx context.Context, id int) (*ItemDetail, error) {
	return fetchAs[ItemDetail](ctx, c, ResourceRequest{Kind: KindItemDetail, ID: id})
}

// ItemMedia fetches one item's media payload.
func (c *Client) ItemMedia(ctx context.Context, id int) (*ItemMedia, error) {
	return fetchAs[ItemMedia](ctx, c, ResourceRequest{Kind: KindItemMedia, ID: id})
}

func fetchAs[T any](ctx context.Context, c *Client, req ResourceRequest) (*T, error) {
	body, err := c.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		path, _ := req.Kind.path(req.ID)
		return nil, &UpstreamError{
			StatusCode: http.StatusInternalServerError,
			Endpoint:   path,
			Message:    fmt.Sprintf("malformed upstream payload: %v", err),
		}
	}

	return &v, nil
}

// ClearCache evicts all cached resources unconditionally.
func (c *Client) ClearCache(ctx context.Context) error {
	if err := c.cache.Clear(ctx); err != nil {
		return err
	}
	log.Info().Msg("resource cache cleared")
	return nil
}

// CacheStats reports cache hit/miss counters and current key count.
func (c *Client) CacheStats(ctx context.Context) (cache.Stats, error) {
	return c.cache.Stats(ctx)
}
