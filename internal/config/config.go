package config

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sethvargo/go-envconfig"
	"golang.org/x/text/language"
)

type Config struct {
	Battlenet BattlenetConfig
	Cache     CacheConfig
	Observe   ObserveConfig
	Server    ServerConfig
	Store     StoreConfig
}

type ServerConfig struct {
	Port                   int `env:"SERVER_PORT, default=8080"`
	ShutdownTimeoutSeconds int `env:"SERVER_SHUTDOWN_TIMEOUT_SECS, default=25"`

	OutgoingHTTPMaxIdleConns    int `env:"SERVER_OUTGOING_MAX_IDLE_CONNS, default=100"`
	OutgoingHTTPMaxConnsPerHost int `env:"SERVER_OUTGOING_MAX_CONNS_PER_HOST, default=20"`
}

// BattlenetConfig holds the credentials and regional settings for the
// Battle.net OAuth provider and Game Data API.
type BattlenetConfig struct {
	ClientID     string `env:"BLIZZARD_CLIENT_ID, required"`
	ClientSecret string `env:"BLIZZARD_CLIENT_SECRET, required"`

	// Region selects the upstream API host and the static namespace
	// ("static-<region>").
	Region string `env:"BLIZZARD_REGION, default=eu"`

	// Locale is the Battle.net locale identifier, e.g. "es_ES" or "en_US".
	Locale string `env:"BLIZZARD_LOCALE, default=es_ES"`

	// UpstreamTimeoutSeconds bounds every outbound call to the data API and
	// the token endpoint.
	UpstreamTimeoutSeconds int `env:"BLIZZARD_UPSTREAM_TIMEOUT_SECS, default=15"`

	APIURL   string // internal only, test override
	TokenURL string // internal only, test override
}

// CacheConfig specifies the resource cache configuration.
type CacheConfig struct {
	// Type selects the cache implementation: "memory" (default) or "valkey"
	Type string `env:"CACHE_TYPE, default=memory"`

	// TTLSeconds is how long a cached upstream response remains valid.
	TTLSeconds int `env:"CACHE_TTL_SECS, default=3600"`

	// MaxSize bounds the in-memory cache entry count.
	MaxSize int `env:"CACHE_MAX_SIZE, default=10000"`

	// Valkey holds distributed cache settings.
	Valkey ValkeyConfig
}

// ValkeyConfig specifies connection settings shared by the distributed
// cache and the valkey-backed document store.
type ValkeyConfig struct {
	// Address is the Valkey server address (host:port).
	Address string `env:"VALKEY_ADDRESS"`

	// TLS enables TLS connection to Valkey. Defaults to true so the secure
	// option is the default.
	TLS bool `env:"VALKEY_TLS, default=true"`

	Username string `env:"VALKEY_USERNAME"`
	Password string `env:"VALKEY_PASSWORD"`
}

// StoreConfig specifies the document store configuration.
type StoreConfig struct {
	// Type selects the store implementation: "memory" (default) or "valkey".
	// The valkey store shares ValkeyConfig with the cache.
	Type string `env:"STORE_TYPE, default=memory"`
}

type ObserveConfig struct {
	Enabled                   bool   `env:"OBSERVE_ENABLED, default=false"`
	MetricsEnabled            bool   `env:"OBSERVE_METRICS_ENABLED, default=true"`
	ServiceName               string `env:"OBSERVE_SERVICE_NAME, default=loot-bridge"`
	TraceBatchTimeoutSeconds  int    `env:"OBSERVE_TRACE_BATCH_TIMEOUT_SECS, default=20"`
	MetricReadIntervalSeconds int    `env:"OBSERVE_METRIC_READ_INTERVAL_SECS, default=60"`
	HTTPTransportEnabled      bool   `env:"OBSERVE_HTTP_TRANSPORT_ENABLED, default=true"`
}

var validRegions = []string{"us", "eu", "kr", "tw", "cn"}

func Load(ctx context.Context) (Config, error) {
	return load(ctx, nil) // load from OS environment
}

func load(ctx context.Context, lookup envconfig.Lookuper) (Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookup, // nil defaults to OS environment
	})
	if err != nil {
		return cfg, err
	}

	if err := cfg.Battlenet.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid Battle.net configuration: %w", err)
	}

	if err := cfg.Cache.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid cache configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the regional settings. Locales arrive in Battle.net's
// underscore form ("es_ES") and are normalized to a BCP 47 tag before
// parsing.
func (c *BattlenetConfig) Validate() error {
	if !slices.Contains(validRegions, c.Region) {
		return fmt.Errorf("unknown region %q: must be one of %s", c.Region, strings.Join(validRegions, ", "))
	}

	tag := strings.ReplaceAll(c.Locale, "_", "-")
	if _, err := language.Parse(tag); err != nil {
		return fmt.Errorf("unparseable locale %q: %w", c.Locale, err)
	}

	return nil
}

// Validate checks that the cache configuration is valid.
func (c *CacheConfig) Validate() error {
	if c.Type != "memory" && c.Type != "valkey" {
		return fmt.Errorf("invalid cache type %q: must be either \"memory\" or \"valkey\"", c.Type)
	}

	if c.Type == "valkey" && c.Valkey.Address == "" {
		return fmt.Errorf("VALKEY_ADDRESS required when CACHE_TYPE=valkey")
	}

	if c.TTLSeconds <= 0 {
		return fmt.Errorf("CACHE_TTL_SECS must be positive")
	}

	return nil
}
