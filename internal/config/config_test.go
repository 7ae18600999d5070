package config

import (
	"context"
	"testing"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requiredEnv() map[string]string {
	return map[string]string{
		"BLIZZARD_CLIENT_ID":     "client-id",
		"BLIZZARD_CLIENT_SECRET": "client-secret",
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(requiredEnv()))
	require.NoError(t, err)

	assert.Equal(t, "client-id", cfg.Battlenet.ClientID)
	assert.Equal(t, "eu", cfg.Battlenet.Region)
	assert.Equal(t, "es_ES", cfg.Battlenet.Locale)
	assert.Equal(t, 15, cfg.Battlenet.UpstreamTimeoutSeconds)

	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Equal(t, 3600, cfg.Cache.TTLSeconds)
	assert.Equal(t, 10000, cfg.Cache.MaxSize)

	assert.Equal(t, "memory", cfg.Store.Type)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Server.ShutdownTimeoutSeconds)

	assert.False(t, cfg.Observe.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	env := requiredEnv()
	env["BLIZZARD_REGION"] = "us"
	env["BLIZZARD_LOCALE"] = "en_US"
	env["CACHE_TYPE"] = "valkey"
	env["CACHE_TTL_SECS"] = "60"
	env["VALKEY_ADDRESS"] = "valkey.internal:6379"
	env["SERVER_PORT"] = "9090"

	cfg, err := load(context.Background(), envconfig.MapLookuper(env))
	require.NoError(t, err)

	assert.Equal(t, "us", cfg.Battlenet.Region)
	assert.Equal(t, "en_US", cfg.Battlenet.Locale)
	assert.Equal(t, "valkey", cfg.Cache.Type)
	assert.Equal(t, 60, cfg.Cache.TTLSeconds)
	assert.Equal(t, "valkey.internal:6379", cfg.Cache.Valkey.Address)
	assert.True(t, cfg.Cache.Valkey.TLS)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_MissingCredentials(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"BLIZZARD_CLIENT_SECRET": "client-secret",
	}))
	require.Error(t, err)
	assert.ErrorContains(t, err, "BLIZZARD_CLIENT_ID")
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name     string
		override map[string]string
		message  string
	}{
		{
			name:     "unknown region",
			override: map[string]string{"BLIZZARD_REGION": "moon"},
			message:  "unknown region",
		},
		{
			name:     "unparseable locale",
			override: map[string]string{"BLIZZARD_LOCALE": "!!"},
			message:  "unparseable locale",
		},
		{
			name:     "invalid cache type",
			override: map[string]string{"CACHE_TYPE": "redis"},
			message:  "invalid cache type",
		},
		{
			name:     "valkey cache without address",
			override: map[string]string{"CACHE_TYPE": "valkey"},
			message:  "VALKEY_ADDRESS required",
		},
		{
			name:     "non-positive ttl",
			override: map[string]string{"CACHE_TTL_SECS": "0"},
			message:  "CACHE_TTL_SECS must be positive",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := requiredEnv()
			for k, v := range tc.override {
				env[k] = v
			}

			_, err := load(context.Background(), envconfig.MapLookuper(env))
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.message)
		})
	}
}

func TestBattlenetConfigValidate_AcceptsUnderscoreLocales(t *testing.T) {
	for _, locale := range []string{"es_ES", "en_US", "ko_KR", "zh_TW"} {
		cfg := BattlenetConfig{Region: "eu", Locale: locale}
		assert.NoError(t, cfg.Validate(), locale)
	}
}
