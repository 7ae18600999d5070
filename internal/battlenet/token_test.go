package battlenet_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/equinox-loot/loot-bridge/internal/battlenet"
	"github.com/equinox-loot/loot-bridge/internal/config"
	"github.com/equinox-loot/loot-bridge/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authorityConfig(tokenURL string) config.BattlenetConfig {
	return config.BattlenetConfig{
		ClientID:               "client-id",
		ClientSecret:           "client-secret",
		Region:                 "eu",
		Locale:                 "es_ES",
		UpstreamTimeoutSeconds: 5,
		TokenURL:               tokenURL,
	}
}

func TestAuthority_Token_Authenticates(t *testing.T) {
	oauth := testhelpers.NewOAuthServer("token-one")
	defer oauth.Close()

	authority := battlenet.NewAuthority(authorityConfig(oauth.URL))

	token, err := authority.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "token-one", token.AccessToken)
	assert.Equal(t, int64(1), oauth.RequestCount())

	// the reported expiry drives the token lifetime
	expectedExpiry := time.Now().Add(86399 * time.Second)
	assert.WithinDuration(t, expectedExpiry, token.Expiry, 5*time.Second)
}

func TestAuthority_Token_ReusedWhileValid(t *testing.T) {
	oauth := testhelpers.NewOAuthServer("token-one")
	defer oauth.Close()

	authority := battlenet.NewAuthority(authorityConfig(oauth.URL))

	first, err := authority.Token(context.Background())
	require.NoError(t, err)

	second, err := authority.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.AccessToken, second.AccessToken)
	assert.Equal(t, int64(1), oauth.RequestCount(), "valid token must not trigger re-authentication")
}

func TestAuthority_Token_FallbackExpiry(t *testing.T) {
	oauth := testhelpers.NewOAuthServer("token-one")
	oauth.ExpiresIn = 0 // omit expires_in entirely
	defer oauth.Close()

	authority := battlenet.NewAuthority(authorityConfig(oauth.URL))

	token, err := authority.Token(context.Background())
	require.NoError(t, err)

	expectedExpiry := time.Now().Add(86400 * time.Second)
	assert.WithinDuration(t, expectedExpiry, token.Expiry, 5*time.Second)
}

func TestAuthority_Token_RenewsInsideExpiryBuffer(t *testing.T) {
	oauth := testhelpers.NewOAuthServer("token-one")
	oauth.ExpiresIn = 120
	defer oauth.Close()

	var mu sync.Mutex
	now := time.Now()
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(d)
	}

	authority := battlenet.NewAuthority(authorityConfig(oauth.URL), battlenet.WithClock(clock))

	_, err := authority.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), oauth.RequestCount())

	// 30s remaining on a 120s token: formally unexpired, but within the
	// 60s buffer, so the token is treated as stale
	advance(90 * time.Second)
	oauth.AccessToken = "token-two"

	token, err := authority.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "token-two", token.AccessToken)
	assert.Equal(t, int64(2), oauth.RequestCount())
}

func TestAuthority_Token_ValidOutsideExpiryBuffer(t *testing.T) {
	oauth := testhelpers.NewOAuthServer("token-one")
	oauth.ExpiresIn = 120
	defer oauth.Close()

	now := time.Now()
	authority := battlenet.NewAuthority(
		authorityConfig(oauth.URL),
		battlenet.WithClock(func() time.Time { return now }),
	)

	_, err := authority.Token(context.Background())
	require.NoError(t, err)

	// 61s remaining: just outside the buffer
	now = now.Add(59 * time.Second)

	token, err := authority.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "token-one", token.AccessToken)
	assert.Equal(t, int64(1), oauth.RequestCount())
}

func TestAuthority_Token_ConcurrentRenewalCoalesced(t *testing.T) {
	oauth := testhelpers.NewOAuthServer("token-one")
	defer oauth.Close()

	authority := battlenet.NewAuthority(authorityConfig(oauth.URL))

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := authority.Token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "token-one", token.AccessToken)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), oauth.RequestCount(), "concurrent callers must share one exchange")
}

func TestAuthority_Token_ProviderRejection(t *testing.T) {
	oauth := testhelpers.NewOAuthServer("unused")
	oauth.StatusCode = 401
	defer oauth.Close()

	authority := battlenet.NewAuthority(authorityConfig(oauth.URL))

	_, err := authority.Token(context.Background())
	require.Error(t, err)

	var authErr *battlenet.AuthenticationError
	require.ErrorAs(t, err, &authErr)

	status, message := authErr.Status()
	assert.Equal(t, 500, status)
	assert.Equal(t, "Battle.net authentication failed", message)
}

func TestAuthority_Valid(t *testing.T) {
	oauth := testhelpers.NewOAuthServer("token-one")
	oauth.ExpiresIn = 120
	defer oauth.Close()

	now := time.Now()
	authority := battlenet.NewAuthority(
		authorityConfig(oauth.URL),
		battlenet.WithClock(func() time.Time { return now }),
	)

	assert.False(t, authority.Valid(), "no token held before first exchange")

	_, err := authority.Authenticate(context.Background())
	require.NoError(t, err)
	assert.True(t, authority.Valid())

	now = now.Add(90 * time.Second)
	assert.False(t, authority.Valid(), "token inside the expiry buffer is not valid")

	// Valid never authenticates
	assert.Equal(t, int64(1), oauth.RequestCount())
}
