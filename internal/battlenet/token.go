package battlenet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/equinox-loot/loot-bridge/internal/config"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	// expiryBuffer is subtracted from the provider-reported expiry when
	// judging validity, covering clock skew and in-flight request latency.
	expiryBuffer = 60 * time.Second

	// fallbackExpiresIn is assumed when the provider omits expires_in.
	fallbackExpiresIn = 86400 * time.Second
)

// regionTokenURLs maps regions to their OAuth token endpoints.
var regionTokenURLs = map[string]string{
	"us": "https://oauth.battle.net/token",
	"eu": "https://oauth.battle.net/token",
	"kr": "https://oauth.battle.net/token",
	"tw": "https://oauth.battle.net/token",
	"cn": "https://oauth.battlenet.com.cn/token",
}

// Authority owns the OAuth client-credentials exchange against the
// Battle.net identity provider. It produces a currently-valid bearer token
// for every caller, re-authenticating transparently when the stored token
// goes stale. Tokens are replaced wholesale, never mutated, and are not
// exposed outside the Token accessor.
type Authority struct {
	httpClient   *http.Client
	tokenURL     string
	clientID     string
	clientSecret string

	// now is the clock seam; tests replace it to simulate expiry.
	now func() time.Time

	mu    sync.Mutex
	token *oauth2.Token

	renew singleflight.Group
}

// AuthorityOption configures an Authority.
type AuthorityOption func(*Authority)

// WithHTTPClient sets the HTTP client used for the token exchange.
func WithHTTPClient(client *http.Client) AuthorityOption {
	return func(a *Authority) {
		a.httpClient = client
	}
}

// WithClock sets the time source used for expiry checks.
func WithClock(now func() time.Time) AuthorityOption {
	return func(a *Authority) {
		a.now = now
	}
}

// NewAuthority creates a token authority for the configured region and
// credentials.
func NewAuthority(cfg config.BattlenetConfig, opts ...AuthorityOption) *Authority {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = regionTokenURLs[cfg.Region]
	}

	a := &Authority{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.UpstreamTimeoutSeconds) * time.Second,
		},
		tokenURL:     tokenURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Token returns the current token if still valid, otherwise performs a
// blocking re-authentication. Concurrent callers during a renewal share a
// single in-flight authentication. A stale token is never returned.
func (a *Authority) Token(ctx context.Context) (*oauth2.Token, error) {
	if t := a.current(); t != nil {
		return t, nil
	}

	v, err, _ := a.renew.Do("token", func() (any, error) {
		// a racing caller may have completed a renewal between the validity
		// check and the singleflight entry
		if t := a.current(); t != nil {
			return t, nil
		}
		return a.Authenticate(ctx)
	})
	if err != nil {
		return nil, err
	}

	return v.(*oauth2.Token), nil
}

// Valid reports whether a currently-valid token is held, without
// triggering authentication. Used by the healthcheck.
func (a *Authority) Valid() bool {
	return a.current() != nil
}

// current returns the stored token when valid, nil otherwise.
func (a *Authority) current() *oauth2.Token {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token == nil || a.token.AccessToken == "" {
		return nil
	}
	if !a.now().Before(a.token.Expiry.Add(-expiryBuffer)) {
		return nil
	}

	return a.token
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Authenticate performs the OAuth client-credentials exchange and installs
// the resulting token. Failures surface as AuthenticationError and are not
// retried here; the caller decides whether to retry.
func (a *Authority) Authenticate(ctx context.Context) (*oauth2.Token, error) {
	form := url.Values{"grant_type": {"client_credentials"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &AuthenticationError{Cause: err}
	}
	req.SetBasicAuth(a.clientID, a.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &AuthenticationError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &AuthenticationError{
			Cause: fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, &AuthenticationError{Cause: fmt.Errorf("decoding token response: %w", err)}
	}
	if tr.AccessToken == "" {
		return nil, &AuthenticationError{Cause: fmt.Errorf("token endpoint returned no access token")}
	}

	expiresIn := time.Duration(tr.ExpiresIn) * time.Second
	if expiresIn <= 0 {
		expiresIn = fallbackExpiresIn
	}

	token := &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
		Expiry:      a.now().Add(expiresIn),
	}

	a.mu.Lock()
	a.token = token
	a.mu.Unlock()

	log.Info().
		Time("expiry", token.Expiry).
		Dur("expires_in", expiresIn).
		Msg("Battle.net OAuth token obtained")

	return token, nil
}
