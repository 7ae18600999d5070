// Package testhelpers provides mock Battle.net servers for tests: an
// OAuth token endpoint and a Game Data API serving canned payloads.
package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
)

// MockOAuthServer imitates the Battle.net OAuth token endpoint.
type MockOAuthServer struct {
	*httptest.Server

	// AccessToken is the token returned on success.
	AccessToken string

	// ExpiresIn is the expires_in value in seconds. Zero omits the field
	// from the response.
	ExpiresIn int64

	// StatusCode overrides the response status when non-zero.
	StatusCode int

	requests atomic.Int64
}

// NewOAuthServer starts a mock token endpoint returning the given access
// token. Close it when the test ends.
func NewOAuthServer(accessToken string) *MockOAuthServer {
	s := &MockOAuthServer{
		AccessToken: accessToken,
		ExpiresIn:   86399,
	}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if _, _, ok := r.BasicAuth(); !ok {
			http.Error(w, "missing credentials", http.StatusUnauthorized)
			return
		}

		if s.StatusCode != 0 && s.StatusCode != http.StatusOK {
			http.Error(w, "authentication failed", s.StatusCode)
			return
		}

		body := map[string]any{
			"access_token": s.AccessToken,
			"token_type":   "bearer",
		}
		if s.ExpiresIn > 0 {
			body["expires_in"] = s.ExpiresIn
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}))

	return s
}

// RequestCount reports how many token requests have been received.
func (s *MockOAuthServer) RequestCount() int64 {
	return s.requests.Load()
}

// MockGameDataServer imitates the Battle.net Game Data API. Payloads are
// registered per path; unregistered paths return 404 with a Battle.net
// style error body.
type MockGameDataServer struct {
	*httptest.Server

	mux      *http.ServeMux
	requests atomic.Int64

	// StatusCode overrides every response status when non-zero.
	StatusCode int
}

// NewGameDataServer starts a mock Game Data API. Close it when the test
// ends.
func NewGameDataServer() *MockGameDataServer {
	s := &MockGameDataServer{
		mux: http.NewServeMux(),
	}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)

		if s.StatusCode != 0 && s.StatusCode != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(s.StatusCode)
			fmt.Fprintf(w, `{"code":%d,"type":"BLZ","detail":"forced error"}`, s.StatusCode)
			return
		}

		s.mux.ServeHTTP(w, r)
	}))

	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"code":404,"type":"BLZ","detail":"Not Found"}`)
	})

	return s
}

// Register serves the given payload for the path, marshaled as JSON.
func (s *MockGameDataServer) Register(path string, payload any) {
	s.mux.HandleFunc("GET "+path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	})
}

// RegisterInstanceIndex serves the journal instance index.
func (s *MockGameDataServer) RegisterInstanceIndex(payload any) {
	s.Register("/data/wow/journal-instance/index", payload)
}

// RegisterInstance serves one journal instance.
func (s *MockGameDataServer) RegisterInstance(id int, payload any) {
	s.Register(fmt.Sprintf("/data/wow/journal-instance/%d", id), payload)
}

// RegisterEncounter serves one journal encounter.
func (s *MockGameDataServer) RegisterEncounter(id int, payload any) {
	s.Register(fmt.Sprintf("/data/wow/journal-encounter/%d", id), payload)
}

// RegisterItem serves one item detail.
func (s *MockGameDataServer) RegisterItem(id int, payload any) {
	s.Register(fmt.Sprintf("/data/wow/item/%d", id), payload)
}

// RegisterItemMedia serves one item's media.
func (s *MockGameDataServer) RegisterItemMedia(id int, payload any) {
	s.Register(fmt.Sprintf("/data/wow/media/item/%d", id), payload)
}

// RequestCount reports how many API requests have been received.
func (s *MockGameDataServer) RequestCount() int64 {
	return s.requests.Load()
}
