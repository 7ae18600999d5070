package battlenet

import (
	"fmt"
	"net/http"
)

// ValidationError reports malformed caller input. It surfaces as a 400
// response and is never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Status implements the router boundary's HTTPStatuser contract.
func (e *ValidationError) Status() (int, string) {
	return http.StatusBadRequest, e.Message
}

// AuthenticationError reports a rejected or unreachable identity provider.
// Not retried automatically: the next request re-authenticates from
// scratch.
type AuthenticationError struct {
	Cause error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("Battle.net authentication failed: %v", e.Cause)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Cause
}

// Status implements the router boundary's HTTPStatuser contract.
func (e *AuthenticationError) Status() (int, string) {
	return http.StatusInternalServerError, "Battle.net authentication failed"
}

// UpstreamError reports a non-2xx response or network failure from the
// Game Data API. StatusCode carries the upstream status, or 500 when the
// failure produced none. Failures are never cached.
type UpstreamError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Battle.net API error (%d) for %s: %s", e.StatusCode, e.Endpoint, e.Message)
}

// Status implements the router boundary's HTTPStatuser contract.
func (e *UpstreamError) Status() (int, string) {
	return e.StatusCode, fmt.Sprintf("Battle.net API error: %s", e.Message)
}
