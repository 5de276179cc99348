package opsview

import (
	"fmt"
	"net/http"
)

// APIError is a REST API failure: a response outside the 2xx range, a
// body that would not decode, or a request that got no response at all
// (StatusCode 0).
type APIError struct {
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == http.StatusUnauthorized {
		return "opsview authentication failed"
	}
	if e.StatusCode == http.StatusForbidden {
		return "opsview authorization failed"
	}
	if e.StatusCode >= 400 {
		return fmt.Sprintf("opsview API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("opsview API error: %v", e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Transient reports whether a retry may succeed. Rate limiting, server
// errors and transport failures are worth retrying; auth failures and
// other 4xx responses are not.
func (e *APIError) Transient() bool {
	return e.StatusCode == 0 ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= 500
}
