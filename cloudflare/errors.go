package cloudflare

import (
	"fmt"
	"github.com/pkg/errors"
	"strings"
)

var (
	// ErrUnauthorized is returned when the API rejects the token (HTTP 401 or 403).
	ErrUnauthorized = errors.New("invalid API token")
	ErrZoneNotFound = errors.New("zone not found")
)

// APIError is a non-successful response from the Cloudflare API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	msg := "unknown error"
	if len(e.Messages) > 0 {
		msg = strings.Join(e.Messages, "; ")
	}
	return fmt.Sprintf("cloudflare api: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == 401 || e.StatusCode == 403 {
		return ErrUnauthorized
	}
	return nil
}
