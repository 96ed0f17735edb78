package vonage

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized   = errors.New("vonage: unauthorized")
	ErrForbidden      = errors.New("vonage: forbidden")
	ErrNotFound       = errors.New("vonage: not found")
	ErrUnprocessable  = errors.New("vonage: unprocessable entity")
	ErrRateLimited    = errors.New("vonage: rate limited")
	ErrServer         = errors.New("vonage: server error")
	ErrInvalidMessage = errors.New("vonage: invalid message")

	// ErrMissingEmbedded is returned when a list payload has no embedded item
	// sequence (absent or null).
	ErrMissingEmbedded = errors.New("vonage: response has no embedded items")
)

// APIError is a non-2xx answer from the API. Vonage reports failures as
// problem+json, so the fields mirror that shape. Use errors.Is against the
// sentinels above to branch on the status class:
//
//	if errors.Is(err, vonage.ErrNotFound) { ... }
type APIError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	Detail     string `json:"detail"`
	InstanceID string `json:"instance"`
	Body       []byte `json:"-"`
}

func (e *APIError) Error() string {
	if e.Title == "" && e.Detail == "" {
		return fmt.Sprintf("vonage: status %d", e.StatusCode)
	}
	if e.Detail == "" {
		return fmt.Sprintf("vonage: %s (%d)", e.Title, e.StatusCode)
	}
	return fmt.Sprintf("vonage: %s (%d): %s", e.Title, e.StatusCode, e.Detail)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnprocessable:
		return e.StatusCode == http.StatusUnprocessableEntity
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrServer:
		return e.StatusCode >= 500
	}
	return false
}
