package planet

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingAPIKey is returned when a client is constructed without a key.
	ErrMissingAPIKey = errors.New("planet: missing API key")
	// ErrInvalidBaseURL is returned when a base URL option is invalid.
	ErrInvalidBaseURL = errors.New("planet: invalid base URL")
	// ErrNilHTTPClient indicates a nil HTTP client was provided.
	ErrNilHTTPClient = errors.New("planet: http client cannot be nil")
	// ErrInvalidParams indicates unusable search or batch parameters.
	ErrInvalidParams = errors.New("planet: invalid parameters")
)

// APIError represents a Planet error payload or HTTP failure.
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Raw     []byte `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message == "" {
		return fmt.Sprintf("planet: api error status=%d", e.Status)
	}
	return fmt.Sprintf("planet: %s (status=%d)", e.Message, e.Status)
}

// Temporary reports whether the error may be retried.
func (e *APIError) Temporary() bool {
	if e == nil {
		return false
	}
	return e.Status == http.StatusTooManyRequests || (e.Status >= 500 && e.Status < 600)
}

// IsAuth reports whether err is an API error caused by a rejected key.
func IsAuth(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}

// IsInvalidFilter reports whether err is an API error caused by a
// malformed search request.
func IsInvalidFilter(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusBadRequest
}

// NetworkError wraps a transport-level failure (DNS, TLS, connection).
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("planet: request to %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ActivationError records a failure to place a clip order for one item, or
// an order that the provider reported as failed.
type ActivationError struct {
	ItemID string
	Err    error
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("planet: activation failed for %s: %v", e.ItemID, e.Err)
}

func (e *ActivationError) Unwrap() error { return e.Err }

// TimeoutError records an order that never became ready within the
// configured polling budget.
type TimeoutError struct {
	ItemID   string
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("planet: order for %s not ready after %d poll attempts", e.ItemID, e.Attempts)
}

// DownloadError records a failure to retrieve a delivery file for one item.
type DownloadError struct {
	ItemID string
	URL    string
	Err    error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("planet: download failed for %s: %v", e.ItemID, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }
