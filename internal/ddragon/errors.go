package ddragon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// APIError is a non-200 answer from Data Dragon.
type APIError struct {
	StatusCode int
	URL        string
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("data dragon error (status %d) for %s", e.StatusCode, e.URL)
}

// IsNotFound reports whether err is a 404, e.g. a splash that was never published.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsRetryable reports whether repeating the request may succeed: rate limiting,
// server errors and transport failures are, any other status is not.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}

	return true
}
