package lcu

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx answer from the client API.
type APIError struct {
	StatusCode int
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("league client error (status %d) for %s: %s", e.StatusCode, e.Path, e.Message)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsRetryable reports whether the client may answer later: it is still starting
// (404 on plugins not yet loaded, 5xx) or not accepting connections yet.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound || apiErr.StatusCode >= 500
	}

	return true
}
