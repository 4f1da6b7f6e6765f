package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 4 << 10

// APIError represents a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Body       string
	URL        string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote: API error %d (URL: %s)", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("remote: API error %d: %s (URL: %s)", e.StatusCode, e.Body, e.URL)
}

// IsClientError checks if the error is a 4xx response.
func IsClientError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
	}
	return false
}

// IsServerError checks if the error is a 5xx response.
func IsServerError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return false
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

// IsRateLimited checks if the server asked the client to slow down.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}
