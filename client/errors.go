package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a package or tag is not found.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamDown is returned while the circuit breaker for a host is open.
	ErrUpstreamDown = errors.New("upstream registry unavailable")
)

// HTTPError represents an HTTP error response.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// IsNotFound returns true if the error represents a 404 response.
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == 404
}

// Unwrap lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *HTTPError) Unwrap() error {
	if e.IsNotFound() {
		return ErrNotFound
	}
	return nil
}

// NotFoundError wraps ErrNotFound with additional context.
type NotFoundError struct {
	Source string
	Name   string
	Tag    string
}

func (e *NotFoundError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("%s: package %s has no %q tag", e.Source, e.Name, e.Tag)
	}
	return fmt.Sprintf("%s: package %s not found", e.Source, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// RateLimitError is returned when the registry rate limits requests.
type RateLimitError struct {
	RetryAfter int // seconds
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %d seconds", e.RetryAfter)
}
