// Package client provides the HTTP client used by registry backed sources.
//
// Requests are retried with exponential backoff on rate limiting, server
// errors and transport failures. Each registry host gets its own circuit
// breaker, and host names are resolved through a DNS cache.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenk/backoff"
)

const maxBodySize = 16 << 20

// Client is an HTTP client with retry logic for registry APIs.
type Client struct {
	http       *http.Client
	userAgent  string
	maxRetries int
	baseDelay  time.Duration
	breakers   *breakers
	stop       func()
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout for a single attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithMaxRetries sets the maximum number of retries.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithBaseDelay sets the initial delay for exponential backoff.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		c.baseDelay = d
	}
}

// WithHTTPClient replaces the underlying HTTP client, DNS cache included.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.stop()
		c.stop = func() {}
		c.http = hc
	}
}

// WithBreakerThreshold sets how many consecutive failures open a host's breaker.
func WithBreakerThreshold(n int64) Option {
	return func(c *Client) {
		c.breakers = newBreakers(n)
	}
}

// DefaultClient returns a client with sensible defaults:
// - 30s timeout per attempt
// - 3 retries with exponential backoff
// - Retry on 429, 5xx and transport errors
func DefaultClient() *Client {
	return NewClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	transport, stop := cachingTransport()
	c := &Client{
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		userAgent:  "versioncheck",
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
		breakers:   newBreakers(5),
		stop:       stop,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithUserAgent returns a copy of the client sending ua as User-Agent.
// The copy shares the transport and circuit breakers.
func (c *Client) WithUserAgent(ua string) *Client {
	cp := *c
	cp.userAgent = ua
	return &cp
}

// Close stops the DNS cache refresher.
func (c *Client) Close() {
	c.stop()
}

// BreakerStates returns "open" or "closed" for every host contacted.
func (c *Client) BreakerStates() map[string]string {
	return c.breakers.states()
}

// GetJSON fetches url and decodes the JSON response into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.GetBody(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}

// GetBody fetches url and returns the response body.
func (c *Client) GetBody(ctx context.Context, url string) ([]byte, error) {
	host := hostOf(url)
	breaker := c.breakers.get(host)

	if !breaker.Ready() {
		return nil, fmt.Errorf("circuit breaker open for registry %s: %w", host, ErrUpstreamDown)
	}

	var body []byte
	var notFound error
	err := breaker.Call(func() error {
		var fetchErr error
		body, fetchErr = c.retry(ctx, url)
		// A missing package says nothing about the registry's health.
		if errors.Is(fetchErr, ErrNotFound) {
			notFound = fetchErr
			return nil
		}
		return fetchErr
	}, 0)

	if notFound != nil {
		return nil, notFound
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) retry(ctx context.Context, url string) ([]byte, error) {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.baseDelay
	expBackoff.MaxElapsedTime = 0
	expBackoff.Reset()

	policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, uint64(c.maxRetries)), ctx)

	var body []byte
	err := backoff.Retry(func() error {
		data, err := c.do(ctx, url)
		if err == nil {
			body = data
			return nil
		}
		if !retryable(ctx, err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)

	return body, err
}

func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", url, err)
		}
		return body, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return nil, &RateLimitError{RetryAfter: retryAfter}

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url, Body: string(body)}
	}
}

// retryable reports whether err is worth another attempt.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	var rateErr *RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500
	}

	// Transport failures (connection refused, resets, timeouts).
	return true
}
