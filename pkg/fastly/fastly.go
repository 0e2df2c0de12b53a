// Package fastly purges cached URLs from the Fastly CDN.
package fastly

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// MethodPurge is the HTTP method Fastly accepts for single URL purges.
const MethodPurge = "PURGE"

const defaultTimeout = 30 * time.Second

// Sentinel errors for purge outcomes.
var (
	// ErrPermissionDenied is returned when Fastly rejects the API key (HTTP 401).
	ErrPermissionDenied = errors.New("fastly: permission denied")

	// ErrPurgeFailed is returned for any other status code >= 400.
	ErrPurgeFailed = errors.New("fastly: purge failed")
)

// StatusError carries the upstream status code of a failed purge.
type StatusError struct {
	URL  string
	Code int
	err  error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.err, e.URL, e.Code)
}

func (e *StatusError) Unwrap() error {
	return e.err
}

// Client issues soft purges against Fastly.
// Safe for concurrent use.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	apiKey  string
	soft    bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithRateLimit caps outgoing purge requests per second.
// Zero or negative values disable limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(cl *Client) {
		if perSecond <= 0 {
			cl.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		cl.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithHardPurge sends purges without the soft purge hint.
func WithHardPurge() Option {
	return func(cl *Client) {
		cl.soft = false
	}
}

// New creates a Client authenticating with apiKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		http:   &http.Client{Timeout: defaultTimeout},
		apiKey: apiKey,
		soft:   true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Purge sends one PURGE request for url.
// A status below 400 is success. 401 yields ErrPermissionDenied; any other
// failing status yields ErrPurgeFailed, both wrapped in *StatusError.
func (c *Client) Purge(ctx context.Context, url string) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("fastly: rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, MethodPurge, url, nil)
	if err != nil {
		return fmt.Errorf("fastly: build request: %w", err)
	}
	req.Header.Set("Fastly-Key", c.apiKey)
	if c.soft {
		req.Header.Set("Fastly-Soft-Purge", "1")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fastly: purge %s: %w", url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode < http.StatusBadRequest:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return &StatusError{URL: url, Code: resp.StatusCode, err: ErrPermissionDenied}
	default:
		return &StatusError{URL: url, Code: resp.StatusCode, err: ErrPurgeFailed}
	}
}
