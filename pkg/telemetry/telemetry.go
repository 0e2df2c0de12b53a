package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
)

const defaultFlushTimeout = 2 * time.Second

// ErrNoDSN is returned by New when no DSN is configured.
var ErrNoDSN = errors.New("telemetry: no DSN configured")

// Config configures the Sentry client.
type Config struct {
	Transport   sentry.Transport
	DSN         string
	Environment string
	Release     string
	ServerName  string
}

// Client is an application-owned Sentry handle.
// It never touches the global hub. A nil *Client is a valid disabled client.
type Client struct {
	hub *sentry.Hub
}

// New creates a Client for cfg.DSN.
func New(cfg Config) (*Client, error) {
	if cfg.DSN == "" {
		return nil, ErrNoDSN
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		ServerName:       cfg.ServerName,
		Transport:        cfg.Transport,
		AttachStacktrace: true,
		EnableLogs:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: create client: %w", err)
	}
	return &Client{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// Enabled reports whether errors are forwarded to Sentry.
func (c *Client) Enabled() bool {
	return c != nil
}

// Hub returns the client's root hub, or nil when disabled.
func (c *Client) Hub() *sentry.Hub {
	if c == nil {
		return nil
	}
	return c.hub
}

// Middleware binds a per-request hub to the request context and reports
// panics that escape next before re-panicking.
func (c *Client) Middleware(next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	h := sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := sentry.SetHubOnContext(r.Context(), c.hub.Clone())
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Capture reports err on the request hub found in ctx, falling back to the
// client's root hub.
func (c *Client) Capture(ctx context.Context, err error) *sentry.EventID {
	if c == nil || err == nil {
		return nil
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = c.hub
	}
	return hub.CaptureException(err)
}

// Flush waits for buffered events to be sent.
func (c *Client) Flush(timeout time.Duration) bool {
	if c == nil {
		return true
	}
	return c.hub.Flush(timeout)
}

// Shutdown flushes pending events within ctx's deadline.
func (c *Client) Shutdown(ctx context.Context) error {
	if c == nil {
		return nil
	}
	timeout := defaultFlushTimeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	if !c.Flush(timeout) {
		return errors.New("telemetry: flush timed out")
	}
	return nil
}
