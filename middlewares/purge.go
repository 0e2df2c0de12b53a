package middlewares

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/origami-service/origami/internal"
	"github.com/origami-service/origami/pkg/fastly"
)

// DefaultMaxPurgeWait caps the wait query parameter.
const DefaultMaxPurgeWait = 5 * time.Minute

// Purge endpoint messages.
const (
	PurgeMissingKeyMessage = "An apiKey query parameter is required"
	PurgeForbiddenMessage  = "You do not have permission to purge URLs"
	PurgeAcceptedMessage   = "Purging URLs"
)

// PurgeOptions configures a Purger.
type PurgeOptions struct {
	// URLs are purged from Fastly on every authorised request.
	URLs []string

	// FastlyAPIKey authenticates against Fastly. Empty falls back to the
	// application's FASTLY_PURGE_API_KEY.
	FastlyAPIKey string

	// PurgeAPIKey must match the apiKey query parameter. Empty falls back
	// to the application's PURGE_API_KEY.
	PurgeAPIKey string

	// Client overrides the Fastly client. FastlyAPIKey and the rate limit
	// are ignored when set.
	Client *fastly.Client

	// RateLimit caps outgoing purge requests per second. Zero disables it.
	RateLimit float64
	RateBurst int

	// MaxWait caps the wait query parameter. Defaults to DefaultMaxPurgeWait.
	MaxWait time.Duration
}

// Purger serves a purge endpoint that soft-purges a fixed set of URLs from
// Fastly. Requests are answered with 202 before purging starts; the purge
// itself runs in the background and outlives the request.
type Purger struct {
	opts     PurgeOptions
	inflight sync.WaitGroup
}

// NewPurger creates a Purger.
func NewPurger(opts PurgeOptions) *Purger {
	if opts.MaxWait <= 0 {
		opts.MaxWait = DefaultMaxPurgeWait
	}
	opts.URLs = append([]string(nil), opts.URLs...)
	return &Purger{opts: opts}
}

// Middleware returns the purge filter. It never calls next.
//
//	purger := middlewares.NewPurger(middlewares.PurgeOptions{
//	    URLs: []string{"https://www.example.com/"},
//	})
//	r.POST("/purge", nil, purger.Middleware())
func (p *Purger) Middleware() internal.Middleware {
	return func(internal.HandlerFunc) internal.HandlerFunc {
		return p.handle
	}
}

// Wait blocks until every purge started by this Purger has finished.
func (p *Purger) Wait() {
	p.inflight.Wait()
}

// Shutdown is Wait bounded by ctx, usable as a shutdown hook.
func (p *Purger) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("purge: %w", ctx.Err())
	}
}

func (p *Purger) handle(c internal.Context) error {
	var cfg internal.Config
	if o := c.Origami(); o != nil {
		cfg = o.Config
	}

	apiKey := c.Query("apiKey")
	if apiKey == "" {
		return internal.ErrUnauthorized(PurgeMissingKeyMessage)
	}
	want := fallback(p.opts.PurgeAPIKey, cfg.PurgeAPIKey)
	if want == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(want)) != 1 {
		return internal.ErrForbidden(PurgeForbiddenMessage)
	}

	wait := min(internal.QueryMillis(c, "wait"), p.opts.MaxWait)
	client := p.client(fallback(p.opts.FastlyAPIKey, cfg.FastlyPurgeAPIKey))
	log := c.Logger()

	if err := c.String(http.StatusAccepted, PurgeAcceptedMessage); err != nil {
		return err
	}

	p.inflight.Add(1)
	run := func(ctx context.Context) {
		defer p.inflight.Done()
		p.purge(ctx, log, client, wait)
	}
	if o := c.Origami(); o != nil {
		o.Go(c.Context(), run)
	} else {
		go run(context.WithoutCancel(c.Context()))
	}
	return nil
}

func (p *Purger) client(key string) *fastly.Client {
	if p.opts.Client != nil {
		return p.opts.Client
	}
	return fastly.New(key, fastly.WithRateLimit(p.opts.RateLimit, p.opts.RateBurst))
}

// purge waits, then purges every URL concurrently. A failing URL never
// stops the others.
func (p *Purger) purge(ctx context.Context, log *slog.Logger, client *fastly.Client, wait time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "purge aborted", slog.Any("panic", r))
		}
	}()

	if wait > 0 {
		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return
		}
	}

	var (
		g      errgroup.Group
		failed atomic.Int32
	)
	for _, url := range p.opts.URLs {
		g.Go(func() error {
			err := purgeURL(ctx, client, url)
			switch {
			case err == nil:
				log.InfoContext(ctx, "Purged URL from Fastly", slog.String("url", url))
				return nil
			case errors.Is(err, fastly.ErrPermissionDenied):
				log.ErrorContext(ctx, "Unable to purge URL from Fastly, permission denied", slog.String("url", url), slog.Any("error", err))
			default:
				log.ErrorContext(ctx, "Unable to purge URL from Fastly", slog.String("url", url), slog.Any("error", err))
			}
			failed.Add(1)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		log.WarnContext(ctx, "Unable to purge all URLs",
			slog.Int("failed", int(failed.Load())),
			slog.Int("total", len(p.opts.URLs)),
			slog.Any("error", err),
		)
		return
	}
	log.InfoContext(ctx, "Purged URLs successfully", slog.Int("total", len(p.opts.URLs)))
}

// purgeURL turns a panic while purging url into an error so one URL cannot
// take down the process.
func purgeURL(ctx context.Context, client *fastly.Client, url string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("purge %s: panic: %v", url, r)
		}
	}()
	return client.Purge(ctx, url)
}

func fallback(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
