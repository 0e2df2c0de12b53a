package internal

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/origami-service/origami/pkg/metrics"
	"github.com/origami-service/origami/pkg/telemetry"
	"github.com/origami-service/origami/pkg/view"
)

// Origami is the state an App shares with its handlers, filters and views.
// Handlers reach it through Context.Origami; views see it under the
// "origami" key.
type Origami struct {
	Log       *slog.Logger
	Metrics   *metrics.Metrics
	Telemetry *telemetry.Client
	Views     *view.Engine
	Paths     Paths
	Config    Config

	mu     sync.RWMutex
	server *http.Server
	tasks  sync.WaitGroup
}

// Server returns the running HTTP server, or nil before Listen succeeds.
func (o *Origami) Server() *http.Server {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.server
}

func (o *Origami) setServer(s *http.Server) {
	o.mu.Lock()
	o.server = s
	o.mu.Unlock()
}

// Go runs fn in the background with a context that keeps ctx's values but
// is never cancelled. Shutdown waits for these tasks.
func (o *Origami) Go(ctx context.Context, fn func(ctx context.Context)) {
	detached := context.WithoutCancel(ctx)
	o.tasks.Add(1)
	go func() {
		defer o.tasks.Done()
		fn(detached)
	}()
}

// wait blocks until background tasks finish or ctx is done.
func (o *Origami) wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.tasks.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type origamiKey struct{}

// OrigamiFrom returns the side-channel stored in ctx, or nil.
func OrigamiFrom(ctx context.Context) *Origami {
	o, _ := ctx.Value(origamiKey{}).(*Origami)
	return o
}

// WithOrigami stores o in ctx.
func WithOrigami(ctx context.Context, o *Origami) context.Context {
	return context.WithValue(ctx, origamiKey{}, o)
}
