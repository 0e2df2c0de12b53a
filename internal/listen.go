package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
)

// Startup completes once Listen has either bound its port or failed.
// It completes exactly once.
type Startup struct {
	done chan struct{}
	app  *App
	addr net.Addr
	err  error
}

func newStartup(app *App) *Startup {
	return &Startup{done: make(chan struct{}), app: app}
}

// Done is closed when startup has completed.
func (s *Startup) Done() <-chan struct{} {
	return s.done
}

// Err returns the startup failure. It is nil until Done is closed.
func (s *Startup) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Addr returns the bound address, or nil until startup has succeeded.
func (s *Startup) Addr() net.Addr {
	select {
	case <-s.done:
		return s.addr
	default:
		return nil
	}
}

// Wait blocks until startup completes and returns the listening App.
func (s *Startup) Wait(ctx context.Context) (*App, error) {
	select {
	case <-s.done:
		if s.err != nil {
			return nil, s.err
		}
		return s.app, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Startup) resolve(addr net.Addr) {
	s.addr = addr
	close(s.done)
}

func (s *Startup) fail(err error) {
	s.err = err
	close(s.done)
}

// Listen starts serving on the configured port in the background.
// Calling Listen again returns the first Startup.
func (a *App) Listen(ctx context.Context) *Startup {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.startup != nil {
		return a.startup
	}
	a.startup = newStartup(a)
	a.serveErr = make(chan error, 1)
	go a.listen(ctx, a.startup)
	return a.startup
}

// Startup returns the Startup of the first Listen call, or nil.
func (a *App) Startup() *Startup {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.startup
}

func (a *App) listen(ctx context.Context, s *Startup) {
	o := a.origami
	cfg := o.Config

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort("", strconv.Itoa(cfg.Port)))
	if err != nil {
		o.Log.Error(fmt.Sprintf("%s startup error (%s)", cfg.About.Name, err.Error()))
		close(a.serveErr)
		s.fail(err)
		return
	}

	server := newServer(a)
	o.setServer(server)

	bgCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.mu.Lock()
	a.stopBg = cancel
	a.mu.Unlock()

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.serveErr <- err
		}
		close(a.serveErr)
	}()

	a.startBackground(bgCtx)

	port := cfg.Port
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		port = tcp.Port
	}
	o.Log.Info(fmt.Sprintf("%s started (env=%s port=%d)", cfg.About.Name, cfg.Environment, port))
	s.resolve(ln.Addr())
}

// startBackground runs the work that lives as long as the server: the
// Graphite push loop and, outside production, the template watcher.
func (a *App) startBackground(ctx context.Context) {
	o := a.origami

	if o.Metrics.Enabled() {
		go func() {
			if err := o.Metrics.Run(ctx); err != nil {
				o.Log.Error("graphite bridge stopped", slog.Any("error", err))
			}
		}()
	}

	if !o.Config.IsProduction() {
		w, err := o.Views.Watch(ctx, o.Log)
		if err != nil {
			o.Log.Warn("template watcher disabled", slog.Any("error", err))
			return
		}
		a.mu.Lock()
		a.watcher = w
		a.mu.Unlock()
	}
}
