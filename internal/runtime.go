package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

func newServer(a *App) *http.Server {
	return &http.Server{
		Handler:           a,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(a.origami.Log.Handler(), slog.LevelError),
	}
}

// Run listens on the configured port and blocks until ctx is cancelled,
// SIGINT or SIGTERM arrives, or the server fails. It then shuts down
// gracefully.
//
// Example:
//
//	app, err := origami.New(origami.WithHandlers(handlers.NewPages()))
//	if err != nil {
//	    return err
//	}
//	return app.Run(context.Background())
func (a *App) Run(ctx context.Context, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if _, err := a.Listen(ctx).Wait(ctx); err != nil {
		return err
	}

	log := a.origami.Log

	// Wait for shutdown signal or error
	select {
	case err, ok := <-a.serveErr:
		if ok && err != nil {
			log.Error("server failed", slog.Any("error", err))
			_ = a.shutdown(context.Background(), cfg)
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer shutdownCancel()

	if err := a.shutdown(shutdownCtx, cfg); err != nil {
		log.Error("shutdown completed with errors")
		return err
	}
	log.Info("shutdown completed")
	return nil
}

// Shutdown stops the server, waits for in-flight requests and background
// tasks, then releases the metrics, template watcher and Sentry resources.
func (a *App) Shutdown(ctx context.Context) error {
	return a.shutdown(ctx, buildRunConfig())
}

func (a *App) shutdown(ctx context.Context, cfg *runConfig) error {
	o := a.origami
	var errs []error

	// 1. Stop HTTP server
	if server := o.Server(); server != nil {
		if err := server.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	// 2. Let detached request work finish
	if err := o.wait(ctx); err != nil {
		errs = append(errs, err)
	}

	// 3. Stop background loops
	a.mu.Lock()
	stop, watcher := a.stopBg, a.watcher
	a.stopBg, a.watcher = nil, nil
	a.mu.Unlock()
	if stop != nil {
		stop()
	}
	if watcher != nil {
		if err := watcher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if o.Metrics.Enabled() {
		if err := o.Metrics.Push(); err != nil {
			o.Log.Warn("final metrics push failed", slog.Any("error", err))
		}
	}

	// 4. Run shutdown hooks (close DB, etc.)
	hooks := append(append([]func(context.Context) error{}, a.shutdownHooks...), cfg.shutdownHooks...)
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
			o.Log.Error("shutdown hook failed", slog.Any("error", err))
		}
	}

	// 5. Flush telemetry last so errors above are reported
	if err := o.Telemetry.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
