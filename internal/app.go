package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/origami-service/origami/pkg/accesslog"
	"github.com/origami-service/origami/pkg/logger"
	"github.com/origami-service/origami/pkg/metrics"
	"github.com/origami-service/origami/pkg/telemetry"
	"github.com/origami-service/origami/pkg/view"
)

// Warnings logged when an optional integration is not configured.
const (
	warnNoMetrics = "Warning: metrics are not being recorded for this application. " +
		"Please provide a GRAPHITE_API_KEY environment variable"
	warnNoSentry = "Warning: errors are not being logged to Sentry for this application. " +
		"Please provide a SENTRY_DSN environment variable"
)

// App is an assembled web service.
// It owns the router, the view engine and the metrics and telemetry handles.
// App is immutable after creation - all configuration is done via New().
type App struct {
	router                  chi.Router
	origami                 *Origami
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	envVars                 map[string]string
	explicit                Options
	viewOptions             []view.Option
	middlewares             []Middleware
	handlers                []Handler
	shutdownHooks           []func(context.Context) error

	mu       sync.Mutex
	startup  *Startup
	stopBg   context.CancelFunc
	watcher  *view.Watcher
	serveErr chan error
}

// New resolves configuration and assembles the application.
// With the Start option set it also begins listening; the outcome is
// available from Startup.
//
// Example:
//
//	app, err := origami.New(
//	    origami.WithAbout(origami.About{Name: "Example Service"}),
//	    origami.WithHandlers(handlers.NewPages()),
//	)
func New(opts ...Option) (*App, error) {
	a := &App{
		router: chi.NewRouter(),
	}

	for _, opt := range opts {
		opt(a)
	}

	env, err := EnvOptions(a.envVars)
	if err != nil {
		return nil, err
	}
	cfg := Resolve(a.explicit, env, Defaults())
	paths := DerivePaths(cfg.BasePath)

	log := cfg.Log
	if log == nil {
		log = logger.NewNope()
	}

	m, err := readManifest(paths.Manifest)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Debug("manifest ignored", slog.String("path", paths.Manifest), slog.Any("error", err))
	}
	cfg.About = completeAbout(cfg.About, m)

	o := &Origami{
		Log:    log,
		Config: cfg,
		Paths:  paths,
		Views: view.New(view.Config{
			ViewsDir:      paths.Views,
			LayoutsDir:    paths.Layouts,
			PartialsDir:   paths.Partials,
			DefaultLayout: cfg.DefaultLayout,
		}, a.viewOptions...),
	}

	if cfg.GraphiteAPIKey != "" {
		o.Metrics = metrics.New(metrics.Config{
			AppName:     metricsAppName(cfg),
			APIKey:      cfg.GraphiteAPIKey,
			GraphiteURL: cfg.GraphiteHost,
			Logger:      log,
		})
	} else {
		log.Warn(warnNoMetrics)
	}

	if cfg.SentryDSN != "" {
		tc, err := telemetry.New(telemetry.Config{
			DSN:         cfg.SentryDSN,
			Environment: cfg.Environment,
			Release:     cfg.About.AppVersion,
			ServerName:  cfg.About.SystemCode,
		})
		if err != nil {
			return nil, fmt.Errorf("configure sentry: %w", err)
		}
		o.Telemetry = tc
		o.Log = logger.WithSentry(log, tc.Hub(), slog.LevelWarn)
	} else {
		log.Warn(warnNoSentry)
	}

	a.origami = o
	if err := a.setupRoutes(); err != nil {
		return nil, err
	}

	o.Log.Info(fmt.Sprintf("%s configured (graphite=%t logging=%t sentry=%t)",
		cfg.About.Name, o.Metrics.Enabled(), cfg.RequestLogFormat != "", o.Telemetry.Enabled()))

	if cfg.Start {
		a.Listen(context.Background())
	}
	return a, nil
}

// Origami returns the side-channel shared with handlers and views.
func (a *App) Origami() *Origami {
	return a.origami
}

// Config returns the resolved configuration.
func (a *App) Config() Config {
	return a.origami.Config
}

// Router returns the underlying chi.Router for the App.
func (a *App) Router() chi.Router {
	return a.router
}

// ServeHTTP makes the App usable as a plain http.Handler, e.g. in tests.
// Every request gets the side-channel and a fresh set of Locals.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r = withLocals(r.WithContext(WithOrigami(r.Context(), a.origami)))
	a.router.ServeHTTP(NewResponseWriter(w), r)
}

// setupRoutes mounts the built-in stack, diagnostics, user middleware and
// handlers. The order is fixed.
func (a *App) setupRoutes() error {
	o := a.origami
	cfg := o.Config

	if o.Metrics.Enabled() {
		a.router.Use(o.Metrics.Middleware)
	}
	if o.Telemetry.Enabled() {
		a.router.Use(o.Telemetry.Middleware)
	}

	if cfg.RequestLogFormat != "" {
		logged, err := accesslog.New(o.Log, cfg.RequestLogFormat)
		if err != nil {
			return err
		}
		a.router.Use(logged)
	}

	a.router.Use(staticFiles(o.Paths.Public, cfg.IsProduction()))

	// Set custom error handlers on chi router
	if a.notFoundHandler != nil {
		a.router.NotFound(a.wrapHandler(a.notFoundHandler))
	}
	if a.methodNotAllowedHandler != nil {
		a.router.MethodNotAllowed(a.wrapHandler(a.methodNotAllowedHandler))
	}

	a.mountDiagnostics()

	// User middleware applies to user routes only, diagnostics stay bare.
	a.router.Group(func(cr chi.Router) {
		r := &routerAdapter{router: cr, app: a}
		r.Use(a.middlewares...)
		for _, h := range a.handlers {
			h.Routes(r)
		}
	})
	return nil
}

// wrapHandler converts a HandlerFunc to http.HandlerFunc using the app's error handler.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a.origami)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// handleError handles errors from handlers using the configured error handler.
func (a *App) handleError(c Context, err error) {
	// Check if response has already been written
	if c.Written() {
		c.LogWarn("error after response was written", slog.Any("error", err))
		return
	}
	if a.errorHandler != nil {
		if herr := a.errorHandler(c, err); herr != nil {
			c.LogError("error handler failed", slog.Any("error", herr))
		}
		return
	}
	http.Error(c.Response(), http.StatusText(StatusOf(err)), StatusOf(err))
}

func metricsAppName(cfg Config) string {
	switch {
	case cfg.MetricsAppName != "":
		return cfg.MetricsAppName
	case cfg.About.SystemCode != "":
		return cfg.About.SystemCode
	default:
		return cfg.About.Name
	}
}
