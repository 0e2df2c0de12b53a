package internal

import (
	"context"
	"log/slog"

	"github.com/origami-service/origami/pkg/health"
	"github.com/origami-service/origami/pkg/logger"
	"github.com/origami-service/origami/pkg/view"
)

// Option configures the application.
// Options that set configuration values fill the explicit layer, which
// takes precedence over environment variables and defaults.
type Option func(*App)

// WithAbout sets the service description served on /__about.
func WithAbout(about About) Option {
	return func(a *App) {
		a.explicit.About = &about
	}
}

// WithBasePath sets the directory that public/, views/ and the manifest are
// resolved against.
func WithBasePath(path string) Option {
	return func(a *App) {
		a.explicit.BasePath = &path
	}
}

// WithDefaultLayout sets the layout wrapped around views that don't pick one.
func WithDefaultLayout(name string) Option {
	return func(a *App) {
		a.explicit.DefaultLayout = &name
	}
}

// WithEnvironment sets the environment name. "production" hides error
// stacks and enables long-lived static asset caching.
func WithEnvironment(env string) Option {
	return func(a *App) {
		a.explicit.Environment = &env
	}
}

// WithExposeErrorEndpoint mounts /__error, which always fails.
func WithExposeErrorEndpoint(expose bool) Option {
	return func(a *App) {
		a.explicit.ExposeErrorEndpoint = &expose
	}
}

// WithFastlyPurgeAPIKey sets the key sent to Fastly by purge endpoints.
func WithFastlyPurgeAPIKey(key string) Option {
	return func(a *App) {
		a.explicit.FastlyPurgeAPIKey = &key
	}
}

// WithPurgeAPIKey sets the key callers must present to purge endpoints.
func WithPurgeAPIKey(key string) Option {
	return func(a *App) {
		a.explicit.PurgeAPIKey = &key
	}
}

// WithGoodToGoTest sets the check behind /__gtg.
//
// Example:
//
//	origami.WithGoodToGoTest(func(ctx context.Context) error {
//	    return db.PingContext(ctx)
//	})
func WithGoodToGoTest(fn health.CheckFunc) Option {
	return func(a *App) {
		a.explicit.GoodToGoTest = fn
	}
}

// WithHealthChecks sets the checks reported on /__health.
func WithHealthChecks(checks ...health.Check) Option {
	return func(a *App) {
		a.explicit.HealthChecks = append([]health.Check{}, checks...)
	}
}

// WithGraphite enables metrics and sets where they are pushed.
// An empty host keeps the default.
func WithGraphite(apiKey, host string) Option {
	return func(a *App) {
		a.explicit.GraphiteAPIKey = &apiKey
		if host != "" {
			a.explicit.GraphiteHost = &host
		}
	}
}

// WithMetricsAppName overrides the name metrics are reported under.
func WithMetricsAppName(name string) Option {
	return func(a *App) {
		a.explicit.MetricsAppName = &name
	}
}

// WithPort sets the port Listen binds to. Port 0 picks a free port.
func WithPort(port int) Option {
	return func(a *App) {
		a.explicit.Port = &port
	}
}

// WithRegion sets the deployment region.
func WithRegion(region string) Option {
	return func(a *App) {
		a.explicit.Region = &region
	}
}

// WithRequestLogFormat sets the access log format. An empty format disables
// request logging.
func WithRequestLogFormat(format string) Option {
	return func(a *App) {
		a.explicit.RequestLogFormat = &format
	}
}

// WithSentryDSN enables error reporting to Sentry.
func WithSentryDSN(dsn string) Option {
	return func(a *App) {
		a.explicit.SentryDSN = &dsn
	}
}

// WithStart makes New call Listen immediately. Start defaults to false:
// without this option New only assembles the App and the caller starts it
// with Listen or Run.
func WithStart(start bool) Option {
	return func(a *App) {
		a.explicit.Start = &start
	}
}

// WithLogger creates a JSON logger with optional context extractors.
// Extractors pull values from context (e.g., request_id).
//
// Example:
//
//	origami.New(
//	    origami.WithLogger(middlewares.RequestIDExtractor()),
//	)
func WithLogger(extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.explicit.Log = logger.New(extractors...)
	}
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.explicit.Log = l
		}
	}
}

// WithEnvironmentVariables replaces the process environment as the source
// of the env layer.
func WithEnvironmentVariables(vars map[string]string) Option {
	return func(a *App) {
		if vars == nil {
			vars = map[string]string{}
		}
		a.envVars = vars
	}
}

// WithViewOptions passes options such as template functions to the view engine.
func WithViewOptions(opts ...view.Option) Option {
	return func(a *App) {
		a.viewOptions = append(a.viewOptions, opts...)
	}
}

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided, after the built-in stack.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithErrorHandler sets a custom error handler for handler errors.
// Called when a handler or middleware returns a non-nil error.
//
// Example:
//
//	origami.WithErrorHandler(func(c origami.Context, err error) error {
//	    return c.JSON(origami.StatusOf(err), map[string]string{
//	        "error": err.Error(),
//	    })
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets a custom 404 handler.
//
// Example:
//
//	origami.WithNotFoundHandler(func(c origami.Context) error {
//	    return c.String(http.StatusNotFound, "Page not found")
//	})
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}

// WithShutdownHook registers a cleanup function run by Shutdown after the
// server has stopped accepting requests.
func WithShutdownHook(fn func(context.Context) error) Option {
	return func(a *App) {
		if fn != nil {
			a.shutdownHooks = append(a.shutdownHooks, fn)
		}
	}
}
