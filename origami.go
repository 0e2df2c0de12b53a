package origami

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/origami-service/origami/internal"
	"github.com/origami-service/origami/middlewares"
	"github.com/origami-service/origami/pkg/health"
	"github.com/origami-service/origami/pkg/logger"
	"github.com/origami-service/origami/pkg/view"
)

// Type aliases - public API
type (
	// App assembles an origami service and owns its server.
	App = internal.App

	// Origami is the side-channel shared with handlers and views.
	Origami = internal.Origami

	// Startup resolves once the server is listening, or fails.
	Startup = internal.Startup

	// About describes the service on /__about.
	About = internal.About

	// Config is the resolved, immutable configuration.
	Config = internal.Config

	// Options is one layer of configuration before resolution.
	Options = internal.Options

	// Paths are the well-known locations under the base path.
	Paths = internal.Paths

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Locals holds per-request values exposed to views.
	Locals = internal.Locals

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add filters.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures Run.
	RunOption = internal.RunOption

	// Component is the interface for renderable templates.
	Component = internal.Component

	// HTTPError is an error carrying a status code and response hints.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// Extractor reads a value from the first source that has it.
	Extractor = internal.Extractor

	// ExtractorSource reads one candidate value.
	ExtractorSource = internal.ExtractorSource

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor

	// HealthCheck is one check reported on /__health.
	HealthCheck = health.Check

	// CheckFunc reports a failure as a non-nil error.
	CheckFunc = health.CheckFunc
)

// EnvironmentProduction is the environment that hides stacks and caches
// static files.
const EnvironmentProduction = internal.EnvironmentProduction

// NotFoundMessage is the message of the default 404 response.
const NotFoundMessage = "Not Found"

// New creates an application. On top of the options given it installs
// request IDs, panic recovery, base-path detection, the standard error page
// and a cacheable 404. Later options override these defaults.
//
// New does not listen unless WithStart(true) is given; call Run, or use
// Start to create and listen in one step.
//
// Example:
//
//	app, err := origami.New(
//	    origami.WithAbout(origami.About{Name: "My Service", SystemCode: "my-service"}),
//	    origami.WithHandlers(pages),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
func New(opts ...Option) (*App, error) {
	defaults := []Option{
		internal.WithLogger(middlewares.RequestIDExtractor()),
		internal.WithErrorHandler(middlewares.ErrorHandler()),
		internal.WithNotFoundHandler(middlewares.NotFoundHandler(NotFoundMessage)),
		internal.WithMethodNotAllowedHandler(methodNotAllowed),
		internal.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
			middlewares.BasePath(),
		),
	}
	return internal.New(append(defaults, opts...)...)
}

// Start creates an application and begins listening.
//
//	app, startup, err := origami.Start(ctx, origami.WithPort(8080))
//	if err != nil {
//	    return err
//	}
//	if _, err := startup.Wait(ctx); err != nil {
//	    return err
//	}
func Start(ctx context.Context, opts ...Option) (*App, *Startup, error) {
	app, err := New(opts...)
	if err != nil {
		return nil, nil, err
	}
	return app, app.Listen(ctx), nil
}

func methodNotAllowed(internal.Context) error {
	return internal.ErrMethodNotAllowed(http.StatusText(http.StatusMethodNotAllowed))
}

// Configuration

// Resolve merges explicit options over environment options over defaults.
func Resolve(explicit, env, defaults Options) Config {
	return internal.Resolve(explicit, env, defaults)
}

// Defaults returns the default option layer.
func Defaults() Options {
	return internal.Defaults()
}

// EnvOptions reads the environment option layer from vars, or from the
// process environment when vars is nil.
func EnvOptions(vars map[string]string) (Options, error) {
	return internal.EnvOptions(vars)
}

// DerivePaths returns the well-known locations under base.
func DerivePaths(base string) Paths {
	return internal.DerivePaths(base)
}

// App options

// WithAbout sets the service description.
func WithAbout(about About) Option {
	return internal.WithAbout(about)
}

// WithBasePath sets the directory public/, views/ and the manifest live in.
func WithBasePath(path string) Option {
	return internal.WithBasePath(path)
}

// WithDefaultLayout sets the layout wrapping every view.
func WithDefaultLayout(name string) Option {
	return internal.WithDefaultLayout(name)
}

// WithEnvironment sets the environment name.
func WithEnvironment(env string) Option {
	return internal.WithEnvironment(env)
}

// WithExposeErrorEndpoint mounts /__error.
func WithExposeErrorEndpoint(expose bool) Option {
	return internal.WithExposeErrorEndpoint(expose)
}

// WithFastlyPurgeAPIKey sets the key purges authenticate against Fastly with.
func WithFastlyPurgeAPIKey(key string) Option {
	return internal.WithFastlyPurgeAPIKey(key)
}

// WithPurgeAPIKey sets the key callers of the purge endpoint must present.
func WithPurgeAPIKey(key string) Option {
	return internal.WithPurgeAPIKey(key)
}

// WithGoodToGoTest sets the check behind /__gtg.
func WithGoodToGoTest(fn CheckFunc) Option {
	return internal.WithGoodToGoTest(fn)
}

// WithHealthChecks sets the checks reported on /__health.
func WithHealthChecks(checks ...HealthCheck) Option {
	return internal.WithHealthChecks(checks...)
}

// WithGraphite enables metrics pushed to host. An empty host keeps the default.
func WithGraphite(apiKey, host string) Option {
	return internal.WithGraphite(apiKey, host)
}

// WithMetricsAppName overrides the name metrics are reported under.
func WithMetricsAppName(name string) Option {
	return internal.WithMetricsAppName(name)
}

// WithPort sets the port to listen on. Zero picks a free port.
func WithPort(port int) Option {
	return internal.WithPort(port)
}

// WithRegion sets the deployment region.
func WithRegion(region string) Option {
	return internal.WithRegion(region)
}

// WithRequestLogFormat sets the request log format. Empty disables request logging.
func WithRequestLogFormat(format string) Option {
	return internal.WithRequestLogFormat(format)
}

// WithSentryDSN enables error reporting to Sentry.
func WithSentryDSN(dsn string) Option {
	return internal.WithSentryDSN(dsn)
}

// WithStart makes New start listening immediately. It defaults to false,
// so New alone never binds a port; use Start, Listen or Run instead.
func WithStart(start bool) Option {
	return internal.WithStart(start)
}

// WithLogger creates a JSON logger with optional context extractors.
func WithLogger(extractors ...ContextExtractor) Option {
	return internal.WithLogger(extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// WithEnvironmentVariables replaces the process environment as the source
// of environment options.
func WithEnvironmentVariables(vars map[string]string) Option {
	return internal.WithEnvironmentVariables(vars)
}

// WithViewOptions passes options such as template functions to the view engine.
func WithViewOptions(opts ...view.Option) Option {
	return internal.WithViewOptions(opts...)
}

// WithMiddleware adds middleware to every handler route.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithErrorHandler replaces the error page.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler replaces the 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithMethodNotAllowedHandler replaces the 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithShutdownHook registers a cleanup function run on shutdown.
func WithShutdownHook(fn func(context.Context) error) Option {
	return internal.WithShutdownHook(fn)
}

// Run options

// ShutdownTimeout bounds graceful shutdown in Run.
var ShutdownTimeout = internal.ShutdownTimeout

// ShutdownHook registers a cleanup function for a single Run.
var ShutdownHook = internal.ShutdownHook

// Context helpers

// OrigamiFrom returns the side-channel stored in ctx, or nil.
func OrigamiFrom(ctx context.Context) *Origami {
	return internal.OrigamiFrom(ctx)
}

// QueryMillis reads a non-negative millisecond count from the query string.
var QueryMillis = internal.QueryMillis

// Extractor sources

// NewExtractor tries sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource {
	return internal.FromHeader(name)
}

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource {
	return internal.FromQuery(name)
}

// FromLocals reads a string from Locals.
func FromLocals(key string) ExtractorSource {
	return internal.FromLocals(key)
}

// Errors

// NewHTTPError creates an HTTPError.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

var (
	WithError        = internal.WithError
	WithCacheMaxAge  = internal.WithCacheMaxAge
	WithoutTelemetry = internal.WithoutTelemetry

	ErrBadRequest         = internal.ErrBadRequest
	ErrUnauthorized       = internal.ErrUnauthorized
	ErrForbidden          = internal.ErrForbidden
	ErrNotFound           = internal.ErrNotFound
	ErrMethodNotAllowed   = internal.ErrMethodNotAllowed
	ErrInternal           = internal.ErrInternal
	ErrServiceUnavailable = internal.ErrServiceUnavailable

	IsHTTPError = internal.IsHTTPError
	AsHTTPError = internal.AsHTTPError
	StatusOf    = internal.StatusOf
)
