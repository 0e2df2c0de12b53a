// Package internal provides the core types and implementation for origami.
//
// This package is internal and should not be used directly. Import
// "github.com/origami-service/origami" instead, which re-exports the public API.
//
// # Core Types
//
//   - App: assembles configuration, routing, diagnostics and the server lifecycle
//   - Origami: the per-application side-channel visible to every request
//   - Context: request/response access and helper methods
//   - Router: interface handlers use to declare routes
//   - Handler: implemented by types that declare routes on a router
//   - HandlerFunc: signature for route handlers that return errors
//   - Middleware: wraps handlers to add filters such as purge or cache-control
//   - ErrorHandler: terminal stage for failed requests
//   - Startup: future resolved once the server is bound
//
// # Configuration
//
// Options are resolved once, in New, with explicit options winning over
// environment variables and environment variables winning over defaults:
//
//	app, err := internal.New(
//	    internal.WithAbout(internal.About{Name: "My Service", SystemCode: "my-service"}),
//	    internal.WithHandlers(pages),
//	)
//
// Only an absent value falls through to the next layer. An explicit zero,
// false or empty string is kept.
//
// # Routing Order
//
// Every application mounts, in order: metrics and Sentry instrumentation,
// request logging, static files from <base>/public, the diagnostic
// endpoints (/__about, /__gtg, /__health, /__metrics, /__error) and finally
// the routes declared by handlers. Middleware given to WithMiddleware only
// wraps handler routes, so diagnostics stay reachable regardless of filters.
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed to any function that
// expects a standard library context:
//
//	func (h *Pages) show(c origami.Context) error {
//	    item, err := h.repo.Get(c, c.Param("id"))
//	    if err != nil {
//	        return err
//	    }
//	    return c.View(http.StatusOK, "item", map[string]any{"item": item})
//	}
//
// # Listening
//
// Listen binds the configured port in the background and returns a Startup
// future. Run listens, waits for SIGINT or SIGTERM and shuts down gracefully.
package internal
