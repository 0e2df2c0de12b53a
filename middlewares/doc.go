// Package middlewares provides the request filters of an origami service.
//
// # Cache-Control
//
// CacheControl sets a Cache-Control header built by pkg/cachecontrol:
//
//	r.GET("/", h.index, middlewares.CacheControl(cachecontrol.Options{
//	    MaxAge: cachecontrol.MustParse("1 hour"),
//	}))
//
// # Not Found
//
// NotFound fails every request with a 404 that caches may keep for 30
// seconds. NotFoundHandler is the same thing as a handler for
// WithNotFoundHandler.
//
// # Purge
//
// Purger soft-purges a fixed list of URLs from Fastly. Requests must carry
// the purge API key as the apiKey query parameter and are answered with 202
// before purging begins. The optional wait parameter delays the purge by a
// number of milliseconds.
//
//	purger := middlewares.NewPurger(middlewares.PurgeOptions{
//	    URLs: []string{"https://www.example.com/"},
//	})
//	r.POST("/purge", nil, purger.Middleware())
//
// # Source Parameter
//
// RequireSourceParam rejects requests without a valid "source" query
// parameter.
//
// # Base Path
//
// BasePath records the path the service is mounted under, read from the
// FT-Origami-Service-Base-Path header, and exposes it to views as basePath.
//
// # Errors
//
// ErrorHandler is the terminal handler for failed requests. It reports to
// Sentry, logs server errors and renders the "error" view, falling back to
// built-in markup when the view cannot be rendered.
//
// # Request ID and Recover
//
// RequestID assigns each request an ID; pair it with RequestIDExtractor to
// log it. Recover turns panics into a PanicError handled like any other
// server error.
//
// # Registry
//
// Filters can also be built by name from string parameters, which is how
// the command line configures them:
//
//	mw, err := middlewares.Build("cache-control", middlewares.Params{"maxAge": "1 day"})
package middlewares
