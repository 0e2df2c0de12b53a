// Package origami bootstraps web services that follow the Origami service
// conventions.
//
// A single call to New resolves configuration, derives the well-known
// paths, and assembles a router with metrics, Sentry error reporting,
// request logging, static files, diagnostic endpoints and the standard
// error page. Handlers only declare their own routes.
//
// # Quick Start
//
//	app, err := origami.New(
//	    origami.WithAbout(origami.About{
//	        Name:       "Example Service",
//	        SystemCode: "example-service",
//	    }),
//	    origami.WithHandlers(pages),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Configuration
//
// Every option can be given explicitly, through an environment variable or
// left to its default, in that order of precedence:
//
//	PORT                   WithPort              8080
//	NODE_ENV, ENVIRONMENT  WithEnvironment       development
//	REGION                 WithRegion            EU
//	SENTRY_DSN, RAVEN_URL  WithSentryDSN
//	GRAPHITE_API_KEY       WithGraphite
//	GRAPHITE_HOST          WithGraphite          graphite.ft.com:2003
//	FASTLY_PURGE_API_KEY   WithFastlyPurgeAPIKey
//	PURGE_API_KEY          WithPurgeAPIKey
//	EXPOSE_ERROR_ENDPOINT  WithExposeErrorEndpoint
//	METRICS_APP_NAME       WithMetricsAppName
//
// # Handlers
//
// Handlers implement [Handler]. Filters from the middlewares package can be
// attached per route; a route may consist of filters only:
//
//	func (p *Pages) Routes(r origami.Router) {
//	    r.GET("/", p.index, middlewares.CacheControl(cachecontrol.Options{
//	        MaxAge: cachecontrol.MustParse("1 day"),
//	    }))
//	    r.POST("/purge", nil, p.purger.Middleware())
//	}
//
// # Views
//
// Views are html/template files under <base>/views, wrapped in layouts from
// views/layouts and able to use partials from views/partials. Every view
// receives the request Locals and the application side-channel as
// "origami".
//
// # Diagnostics
//
// /__about, /__gtg and /__health are always mounted. /__metrics appears
// when Graphite is configured and /__error when the error endpoint is
// exposed.
package origami
