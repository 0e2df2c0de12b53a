package middlewares

import (
	"github.com/origami-service/origami/internal"
	"github.com/origami-service/origami/pkg/cachecontrol"
)

// NotFoundMaxAge is how long caches may keep a 404 response.
var NotFoundMaxAge = cachecontrol.Seconds(30)

// NotFound returns middleware that fails every request with a 404 carrying
// message and a short cache hint. It never calls next.
func NotFound(message string) internal.Middleware {
	return func(internal.HandlerFunc) internal.HandlerFunc {
		return NotFoundHandler(message)
	}
}

// NotFoundHandler is the handler form of NotFound, suitable for
// WithNotFoundHandler.
func NotFoundHandler(message string) internal.HandlerFunc {
	return func(internal.Context) error {
		return internal.ErrNotFound(message, internal.WithCacheMaxAge(NotFoundMaxAge))
	}
}
