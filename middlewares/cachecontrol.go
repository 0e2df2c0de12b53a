package middlewares

import (
	"net/http"

	"github.com/origami-service/origami/internal"
	"github.com/origami-service/origami/pkg/cachecontrol"
)

// CacheControl returns middleware that sets the Cache-Control header built
// from opts and then calls next. The header value is computed once.
//
//	r.GET("/", h.index, middlewares.CacheControl(cachecontrol.Options{
//	    MaxAge: cachecontrol.MustParse("1 hour"),
//	}))
func CacheControl(opts cachecontrol.Options) internal.Middleware {
	value := cachecontrol.Header(opts)
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			c.SetHeader(cachecontrol.HeaderName, value)
			return next(c)
		}
	}
}

// SetCacheControl writes the Cache-Control header for opts to w.
func SetCacheControl(w http.ResponseWriter, opts cachecontrol.Options) {
	cachecontrol.Set(w, opts)
}
