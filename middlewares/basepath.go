package middlewares

import (
	"strings"

	"github.com/origami-service/origami/internal"
)

// BasePathHeader carries the path an upstream router mounted the service under.
const BasePathHeader = "FT-Origami-Service-Base-Path"

// BasePathLocal is the Locals key views read the base path from.
const BasePathLocal = "basePath"

type basePathKey struct{}

// BasePath returns middleware that records the request's base path. It is
// the BasePathHeader value wrapped in single leading and trailing slashes,
// or "/" when the header is absent.
func BasePath() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			p := normalizeBasePath(c.Header(BasePathHeader))
			c.Set(basePathKey{}, p)
			c.Locals()[BasePathLocal] = p
			return next(c)
		}
	}
}

// GetBasePath returns the base path recorded by BasePath, or "/".
func GetBasePath(c internal.Context) string {
	if v := internal.ContextValue[string](c, basePathKey{}); v != "" {
		return v
	}
	return "/"
}

func normalizeBasePath(raw string) string {
	trimmed := strings.Trim(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed + "/"
}
