package middlewares

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/origami-service/origami/internal"
	"github.com/origami-service/origami/pkg/cachecontrol"
)

// ErrUnknownFilter is returned by Build for names missing from the registry.
var ErrUnknownFilter = errors.New("middlewares: unknown filter")

// Params are the string settings a filter is built from, such as flag or
// config file values.
type Params map[string]string

// Factory builds a filter from params.
type Factory func(Params) (internal.Middleware, error)

var registry = map[string]Factory{
	"base-path":            func(Params) (internal.Middleware, error) { return BasePath(), nil },
	"cache-control":        cacheControlFactory,
	"not-found":            func(p Params) (internal.Middleware, error) { return NotFound(p["message"]), nil },
	"purge-urls":           purgeFactory,
	"recover":              func(Params) (internal.Middleware, error) { return Recover(), nil },
	"request-id":           func(Params) (internal.Middleware, error) { return RequestID(), nil },
	"require-source-param": func(Params) (internal.Middleware, error) { return RequireSourceParam(), nil },
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, bool) {
	f, ok := registry[name]
	return f, ok
}

// Names lists the registered filters in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Build looks up name and builds it from params.
func Build(name string, params Params) (internal.Middleware, error) {
	f, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}
	mw, err := f(params)
	if err != nil {
		return nil, fmt.Errorf("middlewares: build %s: %w", name, err)
	}
	return mw, nil
}

func cacheControlFactory(p Params) (internal.Middleware, error) {
	var opts cachecontrol.Options
	for key, dst := range map[string]*cachecontrol.Age{
		"maxAge":               &opts.MaxAge,
		"staleIfError":         &opts.StaleIfError,
		"staleWhileRevalidate": &opts.StaleWhileRevalidate,
	} {
		age, err := cachecontrol.Parse(p[key])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		*dst = age
	}
	return CacheControl(opts), nil
}

// purgeFactory reads "urls" as a comma separated list.
func purgeFactory(p Params) (internal.Middleware, error) {
	var urls []string
	for u := range strings.SplitSeq(p["urls"], ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		return nil, errors.New("urls: at least one URL is required")
	}

	opts := PurgeOptions{
		URLs:         urls,
		FastlyAPIKey: p["fastlyApiKey"],
		PurgeAPIKey:  p["purgeApiKey"],
	}
	if raw := p["maxWait"]; raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("maxWait: %w", err)
		}
		opts.MaxWait = d
	}
	return NewPurger(opts).Middleware(), nil
}
