package cachecontrol

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// HeaderName is the response header written by Set.
const HeaderName = "Cache-Control"

// NoStore is the directive list emitted whenever max-age resolves to zero.
const NoStore = "max-age=0, must-revalidate, no-cache, no-store"

// ErrInvalidAge is returned by Parse for strings outside the duration grammar.
var ErrInvalidAge = errors.New("cachecontrol: invalid age")

// Options describes a Cache-Control policy.
//
// StaleIfError and StaleWhileRevalidate default to MaxAge when unset and are
// omitted when explicitly Off.
type Options struct {
	MaxAge               Age
	StaleIfError         Age
	StaleWhileRevalidate Age
}

// Header builds the Cache-Control value for opts.
func Header(opts Options) string {
	maxAge := opts.MaxAge.Seconds()
	if maxAge == 0 {
		return NoStore
	}

	directives := []string{"max-age=" + strconv.FormatInt(maxAge, 10), "public"}
	if n, ok := stale(opts.StaleIfError, maxAge); ok {
		directives = append(directives, "stale-if-error="+strconv.FormatInt(n, 10))
	}
	if n, ok := stale(opts.StaleWhileRevalidate, maxAge); ok {
		directives = append(directives, "stale-while-revalidate="+strconv.FormatInt(n, 10))
	}
	return strings.Join(directives, ", ")
}

func stale(a Age, maxAge int64) (int64, bool) {
	switch {
	case !a.IsSet():
		return maxAge, true
	case a.IsOff():
		return 0, false
	default:
		return a.Seconds(), true
	}
}

// Set writes the policy to w, replacing any existing Cache-Control value.
func Set(w http.ResponseWriter, opts Options) {
	w.Header().Set(HeaderName, Header(opts))
}
