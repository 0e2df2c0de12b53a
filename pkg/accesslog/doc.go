// Package accesslog writes Apache-style access log lines through slog.
//
// It plugs a custom formatter into chi's RequestLogger middleware. The
// supported formats are combined, common, short, tiny and dev:
//
//	mw, err := accesslog.New(log, accesslog.FormatCombined)
//	r.Use(mw)
//
// Requests for /favicon.ico and the double underscore diagnostics namespace
// are not logged unless WithSkip overrides the predicate.
package accesslog
