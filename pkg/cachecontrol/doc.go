// Package cachecontrol builds Cache-Control header values.
//
// A policy has a max-age and two staleness directives. A zero max-age is a
// hard override that disables caching entirely:
//
//	cachecontrol.Header(cachecontrol.Options{})
//	// max-age=0, must-revalidate, no-cache, no-store
//
// Staleness directives follow max-age unless explicitly switched off:
//
//	cachecontrol.Header(cachecontrol.Options{
//	    MaxAge:       cachecontrol.MustParse("1 hour"),
//	    StaleIfError: cachecontrol.Off,
//	})
//	// max-age=3600, public, stale-while-revalidate=3600
//
// Durations accept the short human grammar used in configuration files
// ("30s", "5 minutes", "1d", "2 weeks"). A bare number is milliseconds.
package cachecontrol
