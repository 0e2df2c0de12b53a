// Package health provides HTTP handlers for service health reporting.
//
// Two endpoints are supported: a JSON health report describing every
// registered check, and a plain text good-to-go probe for load balancers.
//
// # Main Functions
//
// [Handler] runs a list of [Check] values in parallel and serves a [Report].
// [GoodToGoHandler] runs a single [CheckFunc] and answers "OK" or 503.
// [Run] executes checks without HTTP, for use in tests or CLIs.
//
// # Quick Start
//
//	svc := health.Service{SystemCode: "origami-build", Name: "Build Service"}
//	checks := []health.Check{{
//	    ID:       "registry",
//	    Name:     "Registry is reachable",
//	    Severity: health.SeverityHigh,
//	    Run:      pingRegistry,
//	}}
//
//	r.Get("/__health", health.Handler(svc, checks))
//	r.Get("/__gtg", health.GoodToGoHandler(nil))
//
// # Response Format
//
//	{
//	    "schemaVersion": 1,
//	    "systemCode": "origami-build",
//	    "name": "Build Service",
//	    "description": "",
//	    "checks": [
//	        {
//	            "id": "registry",
//	            "name": "Registry is reachable",
//	            "ok": false,
//	            "severity": 1,
//	            "checkOutput": "dial tcp: connection refused",
//	            "lastUpdated": "2024-01-01T00:00:00Z"
//	        }
//	    ],
//	    "ok": false
//	}
//
// Both handlers mark responses as uncacheable.
//
// # Configuration Options
//
//	health.Handler(svc, checks,
//	    health.WithTimeout(3*time.Second),
//	    health.WithLogger(logger),
//	)
//
// # Error Handling
//
//   - [ErrCheckFailed] - a boolean probe reported failure
//   - [ErrCheckTimeout] - a check exceeded its timeout
//   - [ErrCheckPanicked] - a check panicked
//   - [ErrNoCheckFunc] - a check was registered without a function
package health
