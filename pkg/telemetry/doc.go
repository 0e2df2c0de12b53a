// Package telemetry wraps an application-owned Sentry client.
//
// Unlike sentry.Init, New never installs a process-wide hub: the returned
// Client is passed explicitly to whatever needs to report errors.
//
//	tc, err := telemetry.New(telemetry.Config{DSN: dsn, Environment: "production"})
//	r.Use(tc.Middleware)
//	...
//	tc.Capture(r.Context(), err)
//
// A nil *Client is a disabled client; all methods are no-ops.
package telemetry
