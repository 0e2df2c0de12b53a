// Package logger builds the structured loggers used by origami applications.
//
// All loggers are plain *slog.Logger values. The package adds two things on
// top of log/slog: context extractors that inject request-scoped attributes,
// and an optional Sentry sink.
//
// # Basic Usage
//
//	log := logger.New(middlewares.RequestIDExtractor())
//	log.InfoContext(ctx, "request processed", slog.Int("status", 200))
//	// {"level":"INFO","msg":"request processed","status":200,"request_id":"..."}
//
// [NewWithWriter] does the same against any io.Writer, which is handy in tests.
// [NewNope] discards everything and is the default before configuration.
//
// # Sentry
//
// [WithSentry] tees an existing logger into a Sentry hub. Records are sent
// as Sentry logs only; they never create issues, so explicit error capture
// does not get reported twice:
//
//	log = logger.WithSentry(log, hub, slog.LevelWarn)
//
// A hub without a client leaves the logger unchanged.
package logger
