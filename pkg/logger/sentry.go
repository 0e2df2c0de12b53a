package logger

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// WithSentry returns a logger that writes to log's handler and also ships
// records at or above minLevel to Sentry as structured logs.
// Records never become Sentry issues here; error capture is explicit.
// If hub has no client, log is returned unchanged.
func WithSentry(log *slog.Logger, hub *sentry.Hub, minLevel slog.Level) *slog.Logger {
	if log == nil {
		log = NewNope()
	}
	if hub == nil || hub.Client() == nil {
		return log
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{},
		LogLevel:   levelsFrom(minLevel),
		Hub:        hub,
	}.NewSentryHandler(context.Background())

	return slog.New(newMultiHandler(log.Handler(), sentryHandler))
}

func levelsFrom(threshold slog.Level) []slog.Level {
	all := []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}
	out := make([]slog.Level, 0, len(all))
	for _, l := range all {
		if l >= threshold {
			out = append(out, l)
		}
	}
	return out
}
