package logger

import "log/slog"

// NewNope creates a logger that discards all output.
// It is the default until an application configures a log sink.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
