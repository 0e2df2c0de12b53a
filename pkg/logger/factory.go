package logger

import (
	"io"
	"log/slog"
	"os"
)

// New creates a JSON-formatted logger writing to stdout with optional context extractors.
func New(extractors ...ContextExtractor) *slog.Logger {
	return NewWithWriter(os.Stdout, extractors...)
}

// NewWithWriter creates a JSON-formatted logger writing to w.
func NewWithWriter(w io.Writer, extractors ...ContextExtractor) *slog.Logger {
	log := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(NewLogHandlerDecorator(log, extractors...))
}
