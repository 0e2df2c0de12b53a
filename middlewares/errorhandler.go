package middlewares

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/origami-service/origami/internal"
	"github.com/origami-service/origami/pkg/cachecontrol"
)

// ErrorView is the view rendered for failed requests.
const ErrorView = "error"

// ErrorHandlerOption configures ErrorHandler.
type ErrorHandlerOption func(*errorHandlerConfig)

type errorHandlerConfig struct {
	view       string
	outputJSON bool
	minimal    bool
}

// WithOutputJSON answers with the error as JSON instead of a page.
func WithOutputJSON() ErrorHandlerOption {
	return func(cfg *errorHandlerConfig) {
		cfg.outputJSON = true
	}
}

// WithMinimalOutput renders the built-in error markup without consulting
// the view engine.
func WithMinimalOutput() ErrorHandlerOption {
	return func(cfg *errorHandlerConfig) {
		cfg.minimal = true
	}
}

// WithErrorView renders name instead of ErrorView.
func WithErrorView(name string) ErrorHandlerOption {
	return func(cfg *errorHandlerConfig) {
		if name != "" {
			cfg.view = name
		}
	}
}

// ErrorDetail is the error as exposed to views and JSON clients.
type ErrorDetail struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
	Status  int    `json:"status"`
}

// ErrorHandler returns the application's terminal error handler.
//
// The status comes from internal.StatusOf. Errors are sent to Sentry when
// telemetry is configured and the status is 500 or above, unless they opt
// out; client errors are never reported. Server errors are logged
// and, outside production, show their stack. The response may be cached
// for the error's max-age hint (zero by default) and is never served stale
// on error.
func ErrorHandler(opts ...ErrorHandlerOption) internal.ErrorHandler {
	cfg := &errorHandlerConfig{view: ErrorView}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c internal.Context, err error) error {
		status := internal.StatusOf(err)

		var env string
		if o := c.Origami(); o != nil {
			env = o.Config.Environment
			if status >= 500 && !internal.SkipsTelemetry(err) {
				o.Telemetry.Capture(c.Context(), err)
			}
		}
		message := ""
		if err != nil {
			message = err.Error()
		}
		stack := internal.StackOf(err)
		showStack := status >= 500 && env != internal.EnvironmentProduction

		if status >= 500 {
			var flat any
			if stack != "" {
				flat = flattenStack(stack)
			}
			c.LogError("Server Error",
				slog.String("message", message),
				slog.Int("status", status),
				slog.Any("stack", flat),
				slog.String("url", c.Request().URL.RequestURI()),
			)
		}

		detail := ErrorDetail{Message: message, Status: status}
		if showStack {
			detail.Stack = stack
		}

		maxAge := internal.CacheMaxAgeOf(err)
		if !maxAge.IsSet() {
			maxAge = cachecontrol.Seconds(0)
		}
		cachecontrol.Set(c.Response(), cachecontrol.Options{
			MaxAge:       maxAge,
			StaleIfError: cachecontrol.Off,
		})

		if cfg.outputJSON {
			return c.JSON(status, detail)
		}

		title := fmt.Sprintf("Error %d", status)
		if cfg.minimal {
			return c.Render(status, errorPage(title, detail))
		}

		var buf bytes.Buffer
		rerr := c.RenderView(&buf, cfg.view, map[string]any{
			"title": title,
			"error": map[string]any{
				"message": detail.Message,
				"stack":   detail.Stack,
				"status":  detail.Status,
			},
		})
		if rerr != nil {
			c.LogDebug("error view unavailable", slog.Any("error", rerr))
			renderErr := ""
			if showStack {
				renderErr = rerr.Error()
			}
			return c.Render(status, fallbackErrorPage(title, detail, renderErr))
		}
		return c.HTML(status, buf.String())
	}
}

// flattenStack trims every line and drops the first, which only repeats
// the goroutine header or error message.
func flattenStack(stack string) string {
	lines := strings.Split(strings.TrimSpace(stack), "\n")
	if len(lines) <= 1 {
		return ""
	}
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines[1:], "\n")
}
