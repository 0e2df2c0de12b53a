package health

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/origami-service/origami/pkg/cachecontrol"
)

// Handler returns an http.HandlerFunc serving the JSON health report.
// The endpoint always answers 200; individual failures are reported
// through the ok flags.
func Handler(svc Service, checks []Check, opts ...Option) http.HandlerFunc {
	cfg := newConfig(opts...)

	return func(w http.ResponseWriter, r *http.Request) {
		report := runChecks(r.Context(), svc, checks, cfg)
		cachecontrol.Set(w, cachecontrol.Options{})
		writeJSON(w, http.StatusOK, report)
	}
}

// GoodToGoHandler returns an http.HandlerFunc for load balancer probes.
// It responds "OK" when test passes (or is nil) and 503 otherwise.
func GoodToGoHandler(test CheckFunc, opts ...Option) http.HandlerFunc {
	cfg := newConfig(opts...)

	return func(w http.ResponseWriter, r *http.Request) {
		cachecontrol.Set(w, cachecontrol.Options{})
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		if test != nil {
			ctx, cancel := context.WithTimeout(r.Context(), cfg.timeout)
			defer cancel()
			if err := safeRun(ctx, test); err != nil {
				cfg.logger.WarnContext(ctx, "good to go check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("Service Unavailable"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// writeJSON writes a JSON response indented with four spaces.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// Bool adapts a boolean probe into a CheckFunc failing with ErrCheckFailed.
func Bool(fn func(ctx context.Context) bool) CheckFunc {
	return func(ctx context.Context) error {
		if !fn(ctx) {
			return ErrCheckFailed
		}
		return nil
	}
}
