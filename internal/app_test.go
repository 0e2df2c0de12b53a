package internal_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/origami-service/origami/internal"
	"github.com/origami-service/origami/pkg/health"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestNewLogsConfiguration(t *testing.T) {
	t.Parallel()

	t.Run("bare", func(t *testing.T) {
		t.Parallel()
		_, logs := newApp(t, internal.WithAbout(internal.About{Name: "Test App"}))
		require.Equal(t, []string{
			"Warning: metrics are not being recorded for this application. Please provide a GRAPHITE_API_KEY environment variable",
			"Warning: errors are not being logged to Sentry for this application. Please provide a SENTRY_DSN environment variable",
			"Test App configured (graphite=false logging=false sentry=false)",
		}, logs.Messages(t))
	})

	t.Run("graphite and request logging", func(t *testing.T) {
		t.Parallel()
		app, logs := newApp(t,
			internal.WithAbout(internal.About{Name: "Test App"}),
			internal.WithGraphite("key", ""),
			internal.WithRequestLogFormat("tiny"),
		)
		msgs := logs.Messages(t)
		require.Equal(t, "Test App configured (graphite=true logging=true sentry=false)", msgs[len(msgs)-1])
		require.True(t, app.Origami().Metrics.Enabled())
		require.Equal(t, "graphite.ft.com:2003", app.Config().GraphiteHost)
	})

	t.Run("invalid log format", func(t *testing.T) {
		t.Parallel()
		_, err := internal.New(
			internal.WithEnvironmentVariables(map[string]string{}),
			internal.WithBasePath(t.TempDir()),
			internal.WithRequestLogFormat("fancy"),
		)
		require.Error(t, err)
	})

	t.Run("invalid sentry dsn", func(t *testing.T) {
		t.Parallel()
		_, err := internal.New(
			internal.WithEnvironmentVariables(map[string]string{}),
			internal.WithBasePath(t.TempDir()),
			internal.WithSentryDSN("::nope"),
		)
		require.Error(t, err)
	})
}

func TestEnvironmentLayer(t *testing.T) {
	t.Parallel()

	app, err := internal.New(
		internal.WithBasePath(t.TempDir()),
		internal.WithEnvironmentVariables(map[string]string{"PORT": "1234", "REGION": "US", "NODE_ENV": "production"}),
		internal.WithRegion("APAC"),
		internal.WithCustomLogger(nopLogger()),
	)
	require.NoError(t, err)
	cfg := app.Config()
	require.Equal(t, 1234, cfg.Port)
	require.Equal(t, "APAC", cfg.Region)
	require.True(t, cfg.IsProduction())

	_, err = internal.New(
		internal.WithEnvironmentVariables(map[string]string{"PORT": "x"}),
		internal.WithCustomLogger(nopLogger()),
	)
	require.Error(t, err)
}

func TestAbout(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		app, _ := newApp(t)
		w := get(t, app, "/__about")
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "max-age=0, must-revalidate, no-cache, no-store", w.Header().Get("Cache-Control"))

		var about internal.About
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &about))
		require.Equal(t, internal.About{
			SchemaVersion: 1,
			Name:          "Origami Service",
			Purpose:       "An Origami web service.",
		}, about)
	})

	t.Run("manifest backfills", func(t *testing.T) {
		t.Parallel()
		base := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(base, "manifest.yaml"),
			[]byte("name: from-manifest\ndescription: Manifest purpose\nsystemCode: manifest-code\n"), 0o644))

		app, _ := newApp(t, internal.WithBasePath(base), internal.WithAbout(internal.About{Purpose: "Explicit purpose"}))
		about := app.Config().About
		require.Equal(t, "from-manifest", about.Name)
		require.Equal(t, "Explicit purpose", about.Purpose)
		require.Equal(t, "manifest-code", about.SystemCode)
	})

	t.Run("broken manifest is ignored", func(t *testing.T) {
		t.Parallel()
		base := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(base, "manifest.yaml"), []byte("name: [unterminated"), 0o644))
		app, _ := newApp(t, internal.WithBasePath(base))
		require.Equal(t, "Origami Service", app.Config().About.Name)
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("gtg passes by default", func(t *testing.T) {
		t.Parallel()
		app, _ := newApp(t)
		w := get(t, app, "/__gtg")
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "OK", strings.TrimSpace(w.Body.String()))
	})

	t.Run("gtg failing", func(t *testing.T) {
		t.Parallel()
		app, _ := newApp(t, internal.WithGoodToGoTest(func(context.Context) error { return errors.New("down") }))
		require.Equal(t, http.StatusServiceUnavailable, get(t, app, "/__gtg").Code)
	})

	t.Run("health report", func(t *testing.T) {
		t.Parallel()
		app, _ := newApp(t,
			internal.WithAbout(internal.About{Name: "Health", SystemCode: "health-code"}),
			internal.WithHealthChecks(health.Check{
				ID:   "always-fails",
				Name: "Always fails",
				Run:  func(context.Context) error { return errors.New("nope") },
			}),
		)
		w := get(t, app, "/__health")
		require.Equal(t, http.StatusOK, w.Code)

		var report health.Report
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		require.Equal(t, "health-code", report.SystemCode)
		require.False(t, report.OK)
		require.Len(t, report.Checks, 1)
		require.Equal(t, "nope", report.Checks[0].CheckOutput)
	})

	t.Run("metrics only with graphite", func(t *testing.T) {
		t.Parallel()
		off, _ := newApp(t)
		require.Equal(t, http.StatusNotFound, get(t, off, "/__metrics").Code)

		on, _ := newApp(t, internal.WithGraphite("key", "localhost:2003"))
		get(t, on, "/__gtg")
		w := get(t, on, "/__metrics")
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "origami_http_requests_total")
	})
}

func TestErrorEndpoint(t *testing.T) {
	t.Parallel()

	var got error
	capture := internal.WithErrorHandler(func(c internal.Context, err error) error {
		got = err
		return c.String(internal.StatusOf(err), err.Error())
	})

	hidden, _ := newApp(t, capture)
	require.Equal(t, http.StatusNotFound, get(t, hidden, "/__error").Code)

	exposed, _ := newApp(t, capture, internal.WithExposeErrorEndpoint(true))
	w := get(t, exposed, "/__error")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, internal.TestErrorMessage, w.Body.String())
	require.Error(t, got)
}

func TestStaticFiles(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) string {
		base := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(base, "public", "css"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(base, "public", "css", "main.css"), []byte("body{}"), 0o644))
		return base
	}

	t.Run("development", func(t *testing.T) {
		t.Parallel()
		app, _ := newApp(t, internal.WithBasePath(setup(t)))
		w := get(t, app, "/css/main.css")
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "body{}", w.Body.String())
		require.Equal(t, "public, max-age=0", w.Header().Get("Cache-Control"))
	})

	t.Run("production", func(t *testing.T) {
		t.Parallel()
		app, _ := newApp(t, internal.WithBasePath(setup(t)), internal.WithEnvironment("production"))
		w := get(t, app, "/css/main.css")
		require.Equal(t, "public, max-age=604800", w.Header().Get("Cache-Control"))
	})

	t.Run("falls through", func(t *testing.T) {
		t.Parallel()
		app, _ := newApp(t,
			internal.WithBasePath(setup(t)),
			internal.WithHandlers(routes(func(r internal.Router) {
				r.GET("/css/dynamic.css", func(c internal.Context) error {
					return c.String(http.StatusOK, "dynamic")
				})
			})),
		)
		require.Equal(t, "dynamic", get(t, app, "/css/dynamic.css").Body.String())
		require.Equal(t, http.StatusNotFound, get(t, app, "/css/").Code)
		require.Equal(t, http.StatusNotFound, get(t, app, "/../etc/passwd").Code)
	})
}

func TestMiddlewareScope(t *testing.T) {
	t.Parallel()

	deny := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			return c.Error(http.StatusForbidden, "denied")
		}
	}
	app, _ := newApp(t,
		internal.WithMiddleware(deny),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/page", func(c internal.Context) error { return c.String(http.StatusOK, "page") })
		})),
	)

	require.Equal(t, http.StatusForbidden, get(t, app, "/page").Code)
	require.Equal(t, http.StatusOK, get(t, app, "/__gtg").Code)
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()

	app, _ := newApp(t,
		internal.WithNotFoundHandler(func(c internal.Context) error {
			return internal.ErrNotFound("custom")
		}),
		internal.WithMethodNotAllowedHandler(func(c internal.Context) error {
			return c.String(http.StatusMethodNotAllowed, "nope")
		}),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.POST("/only-post", func(c internal.Context) error { return nil })
		})),
	)

	w := get(t, app, "/missing")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Not Found")

	w = get(t, app, "/only-post")
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.Equal(t, "nope", w.Body.String())
}

func TestRequestLogSkipsDiagnostics(t *testing.T) {
	t.Parallel()

	app, logs := newApp(t,
		internal.WithRequestLogFormat("tiny"),
		internal.WithHandlers(routes(func(r internal.Router) {
			r.GET("/page", func(c internal.Context) error { return c.String(http.StatusOK, "page") })
		})),
	)
	before := len(logs.Messages(t))

	get(t, app, "/__gtg")
	get(t, app, "/favicon.ico")
	get(t, app, "/page")

	msgs := logs.Messages(t)[before:]
	require.Len(t, msgs, 1)
	require.True(t, strings.HasPrefix(msgs[0], "GET /page 200"))
}

func TestRouteWithoutHandler(t *testing.T) {
	t.Parallel()

	app, _ := newApp(t, internal.WithHandlers(routes(func(r internal.Router) {
		r.GET("/filtered", nil, func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				return c.String(http.StatusAccepted, "handled by filter")
			}
		})
		r.Any("/passthrough", nil)
	})))

	w := get(t, app, "/filtered")
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Equal(t, "handled by filter", w.Body.String())
	require.Equal(t, http.StatusOK, get(t, app, "/passthrough").Code)
}
