package middlewares_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/origami-service/origami/internal"
)

// testContext is a minimal internal.Context for exercising a single
// middleware without assembling an App.
type testContext struct {
	response *internal.ResponseWriter
	request  *http.Request
	origami  *internal.Origami
	locals   internal.Locals
	logger   *slog.Logger
}

func newTestContext(w http.ResponseWriter, r *http.Request) *testContext {
	return &testContext{
		response: internal.NewResponseWriter(w),
		request:  r,
		locals:   internal.Locals{},
		logger:   slog.New(slog.DiscardHandler),
	}
}

func (c *testContext) withOrigami(o *internal.Origami) *testContext {
	c.origami = o
	if o.Log != nil {
		c.logger = o.Log
	}
	return c
}

func (c *testContext) Request() *http.Request        { return c.request }
func (c *testContext) Response() http.ResponseWriter { return c.response }
func (c *testContext) Context() context.Context      { return c.request.Context() }
func (c *testContext) Param(name string) string      { return "" }

func (c *testContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *testContext) QueryDefault(name, defaultValue string) string {
	v := c.request.URL.Query().Get(name)
	if v == "" {
		return defaultValue
	}
	return v
}

func (c *testContext) Header(name string) string    { return c.request.Header.Get(name) }
func (c *testContext) SetHeader(name, value string) { c.response.Header().Set(name, value) }

func (c *testContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *testContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *testContext) HTML(code int, html string) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(html))
	return err
}

func (c *testContext) NoContent(code int) error { c.response.WriteHeader(code); return nil }

func (c *testContext) Redirect(code int, url string) error {
	http.Redirect(c.response, c.request, url, code)
	return nil
}

func (c *testContext) Error(code int, message string, opts ...internal.HTTPErrorOption) *internal.HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

func (c *testContext) Render(code int, component internal.Component) error {
	var buf bytes.Buffer
	if err := component.Render(c.request.Context(), &buf); err != nil {
		return err
	}
	return c.HTML(code, buf.String())
}

func (c *testContext) View(code int, name string, data map[string]any) error {
	var buf bytes.Buffer
	if err := c.RenderView(&buf, name, data); err != nil {
		return err
	}
	return c.HTML(code, buf.String())
}

func (c *testContext) RenderView(w io.Writer, name string, data map[string]any) error {
	if c.origami == nil || c.origami.Views == nil {
		return internal.ErrNoViews
	}
	return c.origami.Views.Render(w, name, data)
}

func (c *testContext) Locals() internal.Locals     { return c.locals }
func (c *testContext) Origami() *internal.Origami  { return c.origami }
func (c *testContext) Written() bool               { return c.response.Written() }
func (c *testContext) Logger() *slog.Logger        { return c.logger }
func (c *testContext) Deadline() (time.Time, bool) { return c.request.Context().Deadline() }
func (c *testContext) Done() <-chan struct{}       { return c.request.Context().Done() }
func (c *testContext) Err() error                  { return c.request.Context().Err() }
func (c *testContext) Value(key any) any           { return c.request.Context().Value(key) }

func (c *testContext) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *testContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *testContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *testContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

func (c *testContext) Set(key, value any) {
	c.request = c.request.WithContext(context.WithValue(c.request.Context(), key, value))
}

func (c *testContext) Get(key any) any {
	return c.request.Context().Value(key)
}

// logBuffer collects JSON log lines written from several goroutines.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// Entries decodes every log line.
func (b *logBuffer) Entries(t *testing.T) []map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(b.buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

// Messages returns the msg field of every log line.
func (b *logBuffer) Messages(t *testing.T) []string {
	t.Helper()
	var msgs []string
	for _, e := range b.Entries(t) {
		msgs = append(msgs, e["msg"].(string))
	}
	return msgs
}

func newLogger(buf *logBuffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// newApp assembles an App isolated from the process environment.
func newApp(t *testing.T, opts ...internal.Option) (*internal.App, *logBuffer) {
	t.Helper()

	logs := &logBuffer{}
	base := []internal.Option{
		internal.WithEnvironmentVariables(map[string]string{}),
		internal.WithBasePath(t.TempDir()),
		internal.WithCustomLogger(newLogger(logs)),
		internal.WithRequestLogFormat(""),
	}
	app, err := internal.New(append(base, opts...)...)
	require.NoError(t, err)
	return app, logs
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

// routes adapts a function to the Handler interface.
type routes func(r internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }
