package internal_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/origami-service/origami/internal"
)

// syncBuffer collects log output written from several goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// Messages returns the msg field of every JSON log line.
func (b *syncBuffer) Messages(t *testing.T) []string {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	var msgs []string
	for _, line := range strings.Split(strings.TrimSpace(b.buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		msgs = append(msgs, m["msg"].(string))
	}
	return msgs
}

// newApp builds an App isolated from the process environment and working
// directory. Options given later override the test defaults.
func newApp(t *testing.T, opts ...internal.Option) (*internal.App, *syncBuffer) {
	t.Helper()

	logs := &syncBuffer{}
	base := []internal.Option{
		internal.WithEnvironmentVariables(map[string]string{}),
		internal.WithBasePath(t.TempDir()),
		internal.WithCustomLogger(slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
		internal.WithRequestLogFormat(""),
	}
	app, err := internal.New(append(base, opts...)...)
	require.NoError(t, err)
	return app, logs
}

// requestVia creates an App with the given options, registers a handler at GET /,
// executes fn inside that handler, and sends a request. This lets tests exercise
// the real requestContext without accessing unexported symbols.
func requestVia(t *testing.T, req *http.Request, opts []internal.Option, fn func(c internal.Context) error) *httptest.ResponseRecorder {
	t.Helper()

	opts = append(opts, internal.WithHandlers(&captureHandler{fn: fn}))
	app, _ := newApp(t, opts...)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

type captureHandler struct {
	fn func(c internal.Context) error
}

func (h *captureHandler) Routes(r internal.Router) {
	r.GET("/", h.fn)
}

// routes adapts a function to the Handler interface.
type routes func(r internal.Router)

func (f routes) Routes(r internal.Router) { f(r) }

func nopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
