package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/graphite"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// DefaultGraphiteURL is the Graphite carbon endpoint metrics are pushed to.
	DefaultGraphiteURL = "graphite.ft.com:2003"

	// DefaultFlushInterval is how often metrics are pushed to Graphite.
	DefaultFlushInterval = 40 * time.Second

	namespace = "origami"
)

// ErrDisabled is returned by Run on a no-op Metrics.
var ErrDisabled = errors.New("metrics: disabled")

// Config configures a Metrics instance.
type Config struct {
	AppName     string
	APIKey      string
	GraphiteURL string
	Interval    time.Duration
	Logger      *slog.Logger
}

// Metrics records HTTP and application metrics in a private Prometheus
// registry and pushes them to Graphite. A nil *Metrics or one returned by
// Nop accepts every call and records nothing.
type Metrics struct {
	registry *prometheus.Registry
	inflight prometheus.Gauge
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	counters *prometheus.CounterVec
	logger   *slog.Logger
	cfg      Config
}

// New creates an enabled Metrics instance.
func New(cfg Config) *Metrics {
	if cfg.GraphiteURL == "" {
		cfg.GraphiteURL = DefaultGraphiteURL
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultFlushInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		logger:   cfg.Logger,
		cfg:      cfg,
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "route"}),
		counters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "app",
			Name:      "events_total",
			Help:      "Application events counted through Count.",
		}, []string{"name"}),
	}

	m.registry.MustRegister(
		m.inflight,
		m.requests,
		m.duration,
		m.counters,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// Nop returns a Metrics that records nothing.
func Nop() *Metrics {
	return nil
}

// Enabled reports whether metrics are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil
}

// AppName returns the name metrics are reported under.
func (m *Metrics) AppName() string {
	if m == nil {
		return ""
	}
	return m.cfg.AppName
}

// Registry exposes the underlying registry for custom collectors.
// Returns nil when disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Count increments the named application counter by n.
func (m *Metrics) Count(name string, n float64) {
	if m == nil || n <= 0 {
		return
	}
	m.counters.WithLabelValues(name).Add(n)
}

// Middleware instruments every request passing through next.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		m.inflight.Inc()
		defer m.inflight.Dec()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routeOf(r)
		method := strings.ToUpper(r.Method)

		m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Run pushes metrics to Graphite every interval until ctx is done.
func (m *Metrics) Run(ctx context.Context) error {
	b, err := m.bridge()
	if err != nil {
		return err
	}
	b.Run(ctx)
	return nil
}

// Push sends the current metrics to Graphite once.
func (m *Metrics) Push() error {
	b, err := m.bridge()
	if err != nil {
		return err
	}
	return b.Push()
}

func (m *Metrics) bridge() (*graphite.Bridge, error) {
	if m == nil {
		return nil, ErrDisabled
	}
	b, err := graphite.NewBridge(&graphite.Config{
		URL:           m.cfg.GraphiteURL,
		Gatherer:      m.registry,
		Prefix:        Prefix(m.cfg.APIKey, m.cfg.AppName),
		Interval:      m.cfg.Interval,
		Timeout:       10 * time.Second,
		ErrorHandling: graphite.ContinueOnError,
		Logger:        bridgeLogger{m.logger},
	})
	if err != nil {
		return nil, fmt.Errorf("metrics: graphite bridge: %w", err)
	}
	return b, nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// Prefix builds the Graphite metric prefix for an API key and app name.
func Prefix(apiKey, appName string) string {
	app := unsafeChars.ReplaceAllString(strings.ToLower(appName), "-")
	app = strings.Trim(app, "-")
	if app == "" {
		app = "app"
	}
	if apiKey == "" {
		return app
	}
	return apiKey + "." + app
}

func routeOf(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

type bridgeLogger struct{ l *slog.Logger }

func (b bridgeLogger) Println(v ...any) {
	b.l.Warn("graphite push", slog.String("detail", strings.TrimSpace(fmt.Sprintln(v...))))
}
