package accesslog

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Supported formats.
const (
	FormatCombined = "combined"
	FormatCommon   = "common"
	FormatShort    = "short"
	FormatTiny     = "tiny"
	FormatDev      = "dev"
)

// ErrUnknownFormat is returned by New for unsupported format names.
var ErrUnknownFormat = errors.New("accesslog: unknown format")

const clfTime = "02/Jan/2006:15:04:05 -0700"

// SkipFunc decides whether a request is left out of the access log.
type SkipFunc func(r *http.Request) bool

// DefaultSkip skips /favicon.ico and any path whose first or last segment
// starts with a double underscore (the diagnostics namespace).
func DefaultSkip(r *http.Request) bool {
	path := r.URL.Path
	if path == "/favicon.ico" {
		return true
	}
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return false
	}
	segments := strings.Split(trimmed, "/")
	return strings.HasPrefix(segments[0], "__") || strings.HasPrefix(segments[len(segments)-1], "__")
}

type config struct {
	skip SkipFunc
	now  func() time.Time
}

// Option configures the access log middleware.
type Option func(*config)

// WithSkip replaces the skip predicate. Nil logs everything.
func WithSkip(fn SkipFunc) Option {
	return func(c *config) {
		c.skip = fn
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// New returns middleware writing one line per request to logger in the
// named format.
func New(logger *slog.Logger, format string, opts ...Option) (func(http.Handler) http.Handler, error) {
	render, ok := formats[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	cfg := &config{skip: DefaultSkip, now: time.Now}
	for _, opt := range opts {
		opt(cfg)
	}

	f := &formatter{logger: logger, render: render, now: cfg.now}
	logged := middleware.RequestLogger(f)

	return func(next http.Handler) http.Handler {
		withLog := logged(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.skip != nil && cfg.skip(r) {
				next.ServeHTTP(w, r)
				return
			}
			withLog.ServeHTTP(w, r)
		})
	}, nil
}

// Line holds the fields available to a format.
type Line struct {
	Time          time.Time
	Header        http.Header
	RemoteAddr    string
	RemoteUser    string
	Method        string
	URL           string
	Proto         string
	Referrer      string
	UserAgent     string
	ContentLength string
	Elapsed       time.Duration
	Status        int
}

type renderFunc func(l Line) string

var formats = map[string]renderFunc{
	FormatCombined: func(l Line) string {
		return fmt.Sprintf(`%s - %s [%s] "%s %s HTTP/%s" %d %s "%s" "%s"`,
			l.RemoteAddr, l.RemoteUser, l.Time.Format(clfTime), l.Method, l.URL, l.Proto,
			l.Status, l.ContentLength, l.Referrer, l.UserAgent)
	},
	FormatCommon: func(l Line) string {
		return fmt.Sprintf(`%s - %s [%s] "%s %s HTTP/%s" %d %s`,
			l.RemoteAddr, l.RemoteUser, l.Time.Format(clfTime), l.Method, l.URL, l.Proto,
			l.Status, l.ContentLength)
	},
	FormatShort: func(l Line) string {
		return fmt.Sprintf(`%s %s %s %s HTTP/%s %d %s - %s ms`,
			l.RemoteAddr, l.RemoteUser, l.Method, l.URL, l.Proto, l.Status, l.ContentLength, millis(l.Elapsed))
	},
	FormatTiny: func(l Line) string {
		return fmt.Sprintf(`%s %s %d %s - %s ms`,
			l.Method, l.URL, l.Status, l.ContentLength, millis(l.Elapsed))
	},
	FormatDev: func(l Line) string {
		return fmt.Sprintf(`%s %s %d %s ms - %s`,
			l.Method, l.URL, l.Status, millis(l.Elapsed), l.ContentLength)
	},
}

// Formats lists the supported format names.
func Formats() []string {
	return []string{FormatCombined, FormatCommon, FormatShort, FormatTiny, FormatDev}
}

func millis(d time.Duration) string {
	return strconv.FormatFloat(float64(d.Microseconds())/1000, 'f', 3, 64)
}

type formatter struct {
	logger *slog.Logger
	render renderFunc
	now    func() time.Time
}

func (f *formatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	user := "-"
	if u, _, ok := r.BasicAuth(); ok && u != "" {
		user = u
	}
	return &entry{
		f:   f,
		req: r,
		line: Line{
			Time:       f.now(),
			RemoteAddr: remoteAddr(r),
			RemoteUser: user,
			Method:     r.Method,
			URL:        r.URL.RequestURI(),
			Proto:      strconv.Itoa(r.ProtoMajor) + "." + strconv.Itoa(r.ProtoMinor),
			Referrer:   orDash(r.Referer()),
			UserAgent:  orDash(r.UserAgent()),
		},
	}
}

type entry struct {
	f    *formatter
	req  *http.Request
	line Line
}

func (e *entry) Write(status, bytes int, header http.Header, elapsed time.Duration, _ any) {
	l := e.line
	l.Status = status
	l.Header = header
	l.Elapsed = elapsed
	l.ContentLength = header.Get("Content-Length")
	if l.ContentLength == "" {
		l.ContentLength = "-"
		if bytes > 0 {
			l.ContentLength = strconv.Itoa(bytes)
		}
	}

	e.f.logger.LogAttrs(e.req.Context(), slog.LevelInfo, e.f.render(l),
		slog.Int("status", status),
		slog.Duration("elapsed", elapsed),
	)
}

func (e *entry) Panic(v any, stack []byte) {
	e.f.logger.ErrorContext(e.req.Context(), "request panicked",
		slog.Any("panic", v),
		slog.String("stack", string(stack)),
	)
}

func remoteAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return orDash(r.RemoteAddr)
	}
	return host
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
