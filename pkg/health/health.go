package health

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout = 5 * time.Second

	// SchemaVersion is the version of the health report format.
	SchemaVersion = 1

	// Severity levels, 1 being the most serious.
	SeverityHigh   = 1
	SeverityMedium = 2
	SeverityLow    = 3
)

// CheckFunc is the standard health check function signature.
// A nil error means the check passed.
type CheckFunc func(ctx context.Context) error

// Check is a named health check with the metadata operators need when it fails.
type Check struct {
	Run              CheckFunc
	ID               string
	Name             string
	BusinessImpact   string
	TechnicalSummary string
	PanicGuide       string
	Severity         int
}

// Result is the outcome of a single Check.
type Result struct {
	LastUpdated      time.Time `json:"lastUpdated"`
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	BusinessImpact   string    `json:"businessImpact,omitempty"`
	TechnicalSummary string    `json:"technicalSummary,omitempty"`
	PanicGuide       string    `json:"panicGuide,omitempty"`
	CheckOutput      string    `json:"checkOutput"`
	Severity         int       `json:"severity"`
	OK               bool      `json:"ok"`
}

// Report is the body served by the health endpoint.
type Report struct {
	SchemaVersion int      `json:"schemaVersion"`
	SystemCode    string   `json:"systemCode,omitempty"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Checks        []Result `json:"checks"`
	OK            bool     `json:"ok"`
}

// Service identifies the system a Report describes.
type Service struct {
	SystemCode  string
	Name        string
	Description string
}

// config holds health check configuration.
type config struct {
	logger  *slog.Logger
	now     func() time.Time
	timeout time.Duration
}

// Option configures health check behavior.
type Option func(*config)

// WithTimeout sets the timeout for all checks.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger for failed checks.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the time source used for LastUpdated.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// newConfig creates a config with defaults, modified by options.
func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout: defaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Run executes all checks in parallel and returns the aggregated report.
// Results keep the order of checks.
func Run(ctx context.Context, svc Service, checks []Check, opts ...Option) *Report {
	return runChecks(ctx, svc, checks, newConfig(opts...))
}

func runChecks(ctx context.Context, svc Service, checks []Check, cfg *config) *Report {
	report := &Report{
		SchemaVersion: SchemaVersion,
		SystemCode:    svc.SystemCode,
		Name:          svc.Name,
		Description:   svc.Description,
		Checks:        make([]Result, len(checks)),
		OK:            true,
	}
	if len(checks) == 0 {
		return report
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu sync.Mutex
		g  errgroup.Group
	)

	for i, check := range checks {
		g.Go(func() error {
			result := Result{
				ID:               check.ID,
				Name:             check.Name,
				BusinessImpact:   check.BusinessImpact,
				TechnicalSummary: check.TechnicalSummary,
				PanicGuide:       check.PanicGuide,
				Severity:         check.Severity,
				OK:               true,
			}
			if result.Severity == 0 {
				result.Severity = SeverityLow
			}

			if err := safeRun(ctx, check.Run); err != nil {
				result.OK = false
				result.CheckOutput = err.Error()
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", check.ID),
					slog.String("error", err.Error()),
				)
			}
			result.LastUpdated = cfg.now()

			mu.Lock()
			report.Checks[i] = result
			if !result.OK {
				report.OK = false
			}
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return report
}

func safeRun(ctx context.Context, fn CheckFunc) (err error) {
	if fn == nil {
		return ErrNoCheckFunc
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCheckPanicked, r)
		}
	}()
	if err := fn(ctx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrCheckTimeout, err)
		}
		return err
	}
	return nil
}
