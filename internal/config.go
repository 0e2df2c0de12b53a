package internal

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"

	"github.com/origami-service/origami/pkg/health"
	"github.com/origami-service/origami/pkg/logger"
)

// Built-in defaults.
const (
	DefaultEnvironment      = "development"
	DefaultPort             = 8080
	DefaultRegion           = "EU"
	DefaultRequestLogFormat = "combined"
	DefaultGraphiteHost     = "graphite.ft.com:2003"

	// EnvironmentProduction switches off stack traces in error pages and
	// enables long-lived caching of static assets.
	EnvironmentProduction = "production"
)

// About describes the service. It is served on /__about and used to name
// the service in logs, metrics and health reports.
type About struct {
	SchemaVersion int    `json:"schemaVersion" yaml:"schemaVersion"`
	SystemCode    string `json:"systemCode,omitempty" yaml:"systemCode"`
	Name          string `json:"name" yaml:"name"`
	Purpose       string `json:"purpose" yaml:"purpose"`
	Audience      string `json:"audience,omitempty" yaml:"audience"`
	PrimaryURL    string `json:"primaryUrl,omitempty" yaml:"primaryUrl"`
	ServiceTier   string `json:"serviceTier,omitempty" yaml:"serviceTier"`
	AppVersion    string `json:"appVersion,omitempty" yaml:"appVersion"`
}

// Options is one layer of configuration. A nil field is undefined and
// falls through to the next layer; any non-nil value, including a zero
// value, wins.
type Options struct {
	About               *About
	BasePath            *string
	DefaultLayout       *string
	Environment         *string
	ExposeErrorEndpoint *bool
	FastlyPurgeAPIKey   *string
	GoodToGoTest        health.CheckFunc
	HealthChecks        []health.Check
	GraphiteAPIKey      *string
	GraphiteHost        *string
	Log                 *slog.Logger
	MetricsAppName      *string
	Port                *int
	PurgeAPIKey         *string
	Region              *string
	RequestLogFormat    *string
	SentryDSN           *string
	Start               *bool
}

// Config is the fully resolved configuration. It is created once per App
// and handed out by value.
type Config struct {
	About               About
	BasePath            string
	DefaultLayout       string
	Environment         string
	ExposeErrorEndpoint bool
	FastlyPurgeAPIKey   string
	GoodToGoTest        health.CheckFunc
	HealthChecks        []health.Check
	GraphiteAPIKey      string
	GraphiteHost        string
	Log                 *slog.Logger
	MetricsAppName      string
	Port                int
	PurgeAPIKey         string
	Region              string
	RequestLogFormat    string
	SentryDSN           string
	Start               bool
}

// IsProduction reports whether the environment is "production".
func (c Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

// Defaults returns the built-in option layer. BasePath is the current
// working directory.
func Defaults() Options {
	base, err := os.Getwd()
	if err != nil {
		base = "."
	}
	return Options{
		About:               &About{},
		BasePath:            &base,
		DefaultLayout:       ptr(""),
		Environment:         ptr(DefaultEnvironment),
		ExposeErrorEndpoint: ptr(false),
		FastlyPurgeAPIKey:   ptr(""),
		GraphiteAPIKey:      ptr(""),
		GraphiteHost:        ptr(DefaultGraphiteHost),
		Log:                 logger.New(),
		MetricsAppName:      ptr(""),
		Port:                ptr(DefaultPort),
		PurgeAPIKey:         ptr(""),
		Region:              ptr(DefaultRegion),
		RequestLogFormat:    ptr(DefaultRequestLogFormat),
		SentryDSN:           ptr(""),
		Start:               ptr(false),
	}
}

// Resolve merges the three layers field by field: the first defined value
// among explicit, env and defaults wins. Resolve performs no validation
// and no I/O.
func Resolve(explicit, env, defaults Options) Config {
	return Config{
		About:               value(explicit.About, env.About, defaults.About),
		BasePath:            value(explicit.BasePath, env.BasePath, defaults.BasePath),
		DefaultLayout:       value(explicit.DefaultLayout, env.DefaultLayout, defaults.DefaultLayout),
		Environment:         value(explicit.Environment, env.Environment, defaults.Environment),
		ExposeErrorEndpoint: value(explicit.ExposeErrorEndpoint, env.ExposeErrorEndpoint, defaults.ExposeErrorEndpoint),
		FastlyPurgeAPIKey:   value(explicit.FastlyPurgeAPIKey, env.FastlyPurgeAPIKey, defaults.FastlyPurgeAPIKey),
		GoodToGoTest:        firstCheck(explicit.GoodToGoTest, env.GoodToGoTest, defaults.GoodToGoTest),
		HealthChecks:        firstChecks(explicit.HealthChecks, env.HealthChecks, defaults.HealthChecks),
		GraphiteAPIKey:      value(explicit.GraphiteAPIKey, env.GraphiteAPIKey, defaults.GraphiteAPIKey),
		GraphiteHost:        value(explicit.GraphiteHost, env.GraphiteHost, defaults.GraphiteHost),
		Log:                 firstLogger(explicit.Log, env.Log, defaults.Log),
		MetricsAppName:      value(explicit.MetricsAppName, env.MetricsAppName, defaults.MetricsAppName),
		Port:                value(explicit.Port, env.Port, defaults.Port),
		PurgeAPIKey:         value(explicit.PurgeAPIKey, env.PurgeAPIKey, defaults.PurgeAPIKey),
		Region:              value(explicit.Region, env.Region, defaults.Region),
		RequestLogFormat:    value(explicit.RequestLogFormat, env.RequestLogFormat, defaults.RequestLogFormat),
		SentryDSN:           value(explicit.SentryDSN, env.SentryDSN, defaults.SentryDSN),
		Start:               value(explicit.Start, env.Start, defaults.Start),
	}
}

// environment lists the variables read into the env layer.
// Pointer fields stay nil when a variable is unset or empty.
type environment struct {
	Environment         *string `env:"ENVIRONMENT"`
	NodeEnv             *string `env:"NODE_ENV"`
	Port                *int    `env:"PORT"`
	Region              *string `env:"REGION"`
	SentryDSN           *string `env:"SENTRY_DSN"`
	RavenURL            *string `env:"RAVEN_URL"`
	GraphiteAPIKey      *string `env:"GRAPHITE_API_KEY"`
	GraphiteHost        *string `env:"GRAPHITE_HOST"`
	ExposeErrorEndpoint *bool   `env:"EXPOSE_ERROR_ENDPOINT"`
	FastlyPurgeAPIKey   *string `env:"FASTLY_PURGE_API_KEY"`
	PurgeAPIKey         *string `env:"PURGE_API_KEY"`
	MetricsAppName      *string `env:"METRICS_APP_NAME"`
}

// EnvOptions builds the env layer from vars, or from the process
// environment when vars is nil.
func EnvOptions(vars map[string]string) (Options, error) {
	if vars == nil {
		vars = env.ToMap(os.Environ())
	}
	set := make(map[string]string, len(vars))
	for k, v := range vars {
		if v != "" {
			set[k] = v
		}
	}

	var e environment
	if err := env.ParseWithOptions(&e, env.Options{Environment: set}); err != nil {
		return Options{}, fmt.Errorf("parse environment: %w", err)
	}
	return Options{
		Environment:         nonEmpty(e.Environment, e.NodeEnv),
		Port:                e.Port,
		Region:              nonEmpty(e.Region),
		SentryDSN:           nonEmpty(e.SentryDSN, e.RavenURL),
		GraphiteAPIKey:      nonEmpty(e.GraphiteAPIKey),
		GraphiteHost:        nonEmpty(e.GraphiteHost),
		ExposeErrorEndpoint: e.ExposeErrorEndpoint,
		FastlyPurgeAPIKey:   nonEmpty(e.FastlyPurgeAPIKey),
		PurgeAPIKey:         nonEmpty(e.PurgeAPIKey),
		MetricsAppName:      nonEmpty(e.MetricsAppName),
	}, nil
}

func ptr[T any](v T) *T {
	return &v
}

// value dereferences the first non-nil pointer, or returns the zero value.
func value[T any](layers ...*T) T {
	for _, p := range layers {
		if p != nil {
			return *p
		}
	}
	var zero T
	return zero
}

func firstCheck(layers ...health.CheckFunc) health.CheckFunc {
	for _, fn := range layers {
		if fn != nil {
			return fn
		}
	}
	return nil
}

func firstChecks(layers ...[]health.Check) []health.Check {
	for _, checks := range layers {
		if checks != nil {
			return checks
		}
	}
	return nil
}

func firstLogger(layers ...*slog.Logger) *slog.Logger {
	for _, l := range layers {
		if l != nil {
			return l
		}
	}
	return nil
}

func nonEmpty(candidates ...*string) *string {
	for _, p := range candidates {
		if p != nil && *p != "" {
			return p
		}
	}
	return nil
}
