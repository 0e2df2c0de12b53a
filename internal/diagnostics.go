package internal

import (
	"net/http"

	"github.com/origami-service/origami/pkg/cachecontrol"
	"github.com/origami-service/origami/pkg/health"
)

// Diagnostics endpoints. They share the "__" prefix the access log skips.
const (
	AboutPath   = "/__about"
	GTGPath     = "/__gtg"
	HealthPath  = "/__health"
	MetricsPath = "/__metrics"
	ErrorPath   = "/__error"
)

// TestErrorMessage is the message of the error raised by /__error.
const TestErrorMessage = "This is a test error"

func (a *App) mountDiagnostics() {
	o := a.origami
	cfg := o.Config
	svc := health.Service{
		SystemCode:  cfg.About.SystemCode,
		Name:        cfg.About.Name,
		Description: cfg.About.Purpose,
	}
	hopts := []health.Option{health.WithLogger(o.Log)}

	a.router.Get(AboutPath, a.wrapHandler(func(c Context) error {
		c.SetHeader(cachecontrol.HeaderName, cachecontrol.NoStore)
		return c.JSON(http.StatusOK, cfg.About)
	}))
	a.router.Get(GTGPath, health.GoodToGoHandler(cfg.GoodToGoTest, hopts...))
	a.router.Get(HealthPath, health.Handler(svc, cfg.HealthChecks, hopts...))

	if o.Metrics.Enabled() {
		a.router.Method(http.MethodGet, MetricsPath, o.Metrics.Handler())
	}
	if cfg.ExposeErrorEndpoint {
		a.router.Get(ErrorPath, a.wrapHandler(func(Context) error {
			return ErrInternal(TestErrorMessage)
		}))
	}
}
