// Command example is a small origami service. Run it from this directory so
// views/, public/ and manifest.yaml are found:
//
//	PURGE_API_KEY=secret go run .
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/origami-service/origami"
	"github.com/origami-service/origami/middlewares"
	"github.com/origami-service/origami/pkg/cachecontrol"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	purger := middlewares.NewPurger(middlewares.PurgeOptions{
		URLs: []string{
			"https://www.example.com/",
			"https://www.example.com/embed",
		},
		RateLimit: 10,
		RateBurst: 2,
	})

	app, err := origami.New(
		origami.WithDefaultLayout("main"),
		origami.WithGoodToGoTest(func(context.Context) error { return nil }),
		origami.WithHandlers(&pages{purger: purger}),
		origami.WithShutdownHook(purger.Shutdown),
	)
	if err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}

	if err := app.Run(ctx, origami.ShutdownTimeout(10*time.Second)); err != nil {
		app.Origami().Log.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

type pages struct {
	purger *middlewares.Purger
}

func (p *pages) Routes(r origami.Router) {
	hour := middlewares.CacheControl(cachecontrol.Options{MaxAge: cachecontrol.MustParse("1 hour")})

	r.GET("/", p.index, hour)
	r.GET("/embed", p.embed, hour, middlewares.RequireSourceParam())
	r.GET("/teapot", p.teapot)
	r.POST("/purge", nil, p.purger.Middleware())
}

func (p *pages) index(c origami.Context) error {
	return c.View(http.StatusOK, "index", map[string]any{"title": "Home"})
}

func (p *pages) embed(c origami.Context) error {
	return c.View(http.StatusOK, "embed", map[string]any{
		"title":  "Embed",
		"source": c.Query("source"),
	})
}

// teapotError reports its status through StatusCode, which the error page
// picks up without the error being an HTTPError.
type teapotError struct{}

func (teapotError) Error() string   { return "I refuse to brew coffee" }
func (teapotError) StatusCode() int { return http.StatusTeapot }

func (p *pages) teapot(origami.Context) error {
	return fmt.Errorf("brew: %w", teapotError{})
}
