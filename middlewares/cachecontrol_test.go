package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/origami-service/origami/internal"
	"github.com/origami-service/origami/middlewares"
	"github.com/origami-service/origami/pkg/cachecontrol"
)

func TestCacheControl(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts cachecontrol.Options
		want string
	}{
		{"zero max-age", cachecontrol.Options{}, "max-age=0, must-revalidate, no-cache, no-store"},
		{"stale defaults to max-age", cachecontrol.Options{MaxAge: cachecontrol.MustParse("1 hour")},
			"max-age=3600, public, stale-if-error=3600, stale-while-revalidate=3600"},
		{"stale directives off", cachecontrol.Options{
			MaxAge:               cachecontrol.Seconds(60),
			StaleIfError:         cachecontrol.Off,
			StaleWhileRevalidate: cachecontrol.Off,
		}, "max-age=60, public"},
		{"explicit stale values", cachecontrol.Options{
			MaxAge:               cachecontrol.Seconds(60),
			StaleIfError:         cachecontrol.MustParse("1d"),
			StaleWhileRevalidate: cachecontrol.Seconds(5),
		}, "max-age=60, public, stale-if-error=86400, stale-while-revalidate=5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			ctx := newTestContext(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			called := false
			err := middlewares.CacheControl(tt.opts)(func(c internal.Context) error {
				called = true
				return nil
			})(ctx)

			require.NoError(t, err)
			require.True(t, called)
			require.Equal(t, []string{tt.want}, rec.Header().Values("Cache-Control"))
		})
	}

	t.Run("replaces an existing header", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rec.Header().Add("Cache-Control", "private")
		middlewares.SetCacheControl(rec, cachecontrol.Options{MaxAge: cachecontrol.Seconds(10)})
		require.Equal(t, []string{"max-age=10, public, stale-if-error=10, stale-while-revalidate=10"},
			rec.Header().Values("Cache-Control"))
	})
}
