package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/origami-service/origami/internal"
	"github.com/origami-service/origami/middlewares"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("names are sorted", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, []string{
			"base-path",
			"cache-control",
			"not-found",
			"purge-urls",
			"recover",
			"request-id",
			"require-source-param",
		}, middlewares.Names())
	})

	t.Run("every filter builds from its params", func(t *testing.T) {
		t.Parallel()

		params := map[string]middlewares.Params{
			"cache-control": {"maxAge": "1 hour", "staleIfError": "0"},
			"purge-urls":    {"urls": "https://a.example/, https://b.example/", "maxWait": "30s"},
		}
		for _, name := range middlewares.Names() {
			mw, err := middlewares.Build(name, params[name])
			require.NoError(t, err, name)
			require.NotNil(t, mw, name)
		}
	})

	t.Run("cache-control parses durations", func(t *testing.T) {
		t.Parallel()

		mw, err := middlewares.Build("cache-control", middlewares.Params{"maxAge": "1 hour", "staleIfError": "0"})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		ctx := newTestContext(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, mw(func(internal.Context) error { return nil })(ctx))
		require.Equal(t, "max-age=3600, public, stale-while-revalidate=3600", rec.Header().Get("Cache-Control"))
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()

		_, err := middlewares.Build("nope", nil)
		require.ErrorIs(t, err, middlewares.ErrUnknownFilter)

		_, err = middlewares.Build("cache-control", middlewares.Params{"maxAge": "soon"})
		require.Error(t, err)

		_, err = middlewares.Build("purge-urls", middlewares.Params{"urls": " , "})
		require.Error(t, err)

		_, err = middlewares.Build("purge-urls", middlewares.Params{"urls": "https://a.example/", "maxWait": "forever"})
		require.Error(t, err)

		_, ok := middlewares.Lookup("not-found")
		require.True(t, ok)
	})
}
