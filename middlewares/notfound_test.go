package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/origami-service/origami/internal"
	"github.com/origami-service/origami/middlewares"
)

func TestNotFound(t *testing.T) {
	t.Parallel()

	t.Run("fails without calling next", func(t *testing.T) {
		t.Parallel()

		ctx := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		err := middlewares.NotFound("nothing here")(func(internal.Context) error {
			t.Fatal("next must not be called")
			return nil
		})(ctx)

		httpErr := internal.AsHTTPError(err)
		require.NotNil(t, httpErr)
		require.Equal(t, http.StatusNotFound, httpErr.StatusCode())
		require.Equal(t, "nothing here", httpErr.Error())
		require.Equal(t, int64(30), httpErr.CacheMaxAge().Seconds())
	})

	t.Run("empty message is allowed", func(t *testing.T) {
		t.Parallel()

		ctx := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		err := middlewares.NotFoundHandler("")(ctx)
		require.Equal(t, http.StatusNotFound, internal.StatusOf(err))
		require.Empty(t, err.Error())
	})

	t.Run("response is briefly cacheable", func(t *testing.T) {
		t.Parallel()

		app, _ := newApp(t,
			internal.WithErrorHandler(middlewares.ErrorHandler(middlewares.WithOutputJSON())),
			internal.WithNotFoundHandler(middlewares.NotFoundHandler("Not Found")),
		)
		w := serve(t, app, http.MethodGet, "/missing")
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "max-age=30, public, stale-while-revalidate=30", w.Header().Get("Cache-Control"))
		require.JSONEq(t, `{"message":"Not Found","status":404}`, w.Body.String())
	})
}
