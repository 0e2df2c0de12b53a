package internal_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/origami-service/origami/internal"
	"github.com/origami-service/origami/pkg/cachecontrol"
)

type statusErr struct{ code int }

func (e statusErr) Error() string { return "status" }
func (e statusErr) Status() int   { return e.code }

type httpStatusErr struct{ code int }

func (e httpStatusErr) Error() string   { return "http status" }
func (e httpStatusErr) HTTPStatus() int { return e.code }

type bothErr struct{}

func (bothErr) Error() string   { return "both" }
func (bothErr) Status() int     { return 418 }
func (bothErr) StatusCode() int { return 400 }

func TestStatusOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"nil", nil, http.StatusInternalServerError},
		{"http error", internal.ErrNotFound("gone"), http.StatusNotFound},
		{"wrapped http error", fmt.Errorf("outer: %w", internal.ErrForbidden("no")), http.StatusForbidden},
		{"status method", statusErr{code: 567}, 567},
		{"http status method", httpStatusErr{code: 409}, http.StatusConflict},
		{"status wins over status code", bothErr{}, http.StatusTeapot},
		{"zero status falls through", statusErr{code: 0}, http.StatusInternalServerError},
		{"out of range", httpStatusErr{code: 42}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, internal.StatusOf(tt.err))
		})
	}
}

func TestHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("fields and options", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("db down")
		err := internal.ErrServiceUnavailable("try later",
			internal.WithError(cause),
			internal.WithCacheMaxAge(cachecontrol.Seconds(30)),
			internal.WithoutTelemetry(),
		)
		require.Equal(t, "try later", err.Error())
		require.Equal(t, "Service Unavailable", err.StatusText())
		require.ErrorIs(t, err, cause)
		require.Equal(t, int64(30), internal.CacheMaxAgeOf(err).Seconds())
		require.True(t, internal.SkipsTelemetry(err))
		require.NotEmpty(t, internal.StackOf(err))
	})

	t.Run("client errors carry no stack", func(t *testing.T) {
		t.Parallel()
		err := internal.ErrBadRequest("bad")
		require.Empty(t, internal.StackOf(err))
		require.False(t, internal.CacheMaxAgeOf(err).IsSet())
		require.False(t, internal.SkipsTelemetry(err))
	})

	t.Run("inspection through wrapping", func(t *testing.T) {
		t.Parallel()
		httpErr := internal.ErrUnauthorized("who")
		err := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", httpErr))
		require.True(t, internal.IsHTTPError(err))
		require.Same(t, httpErr, internal.AsHTTPError(err))
		require.False(t, internal.IsHTTPError(errors.New("plain")))
		require.Nil(t, internal.AsHTTPError(nil))
	})

	t.Run("plain errors carry no hints", func(t *testing.T) {
		t.Parallel()
		err := errors.New("plain")
		require.Empty(t, internal.StackOf(err))
		require.False(t, internal.CacheMaxAgeOf(err).IsSet())
	})
}
