package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/origami-service/origami/internal"
	"github.com/origami-service/origami/middlewares"
)

func TestBasePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   string
	}{
		{"", "/"},
		{"/", "/"},
		{"/foo/bar/", "/foo/bar/"},
		{"foo/bar", "/foo/bar/"},
		{"//foo//", "/foo/"},
	}

	for _, tt := range tests {
		t.Run("header "+tt.header, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(middlewares.BasePathHeader, tt.header)
			}
			ctx := newTestContext(httptest.NewRecorder(), req)

			err := middlewares.BasePath()(func(c internal.Context) error {
				require.Equal(t, tt.want, middlewares.GetBasePath(c))
				require.Equal(t, tt.want, c.Locals()[middlewares.BasePathLocal])
				return nil
			})(ctx)
			require.NoError(t, err)
		})
	}

	t.Run("defaults without the filter", func(t *testing.T) {
		t.Parallel()
		ctx := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, "/", middlewares.GetBasePath(ctx))
	})
}
