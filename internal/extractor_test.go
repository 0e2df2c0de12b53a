package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/origami-service/origami/internal"
)

func TestExtractor(t *testing.T) {
	t.Parallel()

	ex := internal.NewExtractor(
		internal.FromLocals("token"),
		internal.FromHeader("X-Token"),
		internal.FromQuery("token"),
	)

	tests := []struct {
		name   string
		target string
		header string
		local  any
		want   string
		found  bool
	}{
		{name: "locals first", target: "/?token=q", header: "h", local: "l", want: "l", found: true},
		{name: "non-string local skipped", target: "/?token=q", header: "h", local: 42, want: "h", found: true},
		{name: "header before query", target: "/?token=q", header: "h", want: "h", found: true},
		{name: "query last", target: "/?token=q", want: "q", found: true},
		{name: "nothing", target: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("X-Token", tt.header)
			}
			requestVia(t, req, nil, func(c internal.Context) error {
				if tt.local != nil {
					c.Locals()["token"] = tt.local
				}
				got, ok := ex.Extract(c)
				require.Equal(t, tt.found, ok)
				require.Equal(t, tt.want, got)
				return nil
			})
		})
	}
}
