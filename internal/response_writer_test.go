package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponseWriter(t *testing.T) {
	t.Parallel()

	t.Run("write header once", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		rw := NewResponseWriter(w)
		require.False(t, rw.Written())

		rw.WriteHeader(http.StatusNotFound)
		rw.WriteHeader(http.StatusInternalServerError)

		require.True(t, rw.Written())
		require.Equal(t, http.StatusNotFound, rw.Status())
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("implicit 200 on write", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		rw := NewResponseWriter(w)

		n, err := rw.Write([]byte("hello"))
		require.NoError(t, err)
		require.Equal(t, 5, n)
		require.Equal(t, int64(5), rw.Size())
		require.Equal(t, http.StatusOK, w.Code)
		require.True(t, rw.Written())
	})

	t.Run("unwrap and flush", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		rw := NewResponseWriter(w)
		require.Same(t, w, rw.Unwrap())
		rw.Flush()
		require.True(t, w.Flushed)

		_, _, err := rw.Hijack()
		require.ErrorIs(t, err, http.ErrNotSupported)
	})
}
