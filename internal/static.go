package internal

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/origami-service/origami/pkg/cachecontrol"
)

// Cache lifetime of static assets in production.
const staticMaxAge = 7 * 24 * 60 * 60

// staticFiles serves existing files under dir and passes every other
// request on. Directory listings are never served.
func staticFiles(dir string, production bool) func(http.Handler) http.Handler {
	fsys := os.DirFS(dir)
	fileServer := http.FileServerFS(fsys)

	maxAge := 0
	if production {
		maxAge = staticMaxAge
	}
	cacheHeader := "public, max-age=" + strconv.Itoa(maxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
			if name == "" || strings.HasSuffix(r.URL.Path, "/") {
				next.ServeHTTP(w, r)
				return
			}
			info, err := fs.Stat(fsys, name)
			if err != nil || info.IsDir() {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set(cachecontrol.HeaderName, cacheHeader)
			w.Header().Set("X-Content-Type-Options", "nosniff")
			fileServer.ServeHTTP(w, r)
		})
	}
}
