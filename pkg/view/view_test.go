package view_test

import (
	"bytes"
	"context"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/origami-service/origami/pkg/view"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTree(t *testing.T) (string, view.Config) {
	t.Helper()
	dir := t.TempDir()
	views := filepath.Join(dir, "views")
	writeFile(t, filepath.Join(views, "index.html"), `<p>{{.title}}</p>{{template "nav" .}}`)
	writeFile(t, filepath.Join(views, "layouts", "main.html"), `<main>{{.body}}</main>`)
	writeFile(t, filepath.Join(views, "layouts", "alt.html"), `<alt>{{.body}}</alt>`)
	writeFile(t, filepath.Join(views, "partials", "nav.html"), `<nav>{{upper .title}}</nav>`)
	return views, view.Config{
		ViewsDir:    views,
		LayoutsDir:  filepath.Join(views, "layouts"),
		PartialsDir: filepath.Join(views, "partials"),
	}
}

var funcs = template.FuncMap{"upper": strings.ToUpper}

func TestEngineRender(t *testing.T) {
	t.Parallel()

	t.Run("without layout", func(t *testing.T) {
		t.Parallel()
		_, cfg := newTree(t)
		e := view.New(cfg, view.WithFuncs(funcs))

		var buf bytes.Buffer
		require.NoError(t, e.Render(&buf, "index", map[string]any{"title": "hi"}))
		require.Equal(t, "<p>hi</p><nav>HI</nav>", buf.String())
	})

	t.Run("default layout", func(t *testing.T) {
		t.Parallel()
		_, cfg := newTree(t)
		cfg.DefaultLayout = "main"
		e := view.New(cfg, view.WithFuncs(funcs))

		var buf bytes.Buffer
		require.NoError(t, e.Render(&buf, "index", map[string]any{"title": "hi"}))
		require.Equal(t, "<main><p>hi</p><nav>HI</nav></main>", buf.String())
	})

	t.Run("per render layout override", func(t *testing.T) {
		t.Parallel()
		_, cfg := newTree(t)
		cfg.DefaultLayout = "main"
		e := view.New(cfg, view.WithFuncs(funcs))

		var buf bytes.Buffer
		require.NoError(t, e.Render(&buf, "index", map[string]any{"title": "a", view.LayoutKey: "alt"}))
		require.True(t, strings.HasPrefix(buf.String(), "<alt>"))

		buf.Reset()
		require.NoError(t, e.Render(&buf, "index", map[string]any{"title": "a", view.LayoutKey: false}))
		require.True(t, strings.HasPrefix(buf.String(), "<p>"))
	})

	t.Run("escapes data", func(t *testing.T) {
		t.Parallel()
		_, cfg := newTree(t)
		e := view.New(cfg, view.WithFuncs(funcs))

		var buf bytes.Buffer
		require.NoError(t, e.Render(&buf, "index", map[string]any{"title": "<b>"}))
		require.Contains(t, buf.String(), "&lt;b&gt;")
	})

	t.Run("missing view", func(t *testing.T) {
		t.Parallel()
		_, cfg := newTree(t)
		e := view.New(cfg)

		var buf bytes.Buffer
		err := e.Render(&buf, "nope", nil)
		require.ErrorIs(t, err, view.ErrViewNotFound)
		require.Zero(t, buf.Len())
	})

	t.Run("missing layout", func(t *testing.T) {
		t.Parallel()
		_, cfg := newTree(t)
		cfg.DefaultLayout = "ghost"
		e := view.New(cfg, view.WithFuncs(funcs))

		var buf bytes.Buffer
		require.ErrorIs(t, e.Render(&buf, "index", map[string]any{"title": "x"}), view.ErrLayoutNotFound)
		require.Zero(t, buf.Len())
	})

	t.Run("execution error writes nothing", func(t *testing.T) {
		t.Parallel()
		views, cfg := newTree(t)
		writeFile(t, filepath.Join(views, "broken.html"), `before{{template "missing"}}`)
		e := view.New(cfg, view.WithFuncs(funcs))

		var buf bytes.Buffer
		require.Error(t, e.Render(&buf, "broken", nil))
		require.Zero(t, buf.Len())
	})

	t.Run("missing directories are tolerated", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "v.html"), `ok`)
		e := view.New(view.Config{ViewsDir: dir, PartialsDir: filepath.Join(dir, "none")})

		var buf bytes.Buffer
		require.NoError(t, e.Render(&buf, "v", nil))
		require.Equal(t, "ok", buf.String())
	})
}

func TestEngineCache(t *testing.T) {
	t.Parallel()

	views, cfg := newTree(t)
	e := view.New(cfg, view.WithFuncs(funcs))

	var buf bytes.Buffer
	require.NoError(t, e.Render(&buf, "index", map[string]any{"title": "x"}))

	writeFile(t, filepath.Join(views, "index.html"), `changed`)

	buf.Reset()
	require.NoError(t, e.Render(&buf, "index", map[string]any{"title": "x"}))
	require.NotEqual(t, "changed", buf.String())

	e.Invalidate()
	buf.Reset()
	require.NoError(t, e.Render(&buf, "index", nil))
	require.Equal(t, "changed", buf.String())
}

func TestEngineWatch(t *testing.T) {
	t.Parallel()

	views, cfg := newTree(t)
	e := view.New(cfg, view.WithFuncs(funcs))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := e.Watch(ctx, nil)
	require.NoError(t, err)
	defer func() { require.NoError(t, w.Close()) }()

	var buf bytes.Buffer
	require.NoError(t, e.Render(&buf, "index", map[string]any{"title": "x"}))

	writeFile(t, filepath.Join(views, "index.html"), `fresh`)

	require.Eventually(t, func() bool {
		var out bytes.Buffer
		return e.Render(&out, "index", nil) == nil && out.String() == "fresh"
	}, 2*time.Second, 20*time.Millisecond)
}
