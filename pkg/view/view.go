package view

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultExtension is the template file extension.
const DefaultExtension = ".html"

// LayoutKey is the data key that overrides the layout for a single render.
// A string names a layout; false disables the layout.
const LayoutKey = "layout"

// BodyKey is the data key holding the rendered view inside a layout.
const BodyKey = "body"

// Sentinel errors for the view package.
var (
	// ErrViewNotFound is returned when the requested view file does not exist.
	ErrViewNotFound = errors.New("view: not found")

	// ErrLayoutNotFound is returned when the selected layout file does not exist.
	ErrLayoutNotFound = errors.New("view: layout not found")
)

// Config locates templates on disk.
type Config struct {
	ViewsDir      string
	LayoutsDir    string
	PartialsDir   string
	Extension     string
	DefaultLayout string
}

// Engine renders html/template files with layouts and partials.
// Parsed templates are cached until Invalidate is called.
// Safe for concurrent use.
type Engine struct {
	cfg   Config
	funcs template.FuncMap
	cache map[string]*template.Template
	mu    sync.RWMutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithFuncs registers template functions available in every view.
func WithFuncs(funcs template.FuncMap) Option {
	return func(e *Engine) {
		for k, v := range funcs {
			e.funcs[k] = v
		}
	}
}

// New creates an Engine. Directories are not required to exist.
func New(cfg Config, opts ...Option) *Engine {
	if cfg.Extension == "" {
		cfg.Extension = DefaultExtension
	}
	if !strings.HasPrefix(cfg.Extension, ".") {
		cfg.Extension = "." + cfg.Extension
	}
	e := &Engine{
		cfg:   cfg,
		funcs: template.FuncMap{},
		cache: make(map[string]*template.Template),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine's template locations.
func (e *Engine) Config() Config {
	return e.cfg
}

// Render executes the named view with data and writes it to w.
// The view is wrapped in a layout unless data disables it.
// Nothing is written to w when rendering fails.
func (e *Engine) Render(w io.Writer, name string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}

	tmpl, err := e.load("view:"+name, filepath.Join(e.cfg.ViewsDir, name+e.cfg.Extension), ErrViewNotFound)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("view: execute %q: %w", name, err)
	}

	layout := e.layoutFor(data)
	if layout == "" {
		_, err := body.WriteTo(w)
		return err
	}

	lt, err := e.load("layout:"+layout, filepath.Join(e.cfg.LayoutsDir, layout+e.cfg.Extension), ErrLayoutNotFound)
	if err != nil {
		return err
	}

	layoutData := make(map[string]any, len(data)+1)
	for k, v := range data {
		layoutData[k] = v
	}
	layoutData[BodyKey] = template.HTML(body.String()) //nolint:gosec // rendered by html/template

	var page bytes.Buffer
	if err := lt.Execute(&page, layoutData); err != nil {
		return fmt.Errorf("view: execute layout %q: %w", layout, err)
	}
	_, err = page.WriteTo(w)
	return err
}

// Invalidate drops every cached template.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	e.cache = make(map[string]*template.Template)
	e.mu.Unlock()
}

func (e *Engine) layoutFor(data map[string]any) string {
	switch v := data[LayoutKey].(type) {
	case string:
		return v
	case bool:
		if !v {
			return ""
		}
	}
	return e.cfg.DefaultLayout
}

func (e *Engine) load(key, path string, notFound error) (*template.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[key]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", notFound, path)
		}
		return nil, fmt.Errorf("view: read %s: %w", path, err)
	}

	tmpl = template.New(filepath.Base(path)).Funcs(e.funcs)
	if err := e.parsePartials(tmpl); err != nil {
		return nil, err
	}
	if _, err := tmpl.Parse(string(src)); err != nil {
		return nil, fmt.Errorf("view: parse %s: %w", path, err)
	}

	e.mu.Lock()
	e.cache[key] = tmpl
	e.mu.Unlock()
	return tmpl, nil
}

// parsePartials adds every partial as a named template, named by its path
// relative to the partials directory without the extension.
func (e *Engine) parsePartials(tmpl *template.Template) error {
	dir := e.cfg.PartialsDir
	if dir == "" {
		return nil
	}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != e.cfg.Extension {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(strings.TrimSuffix(rel, e.cfg.Extension))
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := tmpl.New(name).Parse(string(src)); err != nil {
			return fmt.Errorf("view: parse partial %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("view: load partials: %w", err)
	}
	return nil
}
