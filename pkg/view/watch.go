package view

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates an Engine's cache whenever a template file changes.
type Watcher struct {
	engine  *Engine
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	done    chan struct{}
}

// Watch starts watching the engine's template directories.
// Missing directories are skipped. The watcher stops when ctx is done or
// Close is called.
func (e *Engine) Watch(ctx context.Context, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("view: create watcher: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	w := &Watcher{engine: e, watcher: fw, logger: logger, done: make(chan struct{})}
	for _, dir := range []string{e.cfg.ViewsDir, e.cfg.LayoutsDir, e.cfg.PartialsDir} {
		if err := w.addRecursive(dir); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	go w.loop(ctx)
	return w, nil
}

// Close stops the watcher and waits for its loop to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) addRecursive(root string) error {
	if root == "" {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("view: watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			_ = w.watcher.Close()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("view watcher error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		// New subdirectories need their own watch.
		_ = w.addRecursive(event.Name)
	}
	if filepath.Ext(event.Name) != w.engine.cfg.Extension && event.Op&fsnotify.Create != fsnotify.Create {
		return
	}
	w.engine.Invalidate()
	w.logger.Debug("view cache invalidated", slog.String("file", event.Name), slog.String("op", event.Op.String()))
}
