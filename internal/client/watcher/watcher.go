// Package watcher follows an import folder and turns settled file changes
// into media imports for the active project.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ReloopAI/vibecut-frontend-2/internal/logging"
	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 500 * time.Millisecond

// DefaultIgnore skips hidden files and editor swap files.
var DefaultIgnore = []string{"**/.*", "**/*~", "**/*.swp", "**/*.part", "**/*.crdownload"}

type Options struct {
	Debounce time.Duration
	Filter   Filter
}

// Watcher reports changes below root, recursively.
type Watcher struct {
	root   string
	fs     *fsnotify.Watcher
	deb    *debouncer
	filter Filter
	log    logging.Logger

	closeOnce sync.Once
	done      chan struct{}
}

func New(root string, opts Options, log logging.Logger) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open import folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Watcher{
		root:   root,
		fs:     fsw,
		deb:    newDebouncer(opts.Debounce),
		filter: opts.Filter,
		log:    log,
		done:   make(chan struct{}),
	}, nil
}

// Start watches the tree and processes events until ctx ends or Close is
// called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(ctx, w.root); err != nil {
		return err
	}
	go w.loop(ctx)
	w.log.Info(ctx, "watching import folder", "path", w.root)
	return nil
}

// Events delivers settled changes.
func (w *Watcher) Events() <-chan Event {
	return w.deb.out
}

// Flush delivers pending changes without waiting for them to settle.
func (w *Watcher) Flush() {
	w.deb.flush()
}

// Done is closed once the watcher has stopped.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.deb.stop()
		err = w.fs.Close()
		close(w.done)
	})
	return err
}

func (w *Watcher) rel(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) addTree(ctx context.Context, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.log.Warn(ctx, "failed to walk import folder", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, ok := w.rel(path); ok && rel != "." && w.filter.Ignored(rel) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			if path == w.root {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			w.log.Warn(ctx, "failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			if !errors.Is(err, fsnotify.ErrEventOverflow) {
				w.log.Error(ctx, "watcher error", "error", err)
				continue
			}
			w.log.Warn(ctx, "watcher queue overflowed, events were lost")
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	rel, ok := w.rel(ev.Name)
	if !ok || w.filter.Ignored(rel) {
		return
	}

	info, statErr := os.Stat(ev.Name)
	isDir := statErr == nil && info.IsDir()

	switch {
	case ev.Has(fsnotify.Create):
		if isDir {
			if err := w.addTree(ctx, ev.Name); err != nil {
				w.log.Warn(ctx, "failed to watch new directory", "path", ev.Name, "error", err)
			}
			return
		}
		if w.filter.Included(rel) {
			w.deb.add(rel, OpCreate)
		}
	case ev.Has(fsnotify.Write):
		if !isDir && w.filter.Included(rel) {
			w.deb.add(rel, OpModify)
		}
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		if w.filter.Included(rel) {
			w.deb.add(rel, OpRemove)
		}
	}
}
