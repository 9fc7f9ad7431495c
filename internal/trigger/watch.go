// Package trigger re-runs a pipeline when watched files change or on a cron
// schedule.
package trigger

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/configura/configura/runtime"
)

// FileWatcher invokes a callback when any of a set of files is written or
// recreated. Bursts of events are debounced into a single call.
type FileWatcher struct {
	paths    []string
	onChange func()
	logger   runtime.Logger
	debounce time.Duration
}

// NewFileWatcher creates a watcher for the given files. onChange is never
// called concurrently with itself.
func NewFileWatcher(paths []string, onChange func(), logger runtime.Logger) *FileWatcher {
	if logger == nil {
		logger = runtime.NopLogger{}
	}
	return &FileWatcher{
		paths:    paths,
		onChange: onChange,
		logger:   logger,
		debounce: 500 * time.Millisecond,
	}
}

// Watch blocks until ctx is cancelled. Editors often replace a file instead
// of writing it in place, so the parent directories are watched and events
// are filtered by path.
func (w *FileWatcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	targets := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range w.paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", p, err)
		}
		targets[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	fire := serial(w.onChange)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, _ := filepath.Abs(event.Name)
			if !targets[abs] {
				continue
			}
			w.logger.Info("file change detected", map[string]any{"path": abs})
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, fire)
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", map[string]any{"error": err.Error()})
		}
	}
}

// serial wraps fn so overlapping calls queue instead of running together.
func serial(fn func()) func() {
	var mu sync.Mutex
	return func() {
		mu.Lock()
		defer mu.Unlock()
		fn()
	}
}
