package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events editors emit on save.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads the config when its file (or an included file) changes.
// Directories are watched rather than files so atomic-rename saves are seen.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
	onChange func(*LoadResult)
}

// NewWatcher returns a watcher for path. onChange receives every config that
// loads and validates; rejected edits are logged and dropped.
func NewWatcher(path string, logger *slog.Logger, onChange func(*LoadResult)) *Watcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		path:     path,
		debounce: DefaultDebounce,
		logger:   logger,
		onChange: onChange,
	}
}

// SetDebounce overrides DefaultDebounce.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	watched := make(map[string]struct{})
	relevant := make(map[string]struct{})
	track := func(files []string) {
		relevant[filepath.Clean(w.path)] = struct{}{}
		for _, f := range files {
			relevant[filepath.Clean(f)] = struct{}{}
			d := filepath.Dir(f)
			if _, ok := watched[d]; ok {
				continue
			}
			if err := fw.Add(d); err != nil {
				w.logger.Warn("cannot watch config directory", "dir", d, "error", err)
				continue
			}
			watched[d] = struct{}{}
		}
	}

	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	watched[dir] = struct{}{}
	if res, err := LoadFromPath(w.path); err == nil {
		track(res.Files)
	} else {
		track(nil)
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if _, hit := relevant[filepath.Clean(ev.Name)]; !hit {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-timer.C:
			res, err := LoadFromPath(w.path)
			if err != nil {
				w.logger.Warn("config reload rejected, keeping previous bindings", "error", err)
				continue
			}
			track(res.Files)
			w.logger.Info("config reloaded", "path", w.path, "bindings", len(res.Config.PositionBindings()))
			if w.onChange != nil {
				w.onChange(res)
			}
		}
	}
}
