package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher triggers a sync whenever one of the local list files changes.
// It watches the parent directories so editors that replace files on save
// are still picked up.
type Watcher struct {
	syncer   *Syncer
	paths    map[string]struct{}
	debounce time.Duration
	logger   *slog.Logger
}

// NewWatcher creates a watcher for paths. Pass nil for logger to disable logging.
func NewWatcher(syncer *Syncer, paths []string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[filepath.Clean(p)] = struct{}{}
	}
	return &Watcher{syncer: syncer, paths: set, debounce: debounce, logger: logger}
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	dirs := make(map[string]struct{})
	for p := range w.paths {
		dirs[filepath.Dir(p)] = struct{}{}
	}
	for d := range dirs {
		if err := fw.Add(d); err != nil {
			return fmt.Errorf("watching %s: %w", d, err)
		}
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if _, tracked := w.paths[filepath.Clean(event.Name)]; !tracked {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("blocklist watcher error", "error", err)

		case <-timer.C:
			w.logger.Info("local blocklist changed, resyncing")
			if err := w.syncer.SyncOnce(ctx); err != nil {
				w.logger.Warn("blocklist sync incomplete", "error", err)
			}
		}
	}
}
