package catalog

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the catalog file into a Store when it changes on disk.
// A rejected reload keeps the previous snapshot; the store is only swapped
// once the new version activates cleanly.
type Watcher struct {
	Path     string
	Store    *Store
	Logger   *zap.Logger
	Debounce time.Duration

	// OnReload, when set, is called after each catalog version activates.
	OnReload func(*Catalog)
}

// Run watches until ctx is cancelled. Events are debounced so editors that
// write in several bursts trigger a single reload.
func (w *Watcher) Run(ctx context.Context) error {
	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	// Watch the directory, not the file: many editors replace the file by
	// rename, which drops a watch registered on the file itself.
	dir := filepath.Dir(w.Path)
	if err := fsw.Add(dir); err != nil {
		return err
	}

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.Path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("catalog watcher error", zap.Error(err))
		case <-pending:
			pending = nil
			w.reload(logger)
		}
	}
}

func (w *Watcher) reload(logger *zap.Logger) {
	c, err := Load(w.Path)
	if err != nil {
		logger.Error("catalog reload rejected, keeping previous version",
			zap.String("path", w.Path),
			zap.String("active_version", w.Store.Snapshot().Version),
			zap.Error(err))
		return
	}
	w.Store.Swap(c)
	if w.OnReload != nil {
		w.OnReload(c)
	}
	logger.Info("catalog reloaded",
		zap.String("path", w.Path),
		zap.String("version", c.Version),
		zap.Int("rules", len(c.Rules)))
}
