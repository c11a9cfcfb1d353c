package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/pyslotgen/internal/ctxlog"
	"github.com/specialistvlad/pyslotgen/internal/fsutil"
	"github.com/specialistvlad/pyslotgen/internal/model"
)

// WatchDebounce batches rapid saves into one regeneration.
const WatchDebounce = 200 * time.Millisecond

// Watch runs once, then again whenever a manifest below the configured
// paths changes, until ctx is done. onRun receives the outcome of every run.
func (a *App) Watch(ctx context.Context, onRun func(*Report, error)) error {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := fsutil.FindDirs(a.config.Paths)
	if err != nil {
		return fmt.Errorf("cannot watch: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	logger.Info("Watching for manifest changes.", "dirs", len(dirs))

	onRun(a.Run(ctx))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			logger.Debug("Watcher stopped.")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, model.ManifestExtension) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("Manifest changed.", "path", event.Name, "op", event.Op.String())
			pending = time.After(WatchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error.", "error", err)
		case <-pending:
			pending = nil
			onRun(a.Run(ctx))
		}
	}
}
