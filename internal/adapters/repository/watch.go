package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/okian/lineup/pkg/logger"
)

// fileWatcher calls reload whenever the watched file is written or
// replaced. The parent directory is watched so atomic renames are seen.
type fileWatcher struct {
	w    *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func watchFile(ctx context.Context, path string, l logger.Logger, reload func() error) (*fileWatcher, error) {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	fw := &fileWatcher{w: w, done: make(chan struct{})}
	fw.wg.Add(1)
	go fw.loop(ctx, path, l, reload)
	return fw, nil
}

func (fw *fileWatcher) loop(ctx context.Context, path string, l logger.Logger, reload func() error) {
	defer fw.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.done:
			return
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}
			// Removal keeps the current state; only new content is loaded.
			if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if err := reload(); err != nil {
				l.Warn(ctx, "reload failed, keeping current state",
					logger.String("path", path),
					logger.Error(err),
				)
				continue
			}
			l.Debug(ctx, "reloaded from disk", logger.String("path", path))
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			l.Warn(ctx, "file watcher error", logger.String("path", path), logger.Error(err))
		}
	}
}

// Close stops the watcher and waits for its goroutine.
func (fw *fileWatcher) Close() error {
	var err error
	fw.once.Do(func() {
		close(fw.done)
		err = fw.w.Close()
		fw.wg.Wait()
	})
	return err
}
