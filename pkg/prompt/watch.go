package prompt

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a template directory whenever files under it change.
type Watcher struct {
	dir      string
	debounce time.Duration
	opts     []LoadOption
	logger   *zap.Logger
}

// NewWatcher returns a Watcher for dir. Bursts of file events closer
// together than debounce trigger a single reload.
func NewWatcher(dir string, debounce time.Duration, opts ...LoadOption) *Watcher {
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		opts:     opts,
		logger:   applyLoadOptions(opts).logger,
	}
}

// Run loads the directory once, then again after every change, passing each
// result to onLoad. onLoad is always called from the Run goroutine. Run
// returns nil when ctx is done.
func (w *Watcher) Run(ctx context.Context, onLoad func(*Library, error)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := addDirsRecursive(fw, w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	onLoad(FromDirectory(w.dir, w.opts...))

	reload := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			select {
			case reload <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addDirsRecursive(fw, event.Name)
				}
			}
			w.logger.Debug("template change detected",
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()),
			)
			schedule()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("template watch error", zap.Error(err))
		case <-reload:
			onLoad(FromDirectory(w.dir, w.opts...))
		}
	}
}

func addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}
