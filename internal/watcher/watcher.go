package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/caption-digest/internal/gate"
	"github.com/nguyentantai21042004/caption-digest/internal/logger"
)

type implWatcher struct {
	inputDir     string
	handler      EventHandler
	logger       logger.Logger
	watcher      *fsnotify.Watcher
	slots        *gate.Gate
	settleDelay  time.Duration
	scanExisting bool
	accept       func(path string) bool
	wg           sync.WaitGroup

	mu   sync.Mutex
	seen map[string]bool
}

// Start monitors the input directory and hands each new caption file to the
// handler, at most maxConcurrent at a time.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "File watcher started (max concurrent: %d). Monitoring: %s", w.slots.Permits(), w.inputDir)

	if w.scanExisting {
		if err := w.handleExisting(ctx); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "File watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !w.accept(event.Name) {
				w.logger.Debug(ctx, "Ignoring unsupported file: %s", event.Name)
				continue
			}
			w.logger.Info(ctx, "New input detected: %s", event.Name)

			// Give the writer a moment to finish.
			select {
			case <-time.After(w.settleDelay):
			case <-ctx.Done():
				continue
			}
			if err := w.dispatch(ctx, event.Name); err != nil {
				return err
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *implWatcher) handleExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.inputDir)
	if err != nil {
		return fmt.Errorf("read watch dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !w.accept(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(w.inputDir, e.Name()))
	}
	sort.Strings(files)
	for _, f := range files {
		if err := w.dispatch(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// dispatch runs the handler for path in its own goroutine once a slot frees
// up. Each path is handled at most once per watcher.
func (w *implWatcher) dispatch(ctx context.Context, path string) error {
	w.mu.Lock()
	if w.seen[path] {
		w.mu.Unlock()
		return nil
	}
	w.seen[path] = true
	w.mu.Unlock()

	if err := w.slots.Acquire(ctx); err != nil {
		return err
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.slots.Release()

		if err := w.handler(ctx, path); err != nil {
			w.logger.Error(ctx, "Failed to process %s: %v", path, err)
		}
	}()
	return nil
}
