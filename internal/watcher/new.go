package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/caption-digest/internal/caption"
	"github.com/nguyentantai21042004/caption-digest/internal/gate"
	"github.com/nguyentantai21042004/caption-digest/internal/logger"
)

const defaultSettleDelay = 500 * time.Millisecond

// Option customizes a Watcher.
type Option func(*implWatcher)

// WithSettleDelay sets how long to wait after a file appears before reading it.
func WithSettleDelay(d time.Duration) Option {
	return func(w *implWatcher) {
		w.settleDelay = d
	}
}

// WithExisting makes Start handle caption files already in the directory.
func WithExisting() Option {
	return func(w *implWatcher) {
		w.scanExisting = true
	}
}

// WithFilter replaces the default caption-file filter.
func WithFilter(accept func(path string) bool) Option {
	return func(w *implWatcher) {
		w.accept = accept
	}
}

// New creates a new Watcher instance with concurrency control
func New(inputDir string, handler EventHandler, log logger.Logger, maxConcurrent int, opts ...Option) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(inputDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if log == nil {
		log = logger.Discard()
	}

	w := &implWatcher{
		inputDir:    inputDir,
		handler:     handler,
		logger:      log,
		watcher:     watcher,
		slots:       gate.New(maxConcurrent),
		settleDelay: defaultSettleDelay,
		seen:        make(map[string]bool),
		accept:      caption.IsCaptionFile,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}
