package loader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must stay quiet before it is loaded.
const DefaultSettle = 500 * time.Millisecond

// WatcherConfig holds watcher settings.
type WatcherConfig struct {
	Dir    string
	Filter Filter
	Settle time.Duration
	// OnLoad is called after every load attempt. err is nil on success.
	OnLoad func(path string, err error)
}

// Watcher loads libraries as they appear in a directory. A file is loaded
// once no create or write event has been seen for it during Settle, so a
// library still being copied is not opened half-written.
type Watcher struct {
	loader    *Loader
	cfg       WatcherConfig
	fsWatcher *fsnotify.Watcher

	pending map[string]time.Time
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewWatcher creates a watcher feeding l.
func NewWatcher(l *Loader, cfg WatcherConfig) (*Watcher, error) {
	if cfg.Settle <= 0 {
		cfg.Settle = DefaultSettle
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	return &Watcher{
		loader:    l,
		cfg:       cfg,
		fsWatcher: fsw,
		pending:   make(map[string]time.Time),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching. The loop stops when ctx is done or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fsWatcher.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", w.cfg.Dir, err)
	}
	w.wg.Add(1)
	go w.loop(ctx)
	w.loader.logger.Info("Watching for libraries.", "dir", w.cfg.Dir)
	return nil
}

// Close stops the loop and releases the fsnotify watcher.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(max(w.cfg.Settle/2, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if w.cfg.Filter != nil && !w.cfg.Filter(event.Name) {
				continue
			}
			w.pending[event.Name] = time.Now()
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.loader.logger.Warn("Watcher error.", "dir", w.cfg.Dir, "error", err)
		case <-ticker.C:
			w.processPending(ctx)
		}
	}
}

func (w *Watcher) processPending(ctx context.Context) {
	now := time.Now()
	for path, seen := range w.pending {
		if now.Sub(seen) < w.cfg.Settle {
			continue
		}
		delete(w.pending, path)
		err := w.loader.Load(ctx, path)
		if w.cfg.OnLoad != nil {
			w.cfg.OnLoad(path, err)
		}
	}
}
