package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay is how long a feed file must stay quiet before re-import.
// Editors and rsync write in bursts; importing mid-write reads a torn
// file.
const settleDelay = 500 * time.Millisecond

// Watcher re-imports feed files when they change on disk.
type Watcher struct {
	dir      string
	importer *Importer
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer // path -> settle timer
}

// NewWatcher creates a watcher over a feed directory.
func NewWatcher(dir string, importer *Importer, logger *slog.Logger) *Watcher {
	return &Watcher{
		dir:      dir,
		importer: importer,
		logger:   logger,
		pending:  make(map[string]*time.Timer),
	}
}

// Start watches the feed directory until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return err
	}

	if w.logger != nil {
		w.logger.Info("watching catalog feed directory", "dir", w.dir)
	}

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			if w.logger != nil {
				w.logger.Warn("feed watcher error", "error", err)
			}
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".json") {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	path := filepath.Clean(event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()

	// Restart the settle timer on every write burst.
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(settleDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if _, err := w.importer.ImportFile(ctx, path); err != nil {
			if w.logger != nil {
				w.logger.Warn("feed re-import failed", "path", path, "error", err)
			}
		}
	})
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}
