// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 250 * time.Millisecond

// CatalogWatcher reports changes to a catalog file made by other processes.
// The containing directory is watched so journal and WAL side files count
// as changes too.
type CatalogWatcher struct {
	dir      string
	base     string
	debounce time.Duration
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	changes  chan struct{}
	stopCh   chan struct{}

	mu        sync.Mutex
	timer     *time.Timer
	closeOnce sync.Once
}

// NewCatalogWatcher starts watching the catalog file at path.
func NewCatalogWatcher(path string, debounce time.Duration, logger *zap.Logger) (*CatalogWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &CatalogWatcher{
		dir:      filepath.Dir(abs),
		base:     filepath.Base(abs),
		debounce: debounce,
		logger:   logger,
		watcher:  fsWatcher,
		changes:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
	if err := fsWatcher.Add(w.dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	go w.watchLoop()

	logger.Debug("watching catalog", zap.String("path", abs), zap.Duration("debounce", debounce))
	return w, nil
}

// Changes delivers one signal per settled burst of catalog writes.
func (w *CatalogWatcher) Changes() <-chan struct{} { return w.changes }

// Close stops the watcher. It is safe to call more than once.
func (w *CatalogWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.stopCh)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}

func (w *CatalogWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.isCatalogFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("catalog file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("catalog watcher error", zap.Error(err))

		case <-w.stopCh:
			return
		}
	}
}

func (w *CatalogWatcher) isCatalogFile(name string) bool {
	return strings.HasPrefix(filepath.Base(name), w.base)
}

func (w *CatalogWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.signal)
}

func (w *CatalogWatcher) signal() {
	select {
	case <-w.stopCh:
		return
	default:
	}
	// A pending signal already covers this burst.
	select {
	case w.changes <- struct{}{}:
	default:
	}
}
