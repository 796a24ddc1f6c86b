package catalog

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"vizsel/internal/logging"
)

// Watcher reloads a catalog override file when it changes on disk.
// The catalog keeps serving the previous table while a broken edit is on disk;
// a reload only replaces the table after the file parses cleanly.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	catalog     *Catalog
	path        string
	debounce    time.Duration
	lastReload  map[string]time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	reloadCount int
}

// NewWatcher creates a watcher that keeps cat in sync with the file at path.
func NewWatcher(cat *Catalog, path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:    fw,
		catalog:    cat,
		path:       path,
		debounce:   500 * time.Millisecond, // editors fire several writes per save
		lastReload: make(map[string]time.Time),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; events are handled in a goroutine.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// Watch the directory, not the file: editors replace files on save.
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	logging.Catalog("Watching catalog file: %s", w.path)

	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	defer close(w.doneCh)
	target := filepath.Clean(w.path)
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if w.debounced(event.Name) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryCatalog).Warn("Catalog watcher error: %v", err)
		}
	}
}

func (w *Watcher) debounced(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if last, ok := w.lastReload[name]; ok && time.Since(last) < w.debounce {
		return true
	}
	w.lastReload[name] = time.Now()
	return false
}

func (w *Watcher) reload() {
	loaded, err := LoadFile(w.path)
	if err != nil {
		logging.Get(logging.CategoryCatalog).Error("Catalog reload failed, keeping previous table: %v", err)
		return
	}
	w.catalog.Replace(loaded.scenarios)
	w.mu.Lock()
	w.reloadCount++
	w.mu.Unlock()
	logging.Catalog("Catalog reloaded from %s", w.path)
}

// ReloadCount returns how many successful reloads have happened.
func (w *Watcher) ReloadCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloadCount
}

// RunWatch loads the override file into cat, keeps it in sync with edits on
// disk, and blocks until ctx is cancelled. The initial load is strict: a file
// that does not parse fails the call rather than silently serving the
// previous table.
func RunWatch(ctx context.Context, cat *Catalog, path string) error {
	loaded, err := LoadFile(path)
	if err != nil {
		return err
	}
	cat.Replace(loaded.scenarios)

	w, err := NewWatcher(cat, path)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		_ = w.Close()
		return err
	}

	<-ctx.Done()
	logging.Catalog("Catalog watch stopping after %d reloads", w.ReloadCount())
	return w.Close()
}

// Close stops the watcher and waits for the event loop to exit.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	err := w.watcher.Close()
	<-w.doneCh
	return err
}
