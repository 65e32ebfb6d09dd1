// Package watch re-runs the library pipeline on item folders that change
// after the initial batch.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long an item folder must stay quiet before it is
// processed.
const DefaultDebounce = 5 * time.Second

// maxDepth limits watches to item folders and their season folders.
const maxDepth = 2

// Handler processes one settled item folder.
type Handler func(ctx context.Context, item string)

// Watcher maps filesystem events below Root onto the item folder they
// belong to and calls the handler once the item has been quiet for Debounce.
type Watcher struct {
	root     string
	debounce time.Duration
	handler  Handler
	fsw      *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
	active  map[string]bool
	stopped bool
	running sync.WaitGroup
}

// New creates a watcher for root and starts listening for events right
// away. A non-positive debounce uses DefaultDebounce.
func New(root string, debounce time.Duration, handler Handler) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}
	w := &Watcher{
		root:     filepath.Clean(root),
		debounce: debounce,
		handler:  handler,
		fsw:      fsw,
		pending:  make(map[string]*time.Timer),
		active:   make(map[string]bool),
	}
	if err := w.addTree(w.root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run watches until ctx is done, then waits for running handlers.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			w.stop()
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				w.stop()
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				w.stop()
				return fmt.Errorf("watcher errors channel closed")
			}
			w.stop()
			return fmt.Errorf("watch %s: %w", w.root, err)
		}
	}
}

// Item returns the item folder containing path, or "" when path is the root
// itself or lies outside it.
func (w *Watcher) Item(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	first, _, _ := strings.Cut(rel, string(filepath.Separator))
	if strings.HasPrefix(first, ".") {
		return ""
	}
	return filepath.Join(w.root, first)
}

func (w *Watcher) depth(path string) int {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// addTree watches path and its non-hidden subdirectories down to maxDepth.
func (w *Watcher) addTree(path string) error {
	return filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if p == path {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("unable to watch %s: %w", p, err)
		}
		if w.depth(p) >= maxDepth {
			return filepath.SkipDir
		}
		return nil
	})
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	item := w.Item(event.Name)
	if item == "" {
		return
	}
	if event.Has(fsnotify.Create) && w.depth(event.Name) <= maxDepth {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addTree(event.Name)
		}
	}
	w.schedule(ctx, item)
}

// schedule (re)starts the quiet period of item.
func (w *Watcher) schedule(ctx context.Context, item string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.arm(ctx, item)
}

// arm must be called with mu held.
func (w *Watcher) arm(ctx context.Context, item string) {
	if w.stopped {
		return
	}
	if timer, ok := w.pending[item]; ok {
		timer.Stop()
	}
	w.pending[item] = time.AfterFunc(w.debounce, func() { w.fire(ctx, item) })
}

func (w *Watcher) fire(ctx context.Context, item string) {
	w.mu.Lock()
	delete(w.pending, item)
	if w.stopped {
		w.mu.Unlock()
		return
	}
	if w.active[item] {
		// One run per item at a time; look again once it is done.
		w.arm(ctx, item)
		w.mu.Unlock()
		return
	}
	w.active[item] = true
	w.running.Add(1)
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.active, item)
		w.mu.Unlock()
		w.running.Done()
	}()

	if ctx.Err() != nil {
		return
	}
	// Renamed or removed folders show up again under their new name.
	if info, err := os.Stat(item); err != nil || !info.IsDir() {
		return
	}
	w.handler(ctx, item)
}

func (w *Watcher) stop() {
	w.mu.Lock()
	w.stopped = true
	for item, timer := range w.pending {
		timer.Stop()
		delete(w.pending, item)
	}
	w.mu.Unlock()
	w.running.Wait()
}

// Pending reports how many items are waiting out their quiet period.
func (w *Watcher) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}
