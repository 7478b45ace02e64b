// Package watch turns file system activity inside a workspace into refresh
// signals. It stands in for "the window regained focus": any write, create,
// remove or rename under the tree asks for a status refresh once things have
// settled for the debounce window.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chmouel/lazycvs/internal/models"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce applies when New is given a non-positive debounce.
const DefaultDebounce = 600 * time.Millisecond

// cvsAdminDir holds cvs bookkeeping; its churn is caused by our own commands.
const cvsAdminDir = "CVS"

// Watcher watches a workspace tree.
type Watcher struct {
	root     string
	debounce time.Duration
	logf     func(string, ...any)

	mu      sync.Mutex
	started bool
	watcher *fsnotify.Watcher
	paths   map[string]struct{}
	timer   *time.Timer
	events  chan struct{}
	done    chan struct{}
}

// New returns a Watcher for root. logf may be nil.
func New(root string, debounce time.Duration, logf func(string, ...any)) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		root:     filepath.Clean(root),
		debounce: debounce,
		logf:     logf,
		events:   make(chan struct{}, 1),
		done:     make(chan struct{}),
		paths:    make(map[string]struct{}),
	}
}

// Start registers the tree and begins delivering events.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher
	w.started = true
	w.addWatchTreeLocked(w.root)
	w.debugf("watch: %s (%d directories)", w.root, len(w.paths))

	go w.run()
	return nil
}

// Stop releases the watcher. Events is not closed.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.started = false
	close(w.done)
	if w.timer != nil {
		w.timer.Stop()
	}
	_ = w.watcher.Close()
}

// Events delivers one value per settled burst of activity. Bursts that
// arrive while a value is pending are coalesced into it.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Watching reports how many directories are registered.
func (w *Watcher) Watching() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.paths)
}

// Run calls refresh for every event until ctx is done. Refresh errors are
// logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, refresh func(context.Context) error) error {
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.events:
			if err := refresh(ctx); err != nil {
				w.debugf("watch: refresh failed: %v", err)
			}
		}
	}
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ignored(event.Name) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				w.maybeWatchNewDir(event.Name)
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.debugf("watch: error: %v", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	if w.timer != nil {
		w.timer.Reset(w.debounce)
		return
	}
	w.timer = time.AfterFunc(w.debounce, w.signal)
}

func (w *Watcher) signal() {
	select {
	case <-w.done:
		return
	default:
	}
	select {
	case w.events <- struct{}{}:
	default:
	}
}

func (w *Watcher) maybeWatchNewDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		w.addWatchTreeLocked(path)
	}
}

func (w *Watcher) addWatchTreeLocked(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != w.root && ignored(path) {
			return filepath.SkipDir
		}
		if _, ok := w.paths[path]; ok {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			w.debugf("watch: add failed for %s: %v", path, err)
			return nil
		}
		w.paths[path] = struct{}{}
		return nil
	})
}

func ignored(path string) bool {
	switch filepath.Base(path) {
	case models.StashDirName, cvsAdminDir:
		return true
	}
	return false
}

func (w *Watcher) debugf(format string, args ...any) {
	if w.logf == nil {
		return
	}
	w.logf(format, args...)
}
