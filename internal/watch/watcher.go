// Package watch reports changes below the search root so cached candidate
// lists can be dropped.
package watch

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/altinukshini/scopefind/internal/logger"
	"github.com/altinukshini/scopefind/internal/ui"
)

const (
	// DefaultSettle coalesces the events of one burst into one message.
	DefaultSettle = 150 * time.Millisecond
	// DefaultMaxDirs bounds the number of watched directories.
	DefaultMaxDirs = 8192
)

// Watcher is a recursive fsnotify watcher that skips ignored directories.
type Watcher struct {
	watcher *fsnotify.Watcher
	root    string
	ignore  map[string]struct{}
	settle  time.Duration
	maxDirs int

	mu      sync.Mutex
	watched int
	files   map[string]struct{}

	done chan struct{}
	once sync.Once
}

// New watches root and every non-ignored directory below it.
func New(root string, ignoreDirs []string) (*Watcher, error) {
	if root == "" {
		return nil, errors.New("watch root cannot be empty")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		watcher: fw,
		root:    filepath.Clean(root),
		ignore:  make(map[string]struct{}, len(ignoreDirs)),
		settle:  DefaultSettle,
		maxDirs: DefaultMaxDirs,
		files:   make(map[string]struct{}),
		done:    make(chan struct{}),
	}
	for _, d := range ignoreDirs {
		w.ignore[d] = struct{}{}
	}
	if err := w.addRecursive(w.root); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

// Watched returns the number of directories under watch.
func (w *Watcher) Watched() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watched
}

// IgnoreFile stops changes to one file, such as the log file, from being
// reported.
func (w *Watcher) IgnoreFile(path string) {
	if w == nil || path == "" {
		return
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	w.mu.Lock()
	w.files[filepath.Clean(path)] = struct{}{}
	w.mu.Unlock()
}

// Start returns a command that blocks until the next relevant change and
// reports it as ui.TreeChangedMsg. Call it again after each message. It
// returns nil once the watcher is closed.
func (w *Watcher) Start() tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		for {
			select {
			case <-w.done:
				return nil
			case ev, ok := <-w.watcher.Events:
				if !ok {
					return nil
				}
				if !w.handle(ev) {
					continue
				}
				w.coalesce()
				return ui.TreeChangedMsg{Path: ev.Name}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return nil
				}
				if err != nil {
					logger.Warn("file watcher error", "err", err)
					return ui.TreeChangedMsg{Err: err}
				}
			}
		}
	}
}

// handle reports whether ev changes the candidate list, adding watches for
// new directories on the way.
func (w *Watcher) handle(ev fsnotify.Event) bool {
	if w.ignored(ev.Name) {
		return false
	}
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(ev.Name); err != nil {
				logger.Debug("watch new directory failed", "path", ev.Name, "err", err)
			}
		}
	}
	// Chmod alone changes neither the file list nor the contents.
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}

// coalesce swallows the rest of a burst.
func (w *Watcher) coalesce() {
	timer := time.NewTimer(w.settle)
	defer timer.Stop()
	for {
		select {
		case <-timer.C:
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		}
	}
}

// ignored reports whether path is an ignored file or lies inside an ignored
// directory below root.
func (w *Watcher) ignored(path string) bool {
	w.mu.Lock()
	_, skip := w.files[filepath.Clean(path)]
	w.mu.Unlock()
	if skip {
		return true
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	for dir := filepath.Dir(rel); dir != "." && dir != string(filepath.Separator); dir = filepath.Dir(dir) {
		if _, ok := w.ignore[filepath.Base(dir)]; ok {
			return true
		}
	}
	_, ok := w.ignore[filepath.Base(rel)]
	return ok
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) && path != root {
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root {
			if _, ok := w.ignore[d.Name()]; ok {
				return filepath.SkipDir
			}
		}

		w.mu.Lock()
		full := w.watched >= w.maxDirs
		if !full {
			w.watched++
		}
		w.mu.Unlock()
		if full {
			logger.Warn("watch limit reached, tree changes may go unnoticed", "limit", w.maxDirs)
			return filepath.SkipAll
		}
		return w.watcher.Add(path)
	})
}
