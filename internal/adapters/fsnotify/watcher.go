// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It watches a single file through its parent directory, so editors that save by
// writing a temp file and renaming it over the original keep being followed, and
// debounces rapid events (editors often trigger multiple writes per save).
package fsnotify

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/corey/ackeys/internal/ports"
)

// DefaultDebounce is the quiet period after the last event before onChange fires.
const DefaultDebounce = 50 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw       *fsnotify.Watcher
	debounce time.Duration
	done     chan struct{}
	stopped  bool
	timer    *time.Timer
	mu       sync.Mutex
}

// NewWatcher creates a new file system watcher. A debounce of zero or less
// means DefaultDebounce.
func NewWatcher(debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:       fw,
		debounce: debounce,
		done:     make(chan struct{}),
	}, nil
}

// Watch starts monitoring filePath. onChange is called with the absolute path
// once events for that file have been quiet for the debounce interval. The
// file need not exist yet, but its directory must.
func (w *Watcher) Watch(filePath string, onChange func(filePath string)) error {
	target, err := filepath.Abs(filePath)
	if err != nil {
		return err
	}
	dir := filepath.Dir(target)
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("not a directory: " + dir)
	}
	if err := w.fw.Add(dir); err != nil {
		return err
	}

	fire := func() {
		select {
		case <-w.done:
		default:
			onChange(target)
		}
	}

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
					continue
				}

				// Debounce: restart the quiet period on every event
				w.mu.Lock()
				if w.timer != nil {
					w.timer.Stop()
				}
				if !w.stopped {
					w.timer = time.AfterFunc(w.debounce, fire)
				}
				w.mu.Unlock()

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// Errors are swallowed; fsnotify recovers automatically

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// Stop ends monitoring and releases all resources. A pending debounced
// callback is cancelled. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)
	return w.fw.Close()
}

var _ ports.Watcher = (*Watcher)(nil)
