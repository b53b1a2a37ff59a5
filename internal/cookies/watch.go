package cookies

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the jar file and invokes onChange when another
// process rewrites it. The manual CAPTCHA flow can be completed in a
// second terminal while an interactive session is waiting; this picks
// up the refreshed cookies without a restart.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce *time.Timer
	mu       sync.Mutex
	onChange func(Jar)
	store    *Store
	done     chan struct{}
}

// NewWatcher watches the store's directory for jar rewrites.
func NewWatcher(store *Store, onChange func(Jar)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(store.Path())
	if _, err := os.Stat(dir); err == nil {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		watcher:  fsw,
		path:     store.Path(),
		onChange: onChange,
		store:    store,
		done:     make(chan struct{}),
	}

	go w.run()

	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// Rewrites land as a rename of a temp file, so watch for
			// creates as well as writes.
			if event.Name == w.path && event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.scheduleReload()
			}

		case <-w.watcher.Errors:
			// Ignore errors, keep watching

		case <-w.done:
			return
		}
	}
}

// scheduleReload debounces rapid rewrites before reloading the jar.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}

	w.debounce = time.AfterFunc(150*time.Millisecond, func() {
		if w.onChange != nil {
			w.onChange(w.store.Load(false))
		}
	})
}

// Stop closes the watcher.
func (w *Watcher) Stop() {
	close(w.done)
	w.watcher.Close()

	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.mu.Unlock()
}
