package agent

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// notesDebounce coalesces bursts of writes (an editor's save can emit
// several filesystem events) into a single "notes changed" signal.
const notesDebounce = 300 * time.Millisecond

// NotesWatcher watches the agent-home notes file (chat.txt) for writes so
// the control loop's pause (spec §4.6: "if notes file changed since last
// read, pause until operator presses Enter") is event-driven instead of
// polling every iteration.
type NotesWatcher struct {
	path string

	mu      sync.Mutex
	changed bool
	cancel  func()
}

// NewNotesWatcher returns a watcher for the notes file at path. Call Start
// to begin watching and Stop to release the underlying fsnotify watcher.
func NewNotesWatcher(path string) *NotesWatcher {
	return &NotesWatcher{path: path}
}

// Start begins watching. The parent directory is watched (not the file
// itself) so the watch survives editors that replace the file via
// rename-on-save rather than writing in place.
func (w *NotesWatcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return err
	}

	done := make(chan struct{})
	w.cancel = func() {
		close(done)
		watcher.Close()
	}

	go w.run(watcher, done)
	return nil
}

func (w *NotesWatcher) run(watcher *fsnotify.Watcher, done chan struct{}) {
	var timer *time.Timer
	for {
		select {
		case <-done:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(notesDebounce, w.markChanged)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("agent: notes watcher error: %v", err)
		}
	}
}

func (w *NotesWatcher) markChanged() {
	w.mu.Lock()
	w.changed = true
	w.mu.Unlock()
}

// Consume reports whether the notes file has changed since the last call
// to Consume, resetting the flag.
func (w *NotesWatcher) Consume() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	changed := w.changed
	w.changed = false
	return changed
}

// Stop releases the underlying fsnotify watcher.
func (w *NotesWatcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
}
