// Package watcher provides a debounced file watcher used by watch mode to
// regenerate output when data files, templates, or photo assets change.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeEvent represents a file change event
type ChangeEvent struct {
	Type    EventType
	Path    string
	ModTime time.Time
}

// EventType represents the type of file change
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// FileFilter determines if a file should be watched
type FileFilter func(path string) bool

// ChangeHandler handles a debounced batch of file change events
type ChangeHandler func(events []ChangeEvent) error

// FileWatcher watches for file changes with debouncing so one save that
// touches several files triggers a single regeneration.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	delay    time.Duration
	filters  []FileFilter
	handlers []ChangeHandler
	mutex    sync.RWMutex

	pending []ChangeEvent
	timer   *time.Timer
	pmutex  sync.Mutex
}

// NewFileWatcher creates a new file watcher
func NewFileWatcher(debounceDelay time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &FileWatcher{
		watcher:  watcher,
		delay:    debounceDelay,
		filters:  make([]FileFilter, 0),
		handlers: make([]ChangeHandler, 0),
	}, nil
}

// AddFilter adds a file filter
func (fw *FileWatcher) AddFilter(filter FileFilter) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.filters = append(fw.filters, filter)
}

// AddHandler adds a change handler
func (fw *FileWatcher) AddHandler(handler ChangeHandler) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.handlers = append(fw.handlers, handler)
}

// AddPath adds a single file or directory to watch
func (fw *FileWatcher) AddPath(path string) error {
	return fw.watcher.Add(filepath.Clean(path))
}

// AddRecursive adds a directory and all subdirectories to watch
func (fw *FileWatcher) AddRecursive(root string) error {
	return filepath.Walk(filepath.Clean(root), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fw.watcher.Add(path)
		}
		return nil
	})
}

// Start processes events until the context is cancelled.
func (fw *FileWatcher) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)
		case _, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			// fsnotify errors are transient; the next event resyncs state.
		}
	}
}

// Stop closes the underlying watcher.
func (fw *FileWatcher) Stop() error {
	fw.pmutex.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.pmutex.Unlock()
	return fw.watcher.Close()
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if !fw.accepts(event.Name) {
		return
	}

	change := ChangeEvent{Path: event.Name, ModTime: time.Now()}
	switch {
	case event.Op&fsnotify.Create != 0:
		change.Type = EventTypeCreated
		// New directories need to be added to the watch set.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			fw.watcher.Add(event.Name)
		}
	case event.Op&fsnotify.Write != 0:
		change.Type = EventTypeModified
	case event.Op&fsnotify.Remove != 0:
		change.Type = EventTypeDeleted
	case event.Op&fsnotify.Rename != 0:
		change.Type = EventTypeRenamed
	default:
		return
	}

	fw.pmutex.Lock()
	defer fw.pmutex.Unlock()

	fw.pending = append(fw.pending, change)
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.delay, fw.flush)
}

func (fw *FileWatcher) accepts(path string) bool {
	fw.mutex.RLock()
	defer fw.mutex.RUnlock()

	if len(fw.filters) == 0 {
		return true
	}
	for _, filter := range fw.filters {
		if filter(path) {
			return true
		}
	}
	return false
}

func (fw *FileWatcher) flush() {
	fw.pmutex.Lock()
	events := fw.pending
	fw.pending = nil
	fw.pmutex.Unlock()

	if len(events) == 0 {
		return
	}

	fw.mutex.RLock()
	handlers := make([]ChangeHandler, len(fw.handlers))
	copy(handlers, fw.handlers)
	fw.mutex.RUnlock()

	for _, handler := range handlers {
		// Handler errors are the handler's responsibility to report.
		_ = handler(events)
	}
}
