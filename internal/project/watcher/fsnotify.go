package watcher

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches individual files using fsnotify.
type FileWatcher struct {
	mu sync.Mutex

	watcher  *fsnotify.Watcher
	debounce *Debouncer

	// files counts Watch calls per file; dirs counts watched files per
	// parent directory.
	files map[string]int
	dirs  map[string]int

	events chan Event
	errors chan error

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// NewFileWatcher creates a watcher and starts its event loop.
func NewFileWatcher(opts ...Option) (*FileWatcher, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &FileWatcher{
		watcher: fsw,
		files:   make(map[string]int),
		dirs:    make(map[string]int),
		events:  make(chan Event, cfg.BufferSize),
		errors:  make(chan error, cfg.BufferSize),
		closeCh: make(chan struct{}),
	}
	w.debounce = NewDebouncer(cfg.DebounceDelay, w.deliver)

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Watch starts watching a file. Watching the same file again only
// increments its reference count.
func (w *FileWatcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrPathNotExist
		}
		return err
	}
	if info.IsDir() {
		return ErrIsDirectory
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}

	if w.files[abs] > 0 {
		w.files[abs]++
		return nil
	}

	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[abs] = 1
	return nil
}

// Unwatch releases one Watch of a file. The parent directory stops being
// watched once no file in it is watched.
func (w *FileWatcher) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}

	n := w.files[abs]
	if n == 0 {
		return ErrNotWatching
	}
	if n > 1 {
		w.files[abs] = n - 1
		return nil
	}
	delete(w.files, abs)

	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		if err := w.watcher.Remove(dir); err != nil {
			return err
		}
	}
	return nil
}

// IsWatching returns true if the file is being watched.
func (w *FileWatcher) IsWatching(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[abs] > 0
}

// WatchedFiles returns the watched files in sorted order.
func (w *FileWatcher) WatchedFiles() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Events returns the debounced event channel.
func (w *FileWatcher) Events() <-chan Event {
	return w.events
}

// Errors returns the error channel.
func (w *FileWatcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher. Events and Errors are closed afterwards.
func (w *FileWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.debounce.Stop()
	w.closedWg.Wait()

	w.mu.Lock()
	close(w.events)
	close(w.errors)
	w.mu.Unlock()

	return w.watcher.Close()
}

func (w *FileWatcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case fsEvent, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(fsEvent)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		}
	}
}

func (w *FileWatcher) handleFSEvent(fsEvent fsnotify.Event) {
	op := convertOp(fsEvent.Op)
	if op == 0 {
		return
	}

	path := filepath.Clean(fsEvent.Name)
	w.mu.Lock()
	watched := w.files[path] > 0
	w.mu.Unlock()
	if !watched {
		return
	}

	w.debounce.Add(path, op)
}

// deliver is called by the debouncer once a file has been quiet.
func (w *FileWatcher) deliver(event Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	select {
	case w.events <- event:
	default:
		w.sendError(ErrEventDropped)
	}
}

func (w *FileWatcher) sendError(err error) {
	select {
	case w.errors <- err:
	default:
	}
}

func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	if fsOp.Has(fsnotify.Chmod) {
		op |= OpChmod
	}
	return op
}
