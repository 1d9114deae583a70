package watcher

import (
	"sync"
	"time"
)

// Debouncer coalesces operations per path and calls its handler once a
// path has been quiet for the delay.
type Debouncer struct {
	delay   time.Duration
	handler Handler

	mu      sync.Mutex
	pending map[string]*pendingEvent
	stopped bool
}

type pendingEvent struct {
	event Event
	timer *time.Timer
}

// NewDebouncer creates a debouncer. A non-positive delay uses 100ms.
func NewDebouncer(delay time.Duration, handler Handler) *Debouncer {
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	return &Debouncer{
		delay:   delay,
		handler: handler,
		pending: make(map[string]*pendingEvent),
	}
}

// Add records op on path and restarts the path's timer.
func (d *Debouncer) Add(path string, op Op) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	now := time.Now()
	if p, ok := d.pending[path]; ok {
		p.event.Op |= op
		p.event.Timestamp = now
		p.timer.Reset(d.delay)
		return
	}

	p := &pendingEvent{event: Event{Path: path, Op: op, Timestamp: now}}
	p.timer = time.AfterFunc(d.delay, func() {
		d.fire(path)
	})
	d.pending[path] = p
}

func (d *Debouncer) fire(path string) {
	d.mu.Lock()
	p, ok := d.pending[path]
	if !ok || d.stopped {
		d.mu.Unlock()
		return
	}
	delete(d.pending, path)
	event := p.event
	d.mu.Unlock()

	d.handler(event)
}

// Flush fires every pending event immediately.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	paths := make([]string, 0, len(d.pending))
	for path, p := range d.pending {
		p.timer.Stop()
		paths = append(paths, path)
	}
	d.mu.Unlock()

	for _, path := range paths {
		d.fire(path)
	}
}

// Pending returns the number of paths waiting to fire.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop cancels every pending event. Later Adds are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for path, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, path)
	}
}
