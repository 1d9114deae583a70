// Package watcher reports changes made to open documents' backing files by
// other programs.
//
// Files are watched through their parent directory so that editors and
// tools which save by writing a temporary file and renaming it over the
// old one are still noticed. Rapid bursts of events on one file are
// coalesced before delivery.
package watcher

import (
	"context"
	"errors"
	"time"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed = errors.New("watcher is closed")
	ErrNotWatching   = errors.New("file is not being watched")
	ErrPathNotExist  = errors.New("path does not exist")
	ErrIsDirectory   = errors.New("path is a directory")
	ErrEventDropped  = errors.New("event channel full, dropping event")
)

// Op is a set of file operations.
type Op uint32

const (
	// OpCreate indicates the file was created or replaced.
	OpCreate Op = 1 << iota
	// OpWrite indicates the file was written to.
	OpWrite
	// OpRemove indicates the file was removed.
	OpRemove
	// OpRename indicates the file was renamed away.
	OpRename
	// OpChmod indicates file permissions were changed.
	OpChmod
)

// String returns a human-readable representation of a single operation.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpWrite:
		return "WRITE"
	case OpRemove:
		return "REMOVE"
	case OpRename:
		return "RENAME"
	case OpChmod:
		return "CHMOD"
	default:
		return "UNKNOWN"
	}
}

// Has returns true if the operation includes the given op.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Changed reports whether op may have altered the file's content.
func (op Op) Changed() bool {
	return op&(OpCreate|OpWrite|OpRemove|OpRename) != 0
}

// Event is a change to a watched file.
type Event struct {
	// Path is the cleaned absolute path of the file.
	Path string

	// Op holds every operation seen since the last delivery.
	Op Op

	// Timestamp is when the last operation was seen.
	Timestamp time.Time
}

// Handler handles file events.
type Handler func(event Event)

// ErrorHandler handles watcher errors.
type ErrorHandler func(err error)

// Config holds watcher configuration options.
type Config struct {
	// DebounceDelay is the quiet period before an event is delivered.
	// Default: 100ms
	DebounceDelay time.Duration

	// BufferSize is the size of the event and error channels.
	// Default: 64
	BufferSize int
}

// DefaultConfig returns a Config with the default values.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
		BufferSize:    64,
	}
}

// Option configures a watcher.
type Option func(*Config)

// WithDebounceDelay sets the debounce delay.
func WithDebounceDelay(d time.Duration) Option {
	return func(c *Config) {
		c.DebounceDelay = d
	}
}

// WithBufferSize sets the channel buffer size.
func WithBufferSize(size int) Option {
	return func(c *Config) {
		c.BufferSize = size
	}
}

// Source is anything that produces file events.
type Source interface {
	Events() <-chan Event
	Errors() <-chan error
}

// Run delivers events from src to onEvent until ctx is cancelled or src is
// closed. Only events that may have changed file content are delivered.
// onError may be nil.
func Run(ctx context.Context, src Source, onEvent Handler, onError ErrorHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-src.Events():
			if !ok {
				return
			}
			if event.Op.Changed() {
				onEvent(event)
			}
		case err, ok := <-src.Errors():
			if !ok {
				return
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}
