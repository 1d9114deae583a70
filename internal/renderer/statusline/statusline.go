// Package statusline composes the one-line status display shown under each
// document: the transient command-line echo on the left and the persistent
// mode/status text on the right.
package statusline

import (
	"strings"
	"sync"

	"github.com/rivo/uniseg"
)

// DefaultWidth is the nominal width of the status line in cells.
const DefaultWidth = 80

// CursorMarker is spliced into the message at the command-line cursor.
const CursorMarker = '❙'

// NoCursor means the message carries no cursor marker.
const NoCursor = -1

// Composer merges the message and status strings.
type Composer struct {
	mu sync.RWMutex

	width  int
	marker rune

	message string
	status  string
	info    string
}

// Option configures a Composer.
type Option func(*Composer)

// WithWidth sets the nominal width.
func WithWidth(width int) Option {
	return func(c *Composer) {
		c.width = width
	}
}

// WithMarker sets the cursor marker rune.
func WithMarker(marker rune) Option {
	return func(c *Composer) {
		c.marker = marker
	}
}

// New creates a composer.
func New(opts ...Option) *Composer {
	c := &Composer{
		width:  DefaultWidth,
		marker: CursorMarker,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetMessage sets the transient message. If cursor is not NoCursor the
// marker is inserted at that rune offset; offsets past the end append it.
func (c *Composer) SetMessage(contents string, cursor int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.message = spliceMarker(contents, cursor, c.marker)
}

// SetStatus sets the persistent status text.
func (c *Composer) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}

// SetInfo records extra information the host shows out of band.
func (c *Composer) SetInfo(info string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.info = info
}

// Info returns the last extra information and clears it.
func (c *Composer) Info() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	info := c.info
	c.info = ""
	return info
}

// Message returns the message with the marker spliced in.
func (c *Composer) Message() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.message
}

// Status returns the persistent status text.
func (c *Composer) Status() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Line returns message + padding + status. The result is never truncated.
func (c *Composer) Line() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Compose(c.message, c.status, c.width)
}

// Compose joins message and status padded to width display cells.
func Compose(message, status string, width int) string {
	slack := max(0, width-uniseg.StringWidth(message)-uniseg.StringWidth(status))
	return message + strings.Repeat(" ", slack) + status
}

func spliceMarker(contents string, cursor int, marker rune) string {
	if cursor < 0 {
		return contents
	}
	runes := []rune(contents)
	cursor = min(cursor, len(runes))

	var b strings.Builder
	b.Grow(len(contents) + 4)
	b.WriteString(string(runes[:cursor]))
	b.WriteRune(marker)
	b.WriteString(string(runes[cursor:]))
	return b.String()
}
