package buffer

import (
	"errors"
	"strings"
	"sync"
	"unicode/utf8"
)

// Errors returned by buffer operations.
var (
	// ErrLineOutOfRange indicates a line index outside the buffer.
	ErrLineOutOfRange = errors.New("line out of range")

	// ErrRangeInvalid indicates a range whose end precedes its start.
	ErrRangeInvalid = errors.New("invalid range")
)

// Buffer is a thread-safe line-addressed text buffer.
type Buffer struct {
	mu sync.RWMutex

	lines    []string
	revision uint64

	cursor Point
	anchor Point

	nextListener int
	listeners    map[int]func(Change)
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithContent sets the initial buffer content.
func WithContent(s string) Option {
	return func(b *Buffer) {
		b.lines = splitLines(s)
	}
}

// NewBuffer creates a new, empty buffer.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		lines:     []string{""},
		listeners: make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewBufferFromString creates a buffer holding s.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	return NewBuffer(append([]Option{WithContent(s)}, opts...)...)
}

func splitLines(s string) []string {
	return strings.Split(s, "\n")
}

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.Join(b.lines, "\n")
}

// Bytes returns the full buffer content as bytes.
func (b *Buffer) Bytes() []byte {
	return []byte(b.Text())
}

// SetText replaces the whole content.
func (b *Buffer) SetText(s string) {
	b.mu.Lock()
	b.lines = splitLines(s)
	b.cursor = b.clampLocked(b.cursor)
	b.anchor = b.clampLocked(b.anchor)
	c := b.bumpLocked(0, len(b.lines)-1)
	b.mu.Unlock()

	b.notify(c)
}

// IsEmpty returns true if the buffer holds no characters.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines) == 1 && b.lines[0] == ""
}

// Revision returns the number of mutations applied so far.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// LineCount returns the number of lines. An empty buffer has one line.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// LineText returns the text of a line without its terminator.
// Out-of-range lines return the empty string.
func (b *Buffer) LineText(line int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if line < 0 || line >= len(b.lines) {
		return ""
	}
	return b.lines[line]
}

// LineLen returns the length of a line in runes.
func (b *Buffer) LineLen(line int) int {
	return utf8.RuneCountInString(b.LineText(line))
}

// Lines returns a copy of all lines.
func (b *Buffer) Lines() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// SetLine replaces the text of a single line.
func (b *Buffer) SetLine(line int, text string) error {
	b.mu.Lock()
	if line < 0 || line >= len(b.lines) {
		b.mu.Unlock()
		return ErrLineOutOfRange
	}
	if b.lines[line] == text {
		b.mu.Unlock()
		return nil
	}
	b.lines[line] = text
	c := b.bumpLocked(line, line)
	b.mu.Unlock()

	b.notify(c)
	return nil
}

// Insert inserts text at p and returns the position after the inserted text.
func (b *Buffer) Insert(p Point, text string) (Point, error) {
	return b.Replace(p, p, text)
}

// Delete removes the text between start and end.
func (b *Buffer) Delete(start, end Point) error {
	_, err := b.Replace(start, end, "")
	return err
}

// Replace replaces the text between start and end with text and returns the
// position after the inserted text.
func (b *Buffer) Replace(start, end Point, text string) (Point, error) {
	b.mu.Lock()
	if end.Before(start) {
		b.mu.Unlock()
		return Point{}, ErrRangeInvalid
	}
	if start.Line < 0 || end.Line >= len(b.lines) {
		b.mu.Unlock()
		return Point{}, ErrLineOutOfRange
	}
	start = b.clampLocked(start)
	end = b.clampLocked(end)

	head := runePrefix(b.lines[start.Line], start.Column)
	tail := runeSuffix(b.lines[end.Line], end.Column)

	inserted := splitLines(text)
	replacement := make([]string, len(inserted))
	copy(replacement, inserted)
	last := len(replacement) - 1
	after := Point{
		Line:   start.Line + last,
		Column: utf8.RuneCountInString(replacement[last]),
	}
	if last == 0 {
		after.Column += start.Column
	}
	replacement[0] = head + replacement[0]
	replacement[last] += tail

	lines := make([]string, 0, len(b.lines)-(end.Line-start.Line+1)+len(replacement))
	lines = append(lines, b.lines[:start.Line]...)
	lines = append(lines, replacement...)
	lines = append(lines, b.lines[end.Line+1:]...)
	b.lines = lines

	b.cursor = b.clampLocked(b.cursor)
	b.anchor = b.clampLocked(b.anchor)
	c := b.bumpLocked(start.Line, after.Line)
	b.mu.Unlock()

	b.notify(c)
	return after, nil
}

// Cursor returns the primary cursor position.
func (b *Buffer) Cursor() Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cursor
}

// Anchor returns the selection anchor. It equals the cursor when nothing is
// selected.
func (b *Buffer) Anchor() Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.anchor
}

// SetCursor moves the cursor and collapses the selection.
func (b *Buffer) SetCursor(p Point) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursor = b.clampLocked(p)
	b.anchor = b.cursor
}

// SetSelection sets the cursor and anchor independently.
func (b *Buffer) SetSelection(cursor, anchor Point) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursor = b.clampLocked(cursor)
	b.anchor = b.clampLocked(anchor)
}

// OffsetToPoint converts a rune offset into the full text to a point.
func (b *Buffer) OffsetToPoint(offset int) Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if offset <= 0 {
		return Point{}
	}
	for i, line := range b.lines {
		n := utf8.RuneCountInString(line)
		if offset <= n {
			return Point{Line: i, Column: offset}
		}
		offset -= n + 1
		if offset < 0 {
			return Point{Line: i, Column: n}
		}
	}
	last := len(b.lines) - 1
	return Point{Line: last, Column: utf8.RuneCountInString(b.lines[last])}
}

// PointToOffset converts a point to a rune offset into the full text.
func (b *Buffer) PointToOffset(p Point) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p = b.clampLocked(p)
	offset := 0
	for i := 0; i < p.Line; i++ {
		offset += utf8.RuneCountInString(b.lines[i]) + 1
	}
	return offset + p.Column
}

// OnChange registers fn to be called after every mutation. The returned
// function removes the subscription.
func (b *Buffer) OnChange(fn func(Change)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextListener
	b.nextListener++
	b.listeners[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

func (b *Buffer) bumpLocked(startLine, endLine int) Change {
	b.revision++
	return Change{StartLine: startLine, EndLine: endLine, Revision: b.revision}
}

// notify must be called without holding b.mu.
func (b *Buffer) notify(c Change) {
	b.mu.RLock()
	fns := make([]func(Change), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}

func (b *Buffer) clampLocked(p Point) Point {
	if p.Line < 0 {
		return Point{}
	}
	if p.Line >= len(b.lines) {
		last := len(b.lines) - 1
		return Point{Line: last, Column: utf8.RuneCountInString(b.lines[last])}
	}
	if p.Column < 0 {
		p.Column = 0
	}
	if n := utf8.RuneCountInString(b.lines[p.Line]); p.Column > n {
		p.Column = n
	}
	return p
}

func runePrefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func runeSuffix(s string, n int) string {
	return s[len(runePrefix(s, n)):]
}
