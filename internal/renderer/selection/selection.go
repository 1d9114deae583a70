// Package selection provides selection ranges and block (rectangular)
// selection projection.
package selection

import (
	"sync"

	"github.com/argos-ot/wolfedit/internal/engine/buffer"
)

// Position is a (line, column) position in buffer coordinates.
type Position = buffer.Point

// Intent tells the renderer how a range should be painted.
type Intent uint8

const (
	// IntentClear repaints a range with the default colors. It is emitted
	// ahead of block ranges to wipe the linear selection underneath.
	IntentClear Intent = iota
	// IntentSearchMatch marks a search match.
	IntentSearchMatch
	// IntentBlock marks one line of a block selection.
	IntentBlock
)

// String returns the intent name.
func (i Intent) String() string {
	switch i {
	case IntentClear:
		return "clear"
	case IntentSearchMatch:
		return "search-match"
	case IntentBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Range is a selection range in buffer coordinates.
type Range struct {
	Start  Position
	End    Position
	Intent Intent
}

// NewRange creates a range on a single line.
func NewRange(line, startCol, endCol int, intent Intent) Range {
	return Range{
		Start:  Position{Line: line, Column: startCol},
		End:    Position{Line: line, Column: endCol},
		Intent: intent,
	}
}

// IsEmpty returns true if the range selects nothing.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Normalize returns a range where Start is never after End.
func (r Range) Normalize() Range {
	if r.Start.After(r.End) {
		return Range{Start: r.End, End: r.Start, Intent: r.Intent}
	}
	return r
}

// Contains returns true if the position lies within the range.
// Block ranges are single-line, so every intent is tested as a stream.
func (r Range) Contains(p Position) bool {
	if r.IsEmpty() {
		return false
	}
	norm := r.Normalize()
	return !p.Before(norm.Start) && p.Before(norm.End)
}

// LineRange returns the first and last line of the range.
func (r Range) LineRange() (startLine, endLine int) {
	norm := r.Normalize()
	return norm.Start.Line, norm.End.Line
}

// LineLengths reports the length of a line in columns.
type LineLengths interface {
	LineLen(line int) int
}

// Projection is a block selection projected from a linear one.
type Projection struct {
	// Clear covers the full extent of the linear selection.
	Clear Range
	// Blocks holds one range per line, top to bottom.
	Blocks []Range
}

// Project computes the rectangular block spanned by cursor and anchor.
//
// Every line from the earlier position's line to the later position's line
// (inclusive) gets a range from min(from, len) to min(to, len) where from is
// the cursor column and to the anchor column.
func Project(cursor, anchor Position, lines LineLengths) Projection {
	lo := buffer.MinPoint(cursor, anchor)
	hi := buffer.MaxPoint(cursor, anchor)

	from, to := cursor.Column, anchor.Column
	if from > to {
		from, to = to, from
	}

	p := Projection{
		Clear:  Range{Start: lo, End: hi, Intent: IntentClear},
		Blocks: make([]Range, 0, hi.Line-lo.Line+1),
	}
	for line := lo.Line; line <= hi.Line; line++ {
		n := lines.LineLen(line)
		p.Blocks = append(p.Blocks, NewRange(line, min(from, n), min(to, n), IntentBlock))
	}
	return p
}

// Block holds the block-selection state of one view.
//
// Ranges are always recomputed from scratch: every Set discards the
// previous projection before storing the new one.
type Block struct {
	mu      sync.RWMutex
	enabled bool
	current Projection
}

// NewBlock creates a disabled block selection.
func NewBlock() *Block {
	return &Block{}
}

// Set enables block mode and projects cursor and anchor.
func (b *Block) Set(cursor, anchor Position, lines LineLengths) Projection {
	p := Project(cursor, anchor, lines)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = true
	b.current = p
	return p
}

// Update re-projects after a cursor or selection change. It does nothing
// when block mode is off.
func (b *Block) Update(cursor, anchor Position, lines LineLengths) bool {
	b.mu.RLock()
	enabled := b.enabled
	b.mu.RUnlock()
	if !enabled {
		return false
	}
	b.Set(cursor, anchor, lines)
	return true
}

// Disable leaves block mode and drops every range.
func (b *Block) Disable() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = false
	b.current = Projection{}
}

// Enabled reports whether block mode is on. While it is on the renderer
// hides the native selection colors.
func (b *Block) Enabled() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.enabled
}

// HasSelection reports whether any block range is present.
func (b *Block) HasSelection() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.current.Blocks) > 0
}

// ClearRanges returns the clear range, if any.
func (b *Block) ClearRanges() []Range {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.enabled {
		return nil
	}
	return []Range{b.current.Clear}
}

// BlockRanges returns a copy of the block ranges.
func (b *Block) BlockRanges() []Range {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Range, len(b.current.Blocks))
	copy(out, b.current.Blocks)
	return out
}

// Compose concatenates range groups in paint order: clear ranges first,
// then search matches, then block ranges.
func Compose(clear, search, block []Range) []Range {
	out := make([]Range, 0, len(clear)+len(search)+len(block))
	out = append(out, clear...)
	out = append(out, search...)
	out = append(out, block...)
	return out
}
