package buffer

import "fmt"

// Point represents a line and column position.
// Both Line and Column are 0-indexed; Column counts runes.
type Point struct {
	Line   int
	Column int
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Point) Compare(other Point) int {
	switch {
	case p.Line < other.Line:
		return -1
	case p.Line > other.Line:
		return 1
	case p.Column < other.Column:
		return -1
	case p.Column > other.Column:
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Point) Before(other Point) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p Point) After(other Point) bool {
	return p.Compare(other) > 0
}

// MinPoint returns the earlier of two points.
func MinPoint(a, b Point) Point {
	if a.Before(b) {
		return a
	}
	return b
}

// MaxPoint returns the later of two points.
func MaxPoint(a, b Point) Point {
	if a.After(b) {
		return a
	}
	return b
}

// Change describes a mutation of the buffer.
type Change struct {
	// StartLine and EndLine bound the lines touched by the edit (inclusive)
	// in post-edit coordinates.
	StartLine int
	EndLine   int

	// Revision is the buffer revision after the edit.
	Revision uint64
}
