// Package highlight computes search-match highlighting.
//
// Patterns use Go's RE2 syntax. Matches never span lines: each line is
// scanned on its own, so `^` and `$` anchor at line boundaries.
package highlight

import (
	"regexp"
	"sync"
	"unicode/utf8"

	"github.com/argos-ot/wolfedit/internal/renderer/selection"
)

// Source is a read-only view of buffer lines.
type Source interface {
	LineCount() int
	LineText(line int) string
}

type stringSource []string

func (s stringSource) LineCount() int          { return len(s) }
func (s stringSource) LineText(line int) string { return s[line] }

// Compile compiles a search pattern. An empty or invalid pattern yields nil.
func Compile(pattern string) *regexp.Regexp {
	if pattern == "" {
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}
	return re
}

// Matches returns every non-overlapping match of pattern in src as
// search-match ranges, in document order. An empty, invalid or unmatched
// pattern yields an empty list.
func Matches(src Source, pattern string) []selection.Range {
	re := Compile(pattern)
	if re == nil {
		return nil
	}
	return Scan(src, re)
}

// MatchString is Matches over a plain string.
func MatchString(text, pattern string) []selection.Range {
	return Matches(splitLines(text), pattern)
}

// Scan runs re over every line of src.
func Scan(src Source, re *regexp.Regexp) []selection.Range {
	var out []selection.Range
	for line := 0; line < src.LineCount(); line++ {
		ranges, _ := scanLine(line, src.LineText(line), re)
		out = append(out, ranges...)
	}
	return out
}

// scanLine walks one line forward. A match moves the scan to its end; a
// zero-length match is not recorded and moves the scan one character. If
// the scan position fails to advance twice in a row the scan stops.
// It returns the recorded ranges and the number of match attempts.
func scanLine(line int, text string, re *regexp.Regexp) ([]selection.Range, int) {
	var out []selection.Range

	f := newFinder(text, re)
	pos, steps, stalls := 0, 0, 0
	for pos < len(text) {
		steps++
		start, end, ok := f.next(pos)
		if !ok {
			break
		}

		next := end
		if start == end {
			_, size := utf8.DecodeRuneInString(text[start:])
			next = start + max(size, 1)
		} else {
			out = append(out, selection.NewRange(line,
				utf8.RuneCountInString(text[:start]),
				utf8.RuneCountInString(text[:end]),
				selection.IntentSearchMatch))
		}

		if next <= pos {
			stalls++
			if stalls >= 2 {
				break
			}
			next = pos + 1
		} else {
			stalls = 0
		}
		pos = next
	}
	return out, steps
}

// finder answers "first match starting at or after pos" for one line.
// Candidates are computed once against the whole line so that anchors and
// word boundaries see their real context.
type finder struct {
	locs [][]int
	i    int
}

func newFinder(text string, re *regexp.Regexp) *finder {
	return &finder{locs: re.FindAllStringIndex(text, -1)}
}

func (f *finder) next(pos int) (start, end int, ok bool) {
	for f.i < len(f.locs) && f.locs[f.i][0] < pos {
		f.i++
	}
	if f.i >= len(f.locs) {
		return 0, 0, false
	}
	loc := f.locs[f.i]
	return loc[0], loc[1], true
}

func splitLines(text string) stringSource {
	var lines stringSource
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	return append(lines, text[start:])
}

// Highlighter keeps the search highlight for one view. The last compiled
// pattern is cached so re-scanning after an edit does not recompile.
type Highlighter struct {
	mu      sync.RWMutex
	pattern string
	re      *regexp.Regexp
	ranges  []selection.Range
}

// New creates an empty highlighter.
func New() *Highlighter {
	return &Highlighter{}
}

// Update sets the pattern and rescans src. It returns the number of matches.
func (h *Highlighter) Update(pattern string, src Source) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if pattern != h.pattern || h.re == nil {
		h.pattern = pattern
		h.re = Compile(pattern)
	}
	h.ranges = nil
	if h.re != nil {
		h.ranges = Scan(src, h.re)
	}
	return len(h.ranges)
}

// Refresh rescans src with the current pattern.
func (h *Highlighter) Refresh(src Source) int {
	h.mu.RLock()
	pattern := h.pattern
	h.mu.RUnlock()
	return h.Update(pattern, src)
}

// Pattern returns the current pattern.
func (h *Highlighter) Pattern() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.pattern
}

// Ranges returns a copy of the current match ranges.
func (h *Highlighter) Ranges() []selection.Range {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]selection.Range, len(h.ranges))
	copy(out, h.ranges)
	return out
}

// Clear drops the pattern and all ranges.
func (h *Highlighter) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pattern = ""
	h.re = nil
	h.ranges = nil
}
