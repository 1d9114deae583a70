// Package indent computes automatic indentation for newly typed lines.
//
// The engine follows a brace heuristic: a line takes the indentation of the
// line above it, one shift width deeper after a line ending in '{' and one
// shift width shallower when the triggering character is '}'.
package indent

import (
	"sort"
	"strings"
)

// None is the triggering character for a structural reformat that was not
// caused by typing.
const None rune = 0

// Lines is the read side of a text buffer needed to compute indentation.
type Lines interface {
	LineCount() int
	LineText(line int) string
}

// LineWriter is the write side of a text buffer needed to apply a Result.
type LineWriter interface {
	Lines
	SetLine(line int, text string) error
}

// Result maps line indices to their new leading-whitespace width.
// Lines listed in Cleared were whitespace-only and lose all content.
type Result struct {
	Indents map[int]int
	Cleared map[int]bool
}

// Lines returns the affected line indices in ascending order.
func (r Result) Lines() []int {
	out := make([]int, 0, len(r.Indents)+len(r.Cleared))
	for line := range r.Indents {
		out = append(out, line)
	}
	for line := range r.Cleared {
		out = append(out, line)
	}
	sort.Ints(out)
	return out
}

// IsElectric reports whether typing r should trigger re-indentation.
func IsElectric(r rune) bool {
	return r == '{' || r == '}'
}

// LeadingSpaces returns the number of leading ' ' characters of text.
// Tabs are not counted.
func LeadingSpaces(text string) int {
	n := 0
	for n < len(text) && text[n] == ' ' {
		n++
	}
	return n
}

// Region computes the indentation for lines begin..end inclusive.
//
// Lines are processed top to bottom and each line is measured against the
// previous line as it reads after its own re-indentation, so a region
// reformats consistently in one pass.
func Region(src Lines, begin, end int, typed rune, shiftWidth int) Result {
	res := Result{
		Indents: make(map[int]int),
		Cleared: make(map[int]bool),
	}
	if begin < 0 {
		begin = 0
	}
	if count := src.LineCount(); end >= count {
		end = count - 1
	}

	var previous string
	if begin > 0 && begin <= end {
		previous = src.LineText(begin - 1)
	}

	for line := begin; line <= end; line++ {
		text := src.LineText(line)
		if typed == None && strings.TrimSpace(text) == "" {
			res.Cleared[line] = true
			previous = ""
			continue
		}

		indent := LeadingSpaces(previous)
		if typed == '}' {
			indent = max(0, indent-shiftWidth)
		} else if strings.HasSuffix(strings.TrimSpace(previous), "{") {
			indent += shiftWidth
		}
		res.Indents[line] = indent
		previous = Reindent(text, indent)
	}
	return res
}

// Reindent replaces the leading spaces of text with exactly indent spaces.
// Non-whitespace content is untouched.
func Reindent(text string, indent int) string {
	return strings.Repeat(" ", indent) + text[LeadingSpaces(text):]
}

// Apply writes a Result into dst.
func Apply(dst LineWriter, res Result) error {
	for _, line := range res.Lines() {
		if res.Cleared[line] {
			if err := dst.SetLine(line, ""); err != nil {
				return err
			}
			continue
		}
		text := dst.LineText(line)
		if err := dst.SetLine(line, Reindent(text, res.Indents[line])); err != nil {
			return err
		}
	}
	return nil
}
