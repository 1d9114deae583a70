package backend

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/argos-ot/wolfedit/internal/renderer/selection"
)

// Layout: row 0 lists the open documents, the last row is the status line
// and everything between shows the current document.
const (
	tabRows    = 1
	statusRows = 1
)

// Draw repaints the whole screen.
func (e *Editor) Draw() {
	e.term.Clear()
	width, height := e.term.Size()
	textRows := height - tabRows - statusRows

	e.drawTabs(width)

	doc, buf, ok := e.current()
	if ok && textRows > 0 {
		e.scroll(buf.Cursor().Line, textRows)
		ranges := selection.Compose(e.block.ClearRanges(), e.search.Ranges(), e.block.BlockRanges())
		for row := range textRows {
			line := e.top + row
			if line >= buf.LineCount() {
				e.term.DrawText(0, tabRows+row, "~", e.theme.Tabs)
				continue
			}
			e.drawLine(tabRows+row, line, buf.LineText(line), ranges)
		}
	}

	status := e.host.Composer()
	if ok {
		status.SetStatus(e.statusText(doc, buf))
	} else {
		status.SetStatus(e.statusText(nil, nil))
	}
	style := e.host.messageStyle()
	if e.line != nil {
		prefix := ":"
		if e.mode == ModeSearch {
			prefix = "/"
		}
		status.SetMessage(prefix+e.line.String(), 1+e.line.Cursor())
		style = e.theme.Status
	}
	y := height - 1
	e.term.FillRow(y, style)
	e.term.DrawText(0, y, status.Line(), style)

	switch {
	case e.line != nil:
		e.term.HideCursor()
	case ok:
		c := buf.Cursor()
		prefix := []rune(buf.LineText(c.Line))
		x := uniseg.StringWidth(string(prefix[:min(c.Column, len(prefix))]))
		e.term.ShowCursor(x, tabRows+c.Line-e.top)
	default:
		e.term.HideCursor()
	}
	e.term.Show()
}

// scroll keeps line inside the visible window.
func (e *Editor) scroll(line, rows int) {
	switch {
	case line < e.top:
		e.top = line
	case line >= e.top+rows:
		e.top = line - rows + 1
	}
}

func (e *Editor) drawTabs(width int) {
	e.term.FillRow(0, e.theme.Tabs)
	x := 0
	current := e.session.CurrentIndex()
	for i, doc := range e.session.Documents() {
		if x >= width {
			break
		}
		name := " " + doc.Name()
		if doc.IsDirty() {
			name += "*"
		}
		name += " "
		style := e.theme.Tabs
		if i == current {
			style = e.theme.Active
		}
		x = e.term.DrawText(x, 0, name, style)
	}
}

// drawLine paints one buffer line. Later ranges win, so a block range
// paints over a search match.
func (e *Editor) drawLine(y, line int, text string, ranges []selection.Range) {
	var spans []selection.Range
	for _, r := range ranges {
		if r.Intent == selection.IntentClear {
			continue
		}
		if r.Start.Line <= line && line <= r.End.Line {
			spans = append(spans, r)
		}
	}
	if len(spans) == 0 {
		e.term.DrawText(0, y, text, e.theme.Text)
		return
	}

	e.term.DrawStyled(0, y, text, func(col int) tcell.Style {
		style := e.theme.Text
		for _, r := range spans {
			if r.Contains(selection.Position{Line: line, Column: col}) {
				style = e.styleFor(r.Intent)
			}
		}
		return style
	})
}

func (e *Editor) styleFor(intent selection.Intent) tcell.Style {
	switch intent {
	case selection.IntentSearchMatch:
		return e.theme.Search
	case selection.IntentBlock:
		return e.theme.Block
	default:
		return e.theme.Text
	}
}

// visible reports the text on screen row y, for tests and debugging.
func (e *Editor) visible(y int) string {
	width, _ := e.term.Size()
	var b strings.Builder
	for x := range width {
		mainc, comb, _, _ := e.term.Screen().GetContent(x, y)
		if mainc == 0 {
			mainc = ' '
		}
		b.WriteRune(mainc)
		for _, r := range comb {
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " ")
}
