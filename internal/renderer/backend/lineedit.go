package backend

import (
	"github.com/gdamore/tcell/v2"
)

// lineEdit is the single-line editor behind the command line, the search
// prompt and the path picker.
type lineEdit struct {
	runes []rune
	pos   int
}

func newLineEdit(initial string) *lineEdit {
	r := []rune(initial)
	return &lineEdit{runes: r, pos: len(r)}
}

func (l *lineEdit) String() string {
	return string(l.runes)
}

func (l *lineEdit) Cursor() int {
	return l.pos
}

func (l *lineEdit) Len() int {
	return len(l.runes)
}

func (l *lineEdit) insert(r rune) {
	l.runes = append(l.runes, 0)
	copy(l.runes[l.pos+1:], l.runes[l.pos:])
	l.runes[l.pos] = r
	l.pos++
}

// lineOutcome says how a key left the line editor.
type lineOutcome int

const (
	lineEditing lineOutcome = iota
	lineAccepted
	lineCancelled
)

// handle applies ev. Backspace on an empty line cancels, as vim does on
// the command line.
func (l *lineEdit) handle(ev *tcell.EventKey) lineOutcome {
	switch ev.Key() {
	case tcell.KeyEnter:
		return lineAccepted
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return lineCancelled
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(l.runes) == 0 {
			return lineCancelled
		}
		if l.pos > 0 {
			l.runes = append(l.runes[:l.pos-1], l.runes[l.pos:]...)
			l.pos--
		}
	case tcell.KeyDelete:
		if l.pos < len(l.runes) {
			l.runes = append(l.runes[:l.pos], l.runes[l.pos+1:]...)
		}
	case tcell.KeyLeft:
		l.pos = max(0, l.pos-1)
	case tcell.KeyRight:
		l.pos = min(len(l.runes), l.pos+1)
	case tcell.KeyHome, tcell.KeyCtrlA:
		l.pos = 0
	case tcell.KeyEnd, tcell.KeyCtrlE:
		l.pos = len(l.runes)
	case tcell.KeyCtrlU:
		l.runes = l.runes[l.pos:]
		l.pos = 0
	case tcell.KeyRune:
		l.insert(ev.Rune())
	}
	return lineEditing
}
