package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// Terminal wraps a tcell screen with the drawing helpers the editor uses.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
}

// NewTerminal creates a terminal on the process's tty.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

// NewTerminalWithScreen wraps an existing screen, such as a simulation
// screen in tests.
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

// Init puts the terminal in raw mode.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnablePaste()
	return nil
}

// Shutdown restores the terminal.
func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Fini()
}

// Screen returns the underlying screen.
func (t *Terminal) Screen() tcell.Screen {
	return t.screen
}

// Size returns the screen size in cells.
func (t *Terminal) Size() (width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Size()
}

// Clear blanks the screen.
func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Clear()
}

// Show flushes pending drawing.
func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Show()
}

// ShowCursor places the cursor at (x, y).
func (t *Terminal) ShowCursor(x, y int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.ShowCursor(x, y)
}

// HideCursor hides the cursor.
func (t *Terminal) HideCursor() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.HideCursor()
}

// PollEvent blocks for the next event. It returns nil once the screen is
// finalized.
func (t *Terminal) PollEvent() tcell.Event {
	return t.screen.PollEvent()
}

// Post queues ev for PollEvent.
func (t *Terminal) Post(ev tcell.Event) error {
	return t.screen.PostEvent(ev)
}

// Wake unblocks a pending PollEvent.
func (t *Terminal) Wake() {
	_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// FillRow paints row y with blanks in style.
func (t *Terminal) FillRow(y int, style tcell.Style) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, _ := t.screen.Size()
	for x := range w {
		t.screen.SetContent(x, y, ' ', nil, style)
	}
}

// DrawText paints text at (x, y) grapheme by grapheme, clipped at the
// screen edge. It returns the column after the last cell drawn.
func (t *Terminal) DrawText(x, y int, text string, style tcell.Style) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.drawLocked(x, y, text, func(int) tcell.Style { return style })
}

// DrawStyled paints text like DrawText, asking styleAt for the style of
// each rune index.
func (t *Terminal) DrawStyled(x, y int, text string, styleAt func(col int) tcell.Style) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.drawLocked(x, y, text, styleAt)
}

func (t *Terminal) drawLocked(x, y int, text string, styleAt func(col int) tcell.Style) int {
	w, _ := t.screen.Size()
	col := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() && x < w {
		runes := g.Runes()
		width := g.Width()
		if width == 0 {
			width = 1
		}
		mainc, comb := runes[0], runes[1:]
		if mainc == '\t' {
			mainc, comb = ' ', nil
		}
		t.screen.SetContent(x, y, mainc, comb, styleAt(col))
		x += width
		col += len(runes)
	}
	return x
}
