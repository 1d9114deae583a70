package backend

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/argos-ot/wolfedit/internal/app"
	"github.com/argos-ot/wolfedit/internal/renderer/statusline"
)

// ErrScreenClosed is returned by a prompt whose screen went away.
var ErrScreenClosed = errors.New("backend: screen closed")

var (
	_ app.ConfirmationDialog = (*Host)(nil)
	_ app.PathPicker         = (*Host)(nil)
	_ app.Host               = (*Host)(nil)
	_ app.MessageSurface     = (*Host)(nil)
)

// Host is the terminal side of the session. Prompts take over the bottom
// row and block until answered.
type Host struct {
	term   *Terminal
	theme  Theme
	status *statusline.Composer

	mu    sync.Mutex
	level app.MessageLevel

	terminated atomic.Bool
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithTheme sets the styles.
func WithTheme(t Theme) HostOption {
	return func(h *Host) {
		h.theme = t
	}
}

// WithComposer sets the status line composer.
func WithComposer(c *statusline.Composer) HostOption {
	return func(h *Host) {
		h.status = c
	}
}

// NewHost creates a host drawing on term.
func NewHost(term *Terminal, opts ...HostOption) *Host {
	h := &Host{
		term:  term,
		theme: DefaultTheme(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.status == nil {
		h.status = statusline.New()
	}
	return h
}

// Terminal returns the terminal the host draws on.
func (h *Host) Terminal() *Terminal {
	return h.term
}

// Composer returns the status line composer.
func (h *Host) Composer() *statusline.Composer {
	return h.status
}

// Terminate ends the key loop.
func (h *Host) Terminate() {
	if h.terminated.CompareAndSwap(false, true) {
		h.term.Wake()
	}
}

// Terminated reports whether Terminate was called.
func (h *Host) Terminated() bool {
	return h.terminated.Load()
}

// ShowMessage puts text on the status line until the next key.
func (h *Host) ShowMessage(level app.MessageLevel, text string) {
	h.mu.Lock()
	h.level = level
	h.mu.Unlock()
	h.status.SetMessage(strings.Join(strings.Fields(text), " "), statusline.NoCursor)
}

// clearMessage drops the status message.
func (h *Host) clearMessage() {
	h.mu.Lock()
	h.level = app.MessageInfo
	h.mu.Unlock()
	h.status.SetMessage("", statusline.NoCursor)
}

func (h *Host) messageStyle() tcell.Style {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch h.level {
	case app.MessageError:
		return h.theme.Error.Reverse(true)
	case app.MessageWarning:
		return h.theme.Warning.Reverse(true)
	default:
		return h.theme.Status
	}
}

// Confirm asks the unsaved-changes question. y saves, n discards, c or
// Escape cancels.
func (h *Host) Confirm(ctx context.Context, p app.Prompt) (app.Choice, error) {
	question := p.Message + " [y]es, [n]o, [c]ancel"
	for {
		if err := ctx.Err(); err != nil {
			return app.ChoiceCancel, err
		}
		h.drawPrompt(question, -1)

		switch ev := h.term.PollEvent().(type) {
		case nil:
			return app.ChoiceCancel, ErrScreenClosed
		case *tcell.EventKey:
			if choice, ok := choiceForKey(ev); ok {
				return choice, nil
			}
		case *tcell.EventResize:
			h.term.Screen().Sync()
		}
	}
}

// choiceForKey maps a key to a dialog answer.
func choiceForKey(ev *tcell.EventKey) (app.Choice, bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return app.ChoiceCancel, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'y', 'Y', 's', 'S':
			return app.ChoiceSave, true
		case 'n', 'N', 'd', 'D':
			return app.ChoiceDiscard, true
		case 'c', 'C':
			return app.ChoiceCancel, true
		}
	}
	return app.ChoiceCancel, false
}

// PickOpenPath reads a path to open on the bottom row.
func (h *Host) PickOpenPath(ctx context.Context) (string, bool) {
	return h.readLine(ctx, "Open: ", "")
}

// PickSavePath reads a path to save to, prefilled with suggested.
func (h *Host) PickSavePath(ctx context.Context, suggested string) (string, bool) {
	return h.readLine(ctx, "Save as: ", suggested)
}

func (h *Host) readLine(ctx context.Context, label, initial string) (string, bool) {
	edit := newLineEdit(initial)
	for {
		if ctx.Err() != nil {
			return "", false
		}
		h.drawPrompt(label+edit.String(), uniseg.StringWidth(label+string(edit.runes[:edit.Cursor()])))

		switch ev := h.term.PollEvent().(type) {
		case nil:
			return "", false
		case *tcell.EventKey:
			switch edit.handle(ev) {
			case lineAccepted:
				path := strings.TrimSpace(edit.String())
				return path, path != ""
			case lineCancelled:
				return "", false
			}
		case *tcell.EventResize:
			h.term.Screen().Sync()
		}
	}
}

// drawPrompt paints text on the bottom row with the cursor at column
// cursor, or hidden when cursor is negative.
func (h *Host) drawPrompt(text string, cursor int) {
	_, height := h.term.Size()
	y := height - 1
	h.term.FillRow(y, h.theme.Prompt)
	h.term.DrawText(0, y, text, h.theme.Prompt)
	if cursor >= 0 {
		h.term.ShowCursor(cursor, y)
	} else {
		h.term.HideCursor()
	}
	h.term.Show()
}
