package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/argos-ot/wolfedit/internal/app"
	"github.com/argos-ot/wolfedit/internal/config"
	"github.com/argos-ot/wolfedit/internal/config/startup"
	"github.com/argos-ot/wolfedit/internal/dispatcher"
	"github.com/argos-ot/wolfedit/internal/engine/buffer"
	"github.com/argos-ot/wolfedit/internal/engine/indent"
	"github.com/argos-ot/wolfedit/internal/renderer/highlight"
	"github.com/argos-ot/wolfedit/internal/renderer/selection"
)

// Mode is the modal state of the key loop.
type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeBlock
	ModeCommand
	ModeSearch
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeInsert:
		return "INSERT"
	case ModeBlock:
		return "VISUAL BLOCK"
	case ModeCommand:
		return "COMMAND"
	case ModeSearch:
		return "SEARCH"
	default:
		return "UNKNOWN"
	}
}

// editBuffer is what the key loop needs from a document's buffer beyond
// app.TextBuffer. *buffer.Buffer provides it.
type editBuffer interface {
	LineCount() int
	LineText(line int) string
	LineLen(line int) int
	SetLine(line int, text string) error
	Replace(start, end buffer.Point, text string) (buffer.Point, error)
	Cursor() buffer.Point
	Anchor() buffer.Point
	SetCursor(p buffer.Point)
	SetSelection(cursor, anchor buffer.Point)
}

var _ editBuffer = (*buffer.Buffer)(nil)

// Editor is the terminal key loop over a controller's session.
type Editor struct {
	host    *Host
	term    *Terminal
	ctrl    *app.Controller
	session *app.Session
	logger  *app.Logger
	theme   Theme

	options config.EditorConfig
	interp  *startup.Interpreter

	mode    Mode
	line    *lineEdit
	search  *highlight.Highlighter
	block   *selection.Block
	prevPat string
	pending rune

	viewing app.DocumentID
	top     int
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithEditorLogger sets the key loop logger.
func WithEditorLogger(l *app.Logger) EditorOption {
	return func(e *Editor) {
		e.logger = l
	}
}

// WithEditorOptions overrides the editing options taken from the
// controller's configuration.
func WithEditorOptions(opts config.EditorConfig) EditorOption {
	return func(e *Editor) {
		e.options = opts
	}
}

// NewEditor creates a key loop drawing through host.
func NewEditor(host *Host, ctrl *app.Controller, opts ...EditorOption) *Editor {
	e := &Editor{
		host:    host,
		term:    host.Terminal(),
		ctrl:    ctrl,
		session: ctrl.Session(),
		logger:  app.NullLogger,
		theme:   host.theme,
		options: ctrl.Config().Editor,
		search:  highlight.New(),
		block:   selection.NewBlock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithComponent("editor")
	e.interp = startup.New(&e.options)
	return e
}

// Mode returns the current mode.
func (e *Editor) Mode() Mode {
	return e.mode
}

// Options returns the live editing options.
func (e *Editor) Options() config.EditorConfig {
	return e.options
}

// Search returns the search highlighter.
func (e *Editor) Search() *highlight.Highlighter {
	return e.search
}

// Block returns the block selection state.
func (e *Editor) Block() *selection.Block {
	return e.block
}

// Run draws and handles events until the host terminates, the screen
// closes or ctx is done.
func (e *Editor) Run(ctx context.Context) error {
	for !e.host.Terminated() {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.Draw()

		switch ev := e.term.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventKey:
			e.HandleKey(ctx, ev)
		case *tcell.EventPaste:
		case *tcell.EventResize:
			e.term.Screen().Sync()
		}
	}
	return nil
}

// current returns the current document and its editable buffer.
func (e *Editor) current() (*app.Document, editBuffer, bool) {
	doc := e.session.Current()
	if doc == nil {
		return nil, nil, false
	}
	buf, ok := doc.Buffer().(editBuffer)
	if !ok {
		return doc, nil, false
	}
	if doc.ID() != e.viewing {
		e.viewing = doc.ID()
		e.top = 0
		e.block.Disable()
		if e.mode == ModeBlock {
			e.mode = ModeNormal
		}
		e.search.Refresh(buf)
	}
	return doc, buf, true
}

// HandleKey processes one key event.
func (e *Editor) HandleKey(ctx context.Context, ev *tcell.EventKey) {
	if e.mode != ModeCommand && e.mode != ModeSearch {
		e.host.clearMessage()
	}

	switch e.mode {
	case ModeInsert:
		e.insertKey(ev)
	case ModeCommand:
		e.commandKey(ctx, ev)
	case ModeSearch:
		e.searchKey(ev)
	default:
		e.normalKey(ctx, ev)
	}
}

func (e *Editor) normalKey(ctx context.Context, ev *tcell.EventKey) {
	pending := e.pending
	e.pending = 0

	switch ev.Key() {
	case tcell.KeyEscape:
		e.leaveBlock()
		return
	case tcell.KeyCtrlV:
		e.toggleBlock()
		return
	case tcell.KeyCtrlC:
		e.ctrl.Cancel()
		return
	case tcell.KeyCtrlN:
		e.cycle(1)
		return
	case tcell.KeyCtrlP:
		e.cycle(-1)
		return
	case tcell.KeyCtrlS:
		_ = e.ctrl.Save(ctx)
		return
	case tcell.KeyRune:
	default:
		e.moveKey(ev)
		return
	}

	r := ev.Rune()
	if pending == 'g' {
		switch r {
		case 't':
			e.cycle(1)
		case 'T':
			e.cycle(-1)
		case 'g':
			e.moveTo(buffer.Point{})
		}
		return
	}

	switch r {
	case ':':
		e.enterLine(ModeCommand)
	case '/':
		e.prevPat = e.search.Pattern()
		e.enterLine(ModeSearch)
	case 'n':
		e.nextMatch()
	case 'g':
		e.pending = 'g'
	case 'v':
		e.toggleBlock()
	case 'i':
		e.enterInsert(0)
	case 'a':
		e.enterInsert(1)
	case 'A':
		if _, buf, ok := e.current(); ok {
			c := buf.Cursor()
			e.moveTo(buffer.Point{Line: c.Line, Column: buf.LineLen(c.Line)})
			e.mode = ModeInsert
		}
	case 'o':
		e.openLine(true)
	case 'O':
		e.openLine(false)
	case 'x':
		e.deleteUnderCursor()
	default:
		e.moveKey(ev)
	}
}

// moveKey handles cursor motion shared by normal and block mode.
func (e *Editor) moveKey(ev *tcell.EventKey) {
	_, buf, ok := e.current()
	if !ok {
		return
	}
	c := buf.Cursor()

	switch ev.Key() {
	case tcell.KeyLeft:
		c.Column--
	case tcell.KeyRight:
		c.Column++
	case tcell.KeyUp:
		c.Line--
	case tcell.KeyDown:
		c.Line++
	case tcell.KeyHome:
		c.Column = 0
	case tcell.KeyEnd:
		c.Column = buf.LineLen(c.Line)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'h':
			c.Column--
		case 'l':
			c.Column++
		case 'k':
			c.Line--
		case 'j':
			c.Line++
		case '0':
			c.Column = 0
		case '$':
			c.Column = buf.LineLen(c.Line)
		case 'G':
			c.Line = buf.LineCount() - 1
		default:
			return
		}
	default:
		return
	}
	e.moveTo(c)
}

// moveTo places the cursor, keeping the block anchor when a block is
// active. Every move in block mode reprojects the block from scratch.
func (e *Editor) moveTo(p buffer.Point) {
	_, buf, ok := e.current()
	if !ok {
		return
	}
	p.Line = max(0, min(p.Line, buf.LineCount()-1))
	p.Column = max(0, min(p.Column, buf.LineLen(p.Line)))

	if e.mode == ModeBlock {
		buf.SetSelection(p, buf.Anchor())
		e.block.Update(buf.Cursor(), buf.Anchor(), buf)
		return
	}
	buf.SetCursor(p)
}

func (e *Editor) toggleBlock() {
	if e.mode == ModeBlock {
		e.leaveBlock()
		return
	}
	_, buf, ok := e.current()
	if !ok {
		return
	}
	c := buf.Cursor()
	buf.SetSelection(c, c)
	e.block.Set(c, c, buf)
	e.mode = ModeBlock
}

func (e *Editor) leaveBlock() {
	if e.mode != ModeBlock {
		return
	}
	e.block.Disable()
	e.mode = ModeNormal
	if _, buf, ok := e.current(); ok {
		buf.SetCursor(buf.Cursor())
	}
}

func (e *Editor) cycle(delta int) {
	n := e.session.Count()
	if n == 0 {
		return
	}
	i := (e.session.CurrentIndex() + delta + n) % n
	_ = e.session.SetCurrent(i)
}

func (e *Editor) enterLine(m Mode) {
	e.leaveBlock()
	e.mode = m
	e.line = newLineEdit("")
}

func (e *Editor) enterInsert(offset int) {
	e.leaveBlock()
	if _, buf, ok := e.current(); ok {
		c := buf.Cursor()
		c.Column += offset
		e.moveTo(c)
		e.mode = ModeInsert
	}
}

func (e *Editor) commandKey(ctx context.Context, ev *tcell.EventKey) {
	switch e.line.handle(ev) {
	case lineAccepted:
		text := e.line.String()
		e.mode = ModeNormal
		e.line = nil
		e.host.clearMessage()
		e.execute(ctx, text)
	case lineCancelled:
		e.mode = ModeNormal
		e.line = nil
		e.host.clearMessage()
	}
}

// execute runs a typed command line. Commands the router does not know
// about but the terminal front end does are handled here.
func (e *Editor) execute(ctx context.Context, text string) {
	cmd, err := dispatcher.Parse(text)
	if err != nil {
		return
	}
	if _, ok := dispatcher.Lookup(cmd); !ok && e.local(ctx, cmd, text) {
		return
	}
	if err := e.ctrl.ExecuteLine(ctx, text); err != nil {
		e.logger.Debug("%s: %v", cmd, err)
	}
}

func (e *Editor) local(ctx context.Context, cmd dispatcher.ExCommand, text string) bool {
	switch {
	case cmd.Matches("e", "edit"):
		_ = e.ctrl.Open(ctx, cmd.Argument)
	case cmd.Matches("ene", "enew"):
		e.ctrl.New()
	case cmd.Matches("bn", "bnext"):
		e.cycle(1)
	case cmd.Matches("bp", "bprevious"):
		e.cycle(-1)
	case cmd.Matches("bd", "bdelete"), cmd.Matches("clo", "close"):
		_ = e.ctrl.CloseCurrent(ctx)
	case cmd.Matches("noh", "nohlsearch"):
		e.search.Clear()
	case cmd.Matches("ab", "about"):
		e.ctrl.About()
	case cmd.Matches("se", "set"):
		if err := e.interp.Exec(text); err != nil {
			e.host.ShowMessage(app.MessageError, err.Error())
		}
	default:
		return false
	}
	return true
}

func (e *Editor) searchKey(ev *tcell.EventKey) {
	_, buf, ok := e.current()
	outcome := e.line.handle(ev)

	switch outcome {
	case lineAccepted:
		e.mode = ModeNormal
		e.line = nil
		e.host.clearMessage()
		if ok {
			e.search.Update(e.search.Pattern(), buf)
			if len(e.search.Ranges()) == 0 {
				e.host.ShowMessage(app.MessageWarning, "Pattern not found")
				return
			}
			e.nextMatch()
		}
		return
	case lineCancelled:
		e.mode = ModeNormal
		e.line = nil
		e.host.clearMessage()
		if ok {
			e.search.Update(e.prevPat, buf)
		}
		return
	}
	if ok {
		e.search.Update(e.line.String(), buf)
	}
}

// nextMatch moves to the first match after the cursor, wrapping around.
func (e *Editor) nextMatch() {
	_, buf, ok := e.current()
	if !ok {
		return
	}
	ranges := e.search.Ranges()
	if len(ranges) == 0 {
		return
	}
	c := buf.Cursor()
	for _, r := range ranges {
		if r.Start.After(c) {
			e.moveTo(r.Start)
			return
		}
	}
	e.moveTo(ranges[0].Start)
}

func (e *Editor) insertKey(ev *tcell.EventKey) {
	_, buf, ok := e.current()
	if !ok {
		e.mode = ModeNormal
		return
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		e.mode = ModeNormal
		c := buf.Cursor()
		c.Column--
		e.moveTo(c)
		return
	case tcell.KeyEnter:
		e.newline(buf)
	case tcell.KeyTab:
		if e.options.ExpandTab {
			sw := max(1, e.options.ShiftWidth)
			col := buf.Cursor().Column
			e.insertText(buf, strings.Repeat(" ", sw-col%sw))
		} else {
			e.insertText(buf, "\t")
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		e.backspace(buf)
	case tcell.KeyDelete:
		e.deleteUnderCursor()
	case tcell.KeyRune:
		r := ev.Rune()
		e.insertText(buf, string(r))
		if e.options.SmartIndent && indent.IsElectric(r) {
			e.reindent(buf, buf.Cursor().Line, r)
		}
	default:
		e.moveKey(ev)
		return
	}
	e.refreshSearch(buf)
}

func (e *Editor) insertText(buf editBuffer, text string) {
	c := buf.Cursor()
	after, err := buf.Replace(c, c, text)
	if err != nil {
		e.logger.Error("insert at %s: %v", c, err)
		return
	}
	buf.SetCursor(after)
}

// newline splits the line at the cursor and indents the new line.
func (e *Editor) newline(buf editBuffer) {
	e.insertText(buf, "\n")
	if e.options.AutoIndent {
		e.reindent(buf, buf.Cursor().Line, '\n')
	}
}

// openLine starts a new line below (or above) the cursor line in insert
// mode.
func (e *Editor) openLine(below bool) {
	e.leaveBlock()
	_, buf, ok := e.current()
	if !ok {
		return
	}
	line := buf.Cursor().Line
	if below {
		buf.SetCursor(buffer.Point{Line: line, Column: buf.LineLen(line)})
		e.newline(buf)
	} else {
		at := buffer.Point{Line: line}
		if _, err := buf.Replace(at, at, "\n"); err != nil {
			return
		}
		buf.SetCursor(at)
		if e.options.AutoIndent {
			e.reindent(buf, line, '\n')
		}
	}
	e.mode = ModeInsert
	e.refreshSearch(buf)
}

// reindent applies the indent engine to line and keeps the cursor on the
// same character.
func (e *Editor) reindent(buf editBuffer, line int, typed rune) {
	sw := e.options.ShiftWidth
	if !e.options.SmartIndent {
		sw = 0
	}
	before := indent.LeadingSpaces(buf.LineText(line))
	res := indent.Region(buf, line, line, typed, sw)
	if err := indent.Apply(buf, res); err != nil {
		e.logger.Error("indent line %d: %v", line, err)
		return
	}
	after := indent.LeadingSpaces(buf.LineText(line))

	c := buf.Cursor()
	if c.Line == line {
		c.Column = max(after, c.Column+after-before)
		buf.SetCursor(c)
	}
}

func (e *Editor) backspace(buf editBuffer) {
	c := buf.Cursor()
	var start buffer.Point
	switch {
	case c.Column > 0:
		start = buffer.Point{Line: c.Line, Column: c.Column - 1}
	case c.Line > 0:
		start = buffer.Point{Line: c.Line - 1, Column: buf.LineLen(c.Line - 1)}
	default:
		return
	}
	if _, err := buf.Replace(start, c, ""); err != nil {
		return
	}
	buf.SetCursor(start)
}

func (e *Editor) deleteUnderCursor() {
	_, buf, ok := e.current()
	if !ok {
		return
	}
	c := buf.Cursor()
	if c.Column >= buf.LineLen(c.Line) {
		return
	}
	if _, err := buf.Replace(c, buffer.Point{Line: c.Line, Column: c.Column + 1}, ""); err != nil {
		return
	}
	buf.SetCursor(c)
	e.refreshSearch(buf)
}

func (e *Editor) refreshSearch(buf editBuffer) {
	if e.search.Pattern() != "" {
		e.search.Refresh(buf)
	}
}

// statusText is the right-hand side of the status line.
func (e *Editor) statusText(doc *app.Document, buf editBuffer) string {
	if doc == nil {
		return "no document"
	}
	name := doc.Name()
	if doc.IsDirty() {
		name += " [+]"
	}
	if doc.IsStale() {
		name += " [changed on disk]"
	}
	c := buf.Cursor()
	return fmt.Sprintf("%s  %s  %d:%d", e.mode, name, c.Line+1, c.Column+1)
}
