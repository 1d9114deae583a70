package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/argos-ot/wolfedit/internal/app"
	"github.com/argos-ot/wolfedit/internal/config"
	"github.com/argos-ot/wolfedit/internal/engine/buffer"
	"github.com/argos-ot/wolfedit/internal/renderer/selection"
)

type fixture struct {
	screen  tcell.SimulationScreen
	host    *Host
	session *app.Session
	ed      *Editor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	term := NewTerminalWithScreen(screen)
	if err := term.Init(); err != nil {
		t.Fatalf("init simulation screen: %v", err)
	}
	t.Cleanup(term.Shutdown)

	host := NewHost(term)
	session := app.NewSession(app.WithHost(host), app.WithMessages(host))
	ctrl := app.NewController(session,
		app.WithDialog(host),
		app.WithPicker(host),
		app.WithSurface(host),
	)
	ed := NewEditor(host, ctrl, WithEditorOptions(config.EditorConfig{
		ShiftWidth:  4,
		TabStop:     8,
		ExpandTab:   true,
		AutoIndent:  true,
		SmartIndent: true,
	}))
	return &fixture{screen: screen, host: host, session: session, ed: ed}
}

func (f *fixture) newDoc(text string) *buffer.Buffer {
	doc := f.session.NewDocument()
	doc.Buffer().SetText(text)
	return doc.Buffer().(*buffer.Buffer)
}

func keyEvent(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func special(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func (f *fixture) typeText(text string) {
	for _, r := range text {
		f.ed.HandleKey(context.Background(), keyEvent(r))
	}
}

func (f *fixture) press(k tcell.Key) {
	f.ed.HandleKey(context.Background(), special(k))
}

func TestEditor_InsertAutoIndent(t *testing.T) {
	f := newFixture(t)
	buf := f.newDoc("")

	f.typeText("i")
	if f.ed.Mode() != ModeInsert {
		t.Fatalf("mode = %v, want insert", f.ed.Mode())
	}
	f.typeText("if (x) {")
	f.press(tcell.KeyEnter)

	if got := buf.LineText(1); got != "    " {
		t.Errorf("new line = %q, want four spaces", got)
	}
	if c := buf.Cursor(); c != (buffer.Point{Line: 1, Column: 4}) {
		t.Errorf("cursor = %v, want (1:4)", c)
	}

	f.typeText("}")
	if got := buf.Text(); got != "if (x) {\n}" {
		t.Errorf("text = %q", got)
	}
	if c := buf.Cursor(); c != (buffer.Point{Line: 1, Column: 1}) {
		t.Errorf("cursor = %v, want (1:1)", c)
	}

	f.press(tcell.KeyEscape)
	if f.ed.Mode() != ModeNormal {
		t.Errorf("mode = %v, want normal", f.ed.Mode())
	}
}

func TestEditor_OpenLineKeepsIndent(t *testing.T) {
	f := newFixture(t)
	buf := f.newDoc("    x = 1")

	f.typeText("o")
	f.typeText("y")
	if got := buf.LineText(1); got != "    y" {
		t.Errorf("line 1 = %q, want %q", got, "    y")
	}
}

func TestEditor_BackspaceJoinsLines(t *testing.T) {
	f := newFixture(t)
	buf := f.newDoc("ab\ncd")
	buf.SetCursor(buffer.Point{Line: 1, Column: 0})

	f.typeText("i")
	f.press(tcell.KeyBackspace2)
	if got := buf.Text(); got != "abcd" {
		t.Errorf("text = %q, want abcd", got)
	}
}

func TestEditor_BlockSelection(t *testing.T) {
	f := newFixture(t)
	buf := f.newDoc("0123456789\nabcd\nABCDEFGH")
	buf.SetCursor(buffer.Point{Line: 0, Column: 5})

	f.press(tcell.KeyCtrlV)
	if f.ed.Mode() != ModeBlock {
		t.Fatalf("mode = %v, want block", f.ed.Mode())
	}
	f.typeText("jjh")

	want := []selection.Range{
		selection.NewRange(0, 3, 5, selection.IntentBlock),
		selection.NewRange(1, 3, 4, selection.IntentBlock),
		selection.NewRange(2, 3, 5, selection.IntentBlock),
	}
	got := f.ed.Block().BlockRanges()
	if len(got) != len(want) {
		t.Fatalf("got %d ranges, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("range %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	f.ed.Draw()
	_, _, style, _ := f.screen.GetContent(3, tabRows)
	if style != f.ed.theme.Block {
		t.Error("block cell not painted with the block style")
	}

	f.press(tcell.KeyEscape)
	if f.ed.Mode() != ModeNormal || len(f.ed.Block().BlockRanges()) != 0 {
		t.Error("escape should clear the block")
	}
}

func TestEditor_SearchHighlightsLive(t *testing.T) {
	f := newFixture(t)
	buf := f.newDoc("foo bar foo")

	f.typeText("/fo")
	if f.ed.Mode() != ModeSearch {
		t.Fatalf("mode = %v, want search", f.ed.Mode())
	}
	if n := len(f.ed.Search().Ranges()); n != 2 {
		t.Errorf("live matches = %d, want 2", n)
	}

	f.typeText("o")
	f.press(tcell.KeyEnter)
	if f.ed.Search().Pattern() != "foo" {
		t.Errorf("pattern = %q", f.ed.Search().Pattern())
	}
	if c := buf.Cursor(); c != (buffer.Point{Line: 0, Column: 8}) {
		t.Errorf("cursor = %v, want (0:8)", c)
	}

	f.ed.Draw()
	_, _, style, _ := f.screen.GetContent(0, tabRows)
	if style != f.ed.theme.Search {
		t.Error("match not painted with the search style")
	}

	f.typeText("n")
	if c := buf.Cursor(); c != (buffer.Point{Line: 0, Column: 0}) {
		t.Errorf("n should wrap to the first match, cursor = %v", c)
	}

	f.typeText(":noh")
	f.press(tcell.KeyEnter)
	if len(f.ed.Search().Ranges()) != 0 {
		t.Error(":noh should clear the highlight")
	}
}

func TestEditor_SearchCancelRestoresPattern(t *testing.T) {
	f := newFixture(t)
	f.newDoc("abc abc")

	f.typeText("/abc")
	f.press(tcell.KeyEnter)
	f.typeText("/zz")
	f.press(tcell.KeyEscape)

	if f.ed.Search().Pattern() != "abc" || len(f.ed.Search().Ranges()) != 2 {
		t.Errorf("pattern = %q, ranges = %d", f.ed.Search().Pattern(), len(f.ed.Search().Ranges()))
	}
}

func TestEditor_WriteCommand(t *testing.T) {
	f := newFixture(t)
	f.newDoc("hello")
	path := filepath.Join(t.TempDir(), "out.txt")

	f.typeText(":w " + path)
	f.press(tcell.KeyEnter)

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "hello" {
		t.Fatalf("file = %q, %v", data, err)
	}
	if doc := f.session.Current(); doc.IsDirty() || doc.Path() != path {
		t.Errorf("dirty=%v path=%q", doc.IsDirty(), doc.Path())
	}
}

func TestEditor_SetCommand(t *testing.T) {
	f := newFixture(t)
	f.newDoc("")

	f.typeText(":set sw=2 noet")
	f.press(tcell.KeyEnter)

	opts := f.ed.Options()
	if opts.ShiftWidth != 2 || opts.ExpandTab {
		t.Errorf("options = %+v", opts)
	}
}

func TestEditor_QuitAsksAndDiscards(t *testing.T) {
	f := newFixture(t)
	f.newDoc("unsaved")

	if err := f.screen.PostEvent(keyEvent('n')); err != nil {
		t.Fatal(err)
	}
	f.typeText(":q")
	f.press(tcell.KeyEnter)

	if !f.host.Terminated() {
		t.Error("host should terminate after discarding the last document")
	}
	if f.session.Count() != 0 {
		t.Errorf("Count = %d, want 0", f.session.Count())
	}
}

func TestEditor_QuitCancelKeepsDocument(t *testing.T) {
	f := newFixture(t)
	f.newDoc("unsaved")

	if err := f.screen.PostEvent(special(tcell.KeyEscape)); err != nil {
		t.Fatal(err)
	}
	f.typeText(":q")
	f.press(tcell.KeyEnter)

	if f.host.Terminated() || f.session.Count() != 1 {
		t.Errorf("terminated=%v count=%d", f.host.Terminated(), f.session.Count())
	}
}

func TestEditor_CycleDocuments(t *testing.T) {
	f := newFixture(t)
	f.newDoc("a")
	f.newDoc("b")

	f.press(tcell.KeyCtrlN)
	if f.session.CurrentIndex() != 0 {
		t.Errorf("current = %d, want 0 after wrapping", f.session.CurrentIndex())
	}
	f.typeText("gt")
	if f.session.CurrentIndex() != 1 {
		t.Errorf("current = %d, want 1", f.session.CurrentIndex())
	}
}

func TestEditor_Draw(t *testing.T) {
	f := newFixture(t)
	f.newDoc("first line\nsecond")

	f.ed.Draw()

	if got := f.ed.visible(0); !strings.Contains(got, "Untitled*") {
		t.Errorf("tab row = %q", got)
	}
	if got := f.ed.visible(tabRows); got != "first line" {
		t.Errorf("row 1 = %q", got)
	}
	if got := f.ed.visible(tabRows + 2); got != "~" {
		t.Errorf("row 3 = %q, want ~", got)
	}
	_, h := f.screen.Size()
	status := f.ed.visible(h - 1)
	if !strings.Contains(status, "NORMAL") || !strings.Contains(status, "Untitled [+]") {
		t.Errorf("status = %q", status)
	}
}

func TestEditor_RunStopsOnTerminate(t *testing.T) {
	f := newFixture(t)
	f.newDoc("x")

	for _, ev := range []*tcell.EventKey{keyEvent(':'), keyEvent('q'), keyEvent('!'), special(tcell.KeyEnter)} {
		if err := f.screen.PostEvent(ev); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.ed.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.session.Count() != 0 {
		t.Errorf("Count = %d, want 0", f.session.Count())
	}
}

func TestEditor_RunHonoursContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.ed.Run(ctx); err != context.Canceled {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}
