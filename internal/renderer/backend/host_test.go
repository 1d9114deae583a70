package backend

import (
	"context"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/argos-ot/wolfedit/internal/app"
)

func TestChoiceForKey(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want app.Choice
		ok   bool
	}{
		{"yes", keyEvent('y'), app.ChoiceSave, true},
		{"save", keyEvent('S'), app.ChoiceSave, true},
		{"no", keyEvent('n'), app.ChoiceDiscard, true},
		{"cancel", keyEvent('c'), app.ChoiceCancel, true},
		{"escape", special(tcell.KeyEscape), app.ChoiceCancel, true},
		{"other rune", keyEvent('x'), app.ChoiceCancel, false},
		{"other key", special(tcell.KeyTab), app.ChoiceCancel, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := choiceForKey(tt.ev)
			if got != tt.want || ok != tt.ok {
				t.Errorf("choiceForKey = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestHost_ConfirmReadsKeys(t *testing.T) {
	f := newFixture(t)
	for _, ev := range []*tcell.EventKey{keyEvent('x'), keyEvent('y')} {
		if err := f.screen.PostEvent(ev); err != nil {
			t.Fatal(err)
		}
	}

	choice, err := f.host.Confirm(context.Background(), app.Prompt{Message: "Save?"})
	if err != nil || choice != app.ChoiceSave {
		t.Errorf("Confirm = %v, %v; want save", choice, err)
	}
}

func TestHost_ConfirmCancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	choice, err := f.host.Confirm(ctx, app.Prompt{Message: "Save?"})
	if err == nil || choice != app.ChoiceCancel {
		t.Errorf("Confirm = %v, %v", choice, err)
	}
}

func TestHost_PickSavePath(t *testing.T) {
	f := newFixture(t)
	events := []*tcell.EventKey{
		special(tcell.KeyBackspace2),
		special(tcell.KeyBackspace2),
		special(tcell.KeyBackspace2),
		keyEvent('m'),
		keyEvent('d'),
		special(tcell.KeyEnter),
	}
	for _, ev := range events {
		if err := f.screen.PostEvent(ev); err != nil {
			t.Fatal(err)
		}
	}

	path, ok := f.host.PickSavePath(context.Background(), "notes.txt")
	if !ok || path != "notes.md" {
		t.Errorf("PickSavePath = %q, %v; want notes.md", path, ok)
	}
}

func TestHost_PickOpenPathCancel(t *testing.T) {
	f := newFixture(t)
	if err := f.screen.PostEvent(special(tcell.KeyEscape)); err != nil {
		t.Fatal(err)
	}
	if path, ok := f.host.PickOpenPath(context.Background()); ok || path != "" {
		t.Errorf("PickOpenPath = %q, %v", path, ok)
	}
}

func TestHost_ShowMessage(t *testing.T) {
	f := newFixture(t)
	f.host.ShowMessage(app.MessageError, "first\n\nsecond")

	if got := f.host.Composer().Message(); got != "first second" {
		t.Errorf("message = %q", got)
	}
	if f.host.messageStyle() != f.host.theme.Error.Reverse(true) {
		t.Error("error message should use the error style")
	}

	f.host.clearMessage()
	if got := f.host.Composer().Message(); got != "" {
		t.Errorf("message after clear = %q", got)
	}
}

func TestHost_TerminateOnce(t *testing.T) {
	f := newFixture(t)
	f.host.Terminate()
	f.host.Terminate()
	if !f.host.Terminated() {
		t.Error("Terminated = false")
	}
}

func TestLineEdit(t *testing.T) {
	l := newLineEdit("abc")
	steps := []struct {
		ev   *tcell.EventKey
		want lineOutcome
	}{
		{special(tcell.KeyLeft), lineEditing},
		{keyEvent('X'), lineEditing},
		{special(tcell.KeyHome), lineEditing},
		{special(tcell.KeyDelete), lineEditing},
		{special(tcell.KeyEnd), lineEditing},
		{special(tcell.KeyBackspace2), lineEditing},
		{special(tcell.KeyEnter), lineAccepted},
	}
	for i, s := range steps {
		if got := l.handle(s.ev); got != s.want {
			t.Fatalf("step %d outcome = %v, want %v", i, got, s.want)
		}
	}
	if l.String() != "bX" {
		t.Errorf("text = %q, want bX", l.String())
	}

	empty := newLineEdit("")
	if got := empty.handle(special(tcell.KeyBackspace2)); got != lineCancelled {
		t.Errorf("backspace on empty line = %v, want cancelled", got)
	}
}
