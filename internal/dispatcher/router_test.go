package dispatcher

import (
	"errors"
	"testing"
)

func TestRouter_Route(t *testing.T) {
	tests := []struct {
		name    string
		cmd     ExCommand
		handled bool
		action  Action
	}{
		{"wq", ExCommand{Name: "wq"}, true, ActionSaveAndQuit},
		{"wq bang", ExCommand{Name: "wq", Bang: true}, true, ActionSaveAndQuit},
		{"w", ExCommand{Name: "w"}, true, ActionSave},
		{"write", ExCommand{Name: "write"}, true, ActionSave},
		{"wa", ExCommand{Name: "wa"}, true, ActionSave},
		{"wall", ExCommand{Name: "wall"}, true, ActionSave},
		{"q", ExCommand{Name: "q"}, true, ActionQuit},
		{"quit", ExCommand{Name: "quit"}, true, ActionQuit},
		{"qa", ExCommand{Name: "qa"}, true, ActionQuit},
		{"qall", ExCommand{Name: "qall"}, true, ActionQuit},
		{"q bang", ExCommand{Name: "q", Bang: true}, true, ActionDiscard},
		{"qall bang", ExCommand{Name: "qall", Bang: true}, true, ActionDiscard},
		{"run", ExCommand{Name: "run"}, true, ActionRun},
		{"make", ExCommand{Name: "make"}, true, ActionRun},
		{"unknown", ExCommand{Name: "xyz"}, false, ActionNone},
		{"prefix is not a match", ExCommand{Name: "wri"}, false, ActionNone},
		{"case sensitive", ExCommand{Name: "W"}, false, ActionNone},
		{"wqa is not wq", ExCommand{Name: "wqa"}, false, ActionNone},
	}

	r := NewRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Route(tt.cmd)
			if res.Handled != tt.handled {
				t.Errorf("Handled = %v, want %v", res.Handled, tt.handled)
			}
			if res.Action != tt.action {
				t.Errorf("Action = %v, want %v", res.Action, tt.action)
			}
		})
	}
}

func TestRouter_UnknownErr(t *testing.T) {
	r := NewRouter()

	res := r.Route(ExCommand{Name: "xyz"})
	if !errors.Is(res.Err(), ErrUnknownCommand) {
		t.Errorf("Err() = %v, want ErrUnknownCommand", res.Err())
	}
	if r.UnknownCount() != 1 {
		t.Errorf("UnknownCount() = %d, want 1", r.UnknownCount())
	}

	res = r.Route(ExCommand{Name: "w"})
	if res.Err() != nil {
		t.Errorf("Err() = %v, want nil", res.Err())
	}
	if r.Count(ActionSave) != 1 {
		t.Errorf("Count(ActionSave) = %d, want 1", r.Count(ActionSave))
	}
}

func TestRouter_Fallback(t *testing.T) {
	r := NewRouter()
	var seen []string
	r.SetFallback(func(cmd ExCommand) bool {
		seen = append(seen, cmd.Name)
		return cmd.Name == "set"
	})

	if res := r.Route(ExCommand{Name: "set", Argument: "sw=4"}); !res.Handled || res.Action != ActionNone {
		t.Errorf("fallback result = %+v", res)
	}
	if res := r.Route(ExCommand{Name: "nope"}); res.Handled {
		t.Error("expected fallback to decline")
	}
	// Rules win before the fallback is consulted.
	r.Route(ExCommand{Name: "q"})
	if len(seen) != 2 {
		t.Errorf("fallback saw %v, want two commands", seen)
	}
}

func TestRouter_RouteLine(t *testing.T) {
	r := NewRouter()

	res, err := r.RouteLine(":q!")
	if err != nil {
		t.Fatalf("RouteLine error = %v", err)
	}
	if res.Action != ActionDiscard {
		t.Errorf("Action = %v, want ActionDiscard", res.Action)
	}

	if _, err := r.RouteLine("  :  "); !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("err = %v, want ErrEmptyCommand", err)
	}
}

func TestActionString(t *testing.T) {
	if ActionSave.String() != "file.save" {
		t.Errorf("ActionSave.String() = %q", ActionSave.String())
	}
	if Action(42).String() != "action(42)" {
		t.Errorf("Action(42).String() = %q", Action(42).String())
	}
}
