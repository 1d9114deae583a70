package dispatcher

import (
	"fmt"
	"sync"
)

// Action is a session-level action produced by routing an ex-command.
type Action int

const (
	// ActionNone means no action.
	ActionNone Action = iota
	// ActionSave saves the current document (":w", ":wa").
	ActionSave
	// ActionSaveAndQuit saves the current document then quits (":wq").
	ActionSaveAndQuit
	// ActionQuit closes every document through the confirmation flow (":q").
	ActionQuit
	// ActionDiscard drops unsaved changes without asking and ends the
	// session (":q!").
	ActionDiscard
	// ActionRun hands off to the build/run collaborator (":run", ":make").
	ActionRun
)

// String returns the namespaced action name.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionSave:
		return "file.save"
	case ActionSaveAndQuit:
		return "file.saveAndQuit"
	case ActionQuit:
		return "session.quit"
	case ActionDiscard:
		return "session.discard"
	case ActionRun:
		return "integration.run"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Result is the outcome of routing one command.
type Result struct {
	// Handled is false when no rule or fallback accepted the command.
	Handled bool
	// Action is the routed action; ActionNone when not handled or when a
	// fallback handled the command itself.
	Action Action
	// Command is the routed command.
	Command ExCommand
}

// Err returns ErrUnknownCommand, annotated with the command, when the
// command was not handled.
func (r Result) Err() error {
	if r.Handled {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownCommand, r.Command.Name)
}

// Fallback gets a chance at commands no rule matched. It returns true if
// it handled the command.
type Fallback func(cmd ExCommand) bool

// rule maps a set of short/long name pairs to an action.
type rule struct {
	names  [][2]string
	action func(cmd ExCommand) Action
}

func (r rule) matches(cmd ExCommand) bool {
	for _, pair := range r.names {
		if cmd.Matches(pair[0], pair[1]) {
			return true
		}
	}
	return false
}

func fixed(a Action) func(ExCommand) Action {
	return func(ExCommand) Action { return a }
}

// rules is evaluated in order; the first match wins.
var rules = []rule{
	{names: [][2]string{{"wq", "wq"}}, action: fixed(ActionSaveAndQuit)},
	{names: [][2]string{{"w", "write"}, {"wa", "wall"}}, action: fixed(ActionSave)},
	{names: [][2]string{{"q", "quit"}, {"qa", "qall"}}, action: func(cmd ExCommand) Action {
		if cmd.Bang {
			return ActionDiscard
		}
		return ActionQuit
	}},
	{names: [][2]string{{"run", "run"}, {"make", "make"}}, action: fixed(ActionRun)},
}

// Router maps ex-commands to actions.
type Router struct {
	mu       sync.RWMutex
	fallback Fallback
	counts   map[Action]int
	unknown  int
}

// NewRouter creates a new router.
func NewRouter() *Router {
	return &Router{counts: make(map[Action]int)}
}

// SetFallback sets the handler for commands no rule matches.
func (r *Router) SetFallback(fb Fallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = fb
}

// Route maps cmd to at most one action.
func (r *Router) Route(cmd ExCommand) Result {
	if a, ok := Lookup(cmd); ok {
		r.mu.Lock()
		r.counts[a]++
		r.mu.Unlock()
		return Result{Handled: true, Action: a, Command: cmd}
	}

	r.mu.RLock()
	fb := r.fallback
	r.mu.RUnlock()
	if fb != nil && fb(cmd) {
		return Result{Handled: true, Action: ActionNone, Command: cmd}
	}

	r.mu.Lock()
	r.unknown++
	r.mu.Unlock()
	return Result{Command: cmd}
}

// RouteLine parses line and routes it.
func (r *Router) RouteLine(line string) (Result, error) {
	cmd, err := Parse(line)
	if err != nil {
		return Result{}, err
	}
	return r.Route(cmd), nil
}

// Count returns how many commands were routed to a.
func (r *Router) Count(a Action) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counts[a]
}

// UnknownCount returns how many commands were not handled.
func (r *Router) UnknownCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.unknown
}

// Lookup applies the rule table alone, without fallback or bookkeeping.
func Lookup(cmd ExCommand) (Action, bool) {
	for _, rl := range rules {
		if rl.matches(cmd) {
			return rl.action(cmd), true
		}
	}
	return ActionNone, false
}
