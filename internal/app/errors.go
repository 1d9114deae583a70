// Package app holds the editing session: open documents, the close and
// quit sequences with their confirmation prompts, and the controller that
// drives them for a host.
package app

import (
	"errors"
	"fmt"
)

// Session errors.
var (
	// ErrIO marks a file that could not be read or written.
	ErrIO = errors.New("i/o error")

	// ErrUserCancelled reports that the user cancelled a prompt. It is an
	// outcome, not a failure.
	ErrUserCancelled = errors.New("cancelled by user")

	// ErrSequencePending indicates a close, quit or save sequence is
	// waiting for an answer.
	ErrSequencePending = errors.New("another operation is waiting for an answer")

	// ErrNoPendingPrompt indicates an answer arrived with nothing to answer.
	ErrNoPendingPrompt = errors.New("no pending prompt")

	// ErrNoActiveDocument indicates no document is currently active.
	ErrNoActiveDocument = errors.New("no active document")

	// ErrDocumentNotFound indicates a document was not found.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidIndex indicates a document index out of range.
	ErrInvalidIndex = errors.New("invalid document index")

	// ErrNoPath indicates a save of a document that has no file path.
	ErrNoPath = errors.New("document has no file path")

	// ErrNoRunner indicates :run was used with no runner configured.
	ErrNoRunner = errors.New("no runner configured")
)

// OperationError is an error from one document operation.
type OperationError struct {
	Op      string // Operation name (e.g., "save", "open")
	Target  string // File path or document name
	Context string // Additional context
	Err     error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{
		Op:     op,
		Target: target,
		Err:    err,
	}
}

// ioError wraps a file system error so that both ErrIO and err match.
func ioError(op, target string, err error) error {
	return NewOperationError(op, target, fmt.Errorf("%w: %w", ErrIO, err))
}

// WithContext adds context to the error.
// Safe to call on nil receiver - returns nil.
func (e *OperationError) WithContext(ctx string) *OperationError {
	if e == nil {
		return nil
	}
	e.Context = ctx
	return e
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}

	msg := e.Op
	if e.Target != "" {
		msg += " " + e.Target
	}
	if e.Context != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Context)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ComponentError is an error from a collaborator such as the task runner
// or the file watcher.
type ComponentError struct {
	Component string // Component name (e.g., "runner", "watcher")
	Action    string // Action being performed
	Err       error  // Underlying error
}

// NewComponentError creates a new ComponentError.
func NewComponentError(component, action string, err error) *ComponentError {
	return &ComponentError{
		Component: component,
		Action:    action,
		Err:       err,
	}
}

func (e *ComponentError) Error() string {
	if e == nil {
		return ""
	}

	if e.Action != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Component, e.Action, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Component, e.Action)
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Component, e.Err)
	}

	return e.Component
}

func (e *ComponentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsCancelled reports whether err is a user cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrUserCancelled)
}
