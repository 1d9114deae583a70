package app

import (
	"context"

	"github.com/argos-ot/wolfedit/internal/engine/buffer"
)

// TextBuffer is the text storage a Document owns. *buffer.Buffer
// implements it.
type TextBuffer interface {
	Text() string
	SetText(s string)
	Bytes() []byte
	IsEmpty() bool
	LineCount() int
	LineText(line int) string
	SetLine(line int, text string) error
	OnChange(fn func(buffer.Change)) (unsubscribe func())
}

var _ TextBuffer = (*buffer.Buffer)(nil)

// PathPicker asks the user for file paths. ok is false when the user
// cancelled.
type PathPicker interface {
	PickOpenPath(ctx context.Context) (path string, ok bool)
	PickSavePath(ctx context.Context, suggested string) (path string, ok bool)
}

// ConfirmationDialog asks the user what to do with unsaved changes.
type ConfirmationDialog interface {
	Confirm(ctx context.Context, p Prompt) (Choice, error)
}

// Host is the window or terminal the session runs in.
type Host interface {
	// Terminate closes the host once no documents remain or the user
	// forced a quit.
	Terminate()
}

// MessageLevel grades a user-facing message.
type MessageLevel int

const (
	MessageInfo MessageLevel = iota
	MessageWarning
	MessageError
)

func (l MessageLevel) String() string {
	switch l {
	case MessageInfo:
		return "info"
	case MessageWarning:
		return "warning"
	case MessageError:
		return "error"
	default:
		return "unknown"
	}
}

// MessageSurface shows messages to the user.
type MessageSurface interface {
	ShowMessage(level MessageLevel, text string)
}

// Runner runs a project task for :run and :make. command is the typed
// command name and name the optional task argument.
type Runner interface {
	Run(ctx context.Context, dir, command, name string) (string, error)
}

// Choice is the user's answer to a confirmation prompt.
type Choice int

const (
	ChoiceSave Choice = iota
	ChoiceDiscard
	ChoiceCancel
)

func (c Choice) String() string {
	switch c {
	case ChoiceSave:
		return "save"
	case ChoiceDiscard:
		return "discard"
	case ChoiceCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// PromptKind tells a host which collaborator answers a Prompt.
type PromptKind int

const (
	// PromptConfirm is answered with Session.Resolve.
	PromptConfirm PromptKind = iota
	// PromptSavePath is answered with Session.ResolvePath.
	PromptSavePath
)

// Prompt is a question the session is waiting on.
type Prompt struct {
	Kind     PromptKind
	Document DocumentID
	// Name is the document's display name.
	Name string
	// Suggested is a starting path for PromptSavePath.
	Suggested string
	// Message is the text to show.
	Message string
}

// nopHost and nopSurface stand in for missing collaborators.
type nopHost struct{}

func (nopHost) Terminate() {}

type nopSurface struct{}

func (nopSurface) ShowMessage(MessageLevel, string) {}
