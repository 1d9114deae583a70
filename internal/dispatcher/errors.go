package dispatcher

import "errors"

// Dispatcher errors.
var (
	// ErrUnknownCommand indicates no rule handled the command.
	ErrUnknownCommand = errors.New("dispatcher: not an editor command")

	// ErrEmptyCommand indicates a blank command line.
	ErrEmptyCommand = errors.New("dispatcher: empty command")
)
