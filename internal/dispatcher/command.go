package dispatcher

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ExCommand is a parsed command-line entry.
type ExCommand struct {
	// Name is the command name without the leading ':' or trailing '!'.
	Name string
	// Bang is set when the name was followed by '!'.
	Bang bool
	// Argument is the trimmed remainder of the line, if any.
	Argument string
}

// Matches reports whether the command name equals short or long exactly.
func (c ExCommand) Matches(short, long string) bool {
	return c.Name == short || c.Name == long
}

// HasArgument reports whether an argument was given.
func (c ExCommand) HasArgument() bool {
	return c.Argument != ""
}

// String renders the command the way it would be typed.
func (c ExCommand) String() string {
	var b strings.Builder
	b.WriteByte(':')
	b.WriteString(c.Name)
	if c.Bang {
		b.WriteByte('!')
	}
	if c.Argument != "" {
		b.WriteByte(' ')
		b.WriteString(c.Argument)
	}
	return b.String()
}

// Parse parses a typed command line such as ":wq", "q!" or "w out.txt".
//
// The name is the leading run of letters; a command starting with any other
// character uses that single character as its name. A '!' directly after
// the name sets Bang.
func Parse(line string) (ExCommand, error) {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, ":")
	line = strings.TrimLeft(line, " \t")
	if line == "" {
		return ExCommand{}, ErrEmptyCommand
	}

	end := strings.IndexFunc(line, func(r rune) bool { return !unicode.IsLetter(r) })
	switch {
	case end < 0:
		end = len(line)
	case end == 0:
		_, end = utf8.DecodeRuneInString(line)
	}

	cmd := ExCommand{Name: line[:end]}
	rest := line[end:]
	if strings.HasPrefix(rest, "!") {
		cmd.Bang = true
		rest = rest[1:]
	}
	cmd.Argument = strings.TrimSpace(rest)
	return cmd, nil
}
