package startup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/argos-ot/wolfedit/internal/config"
	"github.com/argos-ot/wolfedit/internal/dispatcher"
)

// MaxSourceDepth bounds nested "source" commands.
const MaxSourceDepth = 8

// Errors returned while running a script.
var (
	ErrUnknownOption  = errors.New("unknown option")
	ErrInvalidValue   = errors.New("invalid option value")
	ErrUnknownCommand = errors.New("unsupported startup command")
	ErrSourceDepth    = errors.New("source nesting too deep")
)

// DefaultScript returns the script used when the user has none. The first
// two lines configure key handling, the rest the editing options.
func DefaultScript() []string {
	return []string{
		"set nopasskeys",
		"set nopasscontrolkey",
		"set expandtab",
		"set shiftwidth=8",
		"set tabstop=16",
		"set autoindent",
		"set smartindent",
	}
}

// Kind identifies a script form.
type Kind int

const (
	// KindNone means no user script was found.
	KindNone Kind = iota
	// KindVim is a vimrc-style command file.
	KindVim
	// KindLua is an init.lua file.
	KindLua
)

func (k Kind) String() string {
	switch k {
	case KindVim:
		return "vim"
	case KindLua:
		return "lua"
	default:
		return "none"
	}
}

// Locate finds the user's startup script. init.lua in the editor's config
// directory wins over ~/.vimrc (_vimrc on Windows).
func Locate() (string, Kind) {
	configDir, _ := os.UserConfigDir()
	home, _ := os.UserHomeDir()
	return locate(configDir, home, runtime.GOOS, fileExists)
}

func locate(configDir, home, goos string, exists func(string) bool) (string, Kind) {
	if configDir != "" {
		p := filepath.Join(configDir, "wolfedit", "init.lua")
		if exists(p) {
			return p, KindLua
		}
	}
	if home != "" {
		name := ".vimrc"
		if goos == "windows" {
			name = "_vimrc"
		}
		p := filepath.Join(home, name)
		if exists(p) {
			return p, KindVim
		}
	}
	return "", KindNone
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

type optionKind int

const (
	boolOption optionKind = iota
	intOption
)

type option struct {
	name  string
	kind  optionKind
	short string
}

// options lists the supported options by long name.
var options = []option{
	{name: "shiftwidth", short: "sw", kind: intOption},
	{name: "tabstop", short: "ts", kind: intOption},
	{name: "expandtab", short: "et", kind: boolOption},
	{name: "autoindent", short: "ai", kind: boolOption},
	{name: "smartindent", short: "si", kind: boolOption},
	{name: "passkeys", kind: boolOption},
	{name: "passcontrolkey", kind: boolOption},
}

func lookupOption(name string) (option, bool) {
	for _, o := range options {
		if name == o.name || (o.short != "" && name == o.short) {
			return o, true
		}
	}
	return option{}, false
}

// Interpreter applies startup commands to an editor configuration.
type Interpreter struct {
	editor   *config.EditorConfig
	extras   map[string]bool
	readFile func(string) ([]byte, error)
	depth    int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithReadFile replaces os.ReadFile for "source" and RunFile.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(in *Interpreter) {
		in.readFile = fn
	}
}

// New returns an interpreter that writes options into editor.
func New(editor *config.EditorConfig, opts ...Option) *Interpreter {
	in := &Interpreter{
		editor:   editor,
		extras:   make(map[string]bool),
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Extra reports the value of a key handling option such as "passkeys".
func (in *Interpreter) Extra(name string) bool {
	return in.extras[name]
}

// Run executes lines in order. Every line is attempted; failures are joined
// and tagged with their line number.
func (in *Interpreter) Run(ctx context.Context, lines []string) error {
	var errs []error
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := in.exec(ctx, line); err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}

// Exec executes a single line.
func (in *Interpreter) Exec(line string) error {
	return in.exec(context.Background(), line)
}

// RunFile executes a script file; files ending in .lua run as Lua.
func (in *Interpreter) RunFile(ctx context.Context, path string) error {
	if in.depth >= MaxSourceDepth {
		return fmt.Errorf("%w: %s", ErrSourceDepth, path)
	}
	data, err := in.readFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	in.depth++
	defer func() { in.depth-- }()

	if strings.EqualFold(filepath.Ext(path), ".lua") {
		return in.RunLua(ctx, path, string(data))
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if err := in.Run(ctx, strings.Split(text, "\n")); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (in *Interpreter) exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "\"") {
		return nil
	}

	cmd, err := dispatcher.Parse(line)
	if err != nil {
		return err
	}

	switch {
	case cmd.Matches("se", "set"):
		var errs []error
		for _, word := range strings.Fields(cmd.Argument) {
			errs = append(errs, in.set(word))
		}
		return errors.Join(errs...)
	case cmd.Matches("so", "source"):
		return in.RunFile(ctx, expandHome(cmd.Argument))
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Name)
	}
}

// set applies one "set" argument: name, noname, invname, name!, name=value.
func (in *Interpreter) set(word string) error {
	name, value, hasValue := strings.Cut(word, "=")
	if !hasValue {
		name, value, hasValue = strings.Cut(word, ":")
	}

	if hasValue {
		o, ok := lookupOption(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownOption, name)
		}
		if o.kind != intOption {
			return fmt.Errorf("%w: %s takes no value", ErrInvalidValue, o.name)
		}
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s=%s", ErrInvalidValue, o.name, value)
		}
		in.setInt(o.name, n)
		return nil
	}

	if o, ok := lookupOption(name); ok {
		// A bare numeric option only queries its value.
		if o.kind == boolOption {
			in.setBool(o.name, true)
		}
		return nil
	}
	if base, ok := strings.CutSuffix(name, "!"); ok {
		if o, ok := lookupOption(base); ok && o.kind == boolOption {
			in.setBool(o.name, !in.getBool(o.name))
			return nil
		}
	}
	if base, ok := strings.CutPrefix(name, "inv"); ok {
		if o, ok := lookupOption(base); ok && o.kind == boolOption {
			in.setBool(o.name, !in.getBool(o.name))
			return nil
		}
	}
	if base, ok := strings.CutPrefix(name, "no"); ok {
		if o, ok := lookupOption(base); ok && o.kind == boolOption {
			in.setBool(o.name, false)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownOption, name)
}

func (in *Interpreter) setInt(name string, n int) {
	switch name {
	case "shiftwidth":
		in.editor.ShiftWidth = n
	case "tabstop":
		in.editor.TabStop = n
	}
}

func (in *Interpreter) getInt(name string) int {
	switch name {
	case "shiftwidth":
		return in.editor.ShiftWidth
	case "tabstop":
		return in.editor.TabStop
	}
	return 0
}

func (in *Interpreter) setBool(name string, v bool) {
	switch name {
	case "expandtab":
		in.editor.ExpandTab = v
	case "autoindent":
		in.editor.AutoIndent = v
	case "smartindent":
		in.editor.SmartIndent = v
	default:
		in.extras[name] = v
	}
}

func (in *Interpreter) getBool(name string) bool {
	switch name {
	case "expandtab":
		return in.editor.ExpandTab
	case "autoindent":
		return in.editor.AutoIndent
	case "smartindent":
		return in.editor.SmartIndent
	default:
		return in.extras[name]
	}
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && rest[0] != '/' && rest[0] != '\\') {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

// Apply runs the user's startup script, or DefaultScript when there is
// none, against editor. It returns the interpreter so callers can read the
// key handling options.
func Apply(ctx context.Context, editor *config.EditorConfig) (*Interpreter, string, error) {
	in := New(editor)
	path, kind := Locate()
	if kind == KindNone {
		return in, "", in.Run(ctx, DefaultScript())
	}
	return in, path, in.RunFile(ctx, path)
}
