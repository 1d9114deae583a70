package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/argos-ot/wolfedit/internal/config/loader"
)

// EnvPrefix prefixes every environment variable the editor reads.
const EnvPrefix = "WOLFEDIT_"

// Built-in texts.
const (
	DefaultAppName = "WolfEdit"

	DefaultAboutText = "WolfEdit is a free and open source text editor. " +
		"WolfEdit is designed to be used by programmers and people that " +
		"frequently edit text files. WolfEdit is focused on simplicity and " +
		"performance so that programmers can customize their editor by " +
		"modifying the source directly and have a snappy user experience."

	DefaultFooterText = "© 2024 Argos Open Technologies, LLC"
)

// ErrInvalidConfig indicates a value outside its allowed range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete editor configuration.
type Config struct {
	AppName    string `toml:"appName"`
	AboutText  string `toml:"aboutText"`
	FooterText string `toml:"footerText"`

	Editor     EditorConfig     `toml:"editor"`
	StatusLine StatusLineConfig `toml:"statusLine"`
	Logging    LoggingConfig    `toml:"logging"`
	Run        RunConfig        `toml:"run"`
}

// EditorConfig holds the modal engine options.
type EditorConfig struct {
	// ShiftWidth is the number of spaces one indent level represents.
	ShiftWidth int `toml:"shiftWidth"`
	// TabStop is the display width of a tab character.
	TabStop int `toml:"tabStop"`
	// ExpandTab inserts spaces instead of tabs.
	ExpandTab bool `toml:"expandTab"`
	// AutoIndent copies the previous line's indentation on a new line.
	AutoIndent bool `toml:"autoIndent"`
	// SmartIndent enables the brace rules on top of AutoIndent.
	SmartIndent bool `toml:"smartIndent"`
}

// StatusLineConfig configures the status line.
type StatusLineConfig struct {
	// Width is the nominal status line width in cells.
	Width int `toml:"width"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// File receives log output; empty means stderr.
	File string `toml:"file"`
}

// RunConfig configures the :run / :make collaborator.
type RunConfig struct {
	// TaskFile overrides task file discovery.
	TaskFile string `toml:"taskFile"`
	// Shell runs task commands; empty means $SHELL or /bin/sh.
	Shell string `toml:"shell"`
}

// Default returns the built-in configuration. The editor values are the
// ones the built-in startup script would set.
func Default() Config {
	return Config{
		AppName:    DefaultAppName,
		AboutText:  DefaultAboutText,
		FooterText: DefaultFooterText,
		Editor: EditorConfig{
			ShiftWidth:  8,
			TabStop:     16,
			ExpandTab:   true,
			AutoIndent:  true,
			SmartIndent: true,
		},
		StatusLine: StatusLineConfig{Width: 80},
		Logging:    LoggingConfig{Level: "info"},
	}
}

// About returns the about-dialog text.
func (c Config) About() string {
	return c.AboutText + "\n\n" + c.FooterText
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var problems []string
	if c.Editor.ShiftWidth <= 0 {
		problems = append(problems, fmt.Sprintf("editor.shiftWidth must be positive, got %d", c.Editor.ShiftWidth))
	}
	if c.Editor.TabStop <= 0 {
		problems = append(problems, fmt.Sprintf("editor.tabStop must be positive, got %d", c.Editor.TabStop))
	}
	if c.StatusLine.Width <= 0 {
		problems = append(problems, fmt.Sprintf("statusLine.width must be positive, got %d", c.StatusLine.Width))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Options control where Load looks.
type Options struct {
	// Path is the TOML config file; empty uses DefaultPath().
	Path string
	// FS replaces the OS file system.
	FS loader.FileSystem
	// Environ replaces os.Environ.
	Environ []string
}

// DefaultPath returns ~/.config/wolfedit/config.toml (or the platform
// equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "wolfedit", "config.toml")
}

// Load builds the configuration from defaults, the config file and the
// environment, then validates it.
func Load(opts Options) (Config, error) {
	path := opts.Path
	if path == "" {
		path = DefaultPath()
	}
	fsys := opts.FS
	if fsys == nil {
		fsys = loader.DefaultFS()
	}
	env := loader.NewEnvLoader(EnvPrefix)
	if opts.Environ != nil {
		env = loader.NewEnvLoaderFrom(EnvPrefix, opts.Environ)
	}

	sources := []loader.Loader{
		loader.NewTOMLLoaderWithFS(fsys, path),
		env,
	}

	merged := make(map[string]any)
	for _, src := range sources {
		layer, err := src.Load()
		if err != nil {
			return Config{}, err
		}
		merged = loader.DeepMerge(merged, layer)
	}

	cfg, err := Decode(merged)
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Decode applies a merged layer map on top of Default.
func Decode(layers map[string]any) (Config, error) {
	cfg := Default()
	if len(layers) == 0 {
		return cfg, nil
	}
	data, err := toml.Marshal(layers)
	if err != nil {
		return Config{}, fmt.Errorf("encoding config layers: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}
