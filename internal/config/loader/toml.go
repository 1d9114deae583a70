package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// MaxIncludeDepth bounds nested @include directives.
const MaxIncludeDepth = 8

// TOMLLoader loads configuration from TOML files.
type TOMLLoader struct {
	fs   FileSystem
	path string
}

// NewTOMLLoader creates a new TOML loader for the given path.
func NewTOMLLoader(path string) *TOMLLoader {
	return NewTOMLLoaderWithFS(DefaultFS(), path)
}

// NewTOMLLoaderWithFS creates a TOML loader with a custom file system.
func NewTOMLLoaderWithFS(fsys FileSystem, path string) *TOMLLoader {
	return &TOMLLoader{fs: fsys, path: path}
}

// Load reads the configured path, following @include directives.
func (l *TOMLLoader) Load() (map[string]any, error) {
	if l.path == "" {
		return nil, nil
	}
	return l.loadWithIncludes(l.path, MaxIncludeDepth)
}

// LoadFromReader parses TOML from r. Includes are not followed.
func (l *TOMLLoader) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse("<reader>", data)
}

func (l *TOMLLoader) loadFile(path string) (map[string]any, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return parse(path, data)
}

// loadWithIncludes loads path and merges its @include files underneath it.
func (l *TOMLLoader) loadWithIncludes(path string, depth int) (map[string]any, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("include depth exceeded for %s", path)
	}

	config, err := l.loadFile(path)
	if err != nil || config == nil {
		return config, err
	}

	includes, ok := config["@include"]
	if !ok {
		return config, nil
	}
	delete(config, "@include")

	var list []string
	switch v := includes.(type) {
	case string:
		list = []string{v}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("@include in %s must be a string or array of strings", path)
			}
			list = append(list, s)
		}
	default:
		return nil, fmt.Errorf("@include in %s must be a string or array of strings, got %T", path, includes)
	}

	base := make(map[string]any)
	for _, inc := range list {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(path), inc)
		}
		incConfig, err := l.loadWithIncludes(inc, depth-1)
		if err != nil {
			return nil, fmt.Errorf("loading include %s: %w", inc, err)
		}
		base = DeepMerge(base, incConfig)
	}
	// The including file wins over what it includes.
	return DeepMerge(base, config), nil
}

func parse(source string, data []byte) (map[string]any, error) {
	var config map[string]any
	if err := toml.Unmarshal(data, &config); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return nil, pe
	}
	return config, nil
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
