package loader

import (
	"os"
	"strconv"
	"strings"
)

// EnvLoader loads configuration from environment variables.
//
// Variables named in the mapping go to their mapped path. Any other
// variable carrying the prefix is converted by name:
// WOLFEDIT_EDITOR_SHIFT_WIDTH becomes editor.shiftWidth.
type EnvLoader struct {
	prefix  string
	mapping map[string]string
	environ func() []string
}

// NewEnvLoader creates an environment loader. The prefix should include
// the trailing underscore (e.g. "WOLFEDIT_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
		environ: os.Environ,
	}
}

// NewEnvLoaderFrom creates a loader reading from a fixed environment list
// in KEY=VALUE form.
func NewEnvLoaderFrom(prefix string, environ []string) *EnvLoader {
	l := NewEnvLoader(prefix)
	l.environ = func() []string { return environ }
	return l
}

func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "LOG_LEVEL":   "logging.level",
		prefix + "LOG_FILE":    "logging.file",
		prefix + "SHIFT_WIDTH": "editor.shiftWidth",
		prefix + "TAB_STOP":    "editor.tabStop",
		prefix + "TASK_FILE":   "run.taskFile",
	}
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	l.mapping[envVar] = configPath
}

// Load reads matching environment variables into a configuration map.
// Empty values count as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		setByPath(config, path, parseValue(value))
	}
	return config, nil
}

// envToPath converts PREFIX_SECTION_SOME_NAME to section.someName.
func (l *EnvLoader) envToPath(env string) string {
	parts := strings.Split(strings.TrimPrefix(env, l.prefix), "_")
	if len(parts) < 2 || parts[0] == "" {
		return ""
	}

	var name strings.Builder
	name.WriteString(strings.ToLower(parts[1]))
	for _, part := range parts[2:] {
		if part == "" {
			continue
		}
		name.WriteString(strings.ToUpper(part[:1]))
		name.WriteString(strings.ToLower(part[1:]))
	}
	return strings.ToLower(parts[0]) + "." + name.String()
}

// parseValue converts booleans and integers; anything else stays a string.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
