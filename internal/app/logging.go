package app

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LogLevelDebug is for detailed debugging information.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is for general informational messages.
	LogLevelInfo
	// LogLevelWarn is for warning messages.
	LogLevelWarn
	// LogLevelError is for error messages.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel. Unknown names map to info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger is a leveled logger with structured fields.
type Logger struct {
	mu       *sync.Mutex
	level    LogLevel
	output   io.Writer
	prefix   string
	fields   map[string]any
	disabled bool
	now      func() time.Time
}

// LoggerConfig configures the logger.
type LoggerConfig struct {
	// Level is the minimum log level to output.
	Level LogLevel
	// Output is where logs are written. Defaults to os.Stderr.
	Output io.Writer
	// Prefix is prepended to all log messages.
	Prefix string
}

// DefaultLoggerConfig returns the default logger configuration.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:  LogLevelInfo,
		Output: os.Stderr,
		Prefix: "wolfedit",
	}
}

// NewLogger creates a new logger with the given configuration.
func NewLogger(cfg LoggerConfig) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	return &Logger{
		mu:     &sync.Mutex{},
		level:  cfg.Level,
		output: cfg.Output,
		prefix: cfg.Prefix,
		fields: make(map[string]any),
		now:    time.Now,
	}
}

// WithField returns a logger that adds key=value to every line. It shares
// the parent's output and lock.
func (l *Logger) WithField(key string, value any) *Logger {
	return l.WithFields(map[string]any{key: value})
}

// WithFields returns a logger with the given fields added.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	if l.mu == nil {
		return l
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{
		mu:       l.mu,
		level:    l.level,
		output:   l.output,
		prefix:   l.prefix,
		fields:   merged,
		disabled: l.disabled,
		now:      l.now,
	}
}

// WithComponent returns a new logger with the component field set.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level LogLevel) {
	if l.mu == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput sets the output writer.
func (l *Logger) SetOutput(w io.Writer) {
	if l.mu == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(LogLevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.log(LogLevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(LogLevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.log(LogLevelError, msg, args...)
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	if l == nil || l.mu == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.disabled || level < l.level {
		return
	}

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	var b strings.Builder
	b.WriteString(l.now().Format("2006-01-02T15:04:05.000"))
	fmt.Fprintf(&b, " [%s] ", level)
	if l.prefix != "" {
		b.WriteString(l.prefix)
		b.WriteString(": ")
	}
	b.WriteString(msg)

	if len(l.fields) > 0 {
		keys := make([]string, 0, len(l.fields))
		for k := range l.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, l.fields[k])
		}
		b.WriteByte('}')
	}
	b.WriteByte('\n')

	_, _ = io.WriteString(l.output, b.String())
}

// NullLogger discards all output.
var NullLogger = &Logger{disabled: true}

var (
	appLogger   *Logger
	appLoggerMu sync.Mutex
)

// GetLogger returns the process-wide logger, creating a default one on
// first use.
func GetLogger() *Logger {
	appLoggerMu.Lock()
	defer appLoggerMu.Unlock()
	if appLogger == nil {
		appLogger = NewLogger(DefaultLoggerConfig())
	}
	return appLogger
}

// SetLogger replaces the process-wide logger.
func SetLogger(l *Logger) {
	appLoggerMu.Lock()
	defer appLoggerMu.Unlock()
	appLogger = l
}
