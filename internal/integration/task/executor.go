package task

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	osexec "os/exec"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// ErrTaskFailed is wrapped by errors for commands that exit non-zero.
var ErrTaskFailed = errors.New("task failed")

// ExecutorConfig configures the executor.
type ExecutorConfig struct {
	// Shell runs each command line.
	Shell string

	// ShellArgs precede the command line.
	ShellArgs []string

	// MaxOutput caps the collected output in bytes; the head is kept.
	MaxOutput int
}

// DefaultExecutorConfig uses $SHELL, falling back to /bin/sh.
func DefaultExecutorConfig() ExecutorConfig {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return ExecutorConfig{
		Shell:     shell,
		ShellArgs: []string{"-c"},
		MaxOutput: 64 * 1024,
	}
}

// Result describes a finished task.
type Result struct {
	Task     string
	Output   string
	ExitCode int
	Duration time.Duration
}

// Executor runs tasks as child processes.
type Executor struct {
	config ExecutorConfig
}

// NewExecutor creates an executor. An empty shell uses the default.
func NewExecutor(config ExecutorConfig) *Executor {
	def := DefaultExecutorConfig()
	if config.Shell == "" {
		config.Shell = def.Shell
	}
	if config.ShellArgs == nil {
		config.ShellArgs = def.ShellArgs
	}
	if config.MaxOutput <= 0 {
		config.MaxOutput = def.MaxOutput
	}
	return &Executor{config: config}
}

// Execute runs t's commands in order from baseDir, stopping at the first
// failure. Cancelling ctx kills the running command.
func (e *Executor) Execute(ctx context.Context, t *Task, baseDir string, env map[string]string) (*Result, error) {
	start := time.Now()
	out := &limitedBuffer{max: e.config.MaxOutput}
	res := &Result{Task: t.Name}

	dir := baseDir
	if t.Dir != "" {
		if filepath.IsAbs(t.Dir) {
			dir = t.Dir
		} else {
			dir = filepath.Join(baseDir, t.Dir)
		}
	}
	environ := buildEnvironment(env, t.Env)

	var runErr error
	for _, line := range t.Cmds {
		args := append(append([]string(nil), e.config.ShellArgs...), line)
		cmd := osexec.CommandContext(ctx, e.config.Shell, args...)
		cmd.Dir = dir
		cmd.Env = environ
		cmd.Stdout = out
		cmd.Stderr = out

		if err := cmd.Run(); err != nil {
			var exitErr *osexec.ExitError
			switch {
			case ctx.Err() != nil:
				runErr = ctx.Err()
			case errors.As(err, &exitErr):
				res.ExitCode = exitErr.ExitCode()
				runErr = fmt.Errorf("%w: %s: %q exited with %d", ErrTaskFailed, t.Name, line, res.ExitCode)
			default:
				runErr = fmt.Errorf("%s: %w", t.Name, err)
			}
			break
		}
	}

	res.Output = out.String()
	res.Duration = time.Since(start)
	return res, runErr
}

// buildEnvironment layers the file env and task env over os.Environ.
func buildEnvironment(layers ...map[string]string) []string {
	merged := make(map[string]string)
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				merged[kv[:i]] = kv[i+1:]
				break
			}
		}
	}
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+merged[k])
	}
	return env
}

// limitedBuffer keeps the first max bytes written and counts the rest.
type limitedBuffer struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	max     int
	dropped int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	room := b.max - b.buf.Len()
	switch {
	case room <= 0:
		b.dropped += len(p)
	case len(p) > room:
		b.buf.Write(p[:room])
		b.dropped += len(p) - room
	default:
		b.buf.Write(p)
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.dropped == 0 {
		return b.buf.String()
	}
	return fmt.Sprintf("%s\n[%d bytes of output omitted]", b.buf.String(), b.dropped)
}
