package task

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Runner resolves and runs the task for a :run or :make request.
type Runner struct {
	executor *Executor

	// taskFile overrides discovery when set.
	taskFile string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithTaskFile uses path instead of searching for a task file.
func WithTaskFile(path string) RunnerOption {
	return func(r *Runner) {
		r.taskFile = path
	}
}

// WithExecutor replaces the default executor.
func WithExecutor(e *Executor) RunnerOption {
	return func(r *Runner) {
		r.executor = e
	}
}

// NewRunner creates a runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.executor == nil {
		r.executor = NewExecutor(DefaultExecutorConfig())
	}
	return r
}

// Run runs the named task for a task file found from dir. An empty name
// selects the file's default task, preferring the group matching command
// ("make" prefers build tasks, anything else run tasks). Without a task file
// a Makefile in dir is run with make.
func (r *Runner) Run(ctx context.Context, dir, command, name string) (string, error) {
	prefer := GroupRun
	if command == "make" {
		prefer = GroupBuild
	}

	path := r.taskFile
	if path == "" {
		found, err := Find(dir)
		if errors.Is(err, ErrNoTaskFile) && hasMakefile(dir) {
			return r.runMake(ctx, dir, name)
		}
		if err != nil {
			return "", err
		}
		path = found
	}

	f, err := Load(path)
	if err != nil {
		return "", err
	}

	var t *Task
	if name == "" {
		t, err = f.Default(prefer)
	} else {
		t, err = f.Task(name)
	}
	if err != nil {
		return "", err
	}

	res, err := r.executor.Execute(ctx, t, f.Dir(), f.Env)
	if res == nil {
		return "", err
	}
	return res.Output, err
}

func (r *Runner) runMake(ctx context.Context, dir, target string) (string, error) {
	line := "make"
	if target != "" {
		line += " " + strings.TrimSpace(target)
	}
	t := &Task{Name: "make", Group: GroupBuild, Cmds: []string{line}}
	res, err := r.executor.Execute(ctx, t, dir, nil)
	if res == nil {
		return "", err
	}
	return res.Output, err
}

func hasMakefile(dir string) bool {
	for _, name := range []string{"GNUmakefile", "makefile", "Makefile"} {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}
