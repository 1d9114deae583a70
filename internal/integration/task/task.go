package task

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Errors returned by task lookup.
var (
	ErrNoTaskFile    = errors.New("no task file found")
	ErrTaskNotFound  = errors.New("task not found")
	ErrNoDefaultTask = errors.New("no default task")
	ErrTaskCycle     = errors.New("task references itself")
)

// FileNames are the task file names searched for, in priority order.
var FileNames = []string{
	"wolfedit.yaml",
	"wolfedit.yml",
	"Taskfile.yml",
	"Taskfile.yaml",
	"taskfile.yml",
	"taskfile.yaml",
}

// Group classifies tasks by name.
type Group string

// Task groups.
const (
	GroupBuild Group = "build"
	GroupTest  Group = "test"
	GroupRun   Group = "run"
	GroupClean Group = "clean"
	GroupOther Group = "other"
)

// InferGroup infers the group from the task name.
func InferGroup(name string) Group {
	lower := strings.ToLower(name)
	groups := []struct {
		group    Group
		patterns []string
	}{
		{GroupBuild, []string{"build", "compile", "make", "package", "bundle"}},
		{GroupTest, []string{"test", "check", "verify", "coverage"}},
		{GroupRun, []string{"run", "start", "serve", "dev"}},
		{GroupClean, []string{"clean", "clear", "purge"}},
	}
	for _, g := range groups {
		for _, p := range g.patterns {
			if strings.Contains(lower, p) {
				return g.group
			}
		}
	}
	return GroupOther
}

// Task is a named sequence of shell commands.
type Task struct {
	Name        string
	Description string
	Group       Group

	// Cmds are shell command lines. A step of the form {task: name} in the
	// file is expanded in place when the file is loaded.
	Cmds []string

	// Dir is the working directory, relative to the task file.
	Dir string

	// Env holds variables layered over the file's env.
	Env map[string]string

	Internal bool
}

// File is a parsed task file.
type File struct {
	// Path is where the file was read from.
	Path string

	// Env is applied to every task.
	Env map[string]string

	tasks map[string]*Task
}

// Dir returns the directory holding the task file.
func (f *File) Dir() string {
	return filepath.Dir(f.Path)
}

// Names returns the public task names in sorted order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.tasks))
	for name, t := range f.tasks {
		if !t.Internal {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Task returns the named task.
func (f *File) Task(name string) (*Task, error) {
	t, ok := f.tasks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, name)
	}
	return t, nil
}

// Default picks the task to run when none is named. The task called
// "default" wins; otherwise the first task of the preferred group, then the
// only public task.
func (f *File) Default(prefer Group) (*Task, error) {
	if t, ok := f.tasks["default"]; ok {
		return t, nil
	}
	names := f.Names()
	for _, name := range names {
		if f.tasks[name].Group == prefer {
			return f.tasks[name], nil
		}
	}
	if len(names) == 1 {
		return f.tasks[names[0]], nil
	}
	return nil, ErrNoDefaultTask
}

type fileDef struct {
	Version string             `yaml:"version"`
	Env     map[string]string  `yaml:"env"`
	Tasks   map[string]taskDef `yaml:"tasks"`
}

type taskDef struct {
	Desc     string            `yaml:"desc"`
	Summary  string            `yaml:"summary"`
	Cmds     []any             `yaml:"cmds"`
	Dir      string            `yaml:"dir"`
	Env      map[string]string `yaml:"env"`
	Internal bool              `yaml:"internal"`
}

// Find walks up from dir looking for a task file.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range FileNames {
			p := filepath.Join(dir, name)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoTaskFile
		}
		dir = parent
	}
}

// Load reads and parses a task file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// Parse parses task file content. path is recorded for relative
// directories and error messages.
func Parse(path string, data []byte) (*File, error) {
	var def fileDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	f := &File{
		Path:  path,
		Env:   def.Env,
		tasks: make(map[string]*Task, len(def.Tasks)),
	}
	for name, td := range def.Tasks {
		desc := td.Desc
		if desc == "" {
			desc = td.Summary
		}
		f.tasks[name] = &Task{
			Name:        name,
			Description: desc,
			Group:       InferGroup(name),
			Dir:         td.Dir,
			Env:         td.Env,
			Internal:    td.Internal,
		}
	}

	for name, td := range def.Tasks {
		cmds, err := expand(def.Tasks, td.Cmds, map[string]bool{name: true})
		if err != nil {
			return nil, fmt.Errorf("%s: task %s: %w", path, name, err)
		}
		f.tasks[name].Cmds = cmds
	}
	return f, nil
}

// expand flattens a cmds list. A step is either a command string, a map
// with a "cmd" key, or a map with a "task" key naming another task whose
// commands are inlined.
func expand(defs map[string]taskDef, steps []any, seen map[string]bool) ([]string, error) {
	var cmds []string
	for _, step := range steps {
		switch s := step.(type) {
		case string:
			cmds = append(cmds, s)
		case map[string]any:
			if cmd, ok := s["cmd"].(string); ok {
				cmds = append(cmds, cmd)
				continue
			}
			ref, ok := s["task"].(string)
			if !ok {
				return nil, fmt.Errorf("unsupported step %v", s)
			}
			if seen[ref] {
				return nil, fmt.Errorf("%w: %s", ErrTaskCycle, ref)
			}
			td, ok := defs[ref]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, ref)
			}
			seen[ref] = true
			sub, err := expand(defs, td.Cmds, seen)
			delete(seen, ref)
			if err != nil {
				return nil, err
			}
			cmds = append(cmds, sub...)
		default:
			return nil, fmt.Errorf("unsupported step %v", step)
		}
	}
	return cmds, nil
}
