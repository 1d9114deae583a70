package task

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const sampleFile = `
version: "3"
env:
  GREETING: hello
tasks:
  build:
    desc: Build it
    cmds:
      - go build ./...
  test:
    summary: Run the tests
    cmds:
      - cmd: go test ./...
  all:
    cmds:
      - task: build
      - task: test
      - echo done
  helper:
    internal: true
    cmds:
      - "true"
`

func TestParse(t *testing.T) {
	f, err := Parse("/p/Taskfile.yml", []byte(sampleFile))
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}

	if got, want := f.Names(), []string{"all", "build", "test"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names = %v, want %v", got, want)
	}
	if f.Env["GREETING"] != "hello" {
		t.Errorf("Env = %v", f.Env)
	}
	if f.Dir() != "/p" {
		t.Errorf("Dir = %q, want /p", f.Dir())
	}

	all, err := f.Task("all")
	if err != nil {
		t.Fatalf("Task(all) error = %v", err)
	}
	want := []string{"go build ./...", "go test ./...", "echo done"}
	if !reflect.DeepEqual(all.Cmds, want) {
		t.Errorf("all.Cmds = %v, want %v", all.Cmds, want)
	}

	test, _ := f.Task("test")
	if test.Description != "Run the tests" {
		t.Errorf("test.Description = %q", test.Description)
	}
	if test.Group != GroupTest {
		t.Errorf("test.Group = %q, want test", test.Group)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"cycle", "tasks:\n  a:\n    cmds:\n      - task: a\n", ErrTaskCycle},
		{"missing ref", "tasks:\n  a:\n    cmds:\n      - task: nope\n", ErrTaskNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("x.yml", []byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Parse("x.yml", []byte("tasks: [")); err == nil {
		t.Error("expected YAML error")
	}
}

func TestDefault(t *testing.T) {
	f, err := Parse("t.yml", []byte(sampleFile))
	if err != nil {
		t.Fatal(err)
	}

	got, err := f.Default(GroupBuild)
	if err != nil || got.Name != "build" {
		t.Errorf("Default(build) = %v, %v; want build", got, err)
	}
	if _, err := f.Default(GroupRun); !errors.Is(err, ErrNoDefaultTask) {
		t.Errorf("Default(run) error = %v, want ErrNoDefaultTask", err)
	}

	withDefault, _ := Parse("t.yml", []byte("tasks:\n  default:\n    cmds: [ls]\n  build:\n    cmds: [make]\n"))
	if got, _ := withDefault.Default(GroupBuild); got == nil || got.Name != "default" {
		t.Errorf("Default = %v, want default task", got)
	}

	single, _ := Parse("t.yml", []byte("tasks:\n  lint:\n    cmds: [vet]\n"))
	if got, _ := single.Default(GroupRun); got == nil || got.Name != "lint" {
		t.Errorf("Default = %v, want the only task", got)
	}
}

func TestInferGroup(t *testing.T) {
	tests := map[string]Group{
		"build":     GroupBuild,
		"Compile":   GroupBuild,
		"unit-test": GroupTest,
		"serve":     GroupRun,
		"clean":     GroupClean,
		"docs":      GroupOther,
	}
	for name, want := range tests {
		if got := InferGroup(name); got != want {
			t.Errorf("InferGroup(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	if got, err := Find(sub); err == nil {
		t.Skipf("task file %s exists above the temp dir", got)
	} else if !errors.Is(err, ErrNoTaskFile) {
		t.Fatalf("Find error = %v", err)
	}

	tf := filepath.Join(root, "Taskfile.yml")
	if err := os.WriteFile(tf, []byte("tasks: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Find(sub)
	if err != nil || got != tf {
		t.Errorf("Find = %q, %v; want %q", got, err, tf)
	}

	own := filepath.Join(root, "a", "wolfedit.yaml")
	if err := os.WriteFile(own, []byte("tasks: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = Find(sub)
	if err != nil || got != own {
		t.Errorf("Find = %q, %v; want nearer %q", got, err, own)
	}
}
