// Package task runs project tasks for the :run and :make commands.
//
// Tasks come from a YAML task file found by walking up from the working
// directory. Both the editor's own wolfedit.yaml and go-task's Taskfile.yml
// are read with the same schema:
//
//	version: "3"
//	env:
//	  GOFLAGS: -mod=mod
//	tasks:
//	  build:
//	    desc: Build the binary
//	    cmds:
//	      - go build ./...
//	  default:
//	    cmds:
//	      - task: build
//	      - ./bin/app
//
// When no task file exists but a Makefile does, make is run directly.
//
// A task's commands run one after another through the configured shell and
// stop at the first failure. Output from stdout and stderr is collected in
// order and returned to the caller.
package task
