// Package main is the entry point for the WolfEdit editor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/argos-ot/wolfedit/internal/app"
	"github.com/argos-ot/wolfedit/internal/config"
	"github.com/argos-ot/wolfedit/internal/config/startup"
	"github.com/argos-ot/wolfedit/internal/integration/task"
	"github.com/argos-ot/wolfedit/internal/project/watcher"
	"github.com/argos-ot/wolfedit/internal/renderer/backend"
	"github.com/argos-ot/wolfedit/internal/renderer/statusline"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath string
	logLevel   string
	logFile    string
	files      []string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(config.Options{Path: opts.configPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		return 1
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.Logging.File = opts.logFile
	}

	logger, closeLog, err := openLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log: %v\n", err)
		return 1
	}
	defer closeLog()
	app.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, script, err := startup.Apply(ctx, &cfg.Editor); err != nil {
		logger.Warn("startup script %s: %v", script, err)
	} else if script != "" {
		logger.Info("applied startup script %s", script)
	}

	term, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	host := backend.NewHost(term, backend.WithComposer(
		statusline.New(statusline.WithWidth(cfg.StatusLine.Width)),
	))

	sessionOpts := []app.SessionOption{
		app.WithHost(host),
		app.WithMessages(host),
		app.WithLogger(logger),
	}
	fw, err := watcher.NewFileWatcher()
	if err != nil {
		logger.Warn("file watcher unavailable: %v", err)
	} else {
		defer fw.Close()
		sessionOpts = append(sessionOpts, app.WithWatcher(fw))
	}
	session := app.NewSession(sessionOpts...)

	wd, _ := os.Getwd()
	runner := task.NewRunner(
		task.WithTaskFile(cfg.Run.TaskFile),
		task.WithExecutor(task.NewExecutor(task.ExecutorConfig{Shell: cfg.Run.Shell})),
	)
	ctrl := app.NewController(session,
		app.WithDialog(host),
		app.WithPicker(host),
		app.WithSurface(host),
		app.WithRunner(runner),
		app.WithConfig(cfg),
		app.WithControllerLogger(logger),
		app.WithWorkDir(wd),
	)

	if fw != nil {
		go watcher.Run(ctx, fw,
			func(ev watcher.Event) {
				if session.MarkStale(ev.Path) > 0 {
					term.Wake()
				}
			},
			func(err error) {
				logger.Warn("watcher: %v", err)
			},
		)
	}

	for _, path := range opts.files {
		openOrCreate(ctx, ctrl, path, logger)
	}
	if session.Count() == 0 {
		ctrl.New()
	}

	if err := term.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize terminal: %v\n", err)
		return 1
	}

	ed := backend.NewEditor(host, ctrl, backend.WithEditorLogger(logger))
	err = ed.Run(ctx)
	term.Shutdown()
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// openOrCreate opens path, or starts a new document bound to it when the
// file does not exist yet.
func openOrCreate(ctx context.Context, ctrl *app.Controller, path string, logger *app.Logger) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		doc := ctrl.New()
		if err := doc.SetPath(path); err != nil {
			logger.Error("new file %s: %v", path, err)
		}
		return
	}
	if err := ctrl.Open(ctx, path); err != nil {
		logger.Error("open %s: %v", path, err)
	}
}

// openLogger builds the logger. Without a log file nothing is logged, so
// the terminal stays clean.
func openLogger(cfg config.LoggingConfig) (*app.Logger, func(), error) {
	if cfg.File == "" {
		return app.NullLogger, func() {}, nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(cfg.Level),
		Output: f,
		Prefix: "wolfedit",
	})
	return logger, func() { _ = f.Close() }, nil
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.logFile, "log", "", "Write logs to this file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "WolfEdit - a modal text editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: wolfedit [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  wolfedit                        Open with an empty document\n")
		fmt.Fprintf(os.Stderr, "  wolfedit a.txt b.txt            Open two documents\n")
		fmt.Fprintf(os.Stderr, "  wolfedit -log /tmp/we.log f.go  Log to a file\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("WolfEdit %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.logLevel)
		os.Exit(1)
	}

	opts.files = flag.Args()
	return opts
}
