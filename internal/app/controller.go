package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/argos-ot/wolfedit/internal/config"
	"github.com/argos-ot/wolfedit/internal/dispatcher"
)

// Controller drives a Session against blocking dialog and picker
// collaborators. Each call runs a whole sequence, answering the session's
// prompts as they come.
type Controller struct {
	session  *Session
	router   *dispatcher.Router
	dialog   ConfirmationDialog
	picker   PathPicker
	messages MessageSurface
	runner   Runner
	config   config.Config
	logger   *Logger
	workDir  string
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithDialog sets the confirmation dialog.
func WithDialog(d ConfirmationDialog) ControllerOption {
	return func(c *Controller) {
		c.dialog = d
	}
}

// WithPicker sets the path picker.
func WithPicker(p PathPicker) ControllerOption {
	return func(c *Controller) {
		c.picker = p
	}
}

// WithSurface sets where the controller reports outcomes.
func WithSurface(m MessageSurface) ControllerOption {
	return func(c *Controller) {
		c.messages = m
	}
}

// WithRunner sets the :run / :make collaborator.
func WithRunner(r Runner) ControllerOption {
	return func(c *Controller) {
		c.runner = r
	}
}

// WithConfig sets the editor configuration.
func WithConfig(cfg config.Config) ControllerOption {
	return func(c *Controller) {
		c.config = cfg
	}
}

// WithControllerLogger sets the controller logger.
func WithControllerLogger(l *Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithWorkDir sets the directory :run uses for untitled documents.
func WithWorkDir(dir string) ControllerOption {
	return func(c *Controller) {
		c.workDir = dir
	}
}

// NewController creates a controller for session.
func NewController(session *Session, opts ...ControllerOption) *Controller {
	c := &Controller{
		session:  session,
		router:   dispatcher.NewRouter(),
		messages: nopSurface{},
		config:   config.Default(),
		logger:   NullLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("controller")
	return c
}

// Session returns the driven session.
func (c *Controller) Session() *Session {
	return c.session
}

// Router returns the command router.
func (c *Controller) Router() *dispatcher.Router {
	return c.router
}

// Config returns the editor configuration.
func (c *Controller) Config() config.Config {
	return c.config
}

// drive answers prompts until the sequence finishes.
func (c *Controller) drive(ctx context.Context, p *Prompt, err error) error {
	for p != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			c.session.Abort()
			return ctxErr
		}

		switch p.Kind {
		case PromptConfirm:
			choice := ChoiceCancel
			if c.dialog != nil {
				var derr error
				choice, derr = c.dialog.Confirm(ctx, *p)
				if derr != nil {
					c.session.Abort()
					return NewComponentError("dialog", "confirm", derr)
				}
			}
			p, err = c.session.Resolve(choice)

		case PromptSavePath:
			path := ""
			if c.picker != nil {
				if picked, ok := c.picker.PickSavePath(ctx, p.Suggested); ok {
					path = picked
				}
			}
			p, err = c.session.ResolvePath(path)

		default:
			c.session.Abort()
			return fmt.Errorf("unknown prompt kind %d", p.Kind)
		}
	}
	return err
}

// report shows err to the user. Cancellation is informational.
func (c *Controller) report(err error) error {
	switch {
	case err == nil:
	case IsCancelled(err):
		c.messages.ShowMessage(MessageInfo, "Cancelled")
	default:
		c.messages.ShowMessage(MessageError, err.Error())
	}
	return err
}

// New appends an untitled document.
func (c *Controller) New() *Document {
	return c.session.NewDocument()
}

// Open opens path, asking the picker when path is empty.
func (c *Controller) Open(ctx context.Context, path string) error {
	if path == "" {
		if c.picker == nil {
			return c.report(ErrUserCancelled)
		}
		picked, ok := c.picker.PickOpenPath(ctx)
		if !ok || picked == "" {
			return c.report(ErrUserCancelled)
		}
		path = picked
	}
	_, err := c.session.OpenDocument(path)
	return c.report(err)
}

// Save saves the current document.
func (c *Controller) Save(ctx context.Context) error {
	p, err := c.session.BeginSave()
	return c.report(c.drive(ctx, p, err))
}

// SaveAs saves the current document under path, asking the picker when
// path is empty.
func (c *Controller) SaveAs(ctx context.Context, path string) error {
	doc := c.session.Current()
	if doc == nil {
		return c.report(ErrNoActiveDocument)
	}
	if path == "" {
		picked, ok := "", false
		if c.picker != nil {
			picked, ok = c.picker.PickSavePath(ctx, doc.Name())
		}
		if !ok || picked == "" {
			return c.report(ErrUserCancelled)
		}
		path = picked
	}
	return c.report(c.session.RequestSaveAs(doc, expandHome(path)))
}

// CloseDocument closes the document at index.
func (c *Controller) CloseDocument(ctx context.Context, index int) error {
	p, err := c.session.BeginClose(index)
	return c.report(c.drive(ctx, p, err))
}

// CloseCurrent closes the current document.
func (c *Controller) CloseCurrent(ctx context.Context) error {
	i := c.session.CurrentIndex()
	if i < 0 {
		return c.report(ErrNoActiveDocument)
	}
	return c.CloseDocument(ctx, i)
}

// QuitAll closes every document in tab order. A Cancel stops the quit and
// leaves the remaining documents open.
func (c *Controller) QuitAll(ctx context.Context) error {
	p, err := c.session.BeginQuit()
	return c.report(c.drive(ctx, p, err))
}

// SaveAndQuit saves the current document and quits.
func (c *Controller) SaveAndQuit(ctx context.Context) error {
	p, err := c.session.BeginSaveAndQuit()
	return c.report(c.drive(ctx, p, err))
}

// ForceQuit discards everything and terminates.
func (c *Controller) ForceQuit() {
	c.session.ForceQuit()
}

// Cancel terminates unless the current document differs from disk.
func (c *Controller) Cancel() bool {
	doc := c.session.Current()
	if doc == nil {
		c.session.ForceQuit()
		return true
	}
	return c.session.Cancel(doc)
}

// About shows the about text.
func (c *Controller) About() {
	c.messages.ShowMessage(MessageInfo, c.config.About())
}

// ExecuteLine parses and runs a typed command line.
func (c *Controller) ExecuteLine(ctx context.Context, line string) error {
	res, err := c.router.RouteLine(line)
	if err != nil {
		return c.report(err)
	}
	return c.Execute(ctx, res)
}

// Execute performs a routed command.
func (c *Controller) Execute(ctx context.Context, res dispatcher.Result) error {
	c.logger.Debug("%s -> %s", res.Command, res.Action)

	switch res.Action {
	case dispatcher.ActionSave:
		if res.Command.HasArgument() {
			return c.SaveAs(ctx, res.Command.Argument)
		}
		return c.Save(ctx)
	case dispatcher.ActionSaveAndQuit:
		return c.SaveAndQuit(ctx)
	case dispatcher.ActionQuit:
		return c.QuitAll(ctx)
	case dispatcher.ActionDiscard:
		c.ForceQuit()
		return nil
	case dispatcher.ActionRun:
		return c.run(ctx, res.Command)
	default:
		if !res.Handled {
			return c.report(res.Err())
		}
		return nil
	}
}

func (c *Controller) run(ctx context.Context, cmd dispatcher.ExCommand) error {
	if c.runner == nil {
		return c.report(ErrNoRunner)
	}

	dir := c.workDir
	if doc := c.session.Current(); doc != nil && !doc.IsUntitled() {
		dir = filepath.Dir(doc.Path())
	}
	if dir == "" {
		dir = "."
	}

	c.logger.Info("running %s in %s", cmd, dir)
	out, err := c.runner.Run(ctx, dir, cmd.Name, cmd.Argument)
	if err != nil {
		c.logger.Error("%s failed: %v", cmd, err)
		return c.report(NewComponentError("runner", cmd.Name, err))
	}
	out = strings.TrimRight(out, "\n")
	if out == "" {
		out = cmd.Name + ": done"
	}
	c.messages.ShowMessage(MessageInfo, out)
	return nil
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && rest[0] != '/' && rest[0] != filepath.Separator) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
