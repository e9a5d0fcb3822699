// Package app wires configuration, logging, the document editor and the
// terminal host together and runs one of the command modes.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/blockpad/internal/caret"
	"github.com/dshills/blockpad/internal/config"
	"github.com/dshills/blockpad/internal/document"
	"github.com/dshills/blockpad/internal/editor"
	"github.com/dshills/blockpad/internal/logging"
	"github.com/dshills/blockpad/internal/markup"
	"github.com/dshills/blockpad/internal/tui"
)

// Mode selects what Run does.
type Mode int

const (
	// ModeEdit runs the interactive terminal editor.
	ModeEdit Mode = iota
	// ModeRender prints each block's rendered markup.
	ModeRender
	// ModeStats prints the block count and per-block lengths.
	ModeStats
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeEdit:
		return "edit"
	case ModeRender:
		return "render"
	case ModeStats:
		return "stats"
	default:
		return "unknown"
	}
}

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file. Empty means defaults and
	// environment only.
	ConfigPath string

	// File is the document to import. Empty or "-" reads Stdin in the
	// render and stats modes and starts an empty document in edit mode.
	File string

	// LogLevel overrides logging.level when set.
	LogLevel string

	// RenderFormat overrides render.format when set.
	RenderFormat string

	// Mode selects what Run does.
	Mode Mode

	// Print writes the final document text to Stdout after an edit session.
	Print bool

	// Screen is the terminal for edit mode. Nil opens the controlling terminal.
	Screen tcell.Screen

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Application owns the components of one blockpad run.
type Application struct {
	opts Options

	cfg     *config.Config
	log     *logging.Logger
	logFile io.Closer
	ed      *editor.Editor

	mu  sync.Mutex
	tui *tui.App

	closeOnce sync.Once
}

// New loads configuration, builds the logger and imports the document.
func New(opts Options) (*Application, error) {
	switch opts.Mode {
	case ModeEdit, ModeRender, ModeStats:
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, opts.Mode)
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	app := &Application{opts: opts}
	if err := app.initConfig(); err != nil {
		return nil, err
	}
	if err := app.initLogging(); err != nil {
		app.cfg.Close()
		return nil, err
	}
	if err := app.initEditor(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (app *Application) initConfig() error {
	cfgOpts := []config.Option{config.WithWatcher(app.opts.Mode == ModeEdit)}
	if app.opts.ConfigPath != "" {
		cfgOpts = append(cfgOpts, config.WithFile(app.opts.ConfigPath))
	}
	app.cfg = config.New(cfgOpts...)

	if err := app.cfg.Load(context.Background()); err != nil {
		return NewOperationError("load config", app.opts.ConfigPath, err)
	}

	overrides := []struct{ path, value string }{
		{"logging.level", app.opts.LogLevel},
		{"render.format", app.opts.RenderFormat},
	}
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		if err := app.cfg.Set(o.path, o.value); err != nil {
			app.cfg.Close()
			return &ComponentError{Component: "config", Err: err}
		}
	}

	if err := app.cfg.Validate(); err != nil {
		app.cfg.Close()
		return &ComponentError{Component: "config", Err: err}
	}
	return nil
}

func (app *Application) initLogging() error {
	lc := app.cfg.Logging()

	var out io.Writer
	switch {
	case lc.File != "":
		f, err := logging.Open(lc.File)
		if err != nil {
			return &ComponentError{Component: "logging", Err: err}
		}
		app.logFile = f
		out = f
	case app.opts.Mode == ModeEdit:
		// Anything written to stderr would land on the editor screen.
		app.log = logging.Nop()
		return nil
	default:
		out = app.opts.Stderr
	}

	app.log = logging.New(logging.Config{Level: lc.Level, Format: lc.Format, Output: out})
	return nil
}

func (app *Application) initEditor() error {
	ec := app.cfg.Editor()
	doc, err := app.importDocument(document.WithRemovePolicy(ec.RemovePolicy))
	if err != nil {
		return err
	}

	kc := app.cfg.Keys()
	app.ed = editor.New(
		editor.WithDocument(doc),
		editor.WithLogger(app.log),
		editor.WithRenderer(app.renderer()),
		editor.WithController(
			caret.WithBindings(caret.Bindings{Split: kc.Split, Merge: kc.Merge, Newline: kc.NewlineModifier}),
			caret.WithSplitTail(ec.SplitTail),
		),
	)

	app.cfg.OnReload(app.handleReload)
	return nil
}

func (app *Application) importDocument(opts ...document.Option) (*document.Document, error) {
	path := app.opts.File
	if path == "" || path == "-" {
		if app.opts.Mode == ModeEdit {
			return document.New(opts...), nil
		}
		doc, err := document.ImportReader(app.opts.Stdin, opts...)
		if err != nil {
			return nil, NewOperationError("import", "stdin", err)
		}
		return doc, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && app.opts.Mode == ModeEdit {
			app.log.Info("%s does not exist, starting empty", path)
			return document.New(opts...), nil
		}
		return nil, NewOperationError("import", path, err)
	}
	defer f.Close()

	doc, err := document.ImportReader(f, opts...)
	if err != nil {
		return nil, NewOperationError("import", path, err)
	}
	return doc, nil
}

// renderer builds the markup renderer for the current configuration. The
// terminal host cannot draw ANSI sequences as cell content, so edit mode
// renders through the plain-text glamour style.
func (app *Application) renderer() markup.Renderer {
	rc := app.cfg.Render()
	if app.opts.Mode == ModeEdit {
		opts := rc.Markup
		opts.Style = "notty"
		return markup.NewTerminal(opts)
	}
	if rc.Format == config.FormatTerm {
		return markup.NewTerminal(rc.Markup)
	}
	return markup.NewMarkdown(rc.Markup)
}

func (app *Application) handleReload(err error) {
	if err != nil {
		app.log.Warn("config reload failed: %v", err)
		return
	}
	if err := app.cfg.Validate(); err != nil {
		app.log.Warn("config has invalid values, using defaults for them: %v", err)
	}
	app.log.SetLevel(app.cfg.Logging().Level)
	app.ed.SetRenderer(app.renderer())
	app.log.Info("config reloaded from %s", app.cfg.Path())

	app.mu.Lock()
	host := app.tui
	app.mu.Unlock()
	if host != nil {
		host.Refresh()
	}
}

// Config returns the loaded configuration.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Editor returns the document editor.
func (app *Application) Editor() *editor.Editor {
	return app.ed
}

// Run executes the configured mode. Cancelling ctx ends an edit session
// normally.
func (app *Application) Run(ctx context.Context) error {
	switch app.opts.Mode {
	case ModeRender:
		return app.runRender()
	case ModeStats:
		return app.runStats()
	default:
		return app.runEdit(ctx)
	}
}

func (app *Application) runEdit(ctx context.Context) error {
	screen := app.opts.Screen
	if screen == nil {
		s, err := tui.NewScreen()
		if err != nil {
			return &ComponentError{Component: "terminal", Err: err}
		}
		screen = s
	}

	host := tui.New(screen, app.ed, tui.WithLogger(app.log))
	app.mu.Lock()
	app.tui = host
	app.mu.Unlock()

	err := host.Run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	s := app.ed.Stats()
	app.log.Info("session ended: %d ops applied, %d failed, %d discarded", s.Applied, s.Failed, s.Discarded)

	if err != nil {
		return err
	}
	if app.opts.Print {
		if _, err := fmt.Fprintln(app.opts.Stdout, app.ed.Document().Text()); err != nil {
			return NewOperationError("print", "stdout", err)
		}
	}
	return nil
}

// Close stops the config watcher and closes the log file.
func (app *Application) Close() {
	app.closeOnce.Do(func() {
		if app.cfg != nil {
			app.cfg.Close()
		}
		if app.logFile != nil {
			_ = app.logFile.Close()
		}
	})
}
