package app

import (
	"context"
	"io"
	"time"

	"github.com/dshills/keystrike/internal/config"
	"github.com/dshills/keystrike/internal/input"
	"github.com/dshills/keystrike/internal/scanner"
	"github.com/dshills/keystrike/internal/settings"
)

// request is a command line handed to the cycle loop.
type request struct {
	line  string
	reply chan response
}

type response struct {
	out string
	err error
}

// Run drives one cycle per tick from src until ctx is done. Commands and
// configuration reloads are applied between cycles, never during one.
func (app *Application) Run(ctx context.Context, src scanner.Source) error {
	app.closeMu.Lock()
	if app.closed.Load() {
		app.closeMu.Unlock()
		return ErrClosed
	}
	app.runMu.Lock()
	if !app.running.CompareAndSwap(false, true) {
		app.runMu.Unlock()
		app.closeMu.Unlock()
		return ErrAlreadyRunning
	}
	app.stopped = make(chan struct{})
	app.runMu.Unlock()
	app.loop.Add(1)
	app.closeMu.Unlock()
	defer app.loop.Done()
	defer func() {
		app.runMu.Lock()
		app.running.Store(false)
		close(app.stopped)
		app.runMu.Unlock()
	}()

	tick := time.Duration(app.cfg.Runtime.TickMS) * time.Millisecond
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	var reloads <-chan config.Event
	var watchErrs <-chan error
	if app.watcher != nil {
		reloads = app.watcher.Events()
		watchErrs = app.watcher.Errors()
	}

	app.logger.Info("cycle loop started", "tick", tick.String())
	for {
		select {
		case <-ctx.Done():
			app.logger.Info("cycle loop stopped")
			return nil

		case <-app.done:
			return nil

		case req := <-app.requests:
			out, err := app.commands.Execute(req.line)
			req.reply <- response{out: out, err: err}

		case ev := <-reloads:
			app.Reload(ev.Path)

		case err := <-watchErrs:
			app.logger.Warn("config watcher", "error", err)

		case <-ticker.C:
			app.Step(src)
		}
	}
}

// Step runs a single cycle with the transitions src reports now.
func (app *Application) Step(src scanner.Source) {
	now := app.opts.Clock.Millis()
	var transitions []input.Transition
	if src != nil {
		transitions = src.Scan(now)
	}
	app.runtime.Cycle(transitions)
}

// Execute runs one settings command. While Run is active the command is
// handed to the cycle loop and Execute waits for its result. If the loop
// stops before taking the command, it runs directly instead.
func (app *Application) Execute(ctx context.Context, line string) (string, error) {
	if app.closed.Load() {
		return "", ErrClosed
	}
	app.runMu.Lock()
	running, stopped := app.running.Load(), app.stopped
	app.runMu.Unlock()
	if !running {
		return app.commands.Execute(line)
	}

	req := request{line: line, reply: make(chan response, 1)}
	select {
	case app.requests <- req:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-app.done:
		return "", ErrClosed
	case <-stopped:
		return app.Execute(ctx, line)
	}
	select {
	case resp := <-req.reply:
		return resp.out, resp.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// ServeCommands runs the settings protocol on r and w through Execute.
func (app *Application) ServeCommands(ctx context.Context, r io.Reader, w io.Writer) error {
	return settings.Serve(ctx, func(line string) (string, error) {
		return app.Execute(ctx, line)
	}, r, w)
}

// Reload re-reads the configuration file and applies the plugin settings
// it contains. Applied values are not persisted. A file that no longer
// loads is logged and the running values are kept.
func (app *Application) Reload(path string) {
	cfg, err := config.LoadWithEnv(path, app.opts.Environ)
	if err != nil {
		app.logger.Warn("config reload failed, keeping current settings", "path", path, "error", err)
		return
	}
	if err := app.settings.ApplyAll(settings.ConfigValues(cfg), settings.SourceFile); err != nil {
		app.logger.Warn("config reload partially applied", "path", path, "error", err)
	}
	app.settings.Notifier().NotifyReload(settings.SourceFile)
	app.logger.Info("config reloaded", "path", path)
}
