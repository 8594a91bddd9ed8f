package app

import (
	"github.com/google/uuid"

	"github.com/dshills/keystrike/internal/config"
	"github.com/dshills/keystrike/internal/config/notify"
	"github.com/dshills/keystrike/internal/hid"
	"github.com/dshills/keystrike/internal/input"
	"github.com/dshills/keystrike/internal/input/keymap"
	"github.com/dshills/keystrike/internal/observability"
	"github.com/dshills/keystrike/internal/plugin/autoshift"
	"github.com/dshills/keystrike/internal/plugin/holdtap"
	"github.com/dshills/keystrike/internal/plugin/lua"
	"github.com/dshills/keystrike/internal/plugin/macros"
	"github.com/dshills/keystrike/internal/plugin/multitap"
	"github.com/dshills/keystrike/internal/plugin/rapidfire"
	"github.com/dshills/keystrike/internal/plugin/syster"
	"github.com/dshills/keystrike/internal/settings"
	"github.com/dshills/keystrike/internal/storage"
)

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	var err error

	// 1. Configuration: defaults, file, environment
	app.cfg, err = config.LoadWithEnv(app.opts.ConfigPath, app.opts.Environ)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}

	// 2. Logging
	level, _ := app.cfg.Log.SlogLevel()
	app.runID = uuid.NewString()
	app.logger = observability.EnrichLogger(observability.NewLogger(level, app.opts.LogOutput), app.runID)

	// 3. Settings storage
	if app.cfg.Storage.Path != "" {
		app.store, err = storage.NewSQLiteStore(app.cfg.Storage.Path)
		if err != nil {
			return &InitError{Component: "storage", Err: err}
		}
	} else {
		app.store = storage.NewMemoryStore()
	}

	// 4. Keymap
	if app.cfg.Keymap.File != "" {
		app.keymap, err = keymap.NewLoader().LoadFile(app.cfg.Keymap.File)
		if err != nil {
			return &InitError{Component: "keymap", Err: err}
		}
	} else {
		app.keymap = keymap.Default()
	}

	// 5. Metrics
	app.metrics, err = newMeterState(app.cfg.Metrics, app.opts.MeterProvider)
	if err != nil {
		return &InitError{Component: "metrics", Err: err}
	}

	// 6. Report assembler and runtime
	sink := app.opts.Sink
	if sink == nil {
		sink = hid.MultiSink{}
	}
	app.keyboard = hid.NewKeyboard(sink, hid.WithLogger(app.logger))
	if app.opts.Clock == nil {
		app.opts.Clock = input.NewSystemClock()
	}
	app.runtime = input.NewRuntime(app.keymap, app.keyboard,
		input.WithClock(app.opts.Clock),
		input.WithLogger(app.logger),
		input.WithRecorder(app.metrics.recorder),
		input.WithMaxDepth(app.cfg.Runtime.MaxDepth),
		input.WithLEDs(app.opts.LEDs),
	)

	// 7. Plugins
	if err := app.initPlugins(); err != nil {
		return err
	}

	// 8. Settings, with stored values over the file
	notifier := notify.New()
	notifier.Subscribe(func(c notify.Change) {
		app.logger.Debug("settings change",
			"type", c.Type.String(),
			"path", c.Path,
			"source", c.Source,
		)
	})
	app.settings = settings.NewManager(app.store,
		settings.WithNotifier(notifier),
		settings.WithLogger(app.logger),
	)
	if err := app.registerSettings(); err != nil {
		return &InitError{Component: "settings", Err: err}
	}
	if err := app.settings.Restore(); err != nil {
		return &InitError{Component: "settings", Err: err}
	}
	app.commands = settings.NewCommands(app.settings)

	// 9. Config watcher
	if app.opts.Watch && app.opts.ConfigPath != "" {
		app.watcher, err = config.NewWatcher(app.opts.ConfigPath, config.WithWatcherLogger(app.logger))
		if err != nil {
			return &InitError{Component: "watcher", Err: err}
		}
	}

	observability.LogRunStart(app.logger, app.keymap.Name, app.PluginNames())
	return nil
}

// initPlugins creates the resolvers from the configuration and registers
// them. Registration order is dispatch order: multi-tap sees every press
// first so that a sequence is never split, then hold-tap, then auto-shift.
// Syster and macros act on resolved keys only.
func (app *Application) initPlugins() error {
	cfg := app.cfg
	rt := app.runtime

	classes, err := cfg.AutoShift.ClassMask()
	if err != nil {
		return &InitError{Component: "autoshift", Err: err}
	}
	app.autoShift = autoshift.New(rt,
		autoshift.WithTimeout(cfg.AutoShift.Timeout),
		autoshift.WithClasses(classes),
		autoshift.WithEnabled(cfg.AutoShift.Enabled),
		autoshift.WithLogger(app.logger),
	)

	bindings, err := cfg.HoldTap.Bindings()
	if err != nil {
		return &InitError{Component: "holdtap", Err: err}
	}
	app.holdTap = holdtap.New(rt,
		holdtap.WithBindings(bindings),
		holdtap.WithTimeout(cfg.HoldTap.Timeout),
		holdtap.WithEnabled(cfg.HoldTap.Enabled),
		holdtap.WithLogger(app.logger),
	)

	behavior, err := app.multiTapBehavior()
	if err != nil {
		return err
	}
	app.multiTap = multitap.New(rt,
		multitap.WithBehavior(behavior),
		multitap.WithTimeout(cfg.MultiTap.Timeout),
		multitap.WithEnabled(cfg.MultiTap.Enabled),
		multitap.WithLogger(app.logger),
	)

	color, err := cfg.RapidFire.Color()
	if err != nil {
		return &InitError{Component: "rapidfire", Err: err}
	}
	app.rapidFire = rapidfire.New(rt,
		rapidfire.WithInterval(cfg.RapidFire.Interval),
		rapidfire.WithFlashInterval(cfg.RapidFire.FlashInterval),
		rapidfire.WithSticky(cfg.RapidFire.Sticky),
		rapidfire.WithFlash(cfg.RapidFire.Flash),
		rapidfire.WithActiveColor(color),
		rapidfire.WithLogger(app.logger),
	)

	symbols, err := cfg.Syster.TableBehavior()
	if err != nil {
		return &InitError{Component: "syster", Err: err}
	}
	app.syster = syster.New(rt,
		syster.WithBehavior(symbols),
		syster.WithEnabled(cfg.Syster.Enabled),
		syster.WithLogger(app.logger),
	)

	macroTable, err := cfg.Macros.TableBehavior()
	if err != nil {
		return &InitError{Component: "macros", Err: err}
	}
	app.macros = macros.New(rt,
		macros.WithBehavior(macroTable),
		macros.WithEnabled(cfg.Macros.Enabled),
		macros.WithLogger(app.logger),
	)

	for _, p := range []input.Plugin{app.multiTap, app.holdTap, app.autoShift, app.rapidFire, app.syster, app.macros} {
		if _, err := rt.Register(p); err != nil {
			return &InitError{Component: "plugins", Err: err}
		}
	}
	return nil
}

// multiTapBehavior returns the configured table, or a Lua script that
// falls back to the table when it fails.
func (app *Application) multiTapBehavior() (multitap.Behavior, error) {
	table, err := app.cfg.MultiTap.TableBehavior()
	if err != nil {
		return nil, &InitError{Component: "multitap", Err: err}
	}
	if app.cfg.MultiTap.Script == "" {
		return table, nil
	}

	app.script, err = lua.LoadBehavior(app.cfg.MultiTap.Script,
		[]lua.StateOption{lua.WithStateLogger(app.logger), lua.WithHost(app.runtime)},
		lua.WithFunction(app.cfg.MultiTap.Function),
		lua.WithFallback(table),
		lua.WithLogger(app.logger),
	)
	if err != nil {
		return nil, &InitError{Component: "multitap script", Err: err}
	}
	return app.script, nil
}

func (app *Application) registerSettings() error {
	if err := settings.RegisterAutoShift(app.settings, app.autoShift); err != nil {
		return err
	}
	if err := settings.RegisterHoldTap(app.settings, app.holdTap); err != nil {
		return err
	}
	if err := settings.RegisterMultiTap(app.settings, app.multiTap); err != nil {
		return err
	}
	if err := settings.RegisterRapidFire(app.settings, app.rapidFire); err != nil {
		return err
	}
	if err := settings.RegisterSyster(app.settings, app.syster); err != nil {
		return err
	}
	if err := settings.RegisterMacros(app.settings, app.macros); err != nil {
		return err
	}
	return settings.RegisterKeymap(app.settings, app.keymap)
}

// PluginNames lists the registered plugins in dispatch order.
func (app *Application) PluginNames() []string {
	regs := app.runtime.Registry().List()
	names := make([]string, len(regs))
	for i, r := range regs {
		names[i] = r.Name
	}
	return names
}
