// Package app wires keystrike together: configuration, storage, the
// keymap, the dispatch runtime with its plugins, settings and the cycle
// loop that drives them.
package app

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/metric"

	"github.com/dshills/keystrike/internal/config"
	"github.com/dshills/keystrike/internal/hid"
	"github.com/dshills/keystrike/internal/input"
	"github.com/dshills/keystrike/internal/input/keymap"
	"github.com/dshills/keystrike/internal/led"
	"github.com/dshills/keystrike/internal/plugin/autoshift"
	"github.com/dshills/keystrike/internal/plugin/holdtap"
	"github.com/dshills/keystrike/internal/plugin/lua"
	"github.com/dshills/keystrike/internal/plugin/multitap"
	"github.com/dshills/keystrike/internal/plugin/macros"
	"github.com/dshills/keystrike/internal/plugin/rapidfire"
	"github.com/dshills/keystrike/internal/plugin/syster"
	"github.com/dshills/keystrike/internal/settings"
	"github.com/dshills/keystrike/internal/storage"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the TOML configuration file. A missing file means
	// defaults.
	ConfigPath string

	// Environ overrides the process environment for KEYSTRIKE_* lookups.
	Environ map[string]string

	// Watch reloads the configuration file when it changes.
	Watch bool

	// LogOutput receives log lines. Nil discards them.
	LogOutput io.Writer

	// Sink receives host reports. Nil discards them.
	Sink hid.Sink

	// LEDs receives LED colors. Nil discards them.
	LEDs led.Sink

	// Clock drives the runtime. Nil uses the system clock.
	Clock input.Clock

	// MeterProvider is used when metrics are enabled. Nil creates an
	// in-process provider whose totals are logged at shutdown.
	MeterProvider metric.MeterProvider
}

// Application owns every keystrike component. The runtime and everything
// reachable from it belong to the cycle loop; other goroutines reach them
// only through Execute.
type Application struct {
	opts   Options
	cfg    *config.Config
	runID  string
	logger *slog.Logger

	store    storage.Store
	keymap   *keymap.Keymap
	keyboard *hid.Keyboard
	runtime  *input.Runtime
	metrics  *meterState

	autoShift *autoshift.AutoShift
	holdTap   *holdtap.HoldTap
	multiTap  *multitap.Controller
	rapidFire *rapidfire.RapidFire
	syster    *syster.Syster
	macros    *macros.Macros
	script    *lua.Behavior

	settings *settings.Manager
	commands *settings.Commands
	watcher  *config.Watcher

	requests chan request
	running  atomic.Bool
	// stopped is closed when the current Run returns.
	stopped chan struct{}
	runMu   sync.Mutex
	closed   atomic.Bool
	done     chan struct{}
	closeMu  sync.Mutex
	loop     sync.WaitGroup
}

// New creates an application with every component initialized. Nothing
// runs until Run or RunScenario.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:     opts,
		requests: make(chan request),
		done:     make(chan struct{}),
	}
	if err := app.bootstrap(); err != nil {
		app.Shutdown()
		return nil, err
	}
	return app, nil
}

// IsRunning returns true while Run is executing.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// RunID returns the id attached to every log line of this run.
func (app *Application) RunID() string {
	return app.runID
}

// Config returns the configuration the application started with.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Logger returns the application logger.
func (app *Application) Logger() *slog.Logger {
	return app.logger
}

// Runtime returns the dispatch runtime.
func (app *Application) Runtime() *input.Runtime {
	return app.runtime
}

// Keymap returns the keymap.
func (app *Application) Keymap() *keymap.Keymap {
	return app.keymap
}

// Settings returns the settings manager.
func (app *Application) Settings() *settings.Manager {
	return app.settings
}

// AutoShift returns the auto-shift resolver.
func (app *Application) AutoShift() *autoshift.AutoShift {
	return app.autoShift
}

// HoldTap returns the hold-tap resolver.
func (app *Application) HoldTap() *holdtap.HoldTap {
	return app.holdTap
}

// MultiTap returns the multi-tap controller.
func (app *Application) MultiTap() *multitap.Controller {
	return app.multiTap
}

// RapidFire returns the rapid-fire plugin.
func (app *Application) RapidFire() *rapidfire.RapidFire {
	return app.rapidFire
}

// Syster returns the symbol input plugin.
func (app *Application) Syster() *syster.Syster {
	return app.syster
}

// Macros returns the macro player.
func (app *Application) Macros() *macros.Macros {
	return app.macros
}
