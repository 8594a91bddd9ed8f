package input

import (
	"log/slog"

	"github.com/dshills/keystrike/internal/input/key"
	"github.com/dshills/keystrike/internal/led"
)

// DefaultMaxDepth bounds how deeply re-injected events may nest.
const DefaultMaxDepth = 16

// Option configures a Runtime.
type Option func(*Runtime)

// WithClock sets the millisecond clock. Defaults to a SystemClock.
func WithClock(c Clock) Option {
	return func(r *Runtime) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithLogger sets the logger. Defaults to discarding output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRecorder sets the measurement recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Runtime) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithMaxDepth sets the re-injection depth bound.
func WithMaxDepth(depth int) Option {
	return func(r *Runtime) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithLEDs sets the LED sink synced at the end of every cycle.
func WithLEDs(s led.Sink) Option {
	return func(r *Runtime) {
		if s != nil {
			r.leds = s
		}
	}
}

// Runtime is the dispatch chain. It owns the event id counter, the live
// key state and the registered plugins, and drives one scan cycle at a
// time. A Runtime is not safe for concurrent use; the cycle loop owns it.
type Runtime struct {
	keymap   Keymap
	keyboard Keyboard
	clock    Clock
	logger   *slog.Logger
	recorder Recorder
	leds     led.Sink
	registry *Registry
	stats    *Stats

	live       LiveKeys
	ids        key.IDCounter
	maxDepth   int
	depth      int
	cycleStart uint32
}

// NewRuntime creates a runtime resolving keys through km and sending
// reports through kb.
func NewRuntime(km Keymap, kb Keyboard, opts ...Option) *Runtime {
	r := &Runtime{
		keymap:   km,
		keyboard: kb,
		clock:    NewSystemClock(),
		logger:   slog.New(slog.DiscardHandler),
		recorder: nopRecorder{},
		leds:     led.Discard,
		registry: NewRegistry(),
		stats:    NewStats(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.cycleStart = r.clock.Millis()
	return r
}

// Register adds a plugin at normal priority. Plugins must be registered
// before the first event is dispatched.
func (r *Runtime) Register(p Plugin) (PluginID, error) {
	return r.registry.Register(p)
}

// RegisterWithPriority adds a plugin at the given priority.
func (r *Runtime) RegisterWithPriority(p Plugin, priority Priority) (PluginID, error) {
	return r.registry.RegisterWithPriority(p, priority)
}

// Registry returns the plugin registry.
func (r *Runtime) Registry() *Registry {
	return r.registry
}

// Cycle runs one scan cycle: every transition is dispatched as a fresh
// event, then every plugin gets its end-of-cycle and LED hooks.
func (r *Runtime) Cycle(transitions []Transition) {
	r.registry.Freeze()
	r.cycleStart = r.clock.Millis()

	for _, t := range transitions {
		r.HandlePhysicalKeyEvent(r.NewEvent(t.Addr, t.State, key.NoKey))
	}

	for _, h := range r.registry.cycle {
		h.AfterEachCycle()
	}
	for _, h := range r.registry.leds {
		h.BeforeSyncingLEDs()
	}
	r.leds.Sync()

	r.stats.recordCycle()
	r.recorder.RecordCycle()
}

// NewEvent creates an event with a fresh id. Fresh ids are for physical
// transitions; events a plugin synthesises go through InjectKey.
func (r *Runtime) NewEvent(addr key.Addr, state key.State, k key.Key) key.Event {
	return key.NewEvent(&r.ids, addr, state, k)
}

// LastID returns the id most recently handed out by NewEvent.
func (r *Runtime) LastID() key.ID {
	return r.ids.Peek() - 1
}

// InjectKey sends k through the key stage as an injected event without an
// address. The event reuses LastID, so injections never advance the id
// counter and cannot age out the marks resolvers keep.
func (r *Runtime) InjectKey(state key.State, k key.Key) {
	r.HandleKeyEvent(key.Regenerate(key.AddrNone, state|key.Injected, k, r.LastID()))
}

// HandlePhysicalKeyEvent dispatches ev through the physical stage and, if
// it passes, the key stage. Resolvers call it again to re-inject events
// they held back.
func (r *Runtime) HandlePhysicalKeyEvent(ev key.Event) {
	r.registry.Freeze()
	r.depth++
	defer func() { r.depth-- }()

	r.stats.recordEvent(ev.State.IsInjected())

	if ev.Key == key.NoKey && ev.Addr.IsValid() {
		switch {
		case ev.State.ToggledOn():
			ev.Key = r.keymap.Lookup(ev.Addr)
		case ev.State.ToggledOff():
			ev.Key = r.live.At(ev.Addr)
		}
	}

	if r.depth > r.maxDepth {
		r.overflow(ev)
		return
	}

	physical := r.registry.physical
	for i, h := range physical {
		switch h.OnPhysicalKeyEvent(&ev) {
		case Abort:
			r.verdict(ev, Abort)
			return
		case Consumed:
			observeRest(physical[i+1:], ev)
			r.live.update(ev)
			r.verdict(ev, Consumed)
			return
		}
	}

	r.handleKeyEvent(ev)
}

// HandleKeyEvent dispatches ev through the key stage only, then updates
// live keys and sends a report.
func (r *Runtime) HandleKeyEvent(ev key.Event) {
	r.registry.Freeze()
	r.depth++
	defer func() { r.depth-- }()

	if r.depth > r.maxDepth {
		r.overflow(ev)
		return
	}
	r.handleKeyEvent(ev)
}

func (r *Runtime) handleKeyEvent(ev key.Event) {
	if ev.Addr.IsValid() {
		switch {
		case ev.State.ToggledOff():
			ev.Key = r.live.At(ev.Addr)
		case ev.State.ToggledOn() && ev.Key == key.NoKey:
			ev.Key = r.keymap.Lookup(ev.Addr)
		}
	}

	handlers := r.registry.keys
	for i, h := range handlers {
		switch h.OnKeyEvent(&ev) {
		case Abort:
			r.verdict(ev, Abort)
			return
		case Consumed:
			observeRest(handlers[i+1:], ev)
			r.live.update(ev)
			r.verdict(ev, Consumed)
			return
		}
	}

	r.live.update(ev)
	r.sendReport(ev)
	r.verdict(ev, OK)
}

// overflow delivers an event that nested too deeply. Plugins are skipped
// but the event still reaches the report.
func (r *Runtime) overflow(ev key.Event) {
	r.logger.Warn("dispatch depth exceeded, delivering without plugins",
		"depth", r.depth,
		"max", r.maxDepth,
		"event", ev.String(),
	)
	r.stats.recordDepthOverflow()
	r.recorder.RecordDepthOverflow()

	if ev.Addr.IsValid() && ev.State.ToggledOff() {
		ev.Key = r.live.At(ev.Addr)
	}
	r.live.update(ev)
	r.sendReport(ev)
	r.verdict(ev, OK)
}

func (r *Runtime) verdict(ev key.Event, res Result) {
	r.stats.recordResult(res)
	r.recorder.RecordEvent(res, ev.State.IsInjected())
	r.logger.Debug("dispatched",
		"addr", ev.Addr.String(),
		"state", ev.State.String(),
		"key", ev.Key.String(),
		"id", int(ev.ID),
		"result", res.String(),
	)
}

// sendReport rebuilds the host report from live keys. An injected press
// without an address contributes its key for this one report. Report
// handlers then add their own keys or drop the report.
func (r *Runtime) sendReport(ev key.Event) {
	r.keyboard.ReleaseAll()
	r.live.All(func(_ key.Addr, k key.Key) {
		if k.IsKeyboardKey() {
			r.keyboard.Press(k)
		}
	})
	if !ev.Addr.IsValid() && ev.State.ToggledOn() && ev.Key.IsKeyboardKey() {
		r.keyboard.Press(ev.Key)
	}
	for _, h := range r.registry.reports {
		if h.BeforeReportingState(ev) == Abort {
			return
		}
	}
	r.keyboard.Send()
	r.stats.recordReport()
}

func observeRest[T any](rest []T, ev key.Event) {
	for _, h := range rest {
		if o, ok := any(h).(KeyObserver); ok {
			o.ObserveKeyEvent(ev)
		}
	}
}

// MillisAtCycleStart returns the clock sampled at the start of the
// current cycle.
func (r *Runtime) MillisAtCycleStart() uint32 {
	return r.cycleStart
}

// HasTimeExpired reports whether ttl milliseconds have passed since start,
// measured at the start of the current cycle.
func (r *Runtime) HasTimeExpired(start, ttl uint32) bool {
	return HasTimeExpired(r.cycleStart, start, ttl)
}

// Resolved records the outcome of a resolver decision.
func (r *Runtime) Resolved(resolver, outcome string) {
	r.stats.recordResolution()
	r.recorder.RecordResolution(resolver, outcome)
}

// LiveKeys returns read access to the live key state.
func (r *Runtime) LiveKeys() *LiveKeys {
	return &r.live
}

// Keymap returns the keymap used for lookups.
func (r *Runtime) Keymap() Keymap {
	return r.keymap
}

// Keyboard returns the report assembler.
func (r *Runtime) Keyboard() Keyboard {
	return r.keyboard
}

// LEDs returns the LED sink.
func (r *Runtime) LEDs() led.Sink {
	return r.leds
}

// Logger returns the runtime logger, for plugins that share it.
func (r *Runtime) Logger() *slog.Logger {
	return r.logger
}

// Stats returns the dispatch counters.
func (r *Runtime) Stats() *Stats {
	return r.stats
}

// Depth returns the current dispatch nesting depth.
func (r *Runtime) Depth() int {
	return r.depth
}

// ReleaseAll clears live keys and sends an empty report.
func (r *Runtime) ReleaseAll() {
	r.live.clear()
	r.keyboard.ReleaseAll()
	r.keyboard.Send()
	r.stats.recordReport()
}
