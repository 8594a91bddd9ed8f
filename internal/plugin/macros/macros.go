// Package macros plays key sequences bound to macro keys.
//
// A Behavior picks the Macro for a macro key. Keys pressed by a macro stay
// in every report until the macro releases them or the macro key itself is
// released.
package macros

import (
	"log/slog"
	"slices"

	"github.com/dshills/keystrike/internal/input"
	"github.com/dshills/keystrike/internal/input/key"
)

// Name is the plugin name used in logs and metrics.
const Name = "macros"

// MaxActiveKeys bounds how many keys macros can hold down at once.
const MaxActiveKeys = 8

// Behavior picks the macro to play for a macro key event. It is called on
// both press and release; returning nil plays nothing.
type Behavior interface {
	Action(m *Macros, id uint8, ev key.Event) Macro
}

// BehaviorFunc adapts a function to Behavior.
type BehaviorFunc func(m *Macros, id uint8, ev key.Event) Macro

// Action implements Behavior.
func (f BehaviorFunc) Action(m *Macros, id uint8, ev key.Event) Macro {
	return f(m, id, ev)
}

// TableBehavior plays the macro stored under a key's id when it is pressed.
type TableBehavior map[uint8]Macro

// Action implements Behavior.
func (t TableBehavior) Action(_ *Macros, id uint8, ev key.Event) Macro {
	if !ev.State.ToggledOn() {
		return nil
	}
	return t[id]
}

// Option configures Macros.
type Option func(*Macros)

// WithBehavior sets the behavior. Defaults to an empty table.
func WithBehavior(b Behavior) Option {
	return func(m *Macros) {
		if b != nil {
			m.behavior = b
		}
	}
}

// WithEnabled sets whether macro keys are played.
func WithEnabled(enabled bool) Option {
	return func(m *Macros) {
		m.enabled = enabled
	}
}

// WithLogger sets the logger. Defaults to the runtime's logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Macros) {
		if l != nil {
			m.logger = l
		}
	}
}

// Macros is the macro player.
type Macros struct {
	rt       *input.Runtime
	logger   *slog.Logger
	behavior Behavior
	enabled  bool

	active []key.Key
	played uint64
}

// New creates a macro player.
func New(rt *input.Runtime, opts ...Option) *Macros {
	m := &Macros{
		rt:       rt,
		logger:   rt.Logger(),
		behavior: TableBehavior{},
		enabled:  true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name implements input.Named.
func (m *Macros) Name() string {
	return Name
}

// OnKeyEvent implements input.KeyHandler.
func (m *Macros) OnKeyEvent(ev *key.Event) input.Result {
	id, ok := ev.Key.MacroID()
	if !ok {
		return input.OK
	}
	if !m.enabled {
		return input.Consumed
	}

	if macro := m.behavior.Action(m, id, *ev); len(macro) > 0 {
		m.logger.Debug("playing macro",
			"plugin", Name,
			"id", int(id),
			"steps", len(macro),
		)
		m.Play(macro)
		m.played++
		m.rt.Resolved(Name, "played")
	}
	if ev.State.ToggledOff() && len(m.active) > 0 {
		m.active = m.active[:0]
		m.rt.InjectKey(key.WasPressed, key.NoKey)
	}
	return input.Consumed
}

// BeforeReportingState implements input.ReportHandler.
func (m *Macros) BeforeReportingState(key.Event) input.Result {
	kb := m.rt.Keyboard()
	for _, k := range m.active {
		kb.Press(k)
	}
	return input.OK
}

// Play runs every step of macro in order.
func (m *Macros) Play(macro Macro) {
	for _, step := range macro {
		switch step.Kind {
		case Press:
			m.Press(step.Key)
		case Release:
			m.Release(step.Key)
		case Tap:
			m.Tap(step.Key)
		case Type:
			m.Type(step.Text)
		}
	}
}

// Press presses k and keeps it held until Release.
func (m *Macros) Press(k key.Key) {
	if len(m.active) < MaxActiveKeys {
		m.active = append(m.active, k)
	} else {
		m.logger.Warn("too many macro keys held, pressing once",
			"plugin", Name,
			"key", k.String(),
			"max", MaxActiveKeys,
		)
	}
	m.rt.InjectKey(key.IsPressed, k)
}

// Release releases k.
func (m *Macros) Release(k key.Key) {
	m.active = slices.DeleteFunc(m.active, func(a key.Key) bool { return a == k })
	m.rt.InjectKey(key.WasPressed, k)
}

// Tap presses and releases k.
func (m *Macros) Tap(k key.Key) {
	m.rt.InjectKey(key.IsPressed, k)
	m.rt.InjectKey(key.WasPressed, k)
}

// Type taps the keys for text. Characters without a key are skipped.
func (m *Macros) Type(text string) {
	for _, r := range text {
		k, ok := CharKey(r)
		if !ok {
			m.logger.Warn("cannot type character", "plugin", Name, "char", string(r))
			continue
		}
		m.Tap(k)
	}
}

// Active returns the keys macros currently hold.
func (m *Macros) Active() []key.Key {
	return slices.Clone(m.active)
}

// Played returns how many macros have been played.
func (m *Macros) Played() uint64 {
	return m.played
}

// Enabled reports whether macro keys are played.
func (m *Macros) Enabled() bool {
	return m.enabled
}

// SetEnabled turns macro playback on or off. Turning it off releases every
// key macros hold.
func (m *Macros) SetEnabled(enabled bool) {
	if !enabled && len(m.active) > 0 {
		m.active = m.active[:0]
		m.rt.InjectKey(key.WasPressed, key.NoKey)
	}
	m.enabled = enabled
}

// Behavior returns the current behavior.
func (m *Macros) Behavior() Behavior {
	return m.behavior
}

// SetBehavior replaces the behavior.
func (m *Macros) SetBehavior(b Behavior) {
	if b != nil {
		m.behavior = b
	}
}
