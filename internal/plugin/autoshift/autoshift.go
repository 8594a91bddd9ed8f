// Package autoshift produces shifted characters from long presses.
//
// An eligible key press is held back. If the key is released before the
// timeout it is delivered as typed; if it is still held when the timeout
// expires it is delivered with Shift applied. Any other key press flushes
// the held key unchanged first, so typing order is preserved.
package autoshift

import (
	"log/slog"

	"github.com/dshills/keystrike/internal/input"
	"github.com/dshills/keystrike/internal/input/key"
	"github.com/dshills/keystrike/internal/input/tracker"
)

// DefaultTimeout is the hold time in milliseconds that produces a shifted key.
const DefaultTimeout uint16 = 175

// Name is the plugin name used in logs and metrics.
const Name = "autoshift"

// Option configures an AutoShift.
type Option func(*AutoShift)

// WithTimeout sets the hold time in milliseconds.
func WithTimeout(ms uint16) Option {
	return func(a *AutoShift) {
		a.timeout = ms
	}
}

// WithClasses sets the enabled key classes.
func WithClasses(c Class) Option {
	return func(a *AutoShift) {
		a.classes = c
	}
}

// WithEligibility replaces the eligibility strategy.
func WithEligibility(fn EligibilityFunc) Option {
	return func(a *AutoShift) {
		if fn != nil {
			a.eligible = fn
		}
	}
}

// WithEnabled sets the initial enabled state.
func WithEnabled(enabled bool) Option {
	return func(a *AutoShift) {
		a.enabled = enabled
	}
}

// WithLogger sets the logger. Defaults to the runtime's logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *AutoShift) {
		if l != nil {
			a.logger = l
		}
	}
}

// AutoShift is a single-pending timeout resolver.
type AutoShift struct {
	rt       *input.Runtime
	tracker  *tracker.Tracker
	logger   *slog.Logger
	eligible EligibilityFunc

	enabled bool
	timeout uint16
	classes Class

	pending    key.Event
	hasPending bool
	start      uint32
}

// New creates an auto-shift resolver dispatching through rt.
func New(rt *input.Runtime, opts ...Option) *AutoShift {
	a := &AutoShift{
		rt:       rt,
		tracker:  tracker.New(),
		logger:   rt.Logger(),
		eligible: DefaultEligibility,
		enabled:  true,
		timeout:  DefaultTimeout,
		classes:  AllClasses,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements input.Named.
func (a *AutoShift) Name() string {
	return Name
}

// OnPhysicalKeyEvent implements input.PhysicalKeyHandler.
func (a *AutoShift) OnPhysicalKeyEvent(ev *key.Event) input.Result {
	if ev.State.IsInjected() || !ev.Addr.IsValid() {
		return input.OK
	}
	if a.tracker.ShouldIgnore(*ev) {
		return input.OK
	}

	if ev.Key == key.AutoShiftToggle {
		if ev.State.ToggledOn() {
			a.SetEnabled(!a.enabled)
		}
		return a.tracker.Done(ev, input.Consumed)
	}

	if !a.enabled {
		return a.tracker.Done(ev, input.OK)
	}

	switch {
	case ev.State.ToggledOn():
		if a.hasPending {
			a.flush("interrupt")
		}
		if a.eligible(ev.Key, a.classes) {
			r := a.tracker.Done(ev, input.Abort)
			a.pending = *ev
			a.hasPending = true
			a.start = a.rt.MillisAtCycleStart()
			a.logger.Debug("holding key",
				"resolver", Name,
				"addr", ev.Addr.String(),
				"key", ev.Key.String(),
				"id", int(ev.ID),
			)
			return r
		}

	case ev.State.ToggledOff() && a.hasPending:
		if ev.Addr == a.pending.Addr {
			a.flush("tap")
			return a.tracker.Done(ev, input.OK)
		}
		if a.tracker.Reassign(ev, &a.pending) {
			return input.OK
		}
	}

	return a.tracker.Done(ev, input.OK)
}

// AfterEachCycle implements input.CycleHandler.
func (a *AutoShift) AfterEachCycle() input.Result {
	if !a.hasPending {
		return input.OK
	}
	if !a.rt.HasTimeExpired(a.start, uint32(a.timeout)) {
		return input.OK
	}

	ev := a.pending
	ev.Key = ev.Key.ToggleFlags(key.ShiftHeld)
	a.hasPending = false
	a.logger.Debug("timeout, shifting",
		"resolver", Name,
		"addr", ev.Addr.String(),
		"key", ev.Key.String(),
		"id", int(ev.ID),
	)
	a.rt.Resolved(Name, "timeout")
	a.rt.HandlePhysicalKeyEvent(ev)
	return input.OK
}

// flush forwards the pending event unmodified.
func (a *AutoShift) flush(reason string) {
	ev := a.pending
	a.hasPending = false
	a.logger.Debug("flushing",
		"resolver", Name,
		"reason", reason,
		"addr", ev.Addr.String(),
		"key", ev.Key.String(),
		"id", int(ev.ID),
	)
	a.rt.Resolved(Name, reason)
	a.rt.HandlePhysicalKeyEvent(ev)
}

// Pending returns the held event, if any.
func (a *AutoShift) Pending() (key.Event, bool) {
	return a.pending, a.hasPending
}

// Enabled reports whether the resolver is active.
func (a *AutoShift) Enabled() bool {
	return a.enabled
}

// SetEnabled turns the resolver on or off. Turning it off forwards any
// held event unmodified first.
func (a *AutoShift) SetEnabled(enabled bool) {
	if !enabled && a.hasPending {
		a.flush("disabled")
	}
	a.enabled = enabled
}

// Enable turns the resolver on.
func (a *AutoShift) Enable() {
	a.SetEnabled(true)
}

// Disable turns the resolver off.
func (a *AutoShift) Disable() {
	a.SetEnabled(false)
}

// Timeout returns the hold time in milliseconds.
func (a *AutoShift) Timeout() uint16 {
	return a.timeout
}

// SetTimeout sets the hold time in milliseconds.
func (a *AutoShift) SetTimeout(ms uint16) {
	a.timeout = ms
}

// Classes returns the enabled key classes.
func (a *AutoShift) Classes() Class {
	return a.classes
}

// SetClasses replaces the enabled key classes.
func (a *AutoShift) SetClasses(c Class) {
	a.classes = c
}

// EnableClass adds c to the enabled classes.
func (a *AutoShift) EnableClass(c Class) {
	a.classes |= c
}

// DisableClass removes c from the enabled classes.
func (a *AutoShift) DisableClass(c Class) {
	a.classes &^= c
}
