// Package holdtap gives mapped keys a second meaning when held.
//
// A press of a key listed in the binding table is held back. Released
// before its timeout, the key is delivered as typed. Still held when the
// timeout expires, the binding's output key is delivered instead and stays
// pressed until the physical key is released. Pressing any other key while
// a mapped key is undecided delivers the mapped key as typed.
package holdtap

import (
	"log/slog"
	"slices"

	"github.com/dshills/keystrike/internal/input"
	"github.com/dshills/keystrike/internal/input/key"
	"github.com/dshills/keystrike/internal/input/tracker"
)

// DefaultTimeout is the hold time in milliseconds used by bindings without
// their own timeout.
const DefaultTimeout uint16 = 200

// Name is the plugin name used in logs and metrics.
const Name = "holdtap"

// Option configures a HoldTap.
type Option func(*HoldTap)

// WithBindings sets the binding table.
func WithBindings(b []Binding) Option {
	return func(h *HoldTap) {
		h.bindings = slices.Clone(b)
	}
}

// WithTimeout sets the global hold time in milliseconds.
func WithTimeout(ms uint16) Option {
	return func(h *HoldTap) {
		h.timeout = ms
	}
}

// WithEnabled sets the initial enabled state.
func WithEnabled(enabled bool) Option {
	return func(h *HoldTap) {
		h.enabled = enabled
	}
}

// WithLogger sets the logger. Defaults to the runtime's logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *HoldTap) {
		if l != nil {
			h.logger = l
		}
	}
}

// HoldTap is a mapped single-slot resolver.
type HoldTap struct {
	rt      *input.Runtime
	tracker *tracker.Tracker
	logger  *slog.Logger

	bindings []Binding
	timeout  uint16
	enabled  bool

	pending    key.Event
	hasPending bool
	index      int
	start      uint32
}

// New creates a hold-tap resolver with the default bindings.
func New(rt *input.Runtime, opts ...Option) *HoldTap {
	h := &HoldTap{
		rt:       rt,
		tracker:  tracker.New(),
		logger:   rt.Logger(),
		bindings: DefaultBindings(),
		timeout:  DefaultTimeout,
		enabled:  true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Name implements input.Named.
func (h *HoldTap) Name() string {
	return Name
}

// OnPhysicalKeyEvent implements input.PhysicalKeyHandler.
func (h *HoldTap) OnPhysicalKeyEvent(ev *key.Event) input.Result {
	if ev.State.IsInjected() || !ev.Addr.IsValid() {
		return input.OK
	}
	if h.tracker.ShouldIgnore(*ev) {
		return input.OK
	}

	switch ev.Key {
	case key.HoldTapEnable, key.HoldTapDisable:
		if ev.State.ToggledOn() {
			h.SetEnabled(ev.Key == key.HoldTapEnable)
		}
		return h.tracker.Done(ev, input.Consumed)
	}

	if !h.enabled {
		return h.tracker.Done(ev, input.OK)
	}

	switch {
	case ev.State.ToggledOn():
		if h.hasPending {
			h.flush("interrupt")
		}
		if i := h.lookup(ev.Key); i >= 0 {
			r := h.tracker.Done(ev, input.Abort)
			h.pending = *ev
			h.hasPending = true
			h.index = i
			h.start = h.rt.MillisAtCycleStart()
			h.logger.Debug("holding key",
				"resolver", Name,
				"addr", ev.Addr.String(),
				"key", ev.Key.String(),
				"id", int(ev.ID),
			)
			return r
		}

	case ev.State.ToggledOff() && h.hasPending:
		if ev.Addr == h.pending.Addr {
			h.flush("tap")
			return h.tracker.Done(ev, input.OK)
		}
		if h.tracker.Reassign(ev, &h.pending) {
			return input.OK
		}
	}

	return h.tracker.Done(ev, input.OK)
}

// AfterEachCycle implements input.CycleHandler.
func (h *HoldTap) AfterEachCycle() input.Result {
	if !h.hasPending {
		return input.OK
	}
	b := h.bindings[h.index]
	ttl := b.Timeout
	if ttl == 0 {
		ttl = h.timeout
	}
	if !h.rt.HasTimeExpired(h.start, uint32(ttl)) {
		return input.OK
	}

	ev := h.pending
	ev.Key = b.Output
	h.hasPending = false
	h.logger.Debug("held past timeout",
		"resolver", Name,
		"addr", ev.Addr.String(),
		"key", ev.Key.String(),
		"id", int(ev.ID),
	)
	h.rt.Resolved(Name, "hold")
	h.rt.HandlePhysicalKeyEvent(ev)
	return input.OK
}

func (h *HoldTap) lookup(k key.Key) int {
	for i, b := range h.bindings {
		if b.Input == k {
			return i
		}
	}
	return -1
}

// flush forwards the pending event with its original key.
func (h *HoldTap) flush(reason string) {
	ev := h.pending
	h.hasPending = false
	h.logger.Debug("flushing",
		"resolver", Name,
		"reason", reason,
		"addr", ev.Addr.String(),
		"key", ev.Key.String(),
		"id", int(ev.ID),
	)
	h.rt.Resolved(Name, reason)
	h.rt.HandlePhysicalKeyEvent(ev)
}

// Pending returns the held event, if any.
func (h *HoldTap) Pending() (key.Event, bool) {
	return h.pending, h.hasPending
}

// Enabled reports whether the resolver is active.
func (h *HoldTap) Enabled() bool {
	return h.enabled
}

// SetEnabled turns the resolver on or off. Turning it off forwards any
// held event unmodified first.
func (h *HoldTap) SetEnabled(enabled bool) {
	if !enabled && h.hasPending {
		h.flush("disabled")
	}
	h.enabled = enabled
}

// Enable turns the resolver on.
func (h *HoldTap) Enable() {
	h.SetEnabled(true)
}

// Disable turns the resolver off.
func (h *HoldTap) Disable() {
	h.SetEnabled(false)
}

// Timeout returns the global hold time in milliseconds.
func (h *HoldTap) Timeout() uint16 {
	return h.timeout
}

// SetTimeout sets the global hold time in milliseconds.
func (h *HoldTap) SetTimeout(ms uint16) {
	h.timeout = ms
}

// Bindings returns a copy of the binding table.
func (h *HoldTap) Bindings() []Binding {
	return slices.Clone(h.bindings)
}

// SetBindings replaces the binding table. A held key is flushed first,
// since its table entry may no longer exist.
func (h *HoldTap) SetBindings(b []Binding) {
	if h.hasPending {
		h.flush("rebind")
	}
	h.bindings = slices.Clone(b)
}
