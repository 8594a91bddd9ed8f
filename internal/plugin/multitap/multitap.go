// Package multitap lets one key produce different keys depending on how
// many times it is tapped in quick succession.
//
// Presses of a multi-tap key are queued together with every release that
// arrives while the sequence is open. The sequence ends when another key is
// pressed (Interrupt) or nothing happens for the timeout (Timeout). A
// Behavior decides which key the queued press becomes; the controller only
// sequences events so that nothing is delivered out of order or lost.
package multitap

import (
	"log/slog"

	"github.com/dshills/keystrike/internal/input"
	"github.com/dshills/keystrike/internal/input/key"
	"github.com/dshills/keystrike/internal/input/tracker"
)

// DefaultTimeout is the quiet time in milliseconds that ends a sequence.
const DefaultTimeout uint16 = 200

// Name is the plugin name used in logs and metrics.
const Name = "multitap"

// Option configures a Controller.
type Option func(*Controller)

// WithBehavior sets the behavior. Defaults to an empty TableBehavior.
func WithBehavior(b Behavior) Option {
	return func(c *Controller) {
		if b != nil {
			c.behavior = b
		}
	}
}

// WithTimeout sets the sequence timeout in milliseconds.
func WithTimeout(ms uint16) Option {
	return func(c *Controller) {
		c.timeout = ms
	}
}

// WithEnabled sets the initial enabled state.
func WithEnabled(enabled bool) Option {
	return func(c *Controller) {
		c.enabled = enabled
	}
}

// WithLogger sets the logger. Defaults to the runtime's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller is the multi-tap queue resolver.
type Controller struct {
	rt       *input.Runtime
	tracker  *tracker.Tracker
	logger   *slog.Logger
	behavior Behavior

	queue    *Queue
	tapCount uint8
	timeout  uint16
	enabled  bool
}

// New creates a multi-tap controller.
func New(rt *input.Runtime, opts ...Option) *Controller {
	c := &Controller{
		rt:       rt,
		tracker:  tracker.New(),
		logger:   rt.Logger(),
		behavior: TableBehavior{},
		queue:    NewQueue(),
		timeout:  DefaultTimeout,
		enabled:  true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements input.Named.
func (c *Controller) Name() string {
	return Name
}

// OnPhysicalKeyEvent implements input.PhysicalKeyHandler.
func (c *Controller) OnPhysicalKeyEvent(ev *key.Event) input.Result {
	if ev.State.IsInjected() || !ev.Addr.IsValid() {
		return input.OK
	}
	if c.tracker.ShouldIgnore(*ev) {
		return input.OK
	}
	if !c.enabled {
		return c.tracker.Done(ev, input.OK)
	}

	if ev.State.ToggledOff() {
		if c.queue.Empty() {
			return c.tracker.Done(ev, input.OK)
		}
		if c.queue.Full() {
			c.logger.Warn("queue full, ending sequence",
				"resolver", Name,
				"len", c.queue.Len(),
			)
			c.resolve(Timeout)
			return c.tracker.Done(ev, input.OK)
		}
		return c.hold(ev)
	}

	if !ev.State.ToggledOn() {
		return c.tracker.Done(ev, input.OK)
	}

	_, isMultiTap := ev.Key.MultiTapIndex()
	if c.queue.Empty() && !isMultiTap {
		return c.tracker.Done(ev, input.OK)
	}

	if head, ok := c.queue.Head(); ok && ev.Addr != head.Event.Addr {
		c.resolve(Interrupt)
		if !isMultiTap {
			return c.tracker.Done(ev, input.OK)
		}
	}

	// Another tap of the same key: the earlier press and release of this
	// key are dropped and the new press becomes the head.
	c.flushQueue(ev.Addr)
	r := c.hold(ev)
	c.tapCount++
	index, _ := ev.Key.MultiTapIndex()
	c.act(index, ev.Addr, Tap)
	return r
}

// AfterEachCycle implements input.CycleHandler.
func (c *Controller) AfterEachCycle() input.Result {
	head, ok := c.queue.Head()
	if !ok {
		return input.OK
	}
	if c.rt.HasTimeExpired(head.Timestamp, uint32(c.timeout)) {
		c.resolve(Timeout)
	}
	return input.OK
}

// hold marks ev as processed and queues a copy of it.
func (c *Controller) hold(ev *key.Event) input.Result {
	r := c.tracker.Done(ev, input.Abort)
	c.queue.Append(*ev, c.rt.MillisAtCycleStart())
	return r
}

// resolve ends the open sequence: the behavior picks the head's key, then
// everything still queued is forwarded.
func (c *Controller) resolve(action Action) {
	head, ok := c.queue.Head()
	if !ok {
		return
	}
	index, _ := c.indexAt(head.Event)
	c.act(index, head.Event.Addr, action)
	c.flushQueue(key.AddrNone)
	c.tapCount = 0
	c.rt.Resolved(Name, action.String())
}

func (c *Controller) act(index uint8, addr key.Addr, action Action) {
	c.logger.Debug("multi-tap action",
		"resolver", Name,
		"index", int(index),
		"addr", addr.String(),
		"taps", int(c.tapCount),
		"action", action.String(),
	)
	c.behavior.Act(c, index, addr, c.tapCount, action)
}

// indexAt finds the multi-tap index of a queued press, looking the address
// up on the current layers first.
func (c *Controller) indexAt(ev key.Event) (uint8, bool) {
	if idx, ok := c.rt.Keymap().Lookup(ev.Addr).MultiTapIndex(); ok {
		return idx, true
	}
	return ev.Key.MultiTapIndex()
}

// flushQueue forwards every queued event except those from skip, and
// empties the queue.
func (c *Controller) flushQueue(skip key.Addr) {
	for !c.queue.Empty() {
		head, _ := c.queue.Head()
		c.queue.Shift()
		if head.Event.Addr != skip {
			c.rt.HandlePhysicalKeyEvent(head.Event)
		}
	}
}

// ActionKeys delivers the key chosen by tapCount for the head of the
// queue: keys[tapCount-1], or the last key if there were more taps than
// keys.
//
// On Interrupt and Timeout the head press is delivered and removed. On Tap
// it is delivered only once the sequence has reached the last key; the
// queue is then cleared and a new sequence starts with the next tap.
func (c *Controller) ActionKeys(tapCount uint8, action Action, keys ...key.Key) {
	head, ok := c.queue.Head()
	if !ok || len(keys) == 0 {
		return
	}

	n := int(tapCount)
	if n > len(keys) {
		n = len(keys)
	}
	if n < 1 {
		n = 1
	}
	ev := head.Event
	ev.Key = keys[n-1]

	switch {
	case action == Interrupt || action == Timeout:
		c.rt.HandlePhysicalKeyEvent(ev)
		c.queue.Shift()
	case action == Tap && int(tapCount) == len(keys):
		c.rt.HandlePhysicalKeyEvent(ev)
		c.queue.Clear()
		c.tapCount = 0
		c.rt.Resolved(Name, "complete")
	}
}

// Runtime returns the runtime the controller dispatches through, for
// behaviors that inject their own events.
func (c *Controller) Runtime() *input.Runtime {
	return c.rt
}

// TapCount returns the taps counted in the open sequence.
func (c *Controller) TapCount() uint8 {
	return c.tapCount
}

// Queue returns the event queue, for inspection.
func (c *Controller) Queue() *Queue {
	return c.queue
}

// Enabled reports whether the controller is active.
func (c *Controller) Enabled() bool {
	return c.enabled
}

// SetEnabled turns the controller on or off. Turning it off forwards every
// queued event unmodified first.
func (c *Controller) SetEnabled(enabled bool) {
	if !enabled && !c.queue.Empty() {
		c.flushQueue(key.AddrNone)
		c.tapCount = 0
		c.rt.Resolved(Name, "disabled")
	}
	c.enabled = enabled
}

// Enable turns the controller on.
func (c *Controller) Enable() {
	c.SetEnabled(true)
}

// Disable turns the controller off.
func (c *Controller) Disable() {
	c.SetEnabled(false)
}

// Timeout returns the sequence timeout in milliseconds.
func (c *Controller) Timeout() uint16 {
	return c.timeout
}

// SetTimeout sets the sequence timeout in milliseconds.
func (c *Controller) SetTimeout(ms uint16) {
	c.timeout = ms
}

// Behavior returns the current behavior.
func (c *Controller) Behavior() Behavior {
	return c.behavior
}

// SetBehavior replaces the behavior.
func (c *Controller) SetBehavior(b Behavior) {
	if b != nil {
		c.behavior = b
	}
}
