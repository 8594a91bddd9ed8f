package multitap

import (
	"maps"
	"slices"

	"github.com/dshills/keystrike/internal/input/key"
)

// Action tells a Behavior why it is being called.
type Action uint8

const (
	// Tap is reported after every press of the multi-tap key.
	Tap Action = iota
	// Interrupt is reported when another key is pressed mid-sequence.
	Interrupt
	// Timeout is reported when the sequence went quiet for too long.
	Timeout
)

// String returns a string representation of the action.
func (a Action) String() string {
	switch a {
	case Tap:
		return "tap"
	case Interrupt:
		return "interrupt"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Behavior decides which key a multi-tap sequence produces. It receives
// the multi-tap index, the address of the key, the number of taps so far
// and the action, and usually answers by calling Controller.ActionKeys.
type Behavior interface {
	Act(c *Controller, index uint8, addr key.Addr, tapCount uint8, action Action)
}

// BehaviorFunc adapts a function to Behavior.
type BehaviorFunc func(c *Controller, index uint8, addr key.Addr, tapCount uint8, action Action)

// Act implements Behavior.
func (f BehaviorFunc) Act(c *Controller, index uint8, addr key.Addr, tapCount uint8, action Action) {
	f(c, index, addr, tapCount, action)
}

// TableBehavior maps each multi-tap index to the keys produced by one,
// two, three... taps.
type TableBehavior map[uint8][]key.Key

// Act implements Behavior.
func (t TableBehavior) Act(c *Controller, index uint8, _ key.Addr, tapCount uint8, action Action) {
	keys, ok := t[index]
	if !ok {
		return
	}
	c.ActionKeys(tapCount, action, keys...)
}

// Indexes returns the configured indexes in ascending order.
func (t TableBehavior) Indexes() []uint8 {
	return slices.Sorted(maps.Keys(t))
}
