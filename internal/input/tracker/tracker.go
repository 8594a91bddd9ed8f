// Package tracker sequences key events for a single plugin.
//
// A plugin that holds events back and re-injects them later sees its own
// events again on the way back through the dispatch chain. A Tracker
// remembers the newest event id the plugin has finished with, so those
// echoes are recognised and passed through untouched.
package tracker

import (
	"github.com/dshills/keystrike/internal/input"
	"github.com/dshills/keystrike/internal/input/key"
)

// initialLast is -1 as an int8, so id 0 is the first one accepted.
const initialLast key.ID = 0xFF

// Tracker records the last event id a plugin has processed.
// Each plugin instance owns its own Tracker.
type Tracker struct {
	last key.ID
}

// New returns a tracker that has seen nothing yet.
func New() *Tracker {
	return &Tracker{last: initialLast}
}

// Reset forgets every event seen so far.
func (t *Tracker) Reset() {
	t.last = initialLast
}

// Last returns the high-water mark.
func (t *Tracker) Last() key.ID {
	return t.last
}

// ShouldIgnore reports whether ev has already been processed.
func (t *Tracker) ShouldIgnore(ev key.Event) bool {
	return ev.ID.Since(t.last) <= 0
}

// Done marks ev as processed and returns r unchanged, so a handler can end
// with `return tr.Done(ev, input.Abort)`.
//
// If ev is not newer than the high-water mark, its id is bumped to
// last+1 first. That keeps the mark strictly increasing even when an event
// is re-injected with an id that was swapped away.
func (t *Tracker) Done(ev *key.Event, r input.Result) input.Result {
	if ev.ID.Since(t.last) <= 0 {
		ev.ID = t.last + 1
	}
	t.last = ev.ID
	return r
}

// Reassign is used when a release of another key passes while held is
// pending. If passing is newer than held, their ids are swapped so the
// release goes out with the older id and held keeps the newer one, and the
// mark moves to held's new id so its later re-injection is still ignored.
//
// This keeps ordering for exactly one pending event. With several pending
// events the swap cannot restore every relation and ids may be bumped by
// Done instead.
func (t *Tracker) Reassign(passing, held *key.Event) bool {
	if !passing.ID.After(held.ID) {
		return false
	}
	passing.SwapID(held)
	if held.ID.Since(t.last) > 0 {
		t.last = held.ID
	}
	return true
}
