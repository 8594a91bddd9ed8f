package key

import "fmt"

// ID is the serial number of an event, drawn from a small cyclic counter.
type ID uint8

// Since returns the signed distance from other to id, computed with
// wrapping subtraction. The result is only meaningful while the two ids are
// less than half the counter range (128) apart.
func (id ID) Since(other ID) int8 {
	return int8(id - other)
}

// After reports whether id is strictly newer than other.
func (id ID) After(other ID) bool {
	return id.Since(other) > 0
}

// IDCounter hands out event ids. One counter is owned by the runtime that
// creates events; it is not shared between runtimes.
type IDCounter struct {
	next ID
}

// Next returns a fresh id and advances the counter.
func (c *IDCounter) Next() ID {
	id := c.next
	c.next++
	return id
}

// Peek returns the id the next call to Next will return.
func (c *IDCounter) Peek() ID {
	return c.next
}

// Event is one logical occurrence of a physical key transition.
type Event struct {
	// Addr is the physical location, or AddrNone for injected events.
	Addr Addr

	// State holds the transition bits.
	State State

	// Key is the logical key currently associated with the event.
	// Plugins may rewrite it.
	Key Key

	// ID orders the event relative to other events.
	ID ID
}

// NewEvent creates an event with a fresh id from the counter.
func NewEvent(ids *IDCounter, addr Addr, state State, k Key) Event {
	return Event{
		Addr:  addr,
		State: state,
		Key:   k,
		ID:    ids.Next(),
	}
}

// Regenerate creates an event that explicitly reuses an existing id.
func Regenerate(addr Addr, state State, k Key, id ID) Event {
	return Event{
		Addr:  addr,
		State: state,
		Key:   k,
		ID:    id,
	}
}

// SwapID exchanges ids with other.
func (e *Event) SwapID(other *Event) {
	e.ID, other.ID = other.ID, e.ID
}

// String returns a readable representation for logs and test failures.
func (e Event) String() string {
	return fmt.Sprintf("Event{addr=%s state=%s key=%s id=%d}", e.Addr, e.State, e.Key, e.ID)
}
