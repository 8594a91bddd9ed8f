package multitap

import "github.com/dshills/keystrike/internal/input/key"

// QueueCapacity is the number of events a Queue holds.
const QueueCapacity = 32

// Entry is a queued event and the cycle time it was queued at.
type Entry struct {
	Event     key.Event
	Timestamp uint32
}

// Queue is a bounded FIFO of held events.
type Queue struct {
	entries []Entry
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{entries: make([]Entry, 0, QueueCapacity)}
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return len(q.entries)
}

// Empty reports whether the queue holds nothing.
func (q *Queue) Empty() bool {
	return len(q.entries) == 0
}

// Full reports whether Append would be rejected.
func (q *Queue) Full() bool {
	return len(q.entries) >= QueueCapacity
}

// Append adds an event at the tail. It returns false, leaving the queue
// unchanged, when the queue is full.
func (q *Queue) Append(ev key.Event, now uint32) bool {
	if q.Full() {
		return false
	}
	q.entries = append(q.entries, Entry{Event: ev, Timestamp: now})
	return true
}

// Head returns the oldest entry.
func (q *Queue) Head() (Entry, bool) {
	if q.Empty() {
		return Entry{}, false
	}
	return q.entries[0], true
}

// At returns entry i, counted from the head.
func (q *Queue) At(i int) (Entry, bool) {
	if i < 0 || i >= len(q.entries) {
		return Entry{}, false
	}
	return q.entries[i], true
}

// Shift removes the head.
func (q *Queue) Shift() {
	if q.Empty() {
		return
	}
	copy(q.entries, q.entries[1:])
	q.entries = q.entries[:len(q.entries)-1]
}

// Clear removes every entry.
func (q *Queue) Clear() {
	q.entries = q.entries[:0]
}
