// Package notify fans setting changes out to observers.
//
// Delivery is synchronous and in subscription order, so observers run on
// the goroutine that made the change. In keystrike that is the cycle loop,
// which keeps observers free of locking against the dispatch chain.
package notify

import (
	"slices"
	"strings"
	"sync"
)

// ChangeType represents the type of change.
type ChangeType int

const (
	// ChangeSet indicates a value was set or updated.
	ChangeSet ChangeType = iota

	// ChangeReload indicates the whole configuration was reloaded.
	ChangeReload

	// ChangeCommit indicates staged values were persisted.
	ChangeCommit
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeReload:
		return "reload"
	case ChangeCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// Change describes one change.
type Change struct {
	// Path is the dotted setting name, such as "autoshift.timeout".
	// Empty for reload and commit events.
	Path string

	Type ChangeType

	// OldValue and NewValue are the formatted values.
	OldValue string
	NewValue string

	// Source identifies where the change came from ("command", "file", ...).
	Source string
}

// Observer is called when a change occurs.
type Observer func(change Change)

type subscriber struct {
	id       uint64
	path     string
	observer Observer
}

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier manages subscriptions.
type Notifier struct {
	mu     sync.RWMutex
	subs   []subscriber
	nextID uint64
	closed bool
}

// New creates a Notifier.
func New() *Notifier {
	return &Notifier{}
}

// Subscribe registers an observer for every change.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.SubscribePath("", observer)
}

// SubscribePath registers an observer for a setting and everything below
// it: "holdtap" receives "holdtap.timeout". Reload and commit events reach
// every observer.
func (n *Notifier) SubscribePath(path string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.subs = append(n.subs, subscriber{id: id, path: path, observer: observer})
	return &Subscription{id: id, notifier: n}
}

// Notify delivers change to every matching observer.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}
	var observers []Observer
	for _, s := range n.subs {
		if change.Path == "" || matches(s.path, change.Path) {
			observers = append(observers, s.observer)
		}
	}
	n.mu.RUnlock()

	// Outside the lock so observers may subscribe or notify.
	for _, obs := range observers {
		obs(change)
	}
}

// NotifySet is a convenience method for set changes.
func (n *Notifier) NotifySet(path, oldValue, newValue, source string) {
	n.Notify(Change{
		Path:     path,
		Type:     ChangeSet,
		OldValue: oldValue,
		NewValue: newValue,
		Source:   source,
	})
}

// NotifyReload is a convenience method for reload events.
func (n *Notifier) NotifyReload(source string) {
	n.Notify(Change{Type: ChangeReload, Source: source})
}

// NotifyCommit is a convenience method for commit events.
func (n *Notifier) NotifyCommit(source string) {
	n.Notify(Change{Type: ChangeCommit, Source: source})
}

// Len returns the number of subscriptions.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}

// Close drops every subscription. It is safe to call Close multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	n.subs = nil
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = slices.DeleteFunc(n.subs, func(s subscriber) bool { return s.id == id })
}

// matches reports whether a subscription to path covers changed.
func matches(path, changed string) bool {
	if path == "" || path == changed {
		return true
	}
	return strings.HasPrefix(changed, path) && changed[len(path)] == '.'
}

// Batch collects changes and delivers them together.
type Batch struct {
	notifier *Notifier
	mu       sync.Mutex
	changes  []Change
}

// NewBatch creates a batch for collecting changes.
func (n *Notifier) NewBatch() *Batch {
	return &Batch{notifier: n}
}

// Set adds a set change to the batch.
func (b *Batch) Set(path, oldValue, newValue, source string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = append(b.changes, Change{
		Path:     path,
		Type:     ChangeSet,
		OldValue: oldValue,
		NewValue: newValue,
		Source:   source,
	})
}

// Commit sends all batched changes to observers.
func (b *Batch) Commit() {
	b.mu.Lock()
	changes := b.changes
	b.changes = nil
	b.mu.Unlock()

	for _, change := range changes {
		b.notifier.Notify(change)
	}
}

// Discard clears the batch without sending notifications.
func (b *Batch) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = nil
}

// Len returns the number of pending changes.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.changes)
}
