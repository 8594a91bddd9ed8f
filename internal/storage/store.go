// Package storage persists settings.
//
// Stores behave like an EEPROM with a write buffer: Put stages a value,
// Get sees staged values, and nothing reaches the backing medium until
// Commit applies every staged write at once.
package storage

import (
	"errors"
	"maps"
	"slices"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a key has no value.
	ErrNotFound = errors.New("storage: not found")

	// ErrClosed is returned when using a closed store.
	ErrClosed = errors.New("storage: store is closed")
)

// Store is a string key/value store with buffered writes.
type Store interface {
	// Get returns the staged or committed value for key, or ErrNotFound.
	Get(key string) (string, error)
	// Put stages a value.
	Put(key, value string) error
	// Commit applies staged values.
	Commit() error
	// Keys returns every key with a staged or committed value, sorted.
	Keys() ([]string, error)
	// Close releases the store. Staged values are discarded.
	Close() error
}

// staging holds writes not yet committed.
type staging map[string]string

func (s staging) keys(committed []string) []string {
	all := make(map[string]struct{}, len(committed)+len(s))
	for _, k := range committed {
		all[k] = struct{}{}
	}
	for k := range s {
		all[k] = struct{}{}
	}
	return slices.Sorted(maps.Keys(all))
}
