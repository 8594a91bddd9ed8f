package storage

import (
	"maps"
	"slices"
	"sync"
)

// MemoryStore keeps values in memory. Data is lost when the process exits.
type MemoryStore struct {
	mu        sync.RWMutex
	committed map[string]string
	pending   staging
	commits   int
	closed    bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		committed: make(map[string]string),
		pending:   make(staging),
	}
}

// Get implements Store.
func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return "", ErrClosed
	}
	if v, ok := m.pending[key]; ok {
		return v, nil
	}
	if v, ok := m.committed[key]; ok {
		return v, nil
	}
	return "", ErrNotFound
}

// Put implements Store.
func (m *MemoryStore) Put(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.pending[key] = value
	return nil
}

// Commit implements Store.
func (m *MemoryStore) Commit() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	maps.Copy(m.committed, m.pending)
	clear(m.pending)
	m.commits++
	return nil
}

// Keys implements Store.
func (m *MemoryStore) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	return m.pending.keys(slices.Collect(maps.Keys(m.committed))), nil
}

// Committed returns a copy of the committed values.
func (m *MemoryStore) Committed() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.committed)
}

// Commits returns how many times Commit succeeded.
func (m *MemoryStore) Commits() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.commits
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.pending = make(staging)
	return nil
}
