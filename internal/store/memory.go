package store

import (
	"context"
	"sync"
)

// MemoryStore is a process-local SessionStore. It backs --ephemeral runs and
// tests; SaveErr and ClearErr simulate an unavailable device store.
type MemoryStore struct {
	mu       sync.Mutex
	values   map[string]string
	SaveErr  error
	ClearErr error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) SaveSession(_ context.Context, blob []byte, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.values[KeyUser] = string(blob)
	m.values[KeyRole] = role
	return nil
}

func (m *MemoryStore) LoadSession(_ context.Context) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, hasUser := m.values[KeyUser]
	role, hasRole := m.values[KeyRole]
	switch {
	case !hasUser && !hasRole:
		return nil, "", ErrNoSession
	case !hasUser || !hasRole:
		return nil, "", ErrTornSession
	}
	return []byte(blob), role, nil
}

func (m *MemoryStore) ClearSession(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearErr != nil {
		return m.ClearErr
	}
	delete(m.values, KeyUser)
	delete(m.values, KeyRole)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// Put sets a single raw key, bypassing the pair invariant. Tests use it to
// reproduce a torn store left by an older client.
func (m *MemoryStore) Put(key, value string) {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
}
