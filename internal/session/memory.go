// ABOUTME: In-memory session store for tests and ephemeral runs
// ABOUTME: Safe for concurrent use

package session

import "sync"

// MemoryStore keeps the session in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	current Session
}

// NewMemoryStore creates a store holding the given initial session
func NewMemoryStore(initial Session) *MemoryStore {
	return &MemoryStore{current: initial.Normalize()}
}

func (m *MemoryStore) Get() (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, nil
}

func (m *MemoryStore) Set(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s.Normalize()
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = Session{}
	return nil
}
