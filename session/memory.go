package session

import (
	"context"
	"sync"
)

// MemoryStore keeps sessions in process memory until exit.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]*State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*State)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if st, ok := m.states[id]; ok {
		return st.Clone(), nil
	}
	return NewState(), nil
}

func (m *MemoryStore) Update(_ context.Context, id string, fn func(*State) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	work := NewState()
	if st, ok := m.states[id]; ok {
		work = st.Clone()
	}
	if err := fn(work); err != nil {
		return err
	}
	m.states[id] = work
	return nil
}

// Len reports how many sessions hold state.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.states)
}
