package snapshot

import (
	"context"
	"sync"
)

var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository keeps snapshots in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]string)}
}

func (m *MemoryRepository) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.store[key]
	return v, ok, nil
}

func (m *MemoryRepository) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store[key] = value
	return nil
}
