package journal

import (
	"context"
	"sync"
)

type Memory struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *Memory) List(_ context.Context, status Status) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return filter(m.entries, status), nil
}
