package checkpoint

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, checkPointID string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[checkPointID]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, checkPointID string, checkPoint []byte) error {
	if checkPointID == "" {
		return ErrEmptyID
	}
	buf := make([]byte, len(checkPoint))
	copy(buf, checkPoint)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[checkPointID] = buf
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, checkPointID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, checkPointID)
	return nil
}
