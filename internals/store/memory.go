package store

import (
	"context"
	"sync"
)

// Memory is a process-local Store. Nothing survives a restart; it backs
// HERALD_STORE=memory dry runs and tests.
type Memory struct {
	mu    sync.Mutex
	blobs map[string][]int64
	// SaveErr, when set, is returned by every Save.
	SaveErr error
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{blobs: map[string][]int64{}}
}

func (m *Memory) Load(_ context.Context, key string) ([]int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]int64{}, ids...), true, nil
}

func (m *Memory) Save(_ context.Context, key string, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	b, err := encodeIDs(ids)
	if err != nil {
		return err
	}
	sorted, err := decodeIDs(key, b)
	if err != nil {
		return err
	}
	if sorted == nil {
		sorted = []int64{}
	}
	m.blobs[key] = sorted
	return nil
}
