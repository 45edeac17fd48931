package store

import (
	"context"
	"sync"
)

type memoryKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemory returns a process-local store. Nothing survives Close.
func NewMemory() Store {
	return newListStore("memory", "", &memoryKV{data: map[string][]byte{}})
}

func (m *memoryKV) get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *memoryKV) put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memoryKV) size(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, v := range m.data {
		n += int64(len(v))
	}
	return n, nil
}

func (m *memoryKV) close() error { return nil }
