package credstore

import (
	"context"
	"strings"
	"sync"
)

// Memory is an in-process Store for tests and single-node development.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

func (m *Memory) Get(ctx context.Context, connectionID, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[namespacedKey(connectionID, key)]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *Memory) GetAll(ctx context.Context, connectionID string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	prefix := namespacePrefixFor(connectionID)
	out := map[string][]byte{}
	for k, v := range m.data {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		cp := make([]byte, len(v))
		copy(cp, v)
		out[strings.TrimPrefix(k, prefix)] = cp
	}
	return out, nil
}

func (m *Memory) Set(ctx context.Context, connectionID, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[namespacedKey(connectionID, key)] = v
	return nil
}

func (m *Memory) Delete(ctx context.Context, connectionID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, namespacedKey(connectionID, key))
	return nil
}

func (m *Memory) DeleteAll(ctx context.Context, connectionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := namespacePrefixFor(connectionID)
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

// Len reports the number of stored keys across all namespaces.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
