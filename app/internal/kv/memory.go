package kv

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process backend. It serves tests and throwaway
// deployments, and is the substitution seam for anything else that speaks
// the Store contract.
type Memory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

// Get retrieves the value stored under key.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores a copy of value under key.
func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store(key, value)
	return nil
}

// Update holds the write lock for the whole read-modify-write, which
// serializes concurrent updates of the same key.
func (m *Memory) Update(ctx context.Context, key string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var old []byte
	if v, ok := m.items[key]; ok {
		old = make([]byte, len(v))
		copy(old, v)
	}
	updated, err := fn(old)
	if err != nil {
		return err
	}
	m.store(key, updated)
	return nil
}

// Keys returns every key with the given prefix, sorted.
func (m *Memory) Keys(ctx context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes the given keys and reports how many existed.
func (m *Memory) Delete(ctx context.Context, keys ...string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for _, k := range keys {
		if _, ok := m.items[k]; ok {
			delete(m.items, k)
			removed++
		}
	}
	return removed, nil
}

// Close is a no-op for the in-memory backend.
func (m *Memory) Close() error {
	return nil
}

func (m *Memory) store(key string, value []byte) {
	v := make([]byte, len(value))
	copy(v, value)
	m.items[key] = v
}
