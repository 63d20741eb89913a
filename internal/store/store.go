// Package store persists small string values under string keys.
package store

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

var ErrNotFound = errors.New("key not found")

// Store is a key/value persistence contract. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the value under key; ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	// Delete removes key. Deleting an absent key returns ErrNotFound.
	Delete(key string) error
	// Keys lists every key starting with prefix, sorted.
	Keys(prefix string) ([]string, error)
}

// MemoryStore keeps values in a map. It is the default when nothing durable
// is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; !ok {
		return ErrNotFound
	}
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Keys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return matchKeys(m.data, prefix), nil
}

func matchKeys(data map[string]string, prefix string) []string {
	var keys []string
	for k := range data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
