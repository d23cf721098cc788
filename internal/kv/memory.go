package kv

import (
	"sort"
	"strings"
	"sync"

	"github.com/iksnae/docchat/internal"
	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps values in process memory. Nothing expires.
type MemoryStore struct {
	mu    sync.RWMutex
	cache *cache.Cache
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// Get returns the value stored under key
func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if x, found := m.cache.Get(key); found {
		return x.(string), true, nil
	}
	return "", false, nil
}

// Set stores value under key
func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache.Set(key, value, cache.NoExpiration)
	return nil
}

// SetMany stores all pairs while holding the write lock
func (m *MemoryStore) SetMany(pairs []internal.KeyValuePair) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, pair := range pairs {
		m.cache.Set(pair.Key, pair.Value, cache.NoExpiration)
	}
	return nil
}

// Remove deletes key
func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache.Delete(key)
	return nil
}

// Keys returns all keys starting with prefix, sorted
func (m *MemoryStore) Keys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for key := range m.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Len returns the number of stored keys
func (m *MemoryStore) Len() int {
	return m.cache.ItemCount()
}

// Close releases nothing; it exists to satisfy Store
func (m *MemoryStore) Close() error {
	return nil
}
