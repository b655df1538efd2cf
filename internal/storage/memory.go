package storage

import (
	"sort"
	"sync"
)

// MemoryStore is an in-process Store. A positive quota caps the total
// number of key and value bytes held.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string
	quota int
	used  int
}

// NewMemoryStore creates an empty in-memory store without a quota
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithQuota(0)
}

// NewMemoryStoreWithQuota creates an empty in-memory store limited to quota bytes
func NewMemoryStoreWithQuota(quota int) *MemoryStore {
	return &MemoryStore{
		items: make(map[string]string),
		quota: quota,
	}
}

func (m *MemoryStore) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryStore) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.used + len(key) + len(value)
	if old, ok := m.items[key]; ok {
		used -= len(key) + len(old)
	}
	if m.quota > 0 && used > m.quota {
		return ErrQuotaExceeded
	}

	m.items[key] = value
	m.used = used
	return nil
}

func (m *MemoryStore) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.items[key]; ok {
		m.used -= len(key) + len(old)
		delete(m.items, key)
	}
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]string)
	m.used = 0
	return nil
}

func (m *MemoryStore) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) Len() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items), nil
}
