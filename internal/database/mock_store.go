// file: internal/database/mock_store.go
// version: 2.0.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-2f3a4b5c6d7e

package database

import (
	"sort"
	"strings"
	"sync"
)

// MockStore is a simple mock implementation for testing services.
// Unset Func fields fall back to an in-memory map.
type MockStore struct {
	GetFunc    func(key string) (string, bool, error)
	SetFunc    func(key, value string) error
	DeleteFunc func(key string) error
	ListFunc   func(prefix string, limit int) ([]Entry, error)
	CloseFunc  func() error

	mu   sync.Mutex
	data map[string]string

	// Call counters
	GetCalls int
	SetCalls int
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]string)}
}

func (m *MockStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	m.GetCalls++
	m.mu.Unlock()
	if m.GetFunc != nil {
		return m.GetFunc(key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MockStore) Set(key, value string) error {
	m.mu.Lock()
	m.SetCalls++
	m.mu.Unlock()
	if m.SetFunc != nil {
		return m.SetFunc(key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string]string)
	}
	m.data[key] = value
	return nil
}

func (m *MockStore) Delete(key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockStore) List(prefix string, limit int) ([]Entry, error) {
	if m.ListFunc != nil {
		return m.ListFunc(prefix, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var entries []Entry
	for k, v := range m.data {
		if strings.HasPrefix(k, prefix) {
			entries = append(entries, Entry{Key: k, Value: v})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *MockStore) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
