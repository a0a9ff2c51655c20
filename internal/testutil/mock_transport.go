// file: internal/testutil/mock_transport.go
// version: 1.0.0
// guid: e3a9c6f1-4b27-4d58-8f0e-b2d7a1c5e946

package testutil

import (
	"context"
	"sync"
)

// MockTransport records every GET and delegates to GetFunc.
type MockTransport struct {
	GetFunc func(ctx context.Context, call int, url string) ([]byte, error)

	mu   sync.Mutex
	urls []string
}

func (m *MockTransport) Get(ctx context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	m.urls = append(m.urls, url)
	call := len(m.urls)
	m.mu.Unlock()
	if m.GetFunc == nil {
		return []byte(`{}`), nil
	}
	return m.GetFunc(ctx, call, url)
}

// Calls returns how many requests were issued.
func (m *MockTransport) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.urls)
}

// URLs returns a copy of the requested URLs in order.
func (m *MockTransport) URLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.urls...)
}

// StaticIDs is an identifier source returning a fixed list.
type StaticIDs struct {
	IDs []int
	Err error
}

func (s StaticIDs) Load(ctx context.Context) ([]int, error) {
	return s.IDs, s.Err
}
