package blob

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store used by tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// FailUploads makes every Upload fail, for exercising rollback paths.
	FailUploads bool
	// FailRemoves makes every Remove fail, for exercising partial-failure
	// tolerance.
	FailRemoves bool
}

// NewMemoryStore creates an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Upload stores a copy of data at path.
func (m *MemoryStore) Upload(_ context.Context, path string, data []byte) error {
	if m.FailUploads {
		return fmt.Errorf("upload refused: %s", path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = append([]byte(nil), data...)
	return nil
}

// Download returns a copy of the object at path.
func (m *MemoryStore) Download(_ context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", path)
	}
	return append([]byte(nil), data...), nil
}

// Remove deletes the object at path.
func (m *MemoryStore) Remove(_ context.Context, path string) error {
	if m.FailRemoves {
		return fmt.Errorf("remove refused: %s", path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[path]; !ok {
		return fmt.Errorf("object not found: %s", path)
	}
	delete(m.objects, path)
	return nil
}

// RemovePrefix deletes every object under prefix.
func (m *MemoryStore) RemovePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for path := range m.objects {
		if strings.HasPrefix(path, prefix) {
			delete(m.objects, path)
		}
	}
	return nil
}

// Len reports how many objects the store holds.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// Has reports whether an object exists at path.
func (m *MemoryStore) Has(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[path]
	return ok
}
