// Package persistence provides the key-value backed storage layer for
// MockDrill. Logical keys and value shapes are preserved from the
// browser-local storage this replaces.
package persistence

import "sync"

// Logical storage keys.
const (
	KeyUsers    = "app_users"     // user directory
	KeySettings = "user_settings" // operator settings
	KeyDrills   = "drill_data"    // ordered drill collection
	KeySession  = "currentUser"   // active session
)

// KV is the minimal key-value contract the store is built on. Backends are
// swappable: an in-memory map for tests, SQLite or Turso for a running server.
type KV interface {
	Get(key string) (value []byte, found bool, err error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// MemoryKV is a map-backed KV for tests and ephemeral runs.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV creates an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	cpy := make([]byte, len(value))
	copy(cpy, value)
	return cpy, true, nil
}

func (m *MemoryKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cpy := make([]byte, len(value))
	copy(cpy, value)
	m.data[key] = cpy
	return nil
}

func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryKV) Close() error { return nil }
