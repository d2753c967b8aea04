package credentials

import (
	"sync"
)

// MemorySlots keeps slots in process memory. Used in tests and for
// ephemeral runs where nothing should touch disk or keychain.
type MemorySlots struct {
	mu    sync.RWMutex
	slots map[string]string
}

// NewMemorySlots creates an empty in-memory slot store.
func NewMemorySlots() *MemorySlots {
	return &MemorySlots{slots: make(map[string]string)}
}

func (m *MemorySlots) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.slots[key]
	return value, ok
}

func (m *MemorySlots) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[key] = value
	return nil
}

func (m *MemorySlots) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, key)
	return nil
}
