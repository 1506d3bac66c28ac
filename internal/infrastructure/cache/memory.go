package cache

import (
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// memoryStore is the in-process tier: a mutex-guarded map of serialized
// entries with lazy expiry.  Entries are stored as bytes so the memory and
// Redis tiers share one representation and callers never alias cached
// values.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string]memoryEntry)}
}

func (m *memoryStore) get(key string, now time.Time) ([]byte, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if now.After(entry.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; a concurrent set may have renewed it.
		if cur, still := m.entries[key]; still && now.After(cur.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false
	}
	return entry.data, true
}

func (m *memoryStore) set(key string, data []byte, ttl time.Duration, now time.Time) {
	m.mu.Lock()
	m.entries[key] = memoryEntry{data: data, expiresAt: now.Add(ttl)}
	m.mu.Unlock()
}

// invalidate removes every entry whose key is covered by the (city,
// district) scope and returns how many were dropped.
func (m *memoryStore) invalidate(city, district string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	dropped := 0
	for raw := range m.entries {
		if parseKey(raw).coveredBy(city, district) {
			delete(m.entries, raw)
			dropped++
		}
	}
	return dropped
}

func (m *memoryStore) flush() {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
}

func (m *memoryStore) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
