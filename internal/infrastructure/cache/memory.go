package cache

import (
	"sync"
	"time"

	"sourceverifier/internal/ports"
)

type entry struct {
	value    any
	expireAt time.Time
}

// Memory is an in-process TTL cache: RWMutex-guarded map with a background
// janitor. Values are stored as-is; callers pass value types so entries do
// not share mutable state with them.
type Memory struct {
	mu    sync.RWMutex
	items map[string]entry
	stop  chan struct{}
}

var _ ports.Cache = (*Memory)(nil)

// NewMemory starts the janitor; call Close to stop it.
func NewMemory(cleanupInterval time.Duration) *Memory {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	m := &Memory{
		items: make(map[string]entry),
		stop:  make(chan struct{}),
	}
	go m.janitor(cleanupInterval)
	return m
}

// Get returns the value for key if present and unexpired. Expired entries
// are treated as absent even before the janitor removes them.
func (m *Memory) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[key]
	if !ok || time.Now().After(item.expireAt) {
		return nil, false
	}
	return item.value, true
}

// Set stores value under key for ttl, overwriting any prior entry.
func (m *Memory) Set(key string, value any, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = entry{value: value, expireAt: time.Now().Add(ttl)}
}

// Len reports live (unexpired) entries, for diagnostics.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	n := 0
	for _, item := range m.items {
		if now.Before(item.expireAt) {
			n++
		}
	}
	return n
}

// Close stops the janitor goroutine.
func (m *Memory) Close() {
	close(m.stop)
}

func (m *Memory) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictExpired()
		case <-m.stop:
			return
		}
	}
}

func (m *Memory) evictExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, item := range m.items {
		if now.After(item.expireAt) {
			delete(m.items, key)
		}
	}
}
