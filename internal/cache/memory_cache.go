package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is the single-process fallback used when no Redis address is
// configured.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memItem
	now   func() time.Time
}

type memItem struct {
	entry Entry
	exp   time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]memItem), now: time.Now}
}

func (m *MemoryCache) Get(_ context.Context, key string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[key]
	if !ok {
		return Entry{}, ErrNotFound
	}
	if !it.exp.IsZero() && m.now().After(it.exp) {
		delete(m.items, key)
		return Entry{}, ErrNotFound
	}
	return it.entry, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, entry Entry, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp := time.Time{}
	if expiration > 0 {
		exp = m.now().Add(expiration)
	}
	m.items[key] = memItem{entry: entry, exp: exp}
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *MemoryCache) Close() error {
	return nil
}
