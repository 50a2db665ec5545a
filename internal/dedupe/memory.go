package dedupe

import (
	"context"
	"sync"
)

// MemoryCache is the in-process seen-message cache. It resets on restart,
// which is fine: the audit log backs it as the durable dedup record.
type MemoryCache struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{seen: make(map[string]struct{})}
}

func (m *MemoryCache) MarkSeen(_ context.Context, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[messageID] = struct{}{}
	return nil
}

func (m *MemoryCache) HasSeen(_ context.Context, messageID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.seen[messageID]
	return ok, nil
}

func (m *MemoryCache) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = make(map[string]struct{})
	return nil
}
