package storage

import (
	"github.com/patrickmn/go-cache"
)

// memoryStore keeps submitted stats keys in process memory. It forgets
// everything on restart.
type memoryStore struct {
	c *cache.Cache
}

func newMemoryStore(opts Options) *memoryStore {
	return &memoryStore{c: cache.New(opts.StatsTTL, opts.CleanupInterval)}
}

func (m *memoryStore) Close() error {
	m.c.Flush()
	return nil
}

func (m *memoryStore) SeenStats(key string) (bool, error) {
	_, found := m.c.Get(key)
	return found, nil
}

func (m *memoryStore) MarkStats(key string) error {
	m.c.Set(key, struct{}{}, cache.DefaultExpiration)
	return nil
}

func (m *memoryStore) Len() (int, error) {
	return m.c.ItemCount(), nil
}
