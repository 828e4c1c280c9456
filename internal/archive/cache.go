package archive

import "sync"

// Cache holds index answers keyed by target URL for the lifetime of a run.
type Cache interface {
	Get(key string) ([]Snapshot, bool)
	Put(key string, snapshots []Snapshot)
}

// MemoryCache is a map-backed Cache guarded by an RWMutex. Empty answers are
// cached too, so a URL with no captures is only asked about once.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string][]Snapshot
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string][]Snapshot),
	}
}

func (c *MemoryCache) Get(key string) ([]Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, exists := c.data[key]
	return value, exists
}

func (c *MemoryCache) Put(key string, snapshots []Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = snapshots
}

func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.data)
}
