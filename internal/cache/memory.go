package cache

import (
	"sync"
)

// MemoryCache keeps encoded values for the lifetime of the process.
type MemoryCache struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{values: make(map[string][]byte)}
}

func (c *MemoryCache) Load(key string, dst any) (bool, error) {
	c.mu.RLock()
	raw, ok := c.values[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := decode(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *MemoryCache) Save(key string, value any) error {
	raw, err := encode(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.values[key] = raw
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	c.values = make(map[string][]byte)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Close() error { return nil }
