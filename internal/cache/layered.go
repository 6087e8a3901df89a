package cache

import (
	"errors"
	"time"
)

// LayeredCache reads through a fast layer to a persistent one and writes
// to both
type LayeredCache struct {
	fast       Cache
	persistent Cache
}

// NewLayeredCache combines two caches
func NewLayeredCache(fast, persistent Cache) *LayeredCache {
	return &LayeredCache{
		fast:       fast,
		persistent: persistent,
	}
}

// NewPageCache builds the memory-over-disk cache used for fetched pages
func NewPageCache(dir string, memoryTTL, diskTTL time.Duration) *LayeredCache {
	return NewLayeredCache(
		NewMemoryCache(memoryTTL, 10*time.Minute),
		NewDiskCache(dir, diskTTL),
	)
}

// Get checks the fast layer first and promotes persistent hits
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.fast.Get(key); found {
		return val, true
	}

	if val, found := c.persistent.Get(key); found {
		_ = c.fast.Set(key, val, 0)
		return val, true
	}

	return nil, false
}

// Set stores a value in both layers
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.fast.Set(key, value, ttl); err != nil {
		return err
	}
	return c.persistent.Set(key, value, ttl)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(key string) error {
	return errors.Join(c.fast.Delete(key), c.persistent.Delete(key))
}

// Clear empties both layers
func (c *LayeredCache) Clear() error {
	return errors.Join(c.fast.Clear(), c.persistent.Clear())
}
