package imaging

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is the number of thumbnails kept by NewCache(0).
const DefaultCacheSize = 256

// Cache keeps a bounded number of processed thumbnails. When full, the
// oldest entry is evicted. Concurrent requests for the same missing key share
// one fetch.
type Cache struct {
	mu    sync.Mutex
	limit int
	data  map[string][]byte
	order []string

	group singleflight.Group
}

// NewCache returns a cache holding at most limit entries.
func NewCache(limit int) *Cache {
	if limit <= 0 {
		limit = DefaultCacheSize
	}
	return &Cache{limit: limit, data: make(map[string][]byte, limit)}
}

// Get returns the cached value for key, calling fetch on a miss. Errors are
// not cached.
func (c *Cache) Get(key string, fetch func() ([]byte, error)) ([]byte, error) {
	if data, ok := c.lookup(key); ok {
		return data, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if data, ok := c.lookup(key); ok {
			return data, nil
		}
		data, err := fetch()
		if err != nil {
			return nil, err
		}
		c.store(key, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Reset drops every entry. Called after the catalog is reloaded.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.data)
	c.order = c.order[:0]
}

func (c *Cache) lookup(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.data[key]
	return data, ok
}

func (c *Cache) store(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.data[key]; ok {
		c.data[key] = data
		return
	}
	for len(c.order) >= c.limit {
		delete(c.data, c.order[0])
		c.order = c.order[1:]
	}
	c.data[key] = data
	c.order = append(c.order, key)
}
