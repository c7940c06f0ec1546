package cache

// Cache is a write-once, string-keyed in-memory cache.
//
// The first value stored under a key wins; later Put calls for the same key are
// ignored. Entries are never invalidated. With capacity 0 the cache grows without
// bound for the lifetime of the process; with a positive capacity the oldest
// entry is evicted in insertion (FIFO) order once the capacity is exceeded.
//
// Cache is not safe for concurrent use. Callers sharing a cache across
// goroutines must provide their own locking.
type Cache[V any] struct {
	capacity int
	entries  map[string]V
	order    []string
}

// New creates a cache with the given capacity. A capacity of 0 (or negative)
// means unbounded.
func New[V any](capacity int) *Cache[V] {
	if capacity < 0 {
		capacity = 0
	}
	return &Cache[V]{
		capacity: capacity,
		entries:  make(map[string]V),
	}
}

// Get returns the value stored under key, if any.
func (c *Cache[V]) Get(key string) (V, bool) {
	v, ok := c.entries[key]
	return v, ok
}

// Put stores value under key unless the key is already present.
// It reports whether the value was stored.
func (c *Cache[V]) Put(key string, value V) bool {
	if _, ok := c.entries[key]; ok {
		return false
	}

	if c.capacity > 0 && len(c.entries) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = value
	c.order = append(c.order, key)
	return true
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	return len(c.entries)
}
