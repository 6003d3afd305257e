package geocode

import (
	"container/list"
	"fmt"
	"sync"
)

const defaultCacheSize = 1024

// Cache is a bounded LRU keyed on coordinates rounded to four decimal places
// (roughly 11 meters), so nearby lookups collapse to one upstream call.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List
	entries map[string]*list.Element
}

type cacheEntry struct {
	key   string
	place *Place
}

// NewCache builds an LRU cache holding at most maxSize resolved places.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = defaultCacheSize
	}
	return &Cache{
		maxSize: maxSize,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

// Key produces the cache key for a coordinate pair.
func Key(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

// Get returns the cached place for the coordinates, marking it recently used.
func (c *Cache) Get(lat, lon float64) (*Place, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[Key(lat, lon)]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).place, true
}

// Put stores a resolved place, evicting the least recently used entry when full.
func (c *Cache) Put(lat, lon float64, place *Place) {
	if place == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key(lat, lon)
	if elem, ok := c.entries[key]; ok {
		elem.Value.(*cacheEntry).place = place
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&cacheEntry{key: key, place: place})
	c.entries[key] = elem

	if c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear drops every cached entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element)
}
