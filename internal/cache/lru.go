// Package cache keeps rendered artifacts in memory under a byte budget.
package cache

import (
	"container/list"
	"sync"
)

// DefaultMaxSize is the budget used when NewLRU gets a non-positive size.
const DefaultMaxSize = 32 << 20

// evictionWindow is how many least recently used entries compete for
// eviction. The one with the lowest reads-per-KiB score goes first.
const evictionWindow = 5

// LRU is a byte-bounded cache of immutable payloads. Callers always get
// their own copy. It is safe for concurrent use.
type LRU struct {
	mu      sync.Mutex
	order   *list.List // Front is most recently used.
	byKey   map[string]*list.Element
	maxSize int64
	size    int64
	stats   Stats
}

type item struct {
	key   string
	data  []byte
	reads int64
}

// score is higher for entries worth keeping: read often and small.
func (it *item) score() float64 {
	kib := float64(len(it.data)) / 1024
	if kib < 1 {
		kib = 1
	}

	return float64(it.reads) / kib
}

// NewLRU returns an empty cache holding at most maxSize payload bytes.
func NewLRU(maxSize int64) *LRU {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	return &LRU{
		order:   list.New(),
		byKey:   make(map[string]*list.Element),
		maxSize: maxSize,
	}
}

// Get returns a copy of the payload under key.
func (c *LRU) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.byKey[key]
	if !ok {
		c.stats.Misses++

		return nil, false
	}

	c.stats.Hits++

	it := el.Value.(*item) //nolint:forcetypeassert // Only *item is stored.
	it.reads++
	c.order.MoveToFront(el)

	return clone(it.data), true
}

// Put stores a copy of data under key. A payload larger than the whole
// budget is dropped. Payloads are immutable, so an existing key is only
// marked as used.
func (c *LRU) Put(key string, data []byte) {
	need := int64(len(data))
	if need > c.maxSize {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.byKey[key]; ok {
		el.Value.(*item).reads++ //nolint:forcetypeassert // Only *item is stored.
		c.order.MoveToFront(el)

		return
	}

	for c.size+need > c.maxSize && c.order.Len() > 0 {
		c.evict()
	}

	c.byKey[key] = c.order.PushFront(&item{key: key, data: clone(data), reads: 1})
	c.size += need
}

// evict drops the lowest scoring entry within the eviction window.
func (c *LRU) evict() {
	victim := c.order.Back()
	lowest := victim.Value.(*item).score() //nolint:forcetypeassert // Only *item is stored.

	el := victim.Prev()
	for range evictionWindow - 1 {
		if el == nil {
			break
		}

		if s := el.Value.(*item).score(); s < lowest { //nolint:forcetypeassert // Only *item is stored.
			victim, lowest = el, s
		}

		el = el.Prev()
	}

	it := c.order.Remove(victim).(*item) //nolint:forcetypeassert // Only *item is stored.
	delete(c.byKey, it.key)
	c.size -= int64(len(it.data))
	c.stats.Evictions++
}

// Clear drops every entry. Counters survive.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	clear(c.byKey)
	c.size = 0
}

// Stats is a snapshot of cache counters and occupancy.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	Entries     int
	CurrentSize int64
	MaxSize     int64
}

// HitRate is Hits over all lookups, or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	lookups := s.Hits + s.Misses
	if lookups == 0 {
		return 0
	}

	return float64(s.Hits) / float64(lookups)
}

// Stats returns current counters.
func (c *LRU) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.stats
	snap.Entries = c.order.Len()
	snap.CurrentSize = c.size
	snap.MaxSize = c.maxSize

	return snap
}

func clone(data []byte) []byte {
	return append([]byte(nil), data...)
}
