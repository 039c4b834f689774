package cache

import (
	"sync"
	"time"
)

// TTLCache is an in-memory key-value store with per-entry expiry.
// ⭐ SSOT: 스캔 단계 간 공유 캐시는 이 구조체에서만
//
// Expired entries are purged lazily on the next Get; there is no background
// sweeper inside the cache itself (the scheduler calls Sweep periodically).
// The working set is per-ticker keys (≤100 종목) so unbounded growth between
// sweeps is acceptable.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	data      interface{}
	storedAt  time.Time
	ttl       time.Duration
}

// Predefined TTLs for the scan pipeline's call sites.
const (
	TTLScore     = 30 * time.Second  // 동일 스냅샷 재채점 방지
	TTLMarket    = 60 * time.Second  // 시장 상태 (지수 등락률)
	TTLExecution = 3 * time.Minute   // 체결강도
	TTLProgram   = 5 * time.Minute   // 프로그램 매매
)

// New creates an empty TTL cache.
func New() *TTLCache {
	return &TTLCache{
		entries: make(map[string]entry),
	}
}

// Get returns the cached value iff present and unexpired.
// A stale entry is deleted as a side effect and (nil, false) is returned.
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}

	if time.Since(e.storedAt) >= e.ttl {
		c.mu.Lock()
		// Re-check under the write lock; another goroutine may have refreshed it.
		if cur, ok := c.entries[key]; ok && cur.storedAt.Equal(e.storedAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return e.data, true
}

// Set stores a value with the given TTL, overwriting any existing entry.
func (c *TTLCache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		data:     value,
		storedAt: time.Now(),
		ttl:      ttl,
	}
}

// Delete removes a key.
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Len returns the number of entries, expired ones included.
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Sweep removes all expired entries and returns how many were dropped.
func (c *TTLCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	count := 0
	for key, e := range c.entries {
		if now.Sub(e.storedAt) >= e.ttl {
			delete(c.entries, key)
			count++
		}
	}

	return count
}
