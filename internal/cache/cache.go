// Package cache defines the explicit caching boundary used by the dashboard
// read path. The contract is deliberately narrow (Get/Put/Evict plus prefix
// eviction) so that invalidation is a visible, testable operation rather than
// a side effect buried in the read path.
//
// The default implementation wraps github.com/patrickmn/go-cache, a
// concurrency-safe in-memory TTL store. Keys follow the convention
// "dash:<brandID>" for brand dashboards, which makes prefix eviction by brand
// cheap and obvious.
package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store is the caching contract consumed by services. Implementations must be
// safe for concurrent use.
type Store interface {
	// Get returns the cached value for key and whether it was present.
	Get(key string) (any, bool)

	// Put stores value under key using the store's default TTL.
	Put(key string, value any)

	// Evict removes a single key. Removing an absent key is a no-op.
	Evict(key string)

	// EvictPrefix removes every key beginning with prefix and reports how many
	// entries were dropped.
	EvictPrefix(prefix string) int
}

// Memory is the in-process TTL store backing Store in production.
type Memory struct {
	inner *gocache.Cache
}

// compile-time interface guard
var _ Store = (*Memory)(nil)

// NewMemory builds a Memory store whose entries live for ttl. Expired entries
// are purged in the background at twice the TTL, mirroring the construction
// used elsewhere for short-lived API response caches.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Memory{inner: gocache.New(ttl, ttl*2)}
}

// Get returns the cached value for key and whether it was present.
func (m *Memory) Get(key string) (any, bool) {
	return m.inner.Get(key)
}

// Put stores value under key with the default TTL.
func (m *Memory) Put(key string, value any) {
	m.inner.Set(key, value, gocache.DefaultExpiration)
}

// Evict removes a single key.
func (m *Memory) Evict(key string) {
	m.inner.Delete(key)
}

// EvictPrefix removes every live entry whose key starts with prefix.
func (m *Memory) EvictPrefix(prefix string) int {
	if prefix == "" {
		n := m.inner.ItemCount()
		m.inner.Flush()
		return n
	}
	dropped := 0
	for key := range m.inner.Items() {
		if strings.HasPrefix(key, prefix) {
			m.inner.Delete(key)
			dropped++
		}
	}
	return dropped
}

// ItemCount reports the number of entries, including not-yet-purged expired ones.
func (m *Memory) ItemCount() int {
	return m.inner.ItemCount()
}
