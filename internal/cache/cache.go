// Package cache is Penguin's in-memory asset cache: a fastcache instance
// keyed by an xxhash digest of the asset's identity, the same pairing
// air's coffer uses to avoid re-reading and re-processing unchanged files
// and response bodies on every request.
//
// The cache never touches disk and holds nothing across process restarts,
// so it is not the "persistent caching" the spec calls out as a
// non-goal — it only smooths repeated in-process work within a single run.
package cache

import (
	"sync"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/cespare/xxhash/v2"
)

// Cache stores byte-slice values keyed by an arbitrary string identity.
// It is safe for concurrent use.
type Cache struct {
	once     sync.Once
	maxBytes int
	fc       *fastcache.Cache
}

// New returns a Cache backed by up to maxBytes of memory. The underlying
// fastcache.Cache is allocated lazily on first use, matching coffer's
// once-guarded allocation.
func New(maxBytes int) *Cache {
	return &Cache{maxBytes: maxBytes}
}

func (c *Cache) ensure() *fastcache.Cache {
	c.once.Do(func() {
		c.fc = fastcache.New(c.maxBytes)
	})
	return c.fc
}

// Key hashes an identity string (e.g. "<mount path>|<file mtime>|<range>"
// or "<upstream URL>|<ETag>") down to the fixed-width key fastcache wants.
func Key(identity string) []byte {
	h := xxhash.Sum64String(identity)
	key := make([]byte, 8)
	for i := 0; i < 8; i++ {
		key[i] = byte(h >> (8 * i))
	}
	return key
}

// Get returns the cached value for key, if present.
func (c *Cache) Get(key []byte) ([]byte, bool) {
	return c.ensure().HasGet(nil, key)
}

// Set stores value under key, evicting older entries if the cache is full.
func (c *Cache) Set(key, value []byte) {
	c.ensure().Set(key, value)
}

// Del removes key from the cache, if present.
func (c *Cache) Del(key []byte) {
	c.ensure().Del(key)
}

// Reset drops every cached entry.
func (c *Cache) Reset() {
	c.ensure().Reset()
}
