package common

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache region names. A region is a named partition corresponding to one
// entity kind or query shape and is invalidated as a unit: any write to an
// entity kind flushes its region wholesale rather than tracking which keys
// the write touched.
const (
	RegionCategories = "categories"
	RegionCategory   = "category"
	RegionTags       = "tags"
	RegionTag        = "tag"
	RegionPosts      = "posts"
)

type Cache struct {
	mu          sync.RWMutex
	regions     map[string]*cache.Cache
	expiration  time.Duration
	cleanupTime time.Duration
}

func NewCache(expirationTime, cleanupTime time.Duration) *Cache {
	return &Cache{
		regions:     make(map[string]*cache.Cache),
		expiration:  expirationTime,
		cleanupTime: cleanupTime,
	}
}

func (c *Cache) region(name string) *cache.Cache {
	c.mu.RLock()
	r, ok := c.regions[name]
	c.mu.RUnlock()
	if ok {
		return r
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.regions[name]; ok {
		return r
	}
	r = cache.New(c.expiration, c.cleanupTime)
	c.regions[name] = r
	return r
}

func (c *Cache) Set(region, key string, value any, expiration ...time.Duration) {
	if len(expiration) > 0 {
		c.region(region).Set(key, value, expiration[0])
		return
	}
	c.region(region).Set(key, value, cache.DefaultExpiration)
}

func (c *Cache) Get(region, key string) (any, bool) {
	return c.region(region).Get(key)
}

// EvictRegion drops every entry in the region.
func (c *Cache) EvictRegion(region string) {
	c.region(region).Flush()
}

func (c *Cache) EvictKey(region, key string) {
	c.region(region).Delete(key)
}

// Flush drops every entry in every region.
func (c *Cache) Flush() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.regions {
		r.Flush()
	}
}
