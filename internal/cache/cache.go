// Package cache provides the tagged view cache used for dashboard and
// detail responses. Mutations invalidate by tag instead of tracking
// individual keys.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultSize = 1024

// ViewCache is an LRU keyed by view name with secondary tag indexing.
type ViewCache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, any]
	// tags maps an invalidation tag to the keys stored under it.
	tags map[string]map[string]struct{}
	// keyTags is the reverse index, needed to clean up on eviction.
	keyTags map[string][]string
}

func NewViewCache() *ViewCache {
	c := &ViewCache{
		tags:    make(map[string]map[string]struct{}),
		keyTags: make(map[string][]string),
	}
	entries, err := lru.NewWithEvict[string, any](defaultSize, c.onEvict)
	if err != nil {
		// lru.New only fails on non-positive size.
		panic(err)
	}
	c.entries = entries
	return c
}

func (c *ViewCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Get(key)
}

// Set stores a view result under the given invalidation tags.
func (c *ViewCache) Set(key string, value any, tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.forget(key)
	c.entries.Add(key, value)
	c.keyTags[key] = tags
	for _, tag := range tags {
		if c.tags[tag] == nil {
			c.tags[tag] = make(map[string]struct{})
		}
		c.tags[tag][key] = struct{}{}
	}
}

// Invalidate drops every entry stored under the tag.
func (c *ViewCache) Invalidate(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.tags[tag] {
		c.entries.Remove(key)
	}
	delete(c.tags, tag)
}

// onEvict runs inside lru operations; the mutex is already held by the
// public method that triggered the eviction.
func (c *ViewCache) onEvict(key string, _ any) {
	c.forget(key)
}

func (c *ViewCache) forget(key string) {
	for _, tag := range c.keyTags[key] {
		delete(c.tags[tag], key)
		if len(c.tags[tag]) == 0 {
			delete(c.tags, tag)
		}
	}
	delete(c.keyTags, key)
}
