package api

import (
	"sync"

	"rentease/internal/table"
)

const defaultViewCacheSize = 256

// viewCache remembers recently served views by ETag so a client can ask for
// the row changes since the view it holds.
type viewCache struct {
	mu    sync.Mutex
	max   int
	order []string
	views map[string]table.View
}

func newViewCache(size int) *viewCache {
	if size <= 0 {
		size = defaultViewCacheSize
	}
	return &viewCache{max: size, views: make(map[string]table.View, size)}
}

func (c *viewCache) put(etag string, v table.View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.views[etag]; ok {
		return
	}
	if len(c.order) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.views, oldest)
	}
	c.order = append(c.order, etag)
	c.views[etag] = v
}

func (c *viewCache) get(etag string) (table.View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.views[etag]
	return v, ok
}
