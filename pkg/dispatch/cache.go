package dispatch

// cacheEntry memoizes one winning resolution: the handler set that ran
// and the context that was built for it. A hit must reproduce exactly
// what a fresh resolution would produce for an unchanged table, so the
// router clears the cache whenever routes are registered after the first
// resolution.
type cacheEntry struct {
	set HandlerSet
	ctx *Context
}

// resultCache memoizes resolutions by canonical location key. It is
// unbounded and lives for the router's lifetime: its only job is to skip
// the table scan and context rebuild when a location is revisited
// verbatim (back/forward to the same URL).
type resultCache struct {
	entries map[string]cacheEntry
}

func newResultCache() *resultCache {
	return &resultCache{entries: map[string]cacheEntry{}}
}

func (c *resultCache) get(key string) (cacheEntry, bool) {
	entry, ok := c.entries[key]
	return entry, ok
}

func (c *resultCache) put(key string, entry cacheEntry) {
	c.entries[key] = entry
}

func (c *resultCache) clear() {
	c.entries = map[string]cacheEntry{}
}
