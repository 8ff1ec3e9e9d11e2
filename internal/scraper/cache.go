package scraper

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"bestseller-aggregator/internal/models"
)

// ResultCache serves per-source top-10 lists inside a TTL window and keeps
// serving the last good list when a refresh comes back empty.
type ResultCache struct {
	ttl time.Duration
	log zerolog.Logger
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	items     []models.BestsellerItem
	fetchedAt time.Time
}

func NewResultCache(ttl time.Duration, log zerolog.Logger) *ResultCache {
	return &ResultCache{
		ttl:     ttl,
		log:     log,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// GetOrFetch returns the cached list for key while its entry is live,
// otherwise invokes fetch. A non-empty fetch result replaces the entry. An
// empty result degrades to the previous non-empty list without touching its
// timestamp, so the next call attempts the fetch again.
func (c *ResultCache) GetOrFetch(key string, fetch func() []models.BestsellerItem) []models.BestsellerItem {
	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && !c.expired(cached.fetchedAt) {
		return cached.items
	}

	// Concurrent misses for the same key may each run the fetch; the
	// per-key write below is atomic and the last writer wins.
	fresh := fetch()
	if len(fresh) > 0 {
		c.mu.Lock()
		c.entries[key] = cacheEntry{items: fresh, fetchedAt: c.now()}
		c.mu.Unlock()
		return fresh
	}

	if ok && len(cached.items) > 0 {
		c.log.Warn().Str("source", key).Msg("bestseller fetch returned nothing; serving cached data")
		return cached.items
	}
	return fresh
}

func (c *ResultCache) expired(fetchedAt time.Time) bool {
	return fetchedAt.Add(c.ttl).Before(c.now())
}
