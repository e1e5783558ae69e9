package cache

import (
	"github.com/goliatone/go-commerce-store/internal/fifocache"
	"go.uber.org/zap"
)

// Cache is a size-bounded key/value mapping for one entity type. Eviction is
// FIFO by first insertion; invalidation is always whole-cache, never
// selective, so composite keys (filtered list queries) can never serve stale
// results after a write.
type Cache[V any] struct {
	store  *fifocache.Store[V]
	logger *zap.Logger
}

// New constructs a Cache with the provided configuration. A nil logger is
// replaced with a no-op logger so cache notifications can never fail a read.
func New[V any](cfg Config, logger *zap.Logger) (*Cache[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache[V]{
		store:  fifocache.New[V](cfg.MaxSize, cfg.EvictionBatch),
		logger: logger,
	}, nil
}

// Get returns the cached value for key, if present. Lookups have no side
// effects beyond a debug notification.
func (c *Cache[V]) Get(key string) (V, bool) {
	v, ok := c.store.Get(key)
	if ok {
		c.logger.Debug("cache hit", zap.String("key", key))
	} else {
		c.logger.Debug("cache miss", zap.String("key", key))
	}
	return v, ok
}

// Put inserts value under key, evicting the oldest batch of entries first if
// the insert crosses the configured ceiling.
func (c *Cache[V]) Put(key string, value V) {
	before := c.store.Evictions()
	c.store.Put(key, value)
	if evicted := c.store.Evictions() - before; evicted > 0 {
		c.logger.Debug("cache evicted oldest entries",
			zap.Uint64("count", evicted),
			zap.Int("size", c.store.Len()))
	}
}

// Generation snapshots the invalidation generation. Read-through callers
// capture it before the miss and hand it to Populate so an invalidation that
// lands between the miss and the populate discards the insert instead of
// resurrecting pre-write state.
func (c *Cache[V]) Generation() uint64 {
	return c.store.Generation()
}

// Populate inserts a loaded value under key, unless the cache was
// invalidated after gen was captured. Discarded populates mean a concurrent
// write superseded the loaded record; the next read loads fresh.
func (c *Cache[V]) Populate(key string, value V, gen uint64) {
	before := c.store.Evictions()
	if !c.store.PutAt(key, value, gen) {
		c.logger.Debug("cache populate discarded", zap.String("key", key))
		return
	}
	if evicted := c.store.Evictions() - before; evicted > 0 {
		c.logger.Debug("cache evicted oldest entries",
			zap.Uint64("count", evicted),
			zap.Int("size", c.store.Len()))
	}
}

// InvalidateAll clears the mapping. Called after every successful write for
// the owning entity type.
func (c *Cache[V]) InvalidateAll() {
	c.store.Clear()
	c.logger.Debug("cache invalidated")
}

// Len returns the current number of cached entries.
func (c *Cache[V]) Len() int {
	return c.store.Len()
}
