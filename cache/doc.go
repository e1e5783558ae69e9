// Package cache provides the per-entity read-through cache and its key
// serialization strategy.
//
// # Overview
//
// Each entity service owns its own Cache instances. Reads consult the cache
// before the backing store and populate it on miss; every successful write
// clears the whole cache for the owning entity type. Invalidation is never
// selective: composite keys built from statement text plus parameters
// (filtered list queries) make targeted invalidation unsafe, so correctness
// wins over hit rate.
//
// # Eviction
//
// The cache is bounded by Config.MaxSize. When an insert crosses the
// ceiling, the oldest Config.EvictionBatch entries are removed by first
// insertion order. This is deliberate FIFO, not LRU: eviction order stays
// observable and independent of access patterns.
//
// # Key Serialization
//
// The default key serializer produces stable keys for equal inputs:
//
//	serializer := cache.NewDefaultKeySerializer()
//	key := serializer.SerializeKey("GetByID", 42)
//	key = serializer.SerializeKey("List", "SELECT ...", []any{"tools", 100, 0})
//
// Point lookups key on the natural entity id; parameterized queries key on
// the statement text and ordered parameter values. Keys longer than an
// internal threshold are collapsed to an xxhash digest, keeping the
// operation prefix readable.
package cache
