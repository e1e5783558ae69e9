// Package store owns the connection and resource lifecycle against the
// backing SQL store.
//
// Manager holds one logical connection: Connect retries with linear backoff,
// Disconnect releases cached statement handles before the connection, and
// Query/Exec bind parameters positionally through a bounded
// prepared-statement cache keyed by exact SQL text. Statement eviction drops
// the oldest quarter of entries by insertion order when the cache is full.
//
// Pool provides checkout/return semantics over multiple Managers, bounded by
// a counting semaphore, for callers that need parallel statement dispatch.
//
// Store-level errors propagate unchanged as QueryError; the only local
// recovery is the bounded connect retry.
package store
