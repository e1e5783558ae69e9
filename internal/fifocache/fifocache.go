// Package fifocache implements the bounded in-memory store backing the
// public cache package. Eviction is strictly FIFO by first insertion order;
// access recency and frequency are ignored on purpose so that eviction order
// stays observable and deterministic.
package fifocache

import "sync"

// Store is a mutex-guarded mapping with FIFO batch eviction. When an insert
// pushes the population past maxSize, the oldest evictBatch entries (by first
// insertion) are removed before the store settles.
type Store[V any] struct {
	mu         sync.Mutex
	entries    map[string]V
	order      []string
	maxSize    int
	evictBatch int
	evictions  uint64
	gen        uint64
}

// New creates a Store bounded at maxSize entries that evicts evictBatch
// entries at a time. Both values must be positive; evictBatch is clamped to
// maxSize.
func New[V any](maxSize, evictBatch int) *Store[V] {
	if evictBatch > maxSize {
		evictBatch = maxSize
	}
	return &Store[V]{
		entries:    make(map[string]V),
		order:      make([]string, 0),
		maxSize:    maxSize,
		evictBatch: evictBatch,
	}
}

// Get returns the value for key and whether it was present. Reads never
// affect eviction order.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	return v, ok
}

// Put inserts or replaces the value for key. Replacing keeps the key's
// original position in the insertion order; only first insertion counts.
func (s *Store[V]) Put(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(key, value)
}

// PutAt inserts or replaces the value for key, unless the store was cleared
// after generation gen was observed. Reports whether the value was stored.
func (s *Store[V]) PutAt(key string, value V, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		return false
	}
	s.put(key, value)
	return true
}

// put performs the insert. Caller holds the lock.
func (s *Store[V]) put(key string, value V) {
	if _, exists := s.entries[key]; !exists {
		s.order = append(s.order, key)
	}
	s.entries[key] = value

	if len(s.entries) > s.maxSize {
		s.evictOldest()
	}
}

// Generation returns the invalidation generation. It advances on every Clear
// so read-through callers can detect an invalidation racing their load.
func (s *Store[V]) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// evictOldest removes the oldest evictBatch entries. Caller holds the lock.
func (s *Store[V]) evictOldest() {
	n := s.evictBatch
	if n > len(s.order) {
		n = len(s.order)
	}
	for _, key := range s.order[:n] {
		delete(s.entries, key)
	}
	s.order = append([]string(nil), s.order[n:]...)
	s.evictions += uint64(n)
}

// Clear drops every entry, resets the insertion order, and advances the
// generation so in-flight PutAt calls observing the old generation discard.
func (s *Store[V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]V)
	s.order = s.order[:0]
	s.gen++
}

// Len returns the current number of entries.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Evictions returns the total number of entries evicted so far.
func (s *Store[V]) Evictions() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictions
}

// Keys returns the tracked keys in insertion order, oldest first.
func (s *Store[V]) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}
