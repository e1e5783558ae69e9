package fifocache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGet(t *testing.T) {
	s := New[string](10, 2)

	s.Put("a", "1")
	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestStore_ReplaceKeepsInsertionOrder(t *testing.T) {
	s := New[int](10, 2)

	s.Put("a", 1)
	s.Put("b", 2)
	s.Put("a", 3)

	assert.Equal(t, []string{"a", "b"}, s.Keys())
	v, _ := s.Get("a")
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, s.Len())
}

func TestStore_EvictsOldestBatch(t *testing.T) {
	s := New[int](4, 2)

	for i := 0; i < 5; i++ {
		s.Put(fmt.Sprintf("k%d", i), i)
	}

	// Inserting k4 crossed the ceiling, dropping the two oldest entries.
	_, ok := s.Get("k0")
	assert.False(t, ok)
	_, ok = s.Get("k1")
	assert.False(t, ok)
	_, ok = s.Get("k2")
	assert.True(t, ok)
	_, ok = s.Get("k4")
	assert.True(t, ok)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, uint64(2), s.Evictions())
}

func TestStore_SizeNeverExceedsCeiling(t *testing.T) {
	const maxSize = 16
	s := New[int](maxSize, 4)

	for i := 0; i < 100; i++ {
		s.Put(fmt.Sprintf("k%d", i), i)
		assert.LessOrEqual(t, s.Len(), maxSize)
	}
}

func TestStore_Clear(t *testing.T) {
	s := New[int](10, 2)
	s.Put("a", 1)
	s.Put("b", 2)

	s.Clear()

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Keys())
	_, ok := s.Get("a")
	assert.False(t, ok)
}

func TestStore_PutAtGenerationGuard(t *testing.T) {
	s := New[int](10, 2)

	gen := s.Generation()
	require.True(t, s.PutAt("a", 1, gen))

	s.Clear()
	assert.False(t, s.PutAt("b", 2, gen), "insert against a cleared generation is discarded")
	_, ok := s.Get("b")
	assert.False(t, ok)

	// A fresh generation snapshot inserts normally again.
	assert.True(t, s.PutAt("b", 2, s.Generation()))
	v, ok := s.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestStore_EvictBatchClampedToMaxSize(t *testing.T) {
	s := New[int](2, 100)

	s.Put("a", 1)
	s.Put("b", 2)
	s.Put("c", 3)

	// The clamped batch drops everything that was present before the
	// overflowing insert settled.
	assert.LessOrEqual(t, s.Len(), 2)
}
