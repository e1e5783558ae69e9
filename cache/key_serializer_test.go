package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerializeKey_NoArgs(t *testing.T) {
	s := NewDefaultKeySerializer()
	assert.Equal(t, "Count", s.SerializeKey("Count"))
}

func TestSerializeKey_Deterministic(t *testing.T) {
	s := NewDefaultKeySerializer()

	a := s.SerializeKey("GetByID", int64(42))
	b := s.SerializeKey("GetByID", int64(42))
	assert.Equal(t, a, b)

	c := s.SerializeKey("GetByID", int64(43))
	assert.NotEqual(t, a, c)
}

func TestSerializeKey_MethodPrefix(t *testing.T) {
	s := NewDefaultKeySerializer()

	key := s.SerializeKey("List", "SELECT * FROM products", 100, 0)
	assert.True(t, strings.HasPrefix(key, "List"+KeySeparator))
}

func TestSerializeKey_SlicesAndPointers(t *testing.T) {
	s := NewDefaultKeySerializer()

	withArgs := s.SerializeKey("List", []any{"tools", 9.5})
	same := s.SerializeKey("List", []any{"tools", 9.5})
	different := s.SerializeKey("List", []any{"tools", 10.0})
	assert.Equal(t, withArgs, same)
	assert.NotEqual(t, withArgs, different)

	price := 10.0
	var nilPrice *float64
	assert.NotEqual(t,
		s.SerializeKey("List", &price),
		s.SerializeKey("List", nilPrice))
}

func TestSerializeKey_MapsAreOrderIndependent(t *testing.T) {
	s := NewDefaultKeySerializer()

	m1 := map[string]int{"a": 1, "b": 2, "c": 3}
	m2 := map[string]int{"c": 3, "b": 2, "a": 1}
	assert.Equal(t, s.SerializeKey("Filter", m1), s.SerializeKey("Filter", m2))
}

func TestSerializeKey_StructFields(t *testing.T) {
	type filter struct {
		Category string
		InStock  bool
	}
	s := NewDefaultKeySerializer()

	a := s.SerializeKey("List", filter{Category: "tools", InStock: true})
	b := s.SerializeKey("List", filter{Category: "tools", InStock: false})
	assert.NotEqual(t, a, b)
}

func TestSerializeKey_LongKeysDigested(t *testing.T) {
	s := NewDefaultKeySerializer()

	long := strings.Repeat("SELECT p.id, p.name FROM products p ", 10)
	key := s.SerializeKey("List", long, 100, 0)

	assert.LessOrEqual(t, len(key), maxKeyLength)
	assert.True(t, strings.HasPrefix(key, "List"+KeySeparator))

	// Digested keys stay stable and collision-distinct for close inputs.
	assert.Equal(t, key, s.SerializeKey("List", long, 100, 0))
	assert.NotEqual(t, key, s.SerializeKey("List", long, 100, 1))
}
