package cache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCache_WriteOnce(t *testing.T) {
	c := New[[]byte](0)

	assert.True(t, c.Put("a", []byte("first")))
	assert.False(t, c.Put("a", []byte("second")), "second write for the same key must be ignored")

	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []byte("first"), got)
}

func TestCache_MissingKey(t *testing.T) {
	c := New[string](0)

	_, ok := c.Get("nope")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_Unbounded(t *testing.T) {
	c := New[int](0)

	for i := 0; i < 1000; i++ {
		c.Put(fmt.Sprintf("key-%04d", i), i)
	}
	assert.Equal(t, 1000, c.Len())
}

func TestCache_CapacityEvictsOldest(t *testing.T) {
	c := New[int](2)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	assert.Equal(t, 2, c.Len())

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should have been evicted")

	b, ok := c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, b)

	cv, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, cv)
}
