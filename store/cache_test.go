package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_LRUContract(t *testing.T) {
	// spec scenario 4: capacity 2; PUT x=1; PUT y=2; GET x; PUT z=3; GET y
	// evicts y, not x, because GET x refreshed x's recency first.
	c, err := NewCache(2)
	require.NoError(t, err)

	c.Put("x", "1")
	c.Put("y", "2")

	v, ok := c.Get("x")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	c.Put("z", "3")

	_, ok = c.Get("y")
	assert.False(t, ok)

	v, ok = c.Get("x")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	v, ok = c.Get("z")
	require.True(t, ok)
	assert.Equal(t, "3", v)
}

func TestCache_Del(t *testing.T) {
	c, err := NewCache(4)
	require.NoError(t, err)

	c.Put("a", "1")
	c.Del("a")

	_, ok := c.Get("a")
	assert.False(t, ok)
}
