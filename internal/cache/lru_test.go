package cache_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/aliasrewrite/internal/cache"
)

func TestLRU_GetPut(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, int](2)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Put("a", 1)
	c.Put("b", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	// b is now least recently used.
	c.Put("c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok)

	v, ok = c.Get("c")
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_PutExistingUpdates(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 10)
	c.Put("c", 3)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)

	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestLRU_GetOrCreate(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, string](0)
	calls := 0

	create := func() (string, error) {
		calls++

		return "value", nil
	}

	for range 3 {
		v, err := c.GetOrCreate("k", create)
		require.NoError(t, err)
		assert.Equal(t, "value", v)
	}

	assert.Equal(t, 1, calls)

	errBad := errors.New("bad")

	_, err := c.GetOrCreate("x", func() (string, error) { return "", errBad })
	require.ErrorIs(t, err, errBad)
	assert.Equal(t, 1, c.Len(), "failures are not cached")

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, cache.DefaultMaxEntries, stats.MaxEntries)
	assert.InDelta(t, 0.5, stats.HitRate(), 1e-9)
}

func TestLRU_Clear(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[int, int](4)
	c.Put(1, 1)
	c.Put(2, 2)
	c.Clear()

	assert.Zero(t, c.Len())

	_, ok := c.Get(1)
	assert.False(t, ok)

	c.Put(3, 3)
	assert.Equal(t, 1, c.Len())
}

func TestStats_HitRateEmpty(t *testing.T) {
	t.Parallel()

	assert.Zero(t, cache.Stats{}.HitRate())
}

func TestLRU_Concurrent(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, int](16)

	var wg sync.WaitGroup

	for g := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range 200 {
				key := fmt.Sprintf("k%d", (g*i)%32)
				c.Put(key, i)
				c.Get(key)
			}
		}()
	}

	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 16)
}
