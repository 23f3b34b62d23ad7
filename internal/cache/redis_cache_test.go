package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "analytics:survey:1", cachedValue{Name: "lunch", Count: 3}, time.Minute))

	var got cachedValue
	hit, err := c.Get(ctx, "analytics:survey:1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, cachedValue{Name: "lunch", Count: 3}, got)
}

func TestMemoryCache_MissOnUnknownKey(t *testing.T) {
	c := NewMemoryCache()

	var got cachedValue
	hit, err := c.Get(context.Background(), "analytics:survey:404", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCache_ExpiredEntryIsAMiss(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", cachedValue{Name: "stale"}, time.Nanosecond))
	time.Sleep(5 * time.Millisecond)

	var got cachedValue
	hit, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", cachedValue{Name: "gone"}, time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	var got cachedValue
	hit, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCache_DeletePattern(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "analytics:survey:1", cachedValue{}, time.Minute))
	require.NoError(t, c.Set(ctx, "analytics:survey:2", cachedValue{}, time.Minute))
	require.NoError(t, c.Set(ctx, "roster:section:1", cachedValue{}, time.Minute))

	require.NoError(t, c.DeletePattern(ctx, "analytics:survey:*"))

	var got cachedValue
	hit, err := c.Get(ctx, "analytics:survey:1", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	hit, err = c.Get(ctx, "analytics:survey:2", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	hit, err = c.Get(ctx, "roster:section:1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
}
