package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheGetSet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.Equal(t, ErrCacheMiss, err)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.Equal(t, ErrCacheMiss, err)
}

func TestMemoryCacheTTL(t *testing.T) {
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	now = now.Add(30 * time.Second)
	_, err := c.Get(ctx, "k")
	assert.NoError(t, err)

	now = now.Add(31 * time.Second)
	_, err = c.Get(ctx, "k")
	assert.Equal(t, ErrCacheMiss, err)
}

func TestMemoryCacheSetNX(t *testing.T) {
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := c.SetNX(ctx, "intent:abc", "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetNX(ctx, "intent:abc", "1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second claim of the same key must fail")

	now = now.Add(2 * time.Minute)
	ok, err = c.SetNX(ctx, "intent:abc", "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired key can be claimed again")
}

func TestNewPicksAdapter(t *testing.T) {
	svc := New("", "", 0)
	_, ok := svc.(*MemoryCache)
	assert.True(t, ok)
}
