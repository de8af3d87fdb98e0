package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-ai-service/internal/infrastructure/config"
	"recipe-ai-service/internal/pkg/common"
)

func cacheConfig(maxSize int, ttl time.Duration) *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{
			Enabled:         true,
			MaxSize:         maxSize,
			TTL:             ttl,
			CleanupInterval: time.Minute,
		},
	}
}

func TestNewDisabledReturnsNil(t *testing.T) {
	cfg := cacheConfig(10, time.Minute)
	cfg.Cache.Enabled = false
	store, err := New(cfg)
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestMemoryCacheGetSet(t *testing.T) {
	store, err := New(cacheConfig(10, time.Minute))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	_, err = store.Get(ctx, "prompt")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	require.NoError(t, store.Set(ctx, "prompt", "value"))
	got, err := store.Get(ctx, "prompt")
	require.NoError(t, err)
	assert.Equal(t, "value", got)
}

func TestMemoryCacheExpiry(t *testing.T) {
	store, err := New(cacheConfig(10, 10*time.Millisecond))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "prompt", "value"))
	time.Sleep(20 * time.Millisecond)

	_, err = store.Get(ctx, "prompt")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestMemoryCacheEvictsLRUWhenFull(t *testing.T) {
	store, err := New(cacheConfig(2, time.Minute))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "a", "1"))
	require.NoError(t, store.Set(ctx, "b", "2"))

	// Touch "a" so "b" becomes the eviction candidate.
	_, err = store.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "c", "3"))

	_, err = store.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "c")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "b")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestMemoryCacheStats(t *testing.T) {
	store, err := New(cacheConfig(10, time.Minute))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "prompt", "value"))
	_, _ = store.Get(ctx, "prompt")
	_, _ = store.Get(ctx, "missing")

	stats := store.Stats()
	assert.Equal(t, "memory", stats["backend"])
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
	assert.Equal(t, 1, stats["size"])
}

func TestKeyStableAndDistinct(t *testing.T) {
	assert.Equal(t, Key("a"), Key("a"))
	assert.NotEqual(t, Key("a"), Key("b"))
	assert.True(t, strings.HasPrefix(Key("a"), "ai:completion:"))
}
