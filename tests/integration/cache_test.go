package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrotamil/support-engine/internal/cache"
)

// TestRedisCache exercises the Redis cache client against a real Redis
// instance.
func TestRedisCache(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := SetupTestContainers(t)
	defer setup.Cleanup()

	client, err := cache.NewRedisClient(cache.RedisConfig{
		Addr:     setup.RedisAddr,
		PoolSize: 4,
	})
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "reply:abc", []byte(`{"kind":"faq"}`), time.Minute))

		val, err := client.Get(ctx, "reply:abc")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"kind":"faq"}`), val)
	})

	t.Run("miss", func(t *testing.T) {
		_, err := client.Get(ctx, "reply:missing")
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
	})

	t.Run("ttl expiry", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "reply:ttl", []byte("v"), time.Second))
		time.Sleep(1500 * time.Millisecond)

		_, err := client.Get(ctx, "reply:ttl")
		assert.ErrorIs(t, err, cache.ErrCacheMiss)
	})

	t.Run("delete by prefix", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "reply:a", []byte("1"), time.Minute))
		require.NoError(t, client.Set(ctx, "reply:b", []byte("2"), time.Minute))
		require.NoError(t, client.Set(ctx, "session:c", []byte("3"), time.Minute))

		require.NoError(t, client.DeleteByPrefix(ctx, "reply:"))

		_, err := client.Get(ctx, "reply:a")
		assert.ErrorIs(t, err, cache.ErrCacheMiss)

		val, err := client.Get(ctx, "session:c")
		require.NoError(t, err)
		assert.Equal(t, []byte("3"), val)
	})
}
