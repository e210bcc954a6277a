package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitrineapp/partner-go/internal/testutil"
)

func newTestLimiter(t *testing.T, maxPerWindow int, window time.Duration) *RecipientLimiter {
	t.Helper()
	client := testutil.SetupTestRedis(t)
	t.Cleanup(func() { _ = client.Close() })

	limiter, err := NewRecipientLimiter(RecipientLimiterOptions{
		Client:       client,
		MaxPerWindow: maxPerWindow,
		Window:       window,
		Prefix:       "test:maillimit:" + t.Name() + ":",
	})
	require.NoError(t, err)
	return limiter
}

func TestNewRecipientLimiter(t *testing.T) {
	t.Run("requires client", func(t *testing.T) {
		_, err := NewRecipientLimiter(RecipientLimiterOptions{MaxPerWindow: 5})
		require.Error(t, err)
	})

	t.Run("requires positive cap", func(t *testing.T) {
		_, err := NewRecipientLimiter(RecipientLimiterOptions{
			Client: redis.NewClient(&redis.Options{}),
		})
		require.Error(t, err)
	})
}

func TestRecipientLimiter_Allow(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to the cap then denies", func(t *testing.T) {
		limiter := newTestLimiter(t, 3, time.Hour)

		for i := 0; i < 3; i++ {
			ok, err := limiter.Allow(ctx, "owner@x.com")
			require.NoError(t, err)
			assert.True(t, ok)
		}

		ok, err := limiter.Allow(ctx, "owner@x.com")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("denied check does not consume quota", func(t *testing.T) {
		limiter := newTestLimiter(t, 1, time.Hour)

		ok, err := limiter.Allow(ctx, "owner@x.com")
		require.NoError(t, err)
		assert.True(t, ok)

		for i := 0; i < 3; i++ {
			ok, err = limiter.Allow(ctx, "owner@x.com")
			require.NoError(t, err)
			assert.False(t, ok)
		}
	})

	t.Run("recipients are limited independently", func(t *testing.T) {
		limiter := newTestLimiter(t, 1, time.Hour)

		ok, err := limiter.Allow(ctx, "first@x.com")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = limiter.Allow(ctx, "second@x.com")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("window expiry frees quota", func(t *testing.T) {
		limiter := newTestLimiter(t, 1, 100*time.Millisecond)

		ok, err := limiter.Allow(ctx, "owner@x.com")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = limiter.Allow(ctx, "owner@x.com")
		require.NoError(t, err)
		assert.False(t, ok)

		time.Sleep(150 * time.Millisecond)

		ok, err = limiter.Allow(ctx, "owner@x.com")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("requires recipient", func(t *testing.T) {
		limiter := newTestLimiter(t, 1, time.Hour)

		_, err := limiter.Allow(ctx, "")
		require.Error(t, err)
	})
}
