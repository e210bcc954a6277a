package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vitrineapp/partner-go/internal/core"
)

const defaultLimiterPrefix = "partner:maillimit:"

// RecipientLimiterOptions configures the sliding-window recipient limiter.
type RecipientLimiterOptions struct {
	Client redis.UniversalClient

	// MaxPerWindow is the delivery cap per recipient inside Window.
	MaxPerWindow int
	// Window is the sliding window size; defaults to one hour.
	Window time.Duration
	// Prefix overrides the Redis key prefix.
	Prefix string
}

// RecipientLimiter caps deliveries per recipient using a Redis sorted set as
// a sliding window. Each permitted delivery adds a member scored by its
// timestamp; members older than the window are pruned on every check.
type RecipientLimiter struct {
	client redis.UniversalClient
	max    int64
	window time.Duration
	prefix string
}

// NewRecipientLimiter constructs a RecipientLimiter.
func NewRecipientLimiter(opts RecipientLimiterOptions) (*RecipientLimiter, error) {
	if opts.Client == nil {
		return nil, errors.New("redis client is required")
	}
	if opts.MaxPerWindow <= 0 {
		return nil, errors.New("max per window must be greater than zero")
	}

	window := opts.Window
	if window <= 0 {
		window = time.Hour
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultLimiterPrefix
	}

	return &RecipientLimiter{
		client: opts.Client,
		max:    int64(opts.MaxPerWindow),
		window: window,
		prefix: prefix,
	}, nil
}

// Allow reports whether another delivery to the recipient is permitted and
// records the attempt when it is. A denied check records nothing, so a
// rescheduled delivery is not double-counted.
func (l *RecipientLimiter) Allow(ctx context.Context, recipient string) (bool, error) {
	if recipient == "" {
		return false, errors.New("recipient is required")
	}

	key := l.prefix + recipient
	now := time.Now()
	windowStart := now.Add(-l.window)

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("check recipient limit: %w", err)
	}

	if countCmd.Val() >= l.max {
		return false, nil
	}

	record := l.client.Pipeline()
	record.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: limiterMember(now),
	})
	// TTL slightly longer than the window so idle keys clean themselves up.
	record.Expire(ctx, key, l.window+time.Minute)
	if _, err := record.Exec(ctx); err != nil {
		return false, fmt.Errorf("record recipient delivery: %w", err)
	}

	return true, nil
}

// limiterMember builds a unique member so concurrent deliveries within the
// same nanosecond do not collapse into one entry.
func limiterMember(now time.Time) string {
	var buf [4]byte
	_, _ = rand.Read(buf[:])
	return strconv.FormatInt(now.UnixNano(), 10) + ":" + hex.EncodeToString(buf[:])
}

var _ core.RecipientLimiter = (*RecipientLimiter)(nil)
