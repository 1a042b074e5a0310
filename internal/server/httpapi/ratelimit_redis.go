package httpapi

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bookmarks/internal/logging"
	"github.com/redis/go-redis/v9"
)

type redisRateLimiter struct {
	client  *redis.Client
	logger  logging.Logger
	prefix  string
	timeout time.Duration
}

// NewRedisRateLimiter shares counters between server instances through
// Redis (INCR, then EXPIRE whenever the key has no TTL). Redis errors let the
// request through.
func NewRedisRateLimiter(ctx context.Context, addr, password string, db int, logger logging.Logger) (RateLimiter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newRedisRateLimiter(client, logger), nil
}

func newRedisRateLimiter(client *redis.Client, logger logging.Logger) *redisRateLimiter {
	return &redisRateLimiter{
		client:  client,
		logger:  logger.With("module", "ratelimit"),
		prefix:  "bookmarks:ratelimit:",
		timeout: 250 * time.Millisecond,
	}
}

func (rl *redisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if window <= 0 {
		window = time.Minute
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rl.timeout)
	defer cancel()

	redisKey := rl.prefix + key
	counter, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		rl.logger.Error(ctx, "redis rate limiter error", "op", "incr", "error", err)
		return Decision{Allowed: true}
	}

	// A key without a TTL is new or lost its EXPIRE; either way it gets one
	// here so the window always ends.
	ttl, err := rl.client.TTL(ctx, redisKey).Result()
	switch {
	case err != nil:
		rl.logger.Error(ctx, "redis rate limiter error", "op", "ttl", "error", err)
		ttl = window
	case ttl < 0:
		if err := rl.client.Expire(ctx, redisKey, window).Err(); err != nil {
			rl.logger.Error(ctx, "redis rate limiter error", "op", "expire", "error", err)
		}
		ttl = window
	}

	return Decision{
		Allowed:   int(counter) <= limit,
		Count:     int(counter),
		WindowEnd: time.Now().Add(ttl),
	}
}

func (rl *redisRateLimiter) Close() error {
	return rl.client.Close()
}
