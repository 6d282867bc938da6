// internal/ratelimit/redis.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisKeyPrefix = "ledger:ratelimit:"

type redisLimiter struct {
	client  *redis.Client
	logger  zerolog.Logger
	prefix  string
	timeout time.Duration
}

// NewRedisLimiter creates a limiter whose counters live in Redis and are shared by every
// instance of the service. Redis failures after startup let requests through.
func NewRedisLimiter(addr, password string, db int, logger zerolog.Logger) (Limiter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return newRedisLimiter(client, logger), nil
}

func newRedisLimiter(client *redis.Client, logger zerolog.Logger) *redisLimiter {
	return &redisLimiter{
		client:  client,
		logger:  logger.With().Str("component", "redis_rate_limiter").Logger(),
		prefix:  redisKeyPrefix,
		timeout: 250 * time.Millisecond,
	}
}

func (rl *redisLimiter) Allow(key string, limit int, window time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	window = defaultWindow(window)
	ctx, cancel := context.WithTimeout(context.Background(), rl.timeout)
	defer cancel()

	redisKey := rl.prefix + key
	var (
		incr *redis.IntCmd
		pttl *redis.DurationCmd
	)
	// SET NX EX opens the window together with its expiry, and INCR keeps that TTL, so a
	// counter never outlives its window.
	_, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, redisKey, 0, window)
		incr = pipe.Incr(ctx, redisKey)
		pttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		rl.logger.Error().Err(err).Str("key", redisKey).Msg("rate limiter redis error")
		return Decision{Allowed: true}
	}

	counter := incr.Val()
	ttl := pttl.Val()
	if ttl <= 0 {
		ttl = window
	}
	return Decision{
		Allowed:   int(counter) <= limit,
		Count:     int(counter),
		WindowEnd: time.Now().Add(ttl),
	}
}

func (rl *redisLimiter) Close() {
	if rl.client != nil {
		_ = rl.client.Close()
	}
}
