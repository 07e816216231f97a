// Package ratelimit caps requests per client over a sliding minute.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// Window is the period each client's budget covers.
const Window = time.Minute

// TooManyRequests is the detail returned once a client's budget is spent.
const TooManyRequests = "Too many requests. Please wait a moment."

const storePrefix = "farmease:ratelimit"

// Limiter tracks request counts per key.
type Limiter struct {
	instance *limiter.Limiter
	closer   func() error
}

// New creates a limiter allowing perMinute requests per key. With an empty
// redisURI counts are kept in memory.
func New(ctx context.Context, perMinute int64, redisURI string) (*Limiter, error) {
	if perMinute < 1 {
		return nil, fmt.Errorf("rate limit must be positive, got %d", perMinute)
	}
	rate := limiter.Rate{Period: Window, Limit: perMinute}

	if redisURI == "" {
		return &Limiter{instance: limiter.New(memory.NewStore(), rate)}, nil
	}

	opt, err := redis.ParseURL(redisURI)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URI: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: storePrefix, MaxRetry: 3})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("create redis limiter store: %w", err)
	}
	logger().Infow("rate limiter backed by redis", "addr", opt.Addr, "perMinute", perMinute)
	return &Limiter{instance: limiter.New(store, rate), closer: client.Close}, nil
}

// Allow records a request for key and reports whether it is within budget.
// Store errors fail open.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	res, err := l.instance.Get(ctx, key)
	if err != nil {
		logger().Warnw("rate limiter unavailable", "key", key, "error", err)
		return true
	}
	if res.Reached {
		logger().Infow("rate limit reached", "key", key, "limit", res.Limit, "reset", res.Reset)
		return false
	}
	return true
}

// Close releases the backing store.
func (l *Limiter) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer()
}
