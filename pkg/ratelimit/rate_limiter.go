package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "fastrail:ratelimit"

// Config holds the rate limiter settings
type Config struct {
	Enabled bool
	Window  time.Duration
}

// Result represents a rate limit check result
type Result struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// RateLimiter is a fixed-window request counter kept in Redis.
// Each (scope, client, window) gets its own key that expires with the window.
type RateLimiter struct {
	client redis.Cmdable
	config Config
	now    func() time.Time
}

func NewRateLimiter(client redis.Cmdable, config Config) *RateLimiter {
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	return &RateLimiter{
		client: client,
		config: config,
		now:    time.Now,
	}
}

// IsAllowed counts one request for clientKey in scope and reports whether it fits under limit
func (r *RateLimiter) IsAllowed(ctx context.Context, scope, clientKey string, limit int) (*Result, error) {
	now := r.now()
	windowSeconds := int64(r.config.Window / time.Second)
	if windowSeconds < 1 {
		windowSeconds = 1
	}
	bucket := now.Unix() / windowSeconds
	resetTime := (bucket + 1) * windowSeconds

	if !r.config.Enabled || r.client == nil || limit <= 0 {
		return &Result{Allowed: true, Limit: limit, Remaining: limit, ResetTime: resetTime}, nil
	}

	key := fmt.Sprintf("%s:%s:%s:%d", keyPrefix, scope, clientKey, bucket)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis incr failed: %w", err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, r.config.Window).Err(); err != nil {
			return nil, fmt.Errorf("redis expire failed: %w", err)
		}
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: remaining,
		ResetTime: resetTime,
	}, nil
}
