package resilience

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig configures a RateLimiter.
type RateLimiterConfig struct {
	// Rate is operations per second. Default: 10.
	Rate float64

	// Burst is the bucket size. Default: 1.
	Burst int

	// MaxWait bounds how long Execute queues for a token. Zero rejects
	// immediately when the bucket is empty.
	MaxWait time.Duration
}

// RateLimiter is a token bucket in front of an upstream service.
type RateLimiter struct {
	limiter *rate.Limiter
	maxWait time.Duration
}

// NewRateLimiter creates a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 10
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(config.Rate), config.Burst),
		maxWait: config.MaxWait,
	}
}

// Allow takes a token if one is available now.
func (rl *RateLimiter) Allow() bool {
	return rl.limiter.Allow()
}

// Execute runs op once a token is available.
func (rl *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if rl.maxWait <= 0 {
		if !rl.limiter.Allow() {
			return ErrRateLimited
		}
		return op(ctx)
	}

	waitCtx, cancel := context.WithTimeout(ctx, rl.maxWait)
	defer cancel()
	if err := rl.limiter.Wait(waitCtx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrRateLimited
	}
	return op(ctx)
}

// Tokens reports the tokens available now.
func (rl *RateLimiter) Tokens() float64 {
	return rl.limiter.Tokens()
}
