package resilience

import (
	"context"
	"time"
)

// Executor layers the configured guards around an operation. From outside
// in: rate limiter, bulkhead, circuit breaker, retry, per-attempt timeout.
// Unset guards are skipped; a zero Executor just calls op.
type Executor struct {
	limiter  *RateLimiter
	bulkhead *Bulkhead
	breaker  *CircuitBreaker
	retry    *Retry
	timeout  time.Duration
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates an Executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) { e.limiter = rl }
}

func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) { e.bulkhead = b }
}

func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) { e.breaker = cb }
}

func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) { e.retry = r }
}

// WithTimeout bounds each attempt, not the whole retried call.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = d }
}

// Execute runs op through every configured guard.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	run := op

	if e.timeout > 0 {
		next, d := run, e.timeout
		run = func(ctx context.Context) error { return ExecuteWithTimeout(ctx, d, next) }
	}
	if e.retry != nil {
		next := run
		run = func(ctx context.Context) error { return e.retry.Execute(ctx, next) }
	}
	if e.breaker != nil {
		next := run
		run = func(ctx context.Context) error { return e.breaker.Execute(ctx, next) }
	}
	if e.bulkhead != nil {
		next := run
		run = func(ctx context.Context) error { return e.bulkhead.Execute(ctx, next) }
	}
	if e.limiter != nil {
		next := run
		run = func(ctx context.Context) error { return e.limiter.Execute(ctx, next) }
	}

	return run(ctx)
}
