package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecutor_Empty(t *testing.T) {
	calls := 0
	err := NewExecutor().Execute(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestExecutor_RetriesInsideBreaker(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2})
	e := NewExecutor(
		WithCircuitBreaker(cb),
		WithRetry(fastRetry(3)),
	)

	calls := 0
	err := e.Execute(context.Background(), func(context.Context) error {
		calls++
		return errUpstream
	})
	if !errors.Is(err, ErrRetriesExhausted) || calls != 3 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
	if s := cb.Stats(); s.Failures != 1 {
		t.Errorf("breaker failures = %d, want one per retried call", s.Failures)
	}
}

func TestExecutor_TimeoutPerAttempt(t *testing.T) {
	e := NewExecutor(
		WithRetry(fastRetry(2)),
		WithTimeout(10*time.Millisecond),
	)

	calls := 0
	err := e.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, ErrTimeout) || calls != 2 {
		t.Errorf("err = %v, calls = %d, want ErrTimeout after 2 attempts", err, calls)
	}
}

func TestExecutor_RateLimiterOutermost(t *testing.T) {
	e := NewExecutor(
		WithRateLimiter(NewRateLimiter(RateLimiterConfig{Rate: 0.1, Burst: 1})),
		WithRetry(fastRetry(3)),
	)
	ctx := context.Background()

	_ = e.Execute(ctx, succeed)
	calls := 0
	err := e.Execute(ctx, func(context.Context) error { calls++; return nil })
	if !errors.Is(err, ErrRateLimited) || calls != 0 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestExecutor_Bulkhead(t *testing.T) {
	e := NewExecutor(WithBulkhead(NewBulkhead(BulkheadConfig{MaxConcurrent: 1})))
	if err := e.Execute(context.Background(), succeed); err != nil {
		t.Errorf("error = %v", err)
	}
}
