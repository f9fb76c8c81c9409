// Package resilience guards calls to a slow or failing dependency.
//
// The cache backends use a CircuitBreaker so a dead remote store is skipped
// instead of being hit on every lookup. The docs service runs upstream
// fetches through an Executor that composes rate limiting, a concurrency
// Bulkhead, the breaker, Retry with backoff and a per-attempt Timeout:
//
//	exec := resilience.NewExecutor(
//	    resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 10})),
//	    resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 4})),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 3})),
//	    resilience.WithTimeout(10*time.Second),
//	)
//	err := exec.Execute(ctx, fetch)
package resilience
