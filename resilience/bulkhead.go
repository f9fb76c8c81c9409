package resilience

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// BulkheadConfig configures a Bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the number of operations allowed in flight.
	// Default: 10.
	MaxConcurrent int

	// MaxWait bounds how long a caller queues for a slot. Zero rejects
	// immediately when every slot is taken.
	MaxWait time.Duration
}

// Bulkhead caps concurrent calls to one dependency.
type Bulkhead struct {
	sem      *semaphore.Weighted
	size     int
	maxWait  time.Duration
	active   atomic.Int64
	rejected atomic.Int64
}

// NewBulkhead creates a Bulkhead.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	return &Bulkhead{
		sem:     semaphore.NewWeighted(int64(config.MaxConcurrent)),
		size:    config.MaxConcurrent,
		maxWait: config.MaxWait,
	}
}

// Execute runs op while holding a slot.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.acquire(ctx); err != nil {
		return err
	}
	b.active.Add(1)
	defer func() {
		b.active.Add(-1)
		b.sem.Release(1)
	}()
	return op(ctx)
}

func (b *Bulkhead) acquire(ctx context.Context) error {
	if b.sem.TryAcquire(1) {
		return nil
	}
	if b.maxWait <= 0 {
		b.rejected.Add(1)
		return ErrBulkheadFull
	}

	waitCtx, cancel := context.WithTimeout(ctx, b.maxWait)
	defer cancel()
	if err := b.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.rejected.Add(1)
		return ErrBulkheadFull
	}
	return nil
}

// BulkheadStats is a snapshot of a Bulkhead.
type BulkheadStats struct {
	Active        int
	MaxConcurrent int
	Rejected      int64
}

// Stats returns a snapshot of the bulkhead.
func (b *Bulkhead) Stats() BulkheadStats {
	return BulkheadStats{
		Active:        int(b.active.Load()),
		MaxConcurrent: b.size,
		Rejected:      b.rejected.Load(),
	}
}
