package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	MetricOpsTotal    = "cache.ops.total"
	MetricOpsErrors   = "cache.ops.errors"
	MetricLookupHits  = "cache.lookups.hits"
	MetricLookupMiss  = "cache.lookups.misses"
	MetricOpsDuration = "cache.op.duration_ms"
)

// Metrics records cache operation metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordOperation records one operation with its duration and outcome.
	RecordOperation(ctx context.Context, meta OpMeta, duration time.Duration, err error)

	// RecordLookup records a hit or a miss.
	RecordLookup(ctx context.Context, meta OpMeta, hit bool)
}

type otelMetrics struct {
	total    metric.Int64Counter
	errors   metric.Int64Counter
	hits     metric.Int64Counter
	misses   metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMetrics creates the cache instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	var (
		m   otelMetrics
		err error
	)

	if m.total, err = meter.Int64Counter(MetricOpsTotal,
		metric.WithDescription("Total number of cache operations"),
		metric.WithUnit("{op}"),
	); err != nil {
		return nil, err
	}
	if m.errors, err = meter.Int64Counter(MetricOpsErrors,
		metric.WithDescription("Cache operations that reported a backend failure"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}
	if m.hits, err = meter.Int64Counter(MetricLookupHits,
		metric.WithDescription("Lookups that found a live value"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return nil, err
	}
	if m.misses, err = meter.Int64Counter(MetricLookupMiss,
		metric.WithDescription("Lookups that found nothing"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return nil, err
	}
	if m.duration, err = meter.Float64Histogram(MetricOpsDuration,
		metric.WithDescription("Cache operation duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

func (m *otelMetrics) RecordOperation(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attributes()...)

	m.total.Add(ctx, 1, opt)
	if err != nil {
		m.errors.Add(ctx, 1, opt)
	}
	m.duration.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

func (m *otelMetrics) RecordLookup(ctx context.Context, meta OpMeta, hit bool) {
	opt := metric.WithAttributes(meta.attributes()...)
	if hit {
		m.hits.Add(ctx, 1, opt)
		return
	}
	m.misses.Add(ctx, 1, opt)
}

// NewNopMetrics returns metrics that record nothing.
func NewNopMetrics() Metrics {
	return nopMetrics{}
}

type nopMetrics struct{}

func (nopMetrics) RecordOperation(context.Context, OpMeta, time.Duration, error) {}
func (nopMetrics) RecordLookup(context.Context, OpMeta, bool)                     {}
