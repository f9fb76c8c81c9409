package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// Middleware wraps cache operations with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Context: the span context is passed to the wrapped function.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware. Nil components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NewNopTracer()
	}
	if metrics == nil {
		metrics = NewNopMetrics()
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Middleware{tracer: tracer, metrics: metrics, logger: logger}
}

// MiddlewareFromObserver builds a Middleware from an Observer's providers.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Observe runs a mutating operation (set, delete, clear).
func (m *Middleware) Observe(ctx context.Context, meta OpMeta, fn func(context.Context) error) error {
	ctx, span := m.tracer.StartSpan(ctx, meta)
	start := time.Now()

	err := fn(ctx)

	duration := time.Since(start)
	m.tracer.EndSpan(span, err)
	m.metrics.RecordOperation(ctx, meta, duration, err)

	logger := m.logger.WithOp(meta)
	fields := []Field{{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000}}
	if err != nil {
		fields = append(fields, Field{Key: "error", Value: err.Error()})
		logger.Warn(ctx, "cache operation degraded", fields...)
	} else {
		logger.Debug(ctx, "cache operation completed", fields...)
	}

	return err
}

// ObserveLookup runs a read operation (get, exists) and records whether it
// hit.
func (m *Middleware) ObserveLookup(ctx context.Context, meta OpMeta, fn func(context.Context) bool) bool {
	ctx, span := m.tracer.StartSpan(ctx, meta)
	start := time.Now()

	hit := fn(ctx)

	duration := time.Since(start)
	span.SetAttributes(attribute.Bool("cache.hit", hit))
	m.tracer.EndSpan(span, nil)
	m.metrics.RecordOperation(ctx, meta, duration, nil)
	m.metrics.RecordLookup(ctx, meta, hit)

	m.logger.WithOp(meta).Debug(ctx, "cache lookup completed",
		Field{Key: "hit", Value: hit},
		Field{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
	)

	return hit
}
