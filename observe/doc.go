// Package observe provides telemetry for cache operations.
//
// It wraps OpenTelemetry tracing and metrics and a small JSON structured
// logger behind narrow interfaces. Every cache operation is described by an
// OpMeta (backend, operation, key family); Middleware turns one operation
// into a span, a set of metric points, and a debug log line.
//
// Logging is best-effort and never fails the operation being observed.
package observe
