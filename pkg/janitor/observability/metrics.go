// Package observability provides structured logging, metrics, and tracing
// hooks for janitor registries.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records registry lifecycle metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordTracked records a task entering a registry.
	RecordTracked(ctx context.Context, kind string)

	// RecordDisposal records a single task disposal with its duration and
	// whether the disposal action panicked.
	RecordDisposal(ctx context.Context, kind string, duration time.Duration, panicked bool)

	// RecordCleanup records a completed bulk-cleanup sweep.
	RecordCleanup(ctx context.Context, entries int, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	tasksTracked    metric.Int64Counter
	tasksDisposed   metric.Int64Counter
	disposalPanics  metric.Int64Counter
	disposalLatency metric.Float64Histogram
	cleanupLatency  metric.Float64Histogram
	cleanupEntries  metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("janitor")

	tasksTracked, err := meter.Int64Counter("janitor.tasks.tracked",
		metric.WithDescription("Number of tasks registered"),
	)
	if err != nil {
		return nil, err
	}

	tasksDisposed, err := meter.Int64Counter("janitor.tasks.disposed",
		metric.WithDescription("Number of task disposals"),
	)
	if err != nil {
		return nil, err
	}

	disposalPanics, err := meter.Int64Counter("janitor.disposal.panics",
		metric.WithDescription("Number of disposal actions that panicked"),
	)
	if err != nil {
		return nil, err
	}

	disposalLatency, err := meter.Float64Histogram("janitor.disposal.latency_ms",
		metric.WithDescription("Single-task disposal latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cleanupLatency, err := meter.Float64Histogram("janitor.cleanup.latency_ms",
		metric.WithDescription("Bulk-cleanup sweep latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cleanupEntries, err := meter.Int64Histogram("janitor.cleanup.entries",
		metric.WithDescription("Entries disposed per bulk-cleanup sweep"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		tasksTracked:    tasksTracked,
		tasksDisposed:   tasksDisposed,
		disposalPanics:  disposalPanics,
		disposalLatency: disposalLatency,
		cleanupLatency:  cleanupLatency,
		cleanupEntries:  cleanupEntries,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		return NoopMetrics{}
	}
	return m
}

// RecordTracked records a task entering a registry.
func (m *otelMetrics) RecordTracked(ctx context.Context, kind string) {
	m.tasksTracked.Add(ctx, 1, metric.WithAttributes(
		attribute.String("task.kind", kind),
	))
}

// RecordDisposal records a single task disposal.
func (m *otelMetrics) RecordDisposal(ctx context.Context, kind string, duration time.Duration, panicked bool) {
	attrs := metric.WithAttributes(
		attribute.String("task.kind", kind),
	)
	m.tasksDisposed.Add(ctx, 1, attrs)
	m.disposalLatency.Record(ctx, float64(duration.Microseconds())/1000.0, attrs)
	if panicked {
		m.disposalPanics.Add(ctx, 1, attrs)
	}
}

// RecordCleanup records a completed bulk-cleanup sweep.
func (m *otelMetrics) RecordCleanup(ctx context.Context, entries int, duration time.Duration) {
	m.cleanupLatency.Record(ctx, float64(duration.Microseconds())/1000.0)
	m.cleanupEntries.Record(ctx, int64(entries))
}
