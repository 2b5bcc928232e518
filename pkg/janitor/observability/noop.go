package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
// Use when metrics are disabled to avoid overhead.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// RecordTracked does nothing.
func (NoopMetrics) RecordTracked(_ context.Context, _ string) {}

// RecordDisposal does nothing.
func (NoopMetrics) RecordDisposal(_ context.Context, _ string, _ time.Duration, _ bool) {}

// RecordCleanup does nothing.
func (NoopMetrics) RecordCleanup(_ context.Context, _ int, _ time.Duration) {}

// NoopSpanManager is a SpanManager that does nothing.
// Use when tracing is disabled to avoid overhead.
type NoopSpanManager struct{}

// Compile-time interface check.
var _ SpanManager = NoopSpanManager{}

// noopSpan is a span that does nothing.
// We use the OTel noop package for a proper no-op span implementation.
var noopSpan = noop.Span{}

// StartCleanupSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartCleanupSpan(ctx context.Context, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartDisposalSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartDisposalSpan(ctx context.Context, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error) {}
