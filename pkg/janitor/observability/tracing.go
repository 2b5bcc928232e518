package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the janitor tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("janitor")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartCleanupSpan starts a span covering an entire bulk-cleanup sweep.
	StartCleanupSpan(ctx context.Context, registryID string) (context.Context, trace.Span)

	// StartDisposalSpan starts a span for a single task disposal. It should
	// be a child of the cleanup span when one is active.
	StartDisposalSpan(ctx context.Context, kind string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartCleanupSpan starts a span covering an entire bulk-cleanup sweep.
func (m *otelSpanManager) StartCleanupSpan(ctx context.Context, registryID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "janitor.cleanup",
		trace.WithAttributes(
			attribute.String("registry.id", registryID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartDisposalSpan starts a span for a single task disposal.
func (m *otelSpanManager) StartDisposalSpan(ctx context.Context, kind string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "janitor.dispose",
		trace.WithAttributes(
			attribute.String("task.kind", kind),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
