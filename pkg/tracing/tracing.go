package tracing

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer

// SetTracer installs the tracer StartSpan uses. Setup calls it; nil turns tracing off.
func SetTracer(t trace.Tracer) {
	tracer = t
}

// StartSpan starts a child span of ctx. Without a tracer ctx is returned unchanged with a
// non-recording span that is safe to End.
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return tracer.Start(ctx, spanName)
}

// Fail records err on span and marks it failed with description.
func Fail(span trace.Span, err error, description string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, description)
}

func activeSpanContext(ctx context.Context) (trace.SpanContext, bool) {
	if tracer == nil {
		return trace.SpanContext{}, false
	}
	sc := trace.SpanContextFromContext(ctx)
	return sc, sc.IsValid()
}

// GetTraceID returns the hex trace id of the active span, or "" when none is recording.
func GetTraceID(ctx context.Context) string {
	sc, ok := activeSpanContext(ctx)
	if !ok {
		return ""
	}
	return sc.TraceID().String()
}

// GetSpanID returns the hex span id of the active span, or "".
func GetSpanID(ctx context.Context) string {
	sc, ok := activeSpanContext(ctx)
	if !ok {
		return ""
	}
	return sc.SpanID().String()
}

// PropagationHeaders returns the W3C traceparent and tracestate values for the active span,
// for carrying the trace across a message broker. Empty when no span is recording.
func PropagationHeaders(ctx context.Context) map[string]string {
	carrier := propagation.MapCarrier{}
	if _, ok := activeSpanContext(ctx); ok {
		propagation.TraceContext{}.Inject(ctx, carrier)
	}
	return carrier
}
