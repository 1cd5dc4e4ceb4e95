package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
)

const spanAttrStatus = "status"

// TracingCollector implements membersearch.TracingCollector with an OpenTelemetry tracer.
// Spans started by it become children of the span in the incoming context.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a collector on a tracer of your TracerProvider.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan starts a client span carrying attrs and returns the context that holds it.
func (t *TracingCollector) StartSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, membersearch.SpanContext) {

	spanCtx, span := t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(toAttributes(attrs)...),
	)

	return spanCtx, &OTelSpanContext{span: span}
}

// FinishSpan adds attrs, maps status to an OpenTelemetry status code and ends the span.
// Span contexts from other collectors are ignored.
func (t *TracingCollector) FinishSpan(spanCtx membersearch.SpanContext, status string, attrs map[string]string) {
	otelSpanCtx, ok := spanCtx.(*OTelSpanContext)
	if !ok {
		return
	}

	otelSpanCtx.span.SetAttributes(toAttributes(attrs)...)
	otelSpanCtx.SetStatus(status)
	otelSpanCtx.span.End()
}

var _ membersearch.TracingCollector = (*TracingCollector)(nil)

// OTelSpanContext wraps an OpenTelemetry span as a membersearch.SpanContext.
type OTelSpanContext struct {
	span trace.Span
}

// SetStatus maps "success" to codes.Ok and "error" to codes.Error.
// Any other status is kept as a span attribute.
func (s *OTelSpanContext) SetStatus(status string) {
	switch status {
	case "success", "ok":
		s.span.SetStatus(codes.Ok, "")
	case "error":
		s.span.SetStatus(codes.Error, "member search failed")
	case "cancelled", "canceled":
		s.span.SetStatus(codes.Error, "member search cancelled")
	default:
		s.span.SetAttributes(attribute.String(spanAttrStatus, status))
	}
}

func (s *OTelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

var _ membersearch.SpanContext = (*OTelSpanContext)(nil)
