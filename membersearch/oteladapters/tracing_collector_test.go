package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch/oteladapters"
	"github.com/AntonStoeckl/dynamic-member-search-go/testutil/helper"
)

func newInMemoryTracer() (*tracetest.InMemoryExporter, *oteladapters.TracingCollector) {
	exporter := tracetest.NewInMemoryExporter()
	provider := trace.NewTracerProvider(trace.WithSyncer(exporter))

	return exporter, oteladapters.NewTracingCollector(provider.Tracer("test"))
}

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	exporter, collector := newInMemoryTracer()

	ctx, spanCtx := collector.StartSpan(
		context.Background(),
		"membersearch.search_page",
		map[string]string{"operation": "search_page", "count_strategy": "skip"},
	)
	spanCtx.AddAttribute("duration_ms", "1.25")
	collector.FinishSpan(spanCtx, "success", map[string]string{"row_count": "2", "count_query": "false"})

	assert.True(t, oteltrace.SpanFromContext(ctx).SpanContext().IsValid(), "context should carry the span")

	spans := exporter.GetSpans()
	require.Len(t, spans, 1, "Expected exactly one span")

	span := spans[0]
	assert.Equal(t, "membersearch.search_page", span.Name)
	assert.Equal(t, oteltrace.SpanKindClient, span.SpanKind)
	assert.Equal(t, codes.Ok, span.Status.Code)
	assertSpanHasAttribute(t, span, "operation", "search_page")
	assertSpanHasAttribute(t, span, "count_strategy", "skip")
	assertSpanHasAttribute(t, span, "duration_ms", "1.25")
	assertSpanHasAttribute(t, span, "row_count", "2")
	assertSpanHasAttribute(t, span, "count_query", "false")
}

func Test_TracingCollector_FinishSpan_WithErrorStatus(t *testing.T) {
	exporter, collector := newInMemoryTracer()

	_, spanCtx := collector.StartSpan(context.Background(), "membersearch.search", nil)
	collector.FinishSpan(spanCtx, "error", map[string]string{"error_type": "store_unavailable"})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "member search failed", spans[0].Status.Description)
	assertSpanHasAttribute(t, spans[0], "error_type", "store_unavailable")
}

func Test_TracingCollector_FinishSpan_WithUnknownStatus_KeepsItAsAttribute(t *testing.T) {
	exporter, collector := newInMemoryTracer()

	_, spanCtx := collector.StartSpan(context.Background(), "membersearch.search", nil)
	collector.FinishSpan(spanCtx, "partial", nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
	assertSpanHasAttribute(t, spans[0], "status", "partial")
}

func Test_TracingCollector_FinishSpan_IgnoresForeignSpanContexts(t *testing.T) {
	exporter, collector := newInMemoryTracer()

	collector.FinishSpan(&helper.SpySpanContext{}, "success", nil)

	assert.Empty(t, exporter.GetSpans())
}

func Test_TracingCollector_StartSpan_NestsUnderParentSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := trace.NewTracerProvider(trace.WithSyncer(exporter))
	collector := oteladapters.NewTracingCollector(provider.Tracer("test"))

	parentCtx, parent := provider.Tracer("http").Start(context.Background(), "GET /v3/members")
	_, spanCtx := collector.StartSpan(parentCtx, "membersearch.search_page", nil)
	collector.FinishSpan(spanCtx, "success", nil)
	parent.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
}

func assertSpanHasAttribute(t *testing.T, span tracetest.SpanStub, key, expected string) {
	t.Helper()

	for _, attr := range span.Attributes {
		if attr.Key == attribute.Key(key) {
			assert.Equal(t, expected, attr.Value.AsString(), "attribute %s", key)
			return
		}
	}

	t.Errorf("attribute %s not found on span %s", key, span.Name)
}
