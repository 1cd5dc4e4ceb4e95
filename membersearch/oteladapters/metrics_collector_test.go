package oteladapters_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch/oteladapters"
)

func newManualMeter() (*sdkmetric.ManualReader, *oteladapters.MetricsCollector) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return reader, oteladapters.NewMetricsCollector(provider.Meter("test"))
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics), "Failed to collect metrics")

	return resourceMetrics
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	reader, collector := newManualMeter()

	collector.RecordDuration(
		"membersearch_search_duration_seconds",
		150*time.Millisecond,
		map[string]string{"operation": "search", "status": "success"},
	)

	histogram := findHistogramMetric(t, collect(t, reader), "membersearch_search_duration_seconds")
	require.Len(t, histogram.DataPoints, 1, "Expected exactly one data point")

	dataPoint := histogram.DataPoints[0]
	assert.Equal(t, uint64(1), dataPoint.Count)
	assert.InDelta(t, 0.15, dataPoint.Sum, 0.001, "duration should be recorded in seconds")

	expectedAttrs := attribute.NewSet(
		attribute.String("operation", "search"),
		attribute.String("status", "success"),
	)
	assert.True(t, dataPoint.Attributes.Equals(&expectedAttrs), "Attributes should match")
}

func Test_MetricsCollector_IncrementCounterContext(t *testing.T) {
	reader, collector := newManualMeter()
	labels := map[string]string{"operation": "search_page", "count_strategy": "skip"}

	collector.IncrementCounterContext(context.Background(), "membersearch_count_queries_skipped_total", labels)
	collector.IncrementCounter("membersearch_count_queries_skipped_total", labels)

	counter := findCounterMetric(t, collect(t, reader), "membersearch_count_queries_skipped_total")
	require.Len(t, counter.DataPoints, 1, "Expected exactly one data point")
	assert.Equal(t, int64(2), counter.DataPoints[0].Value)
}

func Test_MetricsCollector_RecordValue(t *testing.T) {
	reader, collector := newManualMeter()
	labels := map[string]string{"operation": "search", "status": "success"}

	collector.RecordValue("membersearch_members_returned_total", 3, labels)
	collector.RecordValueContext(context.Background(), "membersearch_members_returned_total", 5, labels)

	histogram := findHistogramMetric(t, collect(t, reader), "membersearch_members_returned_total")
	require.Len(t, histogram.DataPoints, 1, "Expected exactly one data point")
	assert.Equal(t, uint64(2), histogram.DataPoints[0].Count)
	assert.InDelta(t, 8.0, histogram.DataPoints[0].Sum, 0.001)
}

func Test_MetricsCollector_When_UsedConcurrently_Then_AllRecordsArrive(t *testing.T) {
	reader, collector := newManualMeter()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector.IncrementCounter("membersearch_database_errors_total", map[string]string{"error_type": "store_unavailable"})
		}()
	}
	wg.Wait()

	counter := findCounterMetric(t, collect(t, reader), "membersearch_database_errors_total")
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(20), counter.DataPoints[0].Value)
}

func findHistogramMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) *metricdata.Histogram[float64] {
	t.Helper()
	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, metric := range scopeMetrics.Metrics {
			if metric.Name == name {
				if h, ok := metric.Data.(metricdata.Histogram[float64]); ok {
					return &h
				}
			}
		}
	}
	t.Fatalf("Histogram metric %s not found", name)
	return nil
}

func findCounterMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) *metricdata.Sum[int64] {
	t.Helper()
	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, metric := range scopeMetrics.Metrics {
			if metric.Name == name {
				if c, ok := metric.Data.(metricdata.Sum[int64]); ok {
					return &c
				}
			}
		}
	}
	t.Fatalf("Counter metric %s not found", name)
	return nil
}
