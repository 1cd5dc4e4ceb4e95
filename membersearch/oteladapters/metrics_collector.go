package oteladapters

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
)

const (
	descriptionDuration = "Member search duration"
	descriptionCounter  = "Member search counter"
	descriptionValue    = "Member search value"
)

// MetricsCollector implements membersearch.ContextualMetricsCollector with OpenTelemetry instruments:
//   - RecordDuration -> Float64Histogram in seconds
//   - IncrementCounter -> Int64Counter
//   - RecordValue -> Float64Histogram, since values like returned rows per search are distributions
//
// Instruments are created lazily per metric name and cached. It is safe for concurrent use.
type MetricsCollector struct {
	meter      metric.Meter
	mu         sync.Mutex
	durations  map[string]metric.Float64Histogram
	counters   map[string]metric.Int64Counter
	valueHists map[string]metric.Float64Histogram
}

// NewMetricsCollector creates a collector on a meter of your MeterProvider.
func NewMetricsCollector(meter metric.Meter) *MetricsCollector {
	return &MetricsCollector{
		meter:      meter,
		durations:  make(map[string]metric.Float64Histogram),
		counters:   make(map[string]metric.Int64Counter),
		valueHists: make(map[string]metric.Float64Histogram),
	}
}

func (m *MetricsCollector) RecordDuration(metricName string, duration time.Duration, labels map[string]string) {
	m.RecordDurationContext(context.Background(), metricName, duration, labels)
}

// RecordDurationContext records a duration in seconds, correlated with the span in ctx.
func (m *MetricsCollector) RecordDurationContext(
	ctx context.Context,
	metricName string,
	duration time.Duration,
	labels map[string]string,
) {

	histogram := m.duration(metricName)
	if histogram == nil {
		return
	}

	histogram.Record(ctx, duration.Seconds(), metric.WithAttributes(toAttributes(labels)...))
}

func (m *MetricsCollector) IncrementCounter(metricName string, labels map[string]string) {
	m.IncrementCounterContext(context.Background(), metricName, labels)
}

func (m *MetricsCollector) IncrementCounterContext(ctx context.Context, metricName string, labels map[string]string) {
	counter := m.counter(metricName)
	if counter == nil {
		return
	}

	counter.Add(ctx, 1, metric.WithAttributes(toAttributes(labels)...))
}

func (m *MetricsCollector) RecordValue(metricName string, value float64, labels map[string]string) {
	m.RecordValueContext(context.Background(), metricName, value, labels)
}

func (m *MetricsCollector) RecordValueContext(ctx context.Context, metricName string, value float64, labels map[string]string) {
	histogram := m.value(metricName)
	if histogram == nil {
		return
	}

	histogram.Record(ctx, value, metric.WithAttributes(toAttributes(labels)...))
}

func (m *MetricsCollector) duration(name string) metric.Float64Histogram {
	m.mu.Lock()
	defer m.mu.Unlock()

	if histogram, exists := m.durations[name]; exists {
		return histogram
	}

	histogram, err := m.meter.Float64Histogram(name, metric.WithDescription(descriptionDuration), metric.WithUnit("s"))
	if err != nil {
		return nil
	}

	m.durations[name] = histogram

	return histogram
}

func (m *MetricsCollector) counter(name string) metric.Int64Counter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if counter, exists := m.counters[name]; exists {
		return counter
	}

	counter, err := m.meter.Int64Counter(name, metric.WithDescription(descriptionCounter))
	if err != nil {
		return nil
	}

	m.counters[name] = counter

	return counter
}

func (m *MetricsCollector) value(name string) metric.Float64Histogram {
	m.mu.Lock()
	defer m.mu.Unlock()

	if histogram, exists := m.valueHists[name]; exists {
		return histogram
	}

	histogram, err := m.meter.Float64Histogram(name, metric.WithDescription(descriptionValue))
	if err != nil {
		return nil
	}

	m.valueHists[name] = histogram

	return histogram
}

func toAttributes(labels map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for key, value := range labels {
		attrs = append(attrs, attribute.String(key, value))
	}

	return attrs
}

var _ membersearch.ContextualMetricsCollector = (*MetricsCollector)(nil)
