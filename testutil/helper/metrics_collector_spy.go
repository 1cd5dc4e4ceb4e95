package helper

import (
	"maps"
	"sync"
	"time"
)

// MetricsCollectorSpy is a membersearch.MetricsCollector that captures metrics calls for testing.
type MetricsCollectorSpy struct {
	durationRecords []SpyMetricRecord
	counterRecords  []SpyMetricRecord
	valueRecords    []SpyMetricRecord
	mu              sync.Mutex
	recordCalls     bool
}

// SpyMetricRecord represents one recorded metric call. Duration is set for duration records,
// Value for value records.
type SpyMetricRecord struct {
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
}

// NewMetricsCollectorSpy creates a new MetricsCollectorSpy.
// Set recordCalls to true to capture all metrics calls for inspection in tests.
func NewMetricsCollectorSpy(recordCalls bool) *MetricsCollectorSpy {
	return &MetricsCollectorSpy{recordCalls: recordCalls}
}

func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.record(&s.durationRecords, SpyMetricRecord{Metric: metric, Duration: duration, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.record(&s.counterRecords, SpyMetricRecord{Metric: metric, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.record(&s.valueRecords, SpyMetricRecord{Metric: metric, Value: value, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) record(records *[]SpyMetricRecord, record SpyMetricRecord) {
	if !s.recordCalls {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	*records = append(*records, record)
}

// Reset clears all captured metric records.
func (s *MetricsCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.durationRecords = nil
	s.counterRecords = nil
	s.valueRecords = nil
}

// CountCounterRecordsForMetric counts how many counter records exist for a specific metric.
func (s *MetricsCollectorSpy) CountCounterRecordsForMetric(metric string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, record := range s.counterRecords {
		if record.Metric == metric {
			count++
		}
	}

	return count
}

// MetricRecordMatcher provides a fluent interface for checking metric records.
type MetricRecordMatcher struct {
	record SpyMetricRecord
	found  bool
}

// HasDurationRecordForMetric starts a fluent chain to check a duration record.
func (s *MetricsCollectorSpy) HasDurationRecordForMetric(metric string) *MetricRecordMatcher {
	return s.first(s.durationRecords, metric)
}

// HasCounterRecordForMetric starts a fluent chain to check a counter record.
func (s *MetricsCollectorSpy) HasCounterRecordForMetric(metric string) *MetricRecordMatcher {
	return s.first(s.counterRecords, metric)
}

// HasValueRecordForMetric starts a fluent chain to check a value record.
func (s *MetricsCollectorSpy) HasValueRecordForMetric(metric string) *MetricRecordMatcher {
	return s.first(s.valueRecords, metric)
}

func (s *MetricsCollectorSpy) first(records []SpyMetricRecord, metric string) *MetricRecordMatcher {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range records {
		if record.Metric == metric {
			return &MetricRecordMatcher{record: record, found: true}
		}
	}

	return &MetricRecordMatcher{found: false}
}

// WithOperation checks the operation label.
func (m *MetricRecordMatcher) WithOperation(operation string) *MetricRecordMatcher {
	return m.WithLabel("operation", operation)
}

// WithStatus checks the status label.
func (m *MetricRecordMatcher) WithStatus(status string) *MetricRecordMatcher {
	return m.WithLabel("status", status)
}

// WithErrorType checks the error_type label.
func (m *MetricRecordMatcher) WithErrorType(errorType string) *MetricRecordMatcher {
	return m.WithLabel("error_type", errorType)
}

// WithValue checks the recorded value.
func (m *MetricRecordMatcher) WithValue(value float64) *MetricRecordMatcher {
	if m.found && m.record.Value != value {
		m.found = false
	}

	return m
}

// WithLabel checks if the record has the specified label with the given value.
func (m *MetricRecordMatcher) WithLabel(key, value string) *MetricRecordMatcher {
	if !m.found {
		return m
	}

	if labelValue, exists := m.record.Labels[key]; !exists || labelValue != value {
		m.found = false
	}

	return m
}

// Assert returns true if all conditions in the fluent chain were met.
func (m *MetricRecordMatcher) Assert() bool {
	return m.found
}
