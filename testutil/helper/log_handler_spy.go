package helper

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// LogHandlerSpy is a slog.Handler that captures log records for testing.
type LogHandlerSpy struct {
	records     []slog.Record
	mu          sync.Mutex
	logToStdout bool
}

// NewLogHandlerSpy creates a new LogHandlerSpy.
// Switchable to log to stdout, which helps when debugging a test.
func NewLogHandlerSpy(logToStdOut bool) *LogHandlerSpy {
	return &LogHandlerSpy{
		records:     make([]slog.Record, 0),
		logToStdout: logToStdOut,
	}
}

func (s *LogHandlerSpy) Handle(ctx context.Context, record slog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record.Clone())

	if s.logToStdout {
		_ = slog.NewJSONHandler(os.Stdout, nil).Handle(ctx, record)
	}

	return nil
}

func (s *LogHandlerSpy) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (s *LogHandlerSpy) WithAttrs(_ []slog.Attr) slog.Handler {
	return s
}

func (s *LogHandlerSpy) WithGroup(_ string) slog.Handler {
	return s
}

// GetRecordCount returns the number of captured log records.
func (s *LogHandlerSpy) GetRecordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}

// CountRecordsWithMessage counts the captured records at level with exactly this message.
func (s *LogHandlerSpy) CountRecordsWithMessage(level slog.Level, message string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, record := range s.records {
		if record.Level == level && record.Message == message {
			count++
		}
	}

	return count
}

// Reset clears all captured log records.
func (s *LogHandlerSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = s.records[:0]
}

// HasDebugLog checks if there's a debug-level log record with the specified message.
func (s *LogHandlerSpy) HasDebugLog(message string) bool {
	return s.CountRecordsWithMessage(slog.LevelDebug, message) > 0
}

// HasErrorLog checks if there's an error-level log record with the specified message.
func (s *LogHandlerSpy) HasErrorLog(message string) bool {
	return s.CountRecordsWithMessage(slog.LevelError, message) > 0
}

// SpyLogRecordMatcher provides a fluent interface for checking log record attributes.
type SpyLogRecordMatcher struct {
	record *slog.Record
	found  bool
}

// HasDebugLogWithMessage starts a fluent chain to check a debug-level log record.
func (s *LogHandlerSpy) HasDebugLogWithMessage(message string) *SpyLogRecordMatcher {
	return s.firstRecord(slog.LevelDebug, message)
}

// HasInfoLogWithMessage starts a fluent chain to check an info-level log record.
func (s *LogHandlerSpy) HasInfoLogWithMessage(message string) *SpyLogRecordMatcher {
	return s.firstRecord(slog.LevelInfo, message)
}

func (s *LogHandlerSpy) firstRecord(level slog.Level, message string) *SpyLogRecordMatcher {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		if record.Level == level && record.Message == message {
			return &SpyLogRecordMatcher{record: &record, found: true}
		}
	}

	return &SpyLogRecordMatcher{found: false}
}

// WithDurationMS checks for a non-negative duration_ms attribute.
func (m *SpyLogRecordMatcher) WithDurationMS() *SpyLogRecordMatcher {
	return m.matching("duration_ms", func(v slog.Value) bool {
		switch v.Kind() {
		case slog.KindInt64:
			return v.Int64() >= 0
		case slog.KindFloat64:
			return v.Float64() >= 0
		default:
			return false
		}
	})
}

// WithRowCount checks for a row_count attribute with the given value.
func (m *SpyLogRecordMatcher) WithRowCount(rowCount int) *SpyLogRecordMatcher {
	return m.matching("row_count", func(v slog.Value) bool {
		return v.Kind() == slog.KindInt64 && v.Int64() == int64(rowCount)
	})
}

// WithTotal checks for a total attribute with the given value.
func (m *SpyLogRecordMatcher) WithTotal(total int64) *SpyLogRecordMatcher {
	return m.matching("total", func(v slog.Value) bool {
		return v.Kind() == slog.KindInt64 && v.Int64() == total
	})
}

// WithCountQuery checks whether the record reports a count query as issued or skipped.
func (m *SpyLogRecordMatcher) WithCountQuery(issued bool) *SpyLogRecordMatcher {
	return m.matching("count_query", func(v slog.Value) bool {
		return v.Kind() == slog.KindBool && v.Bool() == issued
	})
}

// WithQuery checks for a non-empty query attribute.
func (m *SpyLogRecordMatcher) WithQuery() *SpyLogRecordMatcher {
	return m.matching("query", func(v slog.Value) bool {
		return v.Kind() == slog.KindString && v.String() != ""
	})
}

func (m *SpyLogRecordMatcher) matching(key string, accept func(slog.Value) bool) *SpyLogRecordMatcher {
	if !m.found {
		return m
	}

	matched := false
	m.record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == key {
			matched = accept(attr.Value)
			return false
		}

		return true
	})

	m.found = matched

	return m
}

// Assert returns true if all conditions in the fluent chain were met.
func (m *SpyLogRecordMatcher) Assert() bool {
	return m.found
}
