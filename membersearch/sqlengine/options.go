package sqlengine

import (
	"fmt"

	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
)

// Option defines a functional option for configuring a Searcher.
type Option func(*Searcher) error

// WithMemberTableName sets the name of the member table.
func WithMemberTableName(tableName string) Option {
	return func(s *Searcher) error {
		if tableName == "" {
			return fmt.Errorf("%w: member table", membersearch.ErrEmptyTableNameSupplied)
		}

		s.memberTableName = tableName

		return nil
	}
}

// WithTeamTableName sets the name of the team table.
func WithTeamTableName(tableName string) Option {
	return func(s *Searcher) error {
		if tableName == "" {
			return fmt.Errorf("%w: team table", membersearch.ErrEmptyTableNameSupplied)
		}

		s.teamTableName = tableName

		return nil
	}
}

// WithDialect selects the SQL dialect queries are rendered in: DialectPostgres (default) or DialectSQLite.
func WithDialect(dialect string) Option {
	return func(s *Searcher) error {
		switch dialect {
		case DialectPostgres, DialectSQLite:
			s.dialect = dialect
			return nil
		default:
			return fmt.Errorf("%w: %q", ErrUnsupportedDialect, dialect)
		}
	}
}

// WithCountStrategy sets how the total of a page is resolved. The default is membersearch.SkipWhenUnnecessary.
func WithCountStrategy(strategy membersearch.CountStrategy) Option {
	return func(s *Searcher) error {
		if strategy == nil {
			return fmt.Errorf("%w: nil", membersearch.ErrUnknownCountStrategy)
		}

		s.countStrategy = strategy

		return nil
	}
}

// WithFilterStrategy sets how a condition is turned into a filter. The default is membersearch.FragmentFilterStrategy.
func WithFilterStrategy(strategy membersearch.FilterStrategy) Option {
	return func(s *Searcher) error {
		if strategy == nil {
			return fmt.Errorf("%w: nil", membersearch.ErrUnknownFilterStrategy)
		}

		s.filterStrategy = strategy

		return nil
	}
}

// WithLogger sets the logger for the Searcher.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Row counts, durations, count decisions (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger membersearch.Logger) Option {
	return func(s *Searcher) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, which receives the same messages as WithLogger
// together with the call's context for trace correlation.
func WithContextualLogger(logger membersearch.ContextualLogger) Option {
	return func(s *Searcher) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Searcher.
func WithMetrics(collector membersearch.MetricsCollector) Option {
	return func(s *Searcher) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Searcher.
func WithTracing(collector membersearch.TracingCollector) Option {
	return func(s *Searcher) error {
		s.tracingCollector = collector
		return nil
	}
}
