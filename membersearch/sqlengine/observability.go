package sqlengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
)

const (
	operationSearch     = "search"
	operationSearchPage = "search_page"

	spanNameSearch     = "membersearch.search"
	spanNameSearchPage = "membersearch.search_page"

	spanAttrOperation     = "operation"
	spanAttrFilterKind    = "filter_strategy"
	spanAttrCountStrategy = "count_strategy"
	spanAttrRowCount      = "row_count"
	spanAttrTotal         = "total"
	spanAttrCountQuery    = "count_query"
	spanAttrDurationMS    = "duration_ms"
	spanAttrErrorType     = "error_type"
	spanAttrConsistency   = "consistency"

	metricSearchDuration     = "membersearch_search_duration_seconds"
	metricMembersReturned    = "membersearch_members_returned_total"
	metricCountQueries       = "membersearch_count_queries_total"
	metricCountQueriesSkip   = "membersearch_count_queries_skipped_total"
	metricDatabaseErrors     = "membersearch_database_errors_total"
	metricLabelStatus        = "status"
	metricLabelCountStrategy = "count_strategy"

	statusSuccess = "success"
	statusError   = "error"

	errorTypeStoreUnavailable = "store_unavailable"
	errorTypeQueryRejected    = "query_rejected"
	errorTypeInvalidOrder     = "invalid_order"
	errorTypeBuildQuery       = "build_query"
	errorTypeScanRow          = "scan_row"
	errorTypeUnknown          = "unknown"
)

// errorTypeOf reduces an error to a low-cardinality label for metrics and spans.
func errorTypeOf(err error) string {
	switch {
	case errors.Is(err, membersearch.ErrStoreUnavailable):
		return errorTypeStoreUnavailable
	case errors.Is(err, membersearch.ErrStoreQueryRejected):
		return errorTypeQueryRejected
	case errors.Is(err, membersearch.ErrUnknownOrderField):
		return errorTypeInvalidOrder
	case errors.Is(err, membersearch.ErrBuildingQueryFailed):
		return errorTypeBuildQuery
	case errors.Is(err, membersearch.ErrScanningDBRowFailed):
		return errorTypeScanRow
	default:
		return errorTypeUnknown
	}
}

/***** Logging *****/

// logQueryWithDuration logs SQL queries with execution time at debug level.
func (s Searcher) logQueryWithDuration(
	ctx context.Context,
	sqlQuery string,
	action string,
	duration time.Duration,
) {

	args := []any{logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery}

	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	}
}

// logOperation logs operational information at info level.
func (s Searcher) logOperation(ctx context.Context, action string, args ...any) {
	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

func (s Searcher) logWarn(ctx context.Context, message string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if s.logger != nil {
		s.logger.Warn(message, allArgs...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, allArgs...)
	}
}

func (s Searcher) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s Searcher) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

/***** Tracing *****/

type countDecision struct {
	total   int64
	counted bool
}

// tracingObserver encapsulates the span lifecycle of one search call. It is a no-op without a collector.
type tracingObserver struct {
	s    Searcher
	span membersearch.SpanContext
}

func (s Searcher) startTracing(ctx context.Context, operation string) (*tracingObserver, context.Context) {
	if s.tracingCollector == nil {
		return &tracingObserver{s: s}, ctx
	}

	name := spanNameSearch
	if operation == operationSearchPage {
		name = spanNameSearchPage
	}

	attrs := map[string]string{
		spanAttrOperation:   operation,
		spanAttrFilterKind:  s.filterStrategy.Name(),
		spanAttrConsistency: membersearch.GetConsistencyLevel(ctx).String(),
	}

	if operation == operationSearchPage {
		attrs[spanAttrCountStrategy] = s.countStrategy.Name()
	}

	newCtx, span := s.tracingCollector.StartSpan(ctx, name, attrs)

	return &tracingObserver{s: s, span: span}, newCtx
}

func (to *tracingObserver) finishSuccess(rowCount int, decision *countDecision, duration time.Duration) {
	if to.span == nil {
		return
	}

	attrs := map[string]string{
		spanAttrRowCount: strconv.Itoa(rowCount),
	}

	if decision != nil {
		attrs[spanAttrTotal] = strconv.FormatInt(decision.total, 10)
		attrs[spanAttrCountQuery] = strconv.FormatBool(decision.counted)
	}

	to.span.SetStatus(statusSuccess)
	to.span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", to.s.toMilliseconds(duration)))

	for key, value := range attrs {
		to.span.AddAttribute(key, value)
	}

	to.s.tracingCollector.FinishSpan(to.span, statusSuccess, attrs)
}

func (to *tracingObserver) finishError(errorType string, duration time.Duration) {
	if to.span == nil {
		return
	}

	to.span.SetStatus(statusError)
	to.span.AddAttribute(spanAttrErrorType, errorType)
	to.span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", to.s.toMilliseconds(duration)))

	to.s.tracingCollector.FinishSpan(to.span, statusError, map[string]string{spanAttrErrorType: errorType})
}

/***** Metrics *****/

// metricsObserver records the metrics of one search call. It is a no-op without a collector.
type metricsObserver struct {
	s         Searcher
	ctx       context.Context
	operation string
}

func (s Searcher) startMetrics(ctx context.Context, operation string) *metricsObserver {
	return &metricsObserver{s: s, ctx: ctx, operation: operation}
}

func (mo *metricsObserver) recordSuccess(rowCount int, duration time.Duration) {
	mo.recordDuration(duration, statusSuccess)
	mo.recordValue(metricMembersReturned, float64(rowCount), statusSuccess)
}

func (mo *metricsObserver) recordError(errorType string, duration time.Duration) {
	mo.recordDuration(duration, statusError)
	mo.incrementCounter(metricDatabaseErrors, map[string]string{
		spanAttrOperation: mo.operation,
		metricLabelStatus: statusError,
		spanAttrErrorType: errorType,
	})
}

// recordCountDecision counts issued and skipped count queries per strategy.
func (mo *metricsObserver) recordCountDecision(counted bool) {
	metric := metricCountQueriesSkip
	if counted {
		metric = metricCountQueries
	}

	mo.incrementCounter(metric, map[string]string{
		spanAttrOperation:        mo.operation,
		metricLabelCountStrategy: mo.s.countStrategy.Name(),
	})
}

func (mo *metricsObserver) recordDuration(duration time.Duration, status string) {
	collector := mo.s.metricsCollector
	if collector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: mo.operation, metricLabelStatus: status}

	if contextual, ok := collector.(membersearch.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(mo.ctx, metricSearchDuration, duration, labels)
		return
	}

	collector.RecordDuration(metricSearchDuration, duration, labels)
}

func (mo *metricsObserver) recordValue(metric string, value float64, status string) {
	collector := mo.s.metricsCollector
	if collector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: mo.operation, metricLabelStatus: status}

	if contextual, ok := collector.(membersearch.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(mo.ctx, metric, value, labels)
		return
	}

	collector.RecordValue(metric, value, labels)
}

func (mo *metricsObserver) incrementCounter(metric string, labels map[string]string) {
	collector := mo.s.metricsCollector
	if collector == nil {
		return
	}

	if contextual, ok := collector.(membersearch.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(mo.ctx, metric, labels)
		return
	}

	collector.IncrementCounter(metric, labels)
}
