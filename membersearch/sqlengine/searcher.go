package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch/sqlengine/internal/adapters"
)

const (
	defaultMemberTableName = "member"
	defaultTeamTableName   = "team"

	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"

	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgBuildCountQueryFailed  = "failed to build count query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgIterateRowsFailed      = "failed to iterate database rows"
	logMsgInvalidOrder           = "invalid order"
	logMsgSearchCompleted        = "search completed"
	logMsgPageSearchCompleted    = "page search completed"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "membersearch operation: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrFilter                = "filter"
	logAttrRowCount              = "row_count"
	logAttrTotal                 = "total"
	logAttrCountQuery            = "count_query"
	logAttrCountStrategy         = "count_strategy"
	logAttrDurationMS            = "duration_ms"
	logActionSearch              = "search"
	logActionPage                = "page"
	logActionCount               = "count"
)

// ErrUnsupportedDialect is returned by WithDialect for dialects the engine cannot render.
var ErrUnsupportedDialect = errors.New("unsupported sql dialect")

// Searcher implements membersearch.Searcher on a relational store.
// It is an immutable value and safe for concurrent use.
type Searcher struct {
	db               adapters.DBAdapter
	memberTableName  string
	teamTableName    string
	dialect          string
	countStrategy    membersearch.CountStrategy
	filterStrategy   membersearch.FilterStrategy
	logger           membersearch.Logger
	contextualLogger membersearch.ContextualLogger
	metricsCollector membersearch.MetricsCollector
	tracingCollector membersearch.TracingCollector
}

var _ membersearch.Searcher = Searcher{}

// NewSearcherFromPGXPool creates a new Searcher using a pgx Pool with optional configuration.
func NewSearcherFromPGXPool(db *pgxpool.Pool, options ...Option) (Searcher, error) {
	if db == nil {
		return Searcher{}, membersearch.ErrNilDatabaseConnection
	}

	return newSearcher(adapters.NewPGXAdapter(db), options...)
}

// NewSearcherFromPGXPoolAndReplica creates a new Searcher using a primary and a replica pgx Pool.
// Searches run on the replica when the context carries membersearch.WithEventualConsistency.
func NewSearcherFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (Searcher, error) {
	if db == nil {
		return Searcher{}, membersearch.ErrNilDatabaseConnection
	}

	if replica == nil {
		return newSearcher(adapters.NewPGXAdapter(db), options...)
	}

	return newSearcher(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewSearcherFromSQLDB creates a new Searcher using a sql.DB with optional configuration.
func NewSearcherFromSQLDB(db *sql.DB, options ...Option) (Searcher, error) {
	if db == nil {
		return Searcher{}, membersearch.ErrNilDatabaseConnection
	}

	return newSearcher(adapters.NewSQLAdapter(db), options...)
}

// NewSearcherFromSQLX creates a new Searcher using a sqlx.DB with optional configuration.
func NewSearcherFromSQLX(db *sqlx.DB, options ...Option) (Searcher, error) {
	if db == nil {
		return Searcher{}, membersearch.ErrNilDatabaseConnection
	}

	return newSearcher(adapters.NewSQLXAdapter(db), options...)
}

func newSearcher(db adapters.DBAdapter, options ...Option) (Searcher, error) {
	s := Searcher{
		db:              db,
		memberTableName: defaultMemberTableName,
		teamTableName:   defaultTeamTableName,
		dialect:         DialectPostgres,
		countStrategy:   membersearch.SkipWhenUnnecessary{},
		filterStrategy:  membersearch.FragmentFilterStrategy{},
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Searcher{}, err
		}
	}

	return s, nil
}

// Search returns all members matching cond as MemberProjection rows, without pagination.
// The rows are unordered unless orders are given.
func (s Searcher) Search(
	ctx context.Context,
	cond membersearch.SearchCondition,
	orders ...membersearch.Order,
) ([]membersearch.MemberProjection, error) {

	tracer, ctx := s.startTracing(ctx, operationSearch)
	metrics := s.startMetrics(ctx, operationSearch)
	start := time.Now()

	filter := s.filterStrategy.BuildFilter(cond)

	content, err := s.queryContent(ctx, filter, logActionSearch, orders, nil)
	if err != nil {
		duration := time.Since(start)
		tracer.finishError(errorTypeOf(err), duration)
		metrics.recordError(errorTypeOf(err), duration)

		return nil, err
	}

	duration := time.Since(start)
	tracer.finishSuccess(len(content), nil, duration)
	metrics.recordSuccess(len(content), duration)

	s.logOperation(ctx,
		logMsgSearchCompleted,
		logAttrRowCount, len(content),
		logAttrDurationMS, s.toMilliseconds(duration),
	)

	return content, nil
}

// SearchPage returns the page window of the members matching cond plus the total number of matches.
// The content query applies offset and limit; the total comes from the configured CountStrategy.
// A negative offset is clamped to 0 and a limit below 1 to membersearch.DefaultPageLimit.
func (s Searcher) SearchPage(
	ctx context.Context,
	cond membersearch.SearchCondition,
	page membersearch.PageRequest,
) (membersearch.Page[membersearch.MemberProjection], error) {

	var empty membersearch.Page[membersearch.MemberProjection]

	tracer, ctx := s.startTracing(ctx, operationSearchPage)
	metrics := s.startMetrics(ctx, operationSearchPage)
	start := time.Now()

	page = page.Normalized()
	filter := s.filterStrategy.BuildFilter(cond)

	content, err := s.queryContent(ctx, filter, logActionPage, page.Orders, &page)
	if err != nil {
		duration := time.Since(start)
		tracer.finishError(errorTypeOf(err), duration)
		metrics.recordError(errorTypeOf(err), duration)

		return empty, err
	}

	total, counted, err := s.countStrategy.ResolveTotal(
		ctx,
		page,
		len(content),
		func(ctx context.Context) (int64, error) {
			return s.count(ctx, filter)
		},
	)
	if err != nil {
		duration := time.Since(start)
		tracer.finishError(errorTypeOf(err), duration)
		metrics.recordError(errorTypeOf(err), duration)

		return empty, err
	}

	duration := time.Since(start)
	tracer.finishSuccess(len(content), &countDecision{total: total, counted: counted}, duration)
	metrics.recordSuccess(len(content), duration)
	metrics.recordCountDecision(counted)

	s.logOperation(ctx,
		logMsgPageSearchCompleted,
		logAttrRowCount, len(content),
		logAttrTotal, total,
		logAttrCountQuery, counted,
		logAttrCountStrategy, s.countStrategy.Name(),
		logAttrDurationMS, s.toMilliseconds(duration),
	)

	return membersearch.Page[membersearch.MemberProjection]{
		Content:          content,
		Total:            total,
		Offset:           page.Offset,
		Limit:            page.Limit,
		CountQueryIssued: counted,
	}, nil
}

// queryContent builds, runs and scans the content query. A nil window means unpaged.
func (s Searcher) queryContent(
	ctx context.Context,
	filter membersearch.Filter,
	action string,
	orders []membersearch.Order,
	window *membersearch.PageRequest,
) ([]membersearch.MemberProjection, error) {

	if err := membersearch.ValidateOrders(membersearch.MemberProjectionShape, orders...); err != nil {
		s.logError(ctx, logMsgInvalidOrder, err)
		return nil, err
	}

	sqlQuery, args, buildErr := s.buildSelectQuery(filter, orders, window)
	if buildErr != nil {
		s.logError(ctx, logMsgBuildSelectQueryFailed, buildErr, logAttrFilter, filter.String())
		return nil, buildErr
	}

	rows, queryErr := s.executeQuery(ctx, sqlQuery, args, action)
	if queryErr != nil {
		return nil, errors.Join(membersearch.ErrQueryingMembersFailed, queryErr)
	}
	defer s.closeRows(ctx, rows)

	return s.processQueryResults(ctx, rows)
}

// count runs the count query for filter.
func (s Searcher) count(ctx context.Context, filter membersearch.Filter) (int64, error) {
	sqlQuery, args, buildErr := s.buildCountQuery(filter)
	if buildErr != nil {
		s.logError(ctx, logMsgBuildCountQueryFailed, buildErr, logAttrFilter, filter.String())
		return 0, buildErr
	}

	rows, queryErr := s.executeQuery(ctx, sqlQuery, args, logActionCount)
	if queryErr != nil {
		return 0, errors.Join(membersearch.ErrCountingMembersFailed, queryErr)
	}
	defer s.closeRows(ctx, rows)

	var total int64

	if rows.Next() {
		if scanErr := rows.Scan(&total); scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr)
			return 0, errors.Join(membersearch.ErrCountingMembersFailed, membersearch.ErrScanningDBRowFailed, scanErr)
		}
	}

	if iterErr := rows.Err(); iterErr != nil {
		s.logError(ctx, logMsgIterateRowsFailed, iterErr)
		return 0, errors.Join(membersearch.ErrCountingMembersFailed, iterErr)
	}

	return total, nil
}

// executeQuery executes the SQL query and logs it with its duration.
func (s Searcher) executeQuery(
	ctx context.Context,
	sqlQuery string,
	args []any,
	action string,
) (adapters.DBRows, error) {

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery, args...)
	s.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, queryErr
	}

	return rows, nil
}

// closeRows closes database rows and logs any errors.
func (s Searcher) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, closeErr)
	}
}

// processQueryResults scans all rows into projections. A failing row aborts the whole result.
func (s Searcher) processQueryResults(
	ctx context.Context,
	rows adapters.DBRows,
) ([]membersearch.MemberProjection, error) {

	content := make([]membersearch.MemberProjection, 0)

	for rows.Next() {
		var row membersearch.MemberProjection

		if scanErr := rows.Scan(scanTargets(&row)...); scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr)
			return nil, errors.Join(membersearch.ErrScanningDBRowFailed, scanErr)
		}

		content = append(content, row)
	}

	if iterErr := rows.Err(); iterErr != nil {
		s.logError(ctx, logMsgIterateRowsFailed, iterErr)
		return nil, errors.Join(membersearch.ErrQueryingMembersFailed, iterErr)
	}

	return content, nil
}
