package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/AntonStoeckl/dynamic-member-search-go/internal/config"
	"github.com/AntonStoeckl/dynamic-member-search-go/internal/observability"
	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch/oteladapters"
	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch/sqlengine"
)

// store bundles the searchers built on one set of connections.
type store struct {
	searcher         sqlengine.Searcher
	countingSearcher sqlengine.Searcher
	healthCheck      func(ctx context.Context) error
	closers          []func()
}

func (s *store) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStore connects with the configured driver and creates two searchers on the same connections:
// one with the configured count strategy and one that always counts.
func openStore(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	providers *observability.Providers,
) (*store, error) {
	options, err := searcherOptions(cfg, logger, providers)
	if err != nil {
		return nil, err
	}

	countingOptions := append(options[:len(options):len(options)], sqlengine.WithCountStrategy(membersearch.AlwaysCount{}))

	var (
		s           = &store{}
		newSearcher func(options ...sqlengine.Option) (sqlengine.Searcher, error)
	)

	switch cfg.DB.Driver {
	case config.DriverPGXPool:
		primary, replica, err := config.OpenPGXPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}

		s.closers = append(s.closers, primary.Close)
		s.healthCheck = primary.Ping

		if replica != nil {
			s.closers = append(s.closers, replica.Close)
			logger.Info("replica configured for eventually consistent searches", "replica_host", cfg.DB.ReplicaHost)
		}

		newSearcher = func(options ...sqlengine.Option) (sqlengine.Searcher, error) {
			if replica == nil {
				return sqlengine.NewSearcherFromPGXPool(primary, options...)
			}

			return sqlengine.NewSearcherFromPGXPoolAndReplica(primary, replica, options...)
		}

	case config.DriverSQLDB:
		db, err := config.OpenSQLDB(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}

		s.closers = append(s.closers, func() { _ = db.Close() })
		s.healthCheck = db.PingContext
		newSearcher = func(options ...sqlengine.Option) (sqlengine.Searcher, error) {
			return sqlengine.NewSearcherFromSQLDB(db, options...)
		}

	case config.DriverSQLX:
		db, err := config.OpenSQLX(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}

		s.closers = append(s.closers, func() { _ = db.Close() })
		s.healthCheck = db.PingContext
		newSearcher = func(options ...sqlengine.Option) (sqlengine.Searcher, error) {
			return sqlengine.NewSearcherFromSQLX(db, options...)
		}

	case config.DriverSQLite:
		db, err := config.OpenSQLite(ctx, cfg.DB.SQLitePath)
		if err != nil {
			return nil, err
		}

		s.closers = append(s.closers, func() { _ = db.Close() })
		s.healthCheck = db.PingContext
		newSearcher = func(options ...sqlengine.Option) (sqlengine.Searcher, error) {
			return sqlengine.NewSearcherFromSQLDB(db, options...)
		}

	default:
		return nil, fmt.Errorf("unsupported db driver: %s", cfg.DB.Driver)
	}

	if s.searcher, err = newSearcher(options...); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create searcher: %w", err)
	}

	if s.countingSearcher, err = newSearcher(countingOptions...); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create counting searcher: %w", err)
	}

	return s, nil
}

func searcherOptions(cfg *config.Config, logger *slog.Logger, providers *observability.Providers) ([]sqlengine.Option, error) {
	countStrategy, err := membersearch.CountStrategyByName(cfg.Search.CountStrategy)
	if err != nil {
		return nil, err
	}

	filterStrategy, err := membersearch.FilterStrategyByName(cfg.Search.FilterStrategy)
	if err != nil {
		return nil, err
	}

	options := []sqlengine.Option{
		sqlengine.WithDialect(cfg.DB.Dialect()),
		sqlengine.WithMemberTableName(cfg.DB.MemberTable),
		sqlengine.WithTeamTableName(cfg.DB.TeamTable),
		sqlengine.WithCountStrategy(countStrategy),
		sqlengine.WithFilterStrategy(filterStrategy),
	}

	if handler := providers.SlogHandler(); handler != nil {
		options = append(options, sqlengine.WithContextualLogger(oteladapters.NewSlogBridgeLoggerWithHandler(handler)))
	} else {
		options = append(options, sqlengine.WithContextualLogger(logger))
	}

	if metrics, tracing := providers.SearcherCollectors(); metrics != nil {
		options = append(options, sqlengine.WithMetrics(metrics), sqlengine.WithTracing(tracing))
	}

	return options, nil
}

// openMigrationDB opens a plain sql.DB for goose, which does not work on a pgx pool.
func openMigrationDB(ctx context.Context, d config.DBConfig) (*sql.DB, error) {
	if d.Driver == config.DriverSQLite {
		return config.OpenSQLite(ctx, d.SQLitePath)
	}

	return config.OpenSQLDB(ctx, d)
}
