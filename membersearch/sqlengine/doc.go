// Package sqlengine implements membersearch.Searcher on a relational store.
//
// Queries are rendered with goqu in the Postgres dialect (default) or the SQLite dialect and run through
// one of three connection types: pgxpool.Pool, sql.DB or sqlx.DB. The content query selects the
// member projection from member LEFT JOIN team; the count query selects COUNT(member.member_id) and
// joins team only when the filter needs it.
//
// Basic usage:
//
//	searcher, err := sqlengine.NewSearcherFromPGXPool(pool, sqlengine.WithLogger(slog.Default()))
//	page, err := searcher.SearchPage(ctx, cond, membersearch.PageRequest{Offset: 0, Limit: 3})
//
// Observability is optional and dependency-free: supply a membersearch.Logger, ContextualLogger,
// MetricsCollector or TracingCollector through the options, or use the OpenTelemetry adapters in
// package oteladapters.
package sqlengine
