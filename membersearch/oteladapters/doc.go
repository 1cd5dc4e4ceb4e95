// Package oteladapters implements the membersearch observability interfaces on top of OpenTelemetry.
//
// Wire them into a Searcher like this:
//
//	searcher, err := sqlengine.NewSearcherFromPGXPool(pool,
//		sqlengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger("membersearch")),
//		sqlengine.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter("membersearch"))),
//		sqlengine.WithTracing(oteladapters.NewTracingCollector(otel.Tracer("membersearch"))),
//	)
package oteladapters
