// Package api exposes member search over HTTP.
//
//	GET  /v1/members          unpaged search
//	GET  /v2/members          paged search, every page is counted
//	GET  /v3/members          paged search, the count query is skipped when the page proves the total
//	POST /v1/members/search   search with a JSON condition, paged when the body carries a page
//	GET  /health              store health
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
)

const (
	defaultRequestTimeout = 10 * time.Second
	otelOperationName     = "membersearch.http"
)

// HealthCheck reports whether the store can be reached.
type HealthCheck func(ctx context.Context) error

// Config wires the HTTP API to its searchers.
type Config struct {
	// Searcher serves /v1, /v3 and the POST search. It should count with membersearch.SkipWhenUnnecessary.
	Searcher membersearch.Searcher

	// CountingSearcher serves /v2. It should count with membersearch.AlwaysCount.
	CountingSearcher membersearch.Searcher

	HealthCheck      HealthCheck
	Logger           *slog.Logger
	DefaultPageLimit int
	MaxPageLimit     int
	RequestTimeout   time.Duration
}

type handler struct {
	searcher         membersearch.Searcher
	countingSearcher membersearch.Searcher
	healthCheck      HealthCheck
	logger           *slog.Logger
	paging           pagingLimits
}

// NewRouter builds the chi router with all routes and middlewares.
func NewRouter(cfg Config) chi.Router {
	h := newHandler(cfg)

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(timeout))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/health", h.health)

	r.Route("/v1/members", func(r chi.Router) {
		r.Get("/", h.searchV1)
		r.Post("/search", h.searchByBody)
	})
	r.Get("/v2/members", h.searchV2)
	r.Get("/v3/members", h.searchV3)

	return r
}

// NewHandler wraps NewRouter with otelhttp, so every request gets a server span
// that the search spans become children of.
func NewHandler(cfg Config) http.Handler {
	return otelhttp.NewHandler(NewRouter(cfg), otelOperationName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

func newHandler(cfg Config) *handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	countingSearcher := cfg.CountingSearcher
	if countingSearcher == nil {
		countingSearcher = cfg.Searcher
	}

	paging := pagingLimits{defaultLimit: cfg.DefaultPageLimit, maxLimit: cfg.MaxPageLimit}
	if paging.defaultLimit < 1 {
		paging.defaultLimit = membersearch.DefaultPageLimit
	}

	if paging.maxLimit < paging.defaultLimit {
		paging.maxLimit = paging.defaultLimit
	}

	return &handler{
		searcher:         cfg.Searcher,
		countingSearcher: countingSearcher,
		healthCheck:      cfg.HealthCheck,
		logger:           logger,
		paging:           paging,
	}
}
