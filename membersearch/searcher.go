package membersearch

import (
	"context"
)

// Searcher runs member searches against a store.
// Implementations hold no per-call state and are safe for concurrent use.
type Searcher interface {
	// Search returns every member matching cond, projected to MemberProjection.
	// The result is unordered unless orders are given.
	Search(ctx context.Context, cond SearchCondition, orders ...Order) ([]MemberProjection, error)

	// SearchPage returns one window of the matching members plus the total number of matches.
	SearchPage(ctx context.Context, cond SearchCondition, page PageRequest) (Page[MemberProjection], error)
}
