package membersearch

import "context"

// ConsistencyLevel defines which database a search may read from.
type ConsistencyLevel int

const (
	// StrongConsistency reads from the primary database. It is the default.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from a replica database when one is configured.
	// Searches are pure queries, so most callers can tolerate slightly stale results
	// in exchange for less load on the primary.
	EventualConsistency
)

type contextKey string

// ConsistencyLevelKey is the context key used to store the consistency level preference.
const ConsistencyLevelKey contextKey = "membersearch.consistency_level"

// WithStrongConsistency returns a context that routes searches to the primary database.
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that lets searches use a replica database.
//
// Example usage:
//
//	ctx = membersearch.WithEventualConsistency(ctx)
//	members, err := searcher.Search(ctx, cond)
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the consistency level from the context, StrongConsistency if none is set.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
