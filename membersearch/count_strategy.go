package membersearch

import (
	"context"
	"fmt"
	"strings"
)

// CountFunc runs the count query of a paged search.
type CountFunc func(ctx context.Context) (int64, error)

// CountStrategy decides how the total of a page is obtained.
// counted reports whether count was invoked.
type CountStrategy interface {
	ResolveTotal(ctx context.Context, page PageRequest, contentSize int, count CountFunc) (total int64, counted bool, err error)
	Name() string
}

const (
	CountStrategyAlways = "always"
	CountStrategySkip   = "skip"
)

// AlwaysCount runs the count query for every page.
type AlwaysCount struct{}

func (AlwaysCount) ResolveTotal(ctx context.Context, _ PageRequest, _ int, count CountFunc) (int64, bool, error) {
	total, err := count(ctx)
	if err != nil {
		return 0, true, err
	}

	return total, true, nil
}

func (AlwaysCount) Name() string {
	return CountStrategyAlways
}

// SkipWhenUnnecessary derives the total from the content whenever the content proves it:
//
//   - first page not full: total is the content size
//   - later page neither empty nor full: total is offset plus content size
//
// In every other case it runs the count query.
type SkipWhenUnnecessary struct{}

func (SkipWhenUnnecessary) ResolveTotal(
	ctx context.Context,
	page PageRequest,
	contentSize int,
	count CountFunc,
) (int64, bool, error) {
	page = page.Normalized()

	if page.Offset == 0 && contentSize < page.Limit {
		return int64(contentSize), false, nil
	}

	if contentSize > 0 && contentSize < page.Limit {
		return int64(page.Offset + contentSize), false, nil
	}

	return AlwaysCount{}.ResolveTotal(ctx, page, contentSize, count)
}

func (SkipWhenUnnecessary) Name() string {
	return CountStrategySkip
}

// CountStrategyByName resolves a configured strategy name.
func CountStrategyByName(name string) (CountStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case CountStrategySkip, "":
		return SkipWhenUnnecessary{}, nil
	case CountStrategyAlways:
		return AlwaysCount{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCountStrategy, name)
	}
}
