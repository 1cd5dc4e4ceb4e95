package membersearch

import (
	"fmt"
	"slices"
	"strings"
)

/***** Filter *****/

// Filter is the conjunction of zero or more present Predicates.
// An empty Filter matches every row.
type Filter struct {
	predicates []Predicate
}

// Predicates returns the conjoined Predicates in composition order.
func (f Filter) Predicates() []Predicate {
	return f.predicates
}

// MatchesAll reports whether the Filter has no Predicates and therefore matches every row.
func (f Filter) MatchesAll() bool {
	return len(f.predicates) == 0
}

// References reports whether any Predicate reads an attribute of the given entity.
func (f Filter) References(entity Entity) bool {
	return slices.ContainsFunc(f.predicates, func(p Predicate) bool {
		return p.source.Entity == entity
	})
}

// Matches evaluates the Filter in memory against a projection row.
func (f Filter) Matches(row MemberProjection) bool {
	for _, p := range f.predicates {
		if !p.Matches(row) {
			return false
		}
	}

	return true
}

func (f Filter) String() string {
	if f.MatchesAll() {
		return "<match all>"
	}

	parts := make([]string, 0, len(f.predicates))
	for _, p := range f.predicates {
		parts = append(parts, p.String())
	}

	return strings.Join(parts, " AND ")
}

// Compose conjoins the present fragments in the order given. Absent fragments are skipped,
// so Compose() and Compose(absent, absent) both yield the match-all Filter. It never fails.
func Compose(fragments ...Predicate) Filter {
	var filter Filter

	for _, fragment := range fragments {
		if fragment.IsAbsent() {
			continue
		}

		filter.predicates = append(filter.predicates, fragment)
	}

	return filter
}

/***** FilterBuilder *****/

// FilterBuilder accumulates Predicates into a Filter. Absent Predicates are dropped.
//
// Example usage:
//
//	filter := membersearch.BuildFilter().
//		And(membersearch.Eq(membersearch.SourceTeamName, "teamB")).
//		And(membersearch.Gte(membersearch.SourceMemberAge, 35)).
//		Finalize()
type FilterBuilder interface {
	// And adds a Predicate to the conjunction unless it is absent.
	And(predicate Predicate) FilterBuilder

	// AndIf adds the Predicate only if condition holds.
	AndIf(condition bool, predicate func() Predicate) FilterBuilder

	// Finalize returns the Filter. Without any Predicate it is the match-all Filter.
	Finalize() Filter
}

type filterBuilder struct {
	filter Filter
}

// BuildFilter creates a FilterBuilder which must eventually be finalized with Finalize().
func BuildFilter() FilterBuilder {
	return filterBuilder{}
}

func (fb filterBuilder) And(predicate Predicate) FilterBuilder {
	if predicate.IsAbsent() {
		return fb
	}

	// Clip so that builders branched off the same parent never share a backing array.
	fb.filter.predicates = append(slices.Clip(fb.filter.predicates), predicate)

	return fb
}

func (fb filterBuilder) AndIf(condition bool, predicate func() Predicate) FilterBuilder {
	if !condition {
		return fb
	}

	return fb.And(predicate())
}

func (fb filterBuilder) Finalize() Filter {
	return fb.filter
}

/***** FilterStrategy *****/

// FilterStrategy turns a SearchCondition into a Filter.
// All implementations produce equal Filters for the same condition.
type FilterStrategy interface {
	BuildFilter(cond SearchCondition) Filter
	Name() string
}

const (
	FilterStrategyFragments = "fragments"
	FilterStrategyBuilder   = "builder"
)

// FragmentFilterStrategy evaluates the four fragment functions and composes their results.
type FragmentFilterStrategy struct{}

func (FragmentFilterStrategy) BuildFilter(cond SearchCondition) Filter {
	return Compose(
		UserNameEquals(cond),
		TeamNameEquals(cond),
		AgeAtLeast(cond),
		AgeAtMost(cond),
	)
}

func (FragmentFilterStrategy) Name() string {
	return FilterStrategyFragments
}

// BuilderFilterStrategy checks each criterion and adds a Predicate to a FilterBuilder when it is present.
type BuilderFilterStrategy struct{}

func (BuilderFilterStrategy) BuildFilter(cond SearchCondition) Filter {
	userName, hasUserName := cond.UserName().Get()
	teamName, hasTeamName := cond.TeamName().Get()
	ageGoe, hasAgeGoe := cond.AgeGoe().Get()
	ageLoe, hasAgeLoe := cond.AgeLoe().Get()

	return BuildFilter().
		AndIf(hasUserName && !isBlank(userName), func() Predicate { return Eq(SourceMemberUserName, userName) }).
		AndIf(hasTeamName && !isBlank(teamName), func() Predicate { return Eq(SourceTeamName, teamName) }).
		AndIf(hasAgeGoe, func() Predicate { return Gte(SourceMemberAge, ageGoe) }).
		AndIf(hasAgeLoe, func() Predicate { return Lte(SourceMemberAge, ageLoe) }).
		Finalize()
}

func (BuilderFilterStrategy) Name() string {
	return FilterStrategyBuilder
}

// FilterStrategyByName resolves a configured strategy name.
func FilterStrategyByName(name string) (FilterStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case FilterStrategyFragments, "":
		return FragmentFilterStrategy{}, nil
	case FilterStrategyBuilder:
		return BuilderFilterStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilterStrategy, name)
	}
}
