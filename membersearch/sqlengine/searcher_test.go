package sqlengine_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch/sqlengine"
	. "github.com/AntonStoeckl/dynamic-member-search-go/testutil/helper"               //nolint:revive
	. "github.com/AntonStoeckl/dynamic-member-search-go/testutil/helper/sqlitewrapper" //nolint:revive
)

var byMemberID = membersearch.Asc(membersearch.FieldMemberID)

func givenSeededWrapper(t *testing.T, roster Roster, options ...sqlengine.Option) Wrapper {
	t.Helper()

	wrapper := CreateWrapperWithTestConfig(t, options...)
	t.Cleanup(wrapper.Close)

	GivenRosterWasSeeded(t, context.Background(), wrapper.DB(), wrapper.Dialect(), roster)

	return wrapper
}

func Test_Search_When_AllCriteriaAreAbsent_Then_AllMembersAreReturned(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	roster := StandardRosterWithLoners()
	searcher := givenSeededWrapper(t, roster).GetSearcher()

	// act
	result, err := searcher.Search(ctxWithTimeout, membersearch.NewSearchCondition(), byMemberID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, roster.Projections(), result)
}

func Test_Search_When_MemberHasNoTeam_Then_ItIsReturnedWithNullTeamFields(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	searcher := givenSeededWrapper(t, StandardRosterWithLoners()).GetSearcher()

	// act
	result, err := searcher.Search(ctxWithTimeout, membersearch.NewSearchCondition(membersearch.WithUserName("loner")))

	// assert
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, int64(5), result[0].MemberID)
	assert.Equal(t, 0, result[0].Age)
	assert.Nil(t, result[0].TeamID)
	assert.Nil(t, result[0].TeamName)
}

func Test_Search_When_TeamNameIsGiven_Then_MembersWithoutTeamDoNotMatch(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	searcher := givenSeededWrapper(t, StandardRosterWithLoners()).GetSearcher()

	// act
	result, err := searcher.Search(ctxWithTimeout, membersearch.NewSearchCondition(membersearch.WithTeamName("teamB")), byMemberID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{"member3", "member4", "<nil>"}, UserNames(result))
}

func Test_Search_When_TeamAndAgeRangeAreGiven_Then_OnlyMember4Matches(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	searcher := givenSeededWrapper(t, StandardRoster()).GetSearcher()
	cond := membersearch.NewSearchCondition(
		membersearch.WithTeamName("teamB"),
		membersearch.WithAgeGoe(35),
		membersearch.WithAgeLoe(40),
	)

	// act
	result, err := searcher.Search(ctxWithTimeout, cond)

	// assert
	require.NoError(t, err)
	assert.Equal(t, []membersearch.MemberProjection{
		{MemberID: 4, UserName: Str("member4"), Age: 40, TeamID: ID(2), TeamName: Str("teamB")},
	}, result)
}

func Test_Search_When_EachCriterionIsGivenAlone_Then_ItFiltersIndependently(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	searcher := givenSeededWrapper(t, StandardRoster()).GetSearcher()

	testCases := []struct {
		name     string
		cond     membersearch.SearchCondition
		expected []string
	}{
		{name: "userName", cond: membersearch.NewSearchCondition(membersearch.WithUserName("member2")), expected: []string{"member2"}},
		{name: "teamName", cond: membersearch.NewSearchCondition(membersearch.WithTeamName("teamA")), expected: []string{"member1", "member2"}},
		{name: "ageGoe", cond: membersearch.NewSearchCondition(membersearch.WithAgeGoe(30)), expected: []string{"member3", "member4"}},
		{name: "ageLoe", cond: membersearch.NewSearchCondition(membersearch.WithAgeLoe(20)), expected: []string{"member1", "member2"}},
		{name: "blank userName", cond: membersearch.NewSearchCondition(membersearch.WithUserName("  ")), expected: []string{"member1", "member2", "member3", "member4"}},
		{name: "unknown team", cond: membersearch.NewSearchCondition(membersearch.WithTeamName(GivenUniqueTeamName(t))), expected: []string{}},
		{name: "inverted range", cond: membersearch.NewSearchCondition(membersearch.WithAgeGoe(40), membersearch.WithAgeLoe(10)), expected: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			result, err := searcher.Search(ctxWithTimeout, tc.cond, byMemberID)

			// assert
			require.NoError(t, err)
			assert.Equal(t, tc.expected, UserNames(result))
		})
	}
}

func Test_Search_When_ZeroAgeBoundIsGiven_Then_ItIsAppliedAsAValue(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	searcher := givenSeededWrapper(t, StandardRosterWithLoners()).GetSearcher()

	// act
	result, err := searcher.Search(ctxWithTimeout, membersearch.NewSearchCondition(membersearch.WithAgeLoe(0)))

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{"loner"}, UserNames(result))
}

func Test_Search_When_ResultIsEmpty_Then_AnEmptySliceIsReturned(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	searcher := givenSeededWrapper(t, Roster{}).GetSearcher()

	// act
	result, err := searcher.Search(ctxWithTimeout, membersearch.NewSearchCondition())

	// assert
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func Test_Search_When_ComparedWithInMemoryEvaluation_Then_ResultsAreEqual(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	roster := StandardRosterWithLoners()
	strategies := []membersearch.FilterStrategy{membersearch.FragmentFilterStrategy{}, membersearch.BuilderFilterStrategy{}}

	userNames := []membersearch.Optional[string]{membersearch.None[string](), membersearch.Some("member3"), membersearch.Some("nobody")}
	teamNames := []membersearch.Optional[string]{membersearch.None[string](), membersearch.Some("teamA"), membersearch.Some("teamB")}
	ages := []membersearch.Optional[int]{membersearch.None[int](), membersearch.Some(0), membersearch.Some(20), membersearch.Some(35)}

	for _, strategy := range strategies {
		searcher := givenSeededWrapper(t, roster, sqlengine.WithFilterStrategy(strategy)).GetSearcher()

		for _, userName := range userNames {
			for _, teamName := range teamNames {
				for _, goe := range ages {
					for _, loe := range ages {
						cond := membersearch.NewSearchCondition(
							membersearch.WithOptionalUserName(userName),
							membersearch.WithOptionalTeamName(teamName),
							membersearch.WithOptionalAgeGoe(goe),
							membersearch.WithOptionalAgeLoe(loe),
						)

						// act
						result, err := searcher.Search(ctxWithTimeout, cond, byMemberID)

						// assert
						require.NoError(t, err)
						assert.Equal(t,
							roster.ExpectedMatches(strategy.BuildFilter(cond)),
							result,
							"strategy %s, filter %s", strategy.Name(), strategy.BuildFilter(cond),
						)
					}
				}
			}
		}
	}
}

func Test_Search_When_OrdersAreGiven_Then_ResultIsSorted(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	searcher := givenSeededWrapper(t, StandardRoster()).GetSearcher()

	// act
	result, err := searcher.Search(
		ctxWithTimeout,
		membersearch.NewSearchCondition(),
		membersearch.Asc(membersearch.FieldTeamName),
		membersearch.Desc(membersearch.FieldAge),
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{"member2", "member1", "member4", "member3"}, UserNames(result))
}

func Test_Search_When_OrderFieldIsNotProjected_Then_ItFailsBeforeQuerying(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	testHandler := NewLogHandlerSpy(false)
	searcher := givenSeededWrapper(t, StandardRoster(), sqlengine.WithLogger(slog.New(testHandler))).GetSearcher()

	// act
	result, err := searcher.Search(ctxWithTimeout, membersearch.NewSearchCondition(), membersearch.Asc("password"))

	// assert
	assert.ErrorIs(t, err, membersearch.ErrUnknownOrderField)
	assert.Nil(t, result)
	assert.False(t, testHandler.HasDebugLog("executed sql for: search"), "no query should have been executed")
}

func Test_Search_When_RunConcurrently_Then_AllCallsSucceed(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	searcher := givenSeededWrapper(t, StandardRoster()).GetSearcher()
	errs := make(chan error, 10)

	// act
	for i := 0; i < 10; i++ {
		go func(age int) {
			_, err := searcher.Search(ctxWithTimeout, membersearch.NewSearchCondition(membersearch.WithAgeGoe(age)))
			errs <- err
		}(i * 5)
	}

	// assert
	for i := 0; i < 10; i++ {
		assert.NoError(t, <-errs)
	}
}
