package membersearch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
)

type countSpy struct {
	total int64
	err   error
	calls int
}

func (c *countSpy) count(_ context.Context) (int64, error) {
	c.calls++
	return c.total, c.err
}

func Test_SkipWhenUnnecessary_ResolveTotal(t *testing.T) {
	tests := []struct {
		name          string
		offset        int
		limit         int
		contentSize   int
		storeTotal    int64
		expectedTotal int64
		expectCount   bool
	}{
		{name: "first page not full", offset: 0, limit: 3, contentSize: 2, storeTotal: 2, expectedTotal: 2, expectCount: false},
		{name: "first page empty", offset: 0, limit: 3, contentSize: 0, storeTotal: 0, expectedTotal: 0, expectCount: false},
		{name: "first page full", offset: 0, limit: 3, contentSize: 3, storeTotal: 4, expectedTotal: 4, expectCount: true},
		{name: "last page partial", offset: 3, limit: 3, contentSize: 1, storeTotal: 4, expectedTotal: 4, expectCount: false},
		{name: "later page full", offset: 3, limit: 3, contentSize: 3, storeTotal: 9, expectedTotal: 9, expectCount: true},
		{name: "beyond the end", offset: 9, limit: 3, contentSize: 0, storeTotal: 4, expectedTotal: 4, expectCount: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			spy := &countSpy{total: tc.storeTotal}
			page := membersearch.PageRequest{Offset: tc.offset, Limit: tc.limit}

			// act
			total, counted, err := membersearch.SkipWhenUnnecessary{}.ResolveTotal(context.Background(), page, tc.contentSize, spy.count)

			// assert
			require.NoError(t, err)
			assert.Equal(t, tc.expectedTotal, total)
			assert.Equal(t, tc.expectCount, counted)
			assert.Equal(t, tc.expectCount, spy.calls == 1)
		})
	}
}

func Test_AlwaysCount_ResolveTotal_When_PageIsNotFull_Then_CountIsStillIssued(t *testing.T) {
	// arrange
	spy := &countSpy{total: 2}

	// act
	total, counted, err := membersearch.AlwaysCount{}.ResolveTotal(
		context.Background(),
		membersearch.PageRequest{Offset: 0, Limit: 3},
		2,
		spy.count,
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.True(t, counted)
	assert.Equal(t, 1, spy.calls)
}

func Test_CountStrategies_When_CountFails_Then_ErrorIsReturnedUnchanged(t *testing.T) {
	// arrange
	storeErr := errors.Join(membersearch.ErrStoreUnavailable, errors.New("connection reset"))
	spy := &countSpy{err: storeErr}
	page := membersearch.PageRequest{Offset: 0, Limit: 3}

	for _, strategy := range []membersearch.CountStrategy{membersearch.AlwaysCount{}, membersearch.SkipWhenUnnecessary{}} {
		// act
		total, _, err := strategy.ResolveTotal(context.Background(), page, 3, spy.count)

		// assert
		assert.ErrorIs(t, err, membersearch.ErrStoreUnavailable, strategy.Name())
		assert.Zero(t, total)
	}
}

func Test_CountStrategyByName(t *testing.T) {
	// act
	always, errAlways := membersearch.CountStrategyByName("always")
	skip, errSkip := membersearch.CountStrategyByName("SKIP")
	_, errUnknown := membersearch.CountStrategyByName("sometimes")

	// assert
	require.NoError(t, errAlways)
	require.NoError(t, errSkip)
	assert.Equal(t, membersearch.AlwaysCount{}, always)
	assert.Equal(t, membersearch.SkipWhenUnnecessary{}, skip)
	assert.ErrorIs(t, errUnknown, membersearch.ErrUnknownCountStrategy)
}
