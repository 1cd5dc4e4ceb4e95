package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-member-search-go/internal/api"
	"github.com/AntonStoeckl/dynamic-member-search-go/internal/config"
	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
	"github.com/AntonStoeckl/dynamic-member-search-go/testutil/helper"
)

func givenSQLiteEnvironment(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "membersearch.db")
	t.Setenv("MEMBERSEARCH_DB_DRIVER", config.DriverSQLite)
	t.Setenv("MEMBERSEARCH_DB_SQLITE_PATH", path)
	t.Setenv("MEMBERSEARCH_OTEL_ENDPOINT", "")

	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func givenMigratedAndSeeded(t *testing.T, path string) {
	t.Helper()

	_, err := execute(t, "migrate", "up")
	require.NoError(t, err, "error migrating in test setup")

	ctx := context.Background()
	db, err := config.OpenSQLite(ctx, path)
	require.NoError(t, err, "error opening sqlite in test setup")
	defer func() { _ = db.Close() }()

	helper.GivenRosterWasSeeded(t, ctx, db, "sqlite3", helper.StandardRoster())
}

func Test_Migrate_When_UpAndDown_Then_VersionFollows(t *testing.T) {
	// setup
	givenSQLiteEnvironment(t)

	// act & assert
	out, err := execute(t, "migrate", "up")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, err = execute(t, "migrate", "version")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	_, err = execute(t, "migrate", "down")
	require.NoError(t, err)

	out, err = execute(t, "migrate", "version")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
}

func Test_Search_When_Unpaged_Then_AllMatchesArePrinted(t *testing.T) {
	// setup
	path := givenSQLiteEnvironment(t)
	givenMigratedAndSeeded(t, path)

	// act
	out, err := execute(t, "search", "--teamName", "teamA", "--sort", "age,desc")

	// assert
	require.NoError(t, err)

	var members []membersearch.MemberProjection
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(out, &members))
	assert.Equal(t, []string{"member2", "member1"}, helper.UserNames(members))
}

func Test_Search_When_Paged_Then_PageIsPrinted(t *testing.T) {
	// setup
	path := givenSQLiteEnvironment(t)
	givenMigratedAndSeeded(t, path)

	// act
	out, err := execute(t, "search", "--paged", "--offset", "2", "--limit", "2", "--sort", "memberId")

	// assert
	require.NoError(t, err)

	var page api.PageResponse
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(out, &page))
	assert.Equal(t, []string{"member3", "member4"}, helper.UserNames(page.Content))
	assert.Equal(t, int64(4), page.TotalElements)
	assert.Equal(t, 1, page.Number)
	assert.True(t, page.Last)
}

func Test_Search_When_AgeGoeIsZero_Then_ItIsAPresentBound(t *testing.T) {
	// setup
	path := givenSQLiteEnvironment(t)
	givenMigratedAndSeeded(t, path)

	// act
	out, err := execute(t, "search", "--ageGoe", "0", "--ageLoe", "15")

	// assert
	require.NoError(t, err)

	var members []membersearch.MemberProjection
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(out, &members))
	assert.Equal(t, []string{"member1"}, helper.UserNames(members))
}

func Test_Search_When_InputIsInvalid_Then_ItFails(t *testing.T) {
	// setup
	givenSQLiteEnvironment(t)

	testCases := map[string][]string{
		"inverted age range": {"search", "--ageGoe", "40", "--ageLoe", "35"},
		"unknown sort field": {"search", "--sort", "password"},
		"zero limit":         {"search", "--paged", "--limit", "0"},
	}

	for name, args := range testCases {
		t.Run(name, func(t *testing.T) {
			// act
			_, err := execute(t, args...)

			// assert
			assert.Error(t, err)
		})
	}
}

func Test_Root_When_ConfigIsInvalid_Then_CommandsFail(t *testing.T) {
	// setup
	t.Setenv("MEMBERSEARCH_DB_DRIVER", "oracle")

	// act
	_, err := execute(t, "migrate", "version")

	// assert
	assert.ErrorContains(t, err, "unknown db driver")
}
