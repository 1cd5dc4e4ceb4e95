package sqlengine_test

import (
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch/sqlengine"
	. "github.com/AntonStoeckl/dynamic-member-search-go/testutil/helper/sqlitewrapper" //nolint:revive
)

func Test_FactoryFunctions_CreateWrapper_ShouldPanic_WithUnsupportedAdapterType(t *testing.T) {
	// Save the original env var
	originalAdapterType, wasSet := os.LookupEnv("ADAPTER_TYPE")
	defer func() {
		if !wasSet {
			assert.NoError(t, os.Unsetenv("ADAPTER_TYPE"))
			return
		}

		assert.NoError(t, os.Setenv("ADAPTER_TYPE", originalAdapterType))
	}()

	// Set an unsupported adapter type
	assert.NoError(t, os.Setenv("ADAPTER_TYPE", "unsupported"))

	assert.Panics(t, func() {
		_ = CreateWrapperWithTestConfig(t)
	})
}

func Test_FactoryFunctions_NewSearcher_ShouldFail_WithNilDatabaseConnection(t *testing.T) {
	testCases := []struct {
		name        string
		factoryFunc func() (sqlengine.Searcher, error)
	}{
		{
			name: "NewSearcherFromPGXPool with nil",
			factoryFunc: func() (sqlengine.Searcher, error) {
				return sqlengine.NewSearcherFromPGXPool(nil)
			},
		},
		{
			name: "NewSearcherFromPGXPoolAndReplica with nil primary",
			factoryFunc: func() (sqlengine.Searcher, error) {
				return sqlengine.NewSearcherFromPGXPoolAndReplica(nil, nil)
			},
		},
		{
			name: "NewSearcherFromSQLDB with nil",
			factoryFunc: func() (sqlengine.Searcher, error) {
				return sqlengine.NewSearcherFromSQLDB(nil)
			},
		},
		{
			name: "NewSearcherFromSQLX with nil",
			factoryFunc: func() (sqlengine.Searcher, error) {
				return sqlengine.NewSearcherFromSQLX(nil)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			searcher, err := tc.factoryFunc()

			assert.ErrorIs(t, err, membersearch.ErrNilDatabaseConnection)
			assert.Equal(t, sqlengine.Searcher{}, searcher)
		})
	}
}

func Test_FactoryFunctions_NewSearcher_ShouldFail_WithInvalidOptions(t *testing.T) {
	db := OpenMigratedDB(t)
	defer func() { _ = db.Close() }()

	testCases := []struct {
		name        string
		option      sqlengine.Option
		expectedErr error
	}{
		{name: "empty member table", option: sqlengine.WithMemberTableName(""), expectedErr: membersearch.ErrEmptyTableNameSupplied},
		{name: "empty team table", option: sqlengine.WithTeamTableName(""), expectedErr: membersearch.ErrEmptyTableNameSupplied},
		{name: "unknown dialect", option: sqlengine.WithDialect("oracle"), expectedErr: sqlengine.ErrUnsupportedDialect},
		{name: "nil count strategy", option: sqlengine.WithCountStrategy(nil), expectedErr: membersearch.ErrUnknownCountStrategy},
		{name: "nil filter strategy", option: sqlengine.WithFilterStrategy(nil), expectedErr: membersearch.ErrUnknownFilterStrategy},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, sqlDBErr := sqlengine.NewSearcherFromSQLDB(db, tc.option)
			_, sqlxErr := sqlengine.NewSearcherFromSQLX(sqlx.NewDb(db, "sqlite"), tc.option)

			assert.ErrorIs(t, sqlDBErr, tc.expectedErr)
			assert.ErrorIs(t, sqlxErr, tc.expectedErr)
		})
	}
}

func Test_FactoryFunctions_NewSearcher_Succeeds_WithValidOptions(t *testing.T) {
	db := OpenMigratedDB(t)
	defer func() { _ = db.Close() }()

	_, err := sqlengine.NewSearcherFromSQLDB(
		db,
		sqlengine.WithDialect(sqlengine.DialectSQLite),
		sqlengine.WithMemberTableName("member"),
		sqlengine.WithTeamTableName("team"),
		sqlengine.WithCountStrategy(membersearch.AlwaysCount{}),
		sqlengine.WithFilterStrategy(membersearch.BuilderFilterStrategy{}),
	)

	assert.NoError(t, err)
}
