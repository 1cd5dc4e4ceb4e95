package migrations_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/AntonStoeckl/dynamic-member-search-go/migrations"
)

func openEmptySQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err, "error opening sqlite in test setup")

	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func tableExists(t *testing.T, ctx context.Context, db *sql.DB, table string) bool {
	t.Helper()

	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&count)
	require.NoError(t, err)

	return count == 1
}

func Test_Up_When_DatabaseIsEmpty_Then_AllMigrationsAreApplied(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db := openEmptySQLite(t)

	// act
	version, err := migrations.Up(ctxWithTimeout, db, migrations.DialectSQLite)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
	assert.True(t, tableExists(t, ctxWithTimeout, db, "team"))
	assert.True(t, tableExists(t, ctxWithTimeout, db, "member"))
}

func Test_Up_When_AlreadyMigrated_Then_ItIsANoop(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db := openEmptySQLite(t)
	_, err := migrations.Up(ctxWithTimeout, db, migrations.DialectSQLite)
	require.NoError(t, err)

	// act
	version, err := migrations.Up(ctxWithTimeout, db, migrations.DialectSQLite)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
}

func Test_Down_When_Migrated_Then_SchemaIsRemoved(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db := openEmptySQLite(t)
	_, err := migrations.Up(ctxWithTimeout, db, migrations.DialectSQLite)
	require.NoError(t, err)

	// act
	err = migrations.Down(ctxWithTimeout, db, migrations.DialectSQLite)

	// assert
	require.NoError(t, err)
	version, versionErr := migrations.Version(ctxWithTimeout, db, migrations.DialectSQLite)
	require.NoError(t, versionErr)
	assert.Zero(t, version)
	assert.False(t, tableExists(t, ctxWithTimeout, db, "member"))
	assert.False(t, tableExists(t, ctxWithTimeout, db, "team"))
}

func Test_Up_When_DialectIsUnsupported_Then_ItFails(t *testing.T) {
	// setup
	db := openEmptySQLite(t)

	// act
	_, err := migrations.Up(context.Background(), db, "oracle")

	// assert
	assert.ErrorIs(t, err, migrations.ErrUnsupportedDialect)
}
