// Package sqlitewrapper provides throwaway in-memory SQLite stores with the member schema applied.
package sqlitewrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch/sqlengine"
	"github.com/AntonStoeckl/dynamic-member-search-go/migrations"
)

const (
	typeSQLDB = "sqldb"
	typeSQLX  = "sqlx"

	driverName = "sqlite"
)

// Wrapper abstracts over the adapter types a Searcher can be built from.
type Wrapper interface {
	GetSearcher() sqlengine.Searcher
	DB() *sql.DB
	Dialect() string
	Close()
}

// SQLDBWrapper wraps a sql.DB based Searcher.
type SQLDBWrapper struct {
	db       *sql.DB
	searcher sqlengine.Searcher
}

func (w *SQLDBWrapper) GetSearcher() sqlengine.Searcher {
	return w.searcher
}

func (w *SQLDBWrapper) DB() *sql.DB {
	return w.db
}

func (w *SQLDBWrapper) Dialect() string {
	return sqlengine.DialectSQLite
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close()
}

// SQLXWrapper wraps a sqlx.DB based Searcher.
type SQLXWrapper struct {
	db       *sqlx.DB
	searcher sqlengine.Searcher
}

func (w *SQLXWrapper) GetSearcher() sqlengine.Searcher {
	return w.searcher
}

func (w *SQLXWrapper) DB() *sql.DB {
	return w.db.DB
}

func (w *SQLXWrapper) Dialect() string {
	return sqlengine.DialectSQLite
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close()
}

// OpenMigratedDB opens a private in-memory SQLite database with all migrations applied.
func OpenMigratedDB(t testing.TB) *sql.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())

	db, err := sql.Open(driverName, dsn)
	require.NoError(t, err, "error opening sqlite in test setup")

	// one connection keeps the in-memory database alive and serializes access to it
	db.SetMaxOpenConns(1)

	_, err = migrations.Up(context.Background(), db, migrations.DialectSQLite)
	require.NoError(t, err, "error migrating sqlite in test setup")

	return db
}

// CreateWrapperWithTestConfig creates the wrapper selected by the ADAPTER_TYPE environment variable.
// The SQLite dialect option always comes first, so options may not override it by accident.
func CreateWrapperWithTestConfig(t testing.TB, options ...sqlengine.Option) Wrapper {
	allOptions := append([]sqlengine.Option{sqlengine.WithDialect(sqlengine.DialectSQLite)}, options...)
	adapterType := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	switch adapterType {
	case typeSQLDB, "", "pgxpool":
		db := OpenMigratedDB(t)
		searcher, err := sqlengine.NewSearcherFromSQLDB(db, allOptions...)
		require.NoError(t, err, "error creating searcher in test setup")

		return &SQLDBWrapper{db: db, searcher: searcher}

	case typeSQLX:
		db := sqlx.NewDb(OpenMigratedDB(t), driverName)
		searcher, err := sqlengine.NewSearcherFromSQLX(db, allOptions...)
		require.NoError(t, err, "error creating searcher in test setup")

		return &SQLXWrapper{db: db, searcher: searcher}

	default:
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterType))
	}
}
