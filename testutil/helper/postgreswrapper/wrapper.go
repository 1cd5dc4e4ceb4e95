// Package postgreswrapper starts a disposable PostgreSQL container and builds Searchers on top of it.
package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/AntonStoeckl/dynamic-member-search-go/internal/config"
	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch/sqlengine"
	"github.com/AntonStoeckl/dynamic-member-search-go/migrations"
)

const (
	typePGXPool = "pgxpool"
	typeSQLDB   = "sqldb"
	typeSQLX    = "sqlx"

	postgresImage = "postgres:16-alpine"
	dbName        = "membersearch_test"
	dbUser        = "test"
	dbPassword    = "test"
)

// Wrapper abstracts over the adapter types a Searcher can be built from.
// DB always returns a sql.DB on the same database, for seeding fixtures.
type Wrapper interface {
	GetSearcher() sqlengine.Searcher
	DB() *sql.DB
	Dialect() string
	Close()
}

type baseWrapper struct {
	fixtureDB *sql.DB
	searcher  sqlengine.Searcher
	closers   []func()
}

func (w *baseWrapper) GetSearcher() sqlengine.Searcher {
	return w.searcher
}

func (w *baseWrapper) DB() *sql.DB {
	return w.fixtureDB
}

func (w *baseWrapper) Dialect() string {
	return sqlengine.DialectPostgres
}

func (w *baseWrapper) Close() {
	for _, closeFn := range w.closers {
		closeFn()
	}
}

// StartContainer starts PostgreSQL, applies the migrations and returns the DB config pointing at it.
// The container is terminated when the test finishes.
func StartContainer(t testing.TB) config.DBConfig {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		postgresImage,
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")

	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dbConfig := config.DBConfig{
		Driver:          typePGXPool,
		Host:            host,
		Port:            port.Port(),
		User:            dbUser,
		Password:        dbPassword,
		Name:            dbName,
		SSLMode:         "disable",
		MaxConns:        10,
		MinConns:        1,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 5 * time.Minute,
		ConnectTimeout:  5 * time.Second,
	}

	db, err := config.OpenSQLDB(ctx, dbConfig)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = migrations.Up(ctx, db, migrations.DialectPostgres)
	require.NoError(t, err, "failed to migrate PostgreSQL container")

	return dbConfig
}

// CreateWrapper builds a Searcher of the given adapter type ("pgxpool", "sqldb" or "sqlx";
// empty reads ADAPTER_TYPE) against the database described by dbConfig.
func CreateWrapper(t testing.TB, dbConfig config.DBConfig, adapterType string, options ...sqlengine.Option) Wrapper {
	ctx := context.Background()

	if adapterType == "" {
		adapterType = strings.ToLower(os.Getenv("ADAPTER_TYPE"))
	}

	fixtureDB, err := config.OpenSQLDB(ctx, dbConfig)
	require.NoError(t, err, "error connecting to DB in test setup")

	w := &baseWrapper{fixtureDB: fixtureDB, closers: []func(){func() { _ = fixtureDB.Close() }}}

	switch adapterType {
	case typePGXPool, "":
		var pool *pgxpool.Pool
		pool, _, err = config.OpenPGXPool(ctx, dbConfig)
		require.NoError(t, err, "error connecting to DB pool in test setup")
		w.closers = append(w.closers, pool.Close)
		w.searcher, err = sqlengine.NewSearcherFromPGXPool(pool, options...)

	case typeSQLDB:
		w.searcher, err = sqlengine.NewSearcherFromSQLDB(fixtureDB, options...)

	case typeSQLX:
		var db *sqlx.DB
		db, err = config.OpenSQLX(ctx, dbConfig)
		require.NoError(t, err, "error connecting to DB in test setup")
		w.closers = append(w.closers, func() { _ = db.Close() })
		w.searcher, err = sqlengine.NewSearcherFromSQLX(db, options...)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %s", adapterType))
	}

	require.NoError(t, err, "error creating searcher in test setup")

	return w
}
