package config

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // postgres driver for sql.DB and sqlx.DB
	_ "modernc.org/sqlite" // sqlite driver
)

const (
	sqlDriverPostgres = "postgres"
	sqlDriverSQLite   = "sqlite"
)

// PGXPoolConfig creates a pgxpool.Config for the given DSN with the pool settings of d.
func (d DBConfig) PGXPoolConfig(dsn string) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = d.MaxConns
	poolConfig.MinConns = d.MinConns
	poolConfig.MaxConnLifetime = d.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = d.ConnMaxIdleTime
	poolConfig.ConnConfig.ConnectTimeout = d.ConnectTimeout

	return poolConfig, nil
}

// OpenPGXPool opens and pings a pgx pool on the primary and, if configured, on the replica.
// The replica pool is nil without a replica host.
func OpenPGXPool(ctx context.Context, d DBConfig) (primary *pgxpool.Pool, replica *pgxpool.Pool, err error) {
	primary, err = openPGXPool(ctx, d, d.DSN())
	if err != nil {
		return nil, nil, err
	}

	if d.ReplicaDSN() == "" {
		return primary, nil, nil
	}

	replica, err = openPGXPool(ctx, d, d.ReplicaDSN())
	if err != nil {
		primary.Close()
		return nil, nil, err
	}

	return primary, replica, nil
}

func openPGXPool(ctx context.Context, d DBConfig, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := d.PGXPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// OpenSQLDB opens and pings a sql.DB on the primary using lib/pq.
func OpenSQLDB(ctx context.Context, d DBConfig) (*sql.DB, error) {
	db, err := sql.Open(sqlDriverPostgres, d.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	d.configurePool(db)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// OpenSQLX opens and pings a sqlx.DB on the primary using lib/pq.
func OpenSQLX(ctx context.Context, d DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(sqlDriverPostgres, d.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	d.configurePool(db.DB)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// OpenSQLite opens a SQLite database file using the pure-Go modernc driver.
// SQLite allows a single writer, so the pool is limited to one connection.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open(sqlDriverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return db, nil
}

func (d DBConfig) configurePool(db *sql.DB) {
	db.SetMaxOpenConns(int(d.MaxConns))
	db.SetMaxIdleConns(int(d.MinConns))
	db.SetConnMaxLifetime(d.ConnMaxLifetime)
	db.SetConnMaxIdleTime(d.ConnMaxIdleTime)
}
