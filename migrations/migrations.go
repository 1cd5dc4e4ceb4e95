// Package migrations holds the member and team schema as embedded goose migrations,
// one directory per SQL dialect.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

//go:embed postgres/*.sql sqlite/*.sql
var embedMigrations embed.FS

var ErrUnsupportedDialect = errors.New("unsupported migration dialect")

// Up applies all pending migrations for the given dialect and returns the resulting schema version.
func Up(ctx context.Context, db *sql.DB, dialect string) (int64, error) {
	provider, err := newProvider(db, dialect)
	if err != nil {
		return 0, err
	}

	if _, err := provider.Up(ctx); err != nil {
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return provider.GetDBVersion(ctx)
}

// Down rolls back all applied migrations for the given dialect.
func Down(ctx context.Context, db *sql.DB, dialect string) error {
	provider, err := newProvider(db, dialect)
	if err != nil {
		return err
	}

	if _, err := provider.DownTo(ctx, 0); err != nil {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}

	return nil
}

// Version returns the current schema version, 0 on an empty database.
func Version(ctx context.Context, db *sql.DB, dialect string) (int64, error) {
	provider, err := newProvider(db, dialect)
	if err != nil {
		return 0, err
	}

	return provider.GetDBVersion(ctx)
}

func newProvider(db *sql.DB, dialect string) (*goose.Provider, error) {
	var gooseDialect goose.Dialect
	var dir string

	switch dialect {
	case DialectPostgres:
		gooseDialect, dir = goose.DialectPostgres, "postgres"
	case DialectSQLite:
		gooseDialect, dir = goose.DialectSQLite3, "sqlite"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDialect, dialect)
	}

	fsys, err := fs.Sub(embedMigrations, dir)
	if err != nil {
		return nil, err
	}

	provider, err := goose.NewProvider(gooseDialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}

	return provider, nil
}
