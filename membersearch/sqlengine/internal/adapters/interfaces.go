package adapters

import (
	"context"
	"database/sql"
)

// DBAdapter defines the database operations the search engine needs.
type DBAdapter interface {
	Query(ctx context.Context, query string, args ...any) (DBRows, error)
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// stdRows wraps database/sql rows, used by both the sql.DB and the sqlx.DB adapter.
type stdRows struct {
	rows *sql.Rows
}

func (s *stdRows) Next() bool {
	return s.rows.Next()
}

func (s *stdRows) Scan(dest ...any) error {
	return s.rows.Scan(dest...)
}

func (s *stdRows) Err() error {
	return classified(s.rows.Err())
}

func (s *stdRows) Close() error {
	return s.rows.Close()
}
