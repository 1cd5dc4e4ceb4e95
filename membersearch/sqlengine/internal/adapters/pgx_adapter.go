package adapters

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
)

// PGXAdapter implements DBAdapter for pgxpool.Pool.
type PGXAdapter struct {
	pool        *pgxpool.Pool
	replicaPool *pgxpool.Pool // optional, used for membersearch.EventualConsistency reads
}

// NewPGXAdapter creates a new PGX adapter with a primary pool.
func NewPGXAdapter(pool *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{pool: pool}
}

// NewPGXAdapterWithReplica creates a new PGX adapter with a primary and a replica pool.
func NewPGXAdapterWithReplica(pool *pgxpool.Pool, replica *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{pool: pool, replicaPool: replica}
}

// Query runs on the replica pool if one is configured and the context asks for eventual consistency,
// otherwise on the primary pool.
func (p *PGXAdapter) Query(ctx context.Context, query string, args ...any) (DBRows, error) {
	pool := p.pool

	if p.replicaPool != nil && membersearch.GetConsistencyLevel(ctx) == membersearch.EventualConsistency {
		pool = p.replicaPool
	}

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classified(err)
	}

	return &pgxRows{rows: rows}, nil
}

type pgxRows struct {
	rows pgx.Rows
}

func (p *pgxRows) Next() bool {
	return p.rows.Next()
}

func (p *pgxRows) Scan(dest ...any) error {
	return p.rows.Scan(dest...)
}

func (p *pgxRows) Err() error {
	return classified(p.rows.Err())
}

func (p *pgxRows) Close() error {
	p.rows.Close()
	return nil
}
