package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB holds the connection pool shared by the catalog repositories. The
// catalog is read-heavy; reviews are the only write path besides seeding.
type DB struct {
	Pool *pgxpool.Pool
}

// New opens a pool against the local venue catalog and verifies it with a
// ping before handing it out.
func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 50

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close releases the pool.
func (db *DB) Close() {
	db.Pool.Close()
}
