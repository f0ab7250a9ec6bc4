// Package postgres implements the canteen repositories on top of a pgx connection pool.
package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ChangeChannel is the NOTIFY channel the schema triggers publish row changes on.
const ChangeChannel = "canteen_changes"

//go:embed schema.sql
var schema string

// NewPool creates a pool and verifies connectivity.
func NewPool(ctx context.Context, connectionString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		return nil, fmt.Errorf("create_pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping_db: %w", err)
	}

	return pool, nil
}

// Migrate applies the embedded schema. Every statement is idempotent so it is safe to run on each deploy.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
