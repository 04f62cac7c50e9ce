package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the users table if the database is empty. The
// UNIQUE constraint on email is load-bearing: the services rely on it to
// keep concurrent creates from producing duplicate addresses.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			age           INTEGER NOT NULL,
			password_hash TEXT NOT NULL
		)
	`)

	return err
}
