package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool    *pgxpool.Pool
	once    sync.Once
	initErr error
)

// ErrNoDatabaseURL is returned by InitDB when no connection string is configured.
var ErrNoDatabaseURL = errors.New("DATABASE_URL not set")

// InitDB initializes the database connection pool. Only the first call
// connects; later calls return the first call's result. On failure the pool
// stays nil so callers fall back to the file cache.
func InitDB(ctx context.Context, dbURL string) error {
	once.Do(func() {
		initErr = connect(ctx, dbURL)
	})
	return initErr
}

func connect(ctx context.Context, dbURL string) error {
	if dbURL == "" {
		return ErrNoDatabaseURL
	}

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	p, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}
	if err := EnsureSchema(ctx, p); err != nil {
		p.Close()
		return err
	}
	pool = p
	return nil
}

// GetPool returns the database connection pool, or nil before InitDB.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the database connection pool
func Close() {
	if pool != nil {
		pool.Close()
	}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS edinet_summaries (
	id           UUID PRIMARY KEY,
	doc_id       TEXT NOT NULL UNIQUE,
	sec_code     TEXT,
	filer_name   TEXT,
	source       TEXT NOT NULL,
	summary      JSONB NOT NULL,
	extracted_at TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// EnsureSchema creates the summary table when it does not exist.
func EnsureSchema(ctx context.Context, p *pgxpool.Pool) error {
	if _, err := p.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create edinet_summaries: %w", err)
	}
	return nil
}
