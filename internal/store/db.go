package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// NewDB opens a Postgres connection pool and verifies it is reachable
func NewDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS sync_runs (
	id                  UUID PRIMARY KEY,
	started_at          TIMESTAMPTZ NOT NULL,
	finished_at         TIMESTAMPTZ,
	total_records       INTEGER NOT NULL DEFAULT 0,
	records_with_coords INTEGER NOT NULL DEFAULT 0,
	virtual_records     INTEGER NOT NULL DEFAULT 0,
	changed             INTEGER NOT NULL DEFAULT 0,
	unchanged           INTEGER NOT NULL DEFAULT 0,
	dataset_checksum    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS record_snapshots (
	id          SERIAL PRIMARY KEY,
	record_id   TEXT NOT NULL,
	clinic_name TEXT NOT NULL,
	checksum    TEXT NOT NULL,
	sync_run_id UUID NOT NULL REFERENCES sync_runs(id),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS record_snapshots_record_idx
	ON record_snapshots (record_id, created_at DESC);
`

// EnsureSchema creates the sync history tables when they are missing
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
