package store

import (
	"context"
	"fmt"
)

// EnsureSchema creates the tables when missing. Safe to call on every
// start.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if !s.IsConfigured() {
		return ErrNotConfigured
	}
	ddl := schemaPostgres
	if s.driver == "sqlite3" {
		ddl = schemaSQLite
	}
	if _, err := s.DB.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS spin_results (
    id TEXT PRIMARY KEY,
    number INTEGER NOT NULL CHECK (number >= 0 AND number <= 36),
    color TEXT NOT NULL CHECK (color IN ('red','black','green')),
    parity TEXT NOT NULL CHECK (parity IN ('odd','even','none')),
    is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
    deleted_at TIMESTAMPTZ,
    occurred_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_spin_results_occurred_at ON spin_results(occurred_at DESC);

CREATE TABLE IF NOT EXISTS audit_log (
    id TEXT PRIMARY KEY,
    actor_id TEXT NOT NULL,
    actor_name TEXT NOT NULL,
    action TEXT NOT NULL,
    details TEXT NOT NULL DEFAULT '',
    old_value TEXT,
    new_value TEXT,
    success BOOLEAN NOT NULL,
    occurred_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_log_occurred_at ON audit_log(occurred_at DESC);
`

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS spin_results (
    id TEXT PRIMARY KEY,
    number INTEGER NOT NULL CHECK (number >= 0 AND number <= 36),
    color TEXT NOT NULL CHECK (color IN ('red','black','green')),
    parity TEXT NOT NULL CHECK (parity IN ('odd','even','none')),
    is_deleted BOOLEAN NOT NULL DEFAULT 0,
    deleted_at DATETIME,
    occurred_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_spin_results_occurred_at ON spin_results(occurred_at DESC);

CREATE TABLE IF NOT EXISTS audit_log (
    id TEXT PRIMARY KEY,
    actor_id TEXT NOT NULL,
    actor_name TEXT NOT NULL,
    action TEXT NOT NULL,
    details TEXT NOT NULL DEFAULT '',
    old_value TEXT,
    new_value TEXT,
    success BOOLEAN NOT NULL,
    occurred_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_log_occurred_at ON audit_log(occurred_at DESC);
`
