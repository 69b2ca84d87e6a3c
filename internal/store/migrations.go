package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for the history tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS setups (
		id          TEXT PRIMARY KEY,
		status      TEXT NOT NULL,
		directory   TEXT NOT NULL DEFAULT '',
		output      TEXT NOT NULL DEFAULT '',
		steps       TEXT NOT NULL DEFAULT '[]',
		tasks       TEXT NOT NULL DEFAULT '[]',
		tools       TEXT NOT NULL DEFAULT '{}',
		slurm       INTEGER NOT NULL DEFAULT 0,
		dry_run     INTEGER NOT NULL DEFAULT 0,
		error_code  TEXT NOT NULL DEFAULT '',
		error       TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_setups_created_at ON setups(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_setups_output ON setups(output)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
