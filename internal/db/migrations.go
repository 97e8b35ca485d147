package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema
// creation. Each migration must be idempotent. Append new migrations at
// the end.
var migrations = []string{
	// Migration 1: the notification backfill orders by (created_at, id) so
	// that rows created within the same second keep a stable order. Replace
	// the single-column index with a covering one.
	`DROP INDEX IF EXISTS idx_lost_found_items_created`,
	`CREATE INDEX IF NOT EXISTS idx_lost_found_items_order
	     ON lost_found_items(created_at DESC, id DESC)`,
}

// Migrate runs the database schema migrations.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
