package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// EnsureSchema creates the catalog tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	const classes = `CREATE TABLE IF NOT EXISTS class_definitions (
		id BIGSERIAL PRIMARY KEY,
		day_of_week TEXT NOT NULL,
		start_time TEXT NOT NULL,
		capacity INTEGER NOT NULL,
		duration_minutes INTEGER NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		class_type TEXT NOT NULL,
		description TEXT,
		equipment TEXT,
		instructor TEXT NOT NULL DEFAULT 'Unknown'
	)`

	// class_id carries no REFERENCES clause: deleting a definition must
	// succeed and leave its occurrences orphaned. The service layer
	// checks the definition exists before an occurrence is inserted.
	const occurrences = `CREATE TABLE IF NOT EXISTS class_occurrences (
		id BIGSERIAL PRIMARY KEY,
		class_id BIGINT NOT NULL,
		date_millis BIGINT NOT NULL,
		instructor TEXT NOT NULL,
		comments TEXT
	)`

	if _, err := db.ExecContext(ctx, classes); err != nil {
		return fmt.Errorf("create class_definitions: %w", err)
	}
	if _, err := db.ExecContext(ctx, occurrences); err != nil {
		return fmt.Errorf("create class_occurrences: %w", err)
	}
	return nil
}
