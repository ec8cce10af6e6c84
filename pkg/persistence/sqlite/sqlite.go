// Package sqlite provides embedded SQLite persistence, suited to single node
// deployments and the CLI.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/flowdeck/pkg/persistence/sqlbase"
	_ "modernc.org/sqlite"
)

// Persistence implements the persistence layer on SQLite.
type Persistence struct {
	*sqlbase.Persistence
}

// NewPersistence opens the database at dsn ("sqlite://" prefix accepted,
// ":memory:" for a private in-memory database) and migrates the schema.
func NewPersistence(ctx context.Context, logger *slog.Logger, dsn string) (*Persistence, error) {
	path := strings.TrimPrefix(dsn, "sqlite://")

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases alive and shared across queries.
	database.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		_, err = database.ExecContext(ctx, pragma)
		if err != nil {
			_ = database.Close()

			return nil, fmt.Errorf("failed to configure SQLite (%s): %w", pragma, err)
		}
	}

	base, err := sqlbase.NewPersistence(ctx, logger.With("module", "sqlite"), database, sqlbase.SQLite, migrations())
	if err != nil {
		_ = database.Close()

		return nil, err
	}

	return &Persistence{Persistence: base}, nil
}

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				created_at INTEGER NOT NULL,
				updated_at INTEGER NOT NULL,
				data TEXT NOT NULL
			);

			CREATE TABLE executions (
				id TEXT PRIMARY KEY,
				workflow_id TEXT NOT NULL,
				status TEXT NOT NULL,
				started_at INTEGER NOT NULL,
				data TEXT NOT NULL
			);

			CREATE INDEX idx_executions_workflow_started ON executions(workflow_id, started_at DESC);
			CREATE INDEX idx_executions_started ON executions(started_at DESC);
		`,
		2: `
			CREATE TABLE snapshots (
				execution_id TEXT PRIMARY KEY,
				workflow_id TEXT NOT NULL,
				status TEXT NOT NULL,
				started_at INTEGER NOT NULL,
				stored_size INTEGER NOT NULL,
				header TEXT NOT NULL,
				data BLOB NOT NULL
			);

			CREATE INDEX idx_snapshots_workflow_started ON snapshots(workflow_id, started_at DESC);
		`,
	}
}
