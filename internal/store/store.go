package store

import (
	"context"
	"fmt"

	"github.com/andresmejia3/gestureprep/internal/types"
	"github.com/jackc/pgx/v5"
)

// Run kinds recorded in the ledger.
const (
	KindResize = "resize"
	KindSync   = "sync"
	KindClean  = "clean"
)

// Store records pipeline runs and their per-item outcomes in PostgreSQL.
type Store struct {
	conn *pgx.Conn
}

// New establishes a connection to the database and ensures the schema is initialized.
func New(ctx context.Context, connString string) (*Store, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}

	// Initialize schema (Auto-Migration)
	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

// initSchema creates the ledger tables if they don't exist (Auto-Migration).
func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE TABLE IF NOT EXISTS runs (
			id BIGSERIAL PRIMARY KEY,
			kind TEXT NOT NULL,
			root TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			finished_at TIMESTAMPTZ,
			succeeded INT NOT NULL DEFAULT 0,
			failed INT NOT NULL DEFAULT 0,
			skipped INT NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS run_items (
			id BIGSERIAL PRIMARY KEY,
			run_id BIGINT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			class TEXT NOT NULL,
			tier INT NOT NULL DEFAULT 0,
			side TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS run_items_run_id_idx ON run_items (run_id);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// Close terminates the database connection.
func (s *Store) Close(ctx context.Context) {
	s.conn.Close(ctx)
}

// BeginRun registers a new run and returns its ID.
func (s *Store) BeginRun(ctx context.Context, kind, root string) (int64, error) {
	var id int64
	err := s.conn.QueryRow(ctx, "INSERT INTO runs (kind, root) VALUES ($1, $2) RETURNING id", kind, root).Scan(&id)
	return id, err
}

// RecordItems bulk-inserts item outcomes for a run.
func (s *Store) RecordItems(ctx context.Context, runID int64, items []types.ItemRecord) error {
	if len(items) == 0 {
		return nil
	}

	_, err := s.conn.CopyFrom(ctx,
		pgx.Identifier{"run_items"},
		[]string{"run_id", "class", "tier", "side", "name", "status", "error"},
		pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
			it := items[i]
			return []any{runID, it.Class, it.Tier, it.Side, it.Name, string(it.Status), it.Error}, nil
		}),
	)
	return err
}

// FinishRun stamps the run with its completion time and summary.
func (s *Store) FinishRun(ctx context.Context, runID int64, sum types.RunSummary) error {
	tag, err := s.conn.Exec(ctx, `
		UPDATE runs SET finished_at = NOW(), succeeded = $2, failed = $3, skipped = $4
		WHERE id = $1
	`, runID, sum.Succeeded, sum.Failed, sum.Skipped)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %d not found", runID)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]types.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.Query(ctx, `
		SELECT id, kind, root, started_at, finished_at, succeeded, failed, skipped
		FROM runs ORDER BY id DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		var r types.Run
		if err := rows.Scan(&r.ID, &r.Kind, &r.Root, &r.StartedAt, &r.FinishedAt,
			&r.Summary.Succeeded, &r.Summary.Failed, &r.Summary.Skipped); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunItems returns the recorded outcomes of one run, optionally filtered
// by status.
func (s *Store) RunItems(ctx context.Context, runID int64, status types.Status) ([]types.ItemRecord, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT class, tier, side, name, status, error
		FROM run_items
		WHERE run_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY id
	`, runID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []types.ItemRecord
	for rows.Next() {
		var it types.ItemRecord
		var st string
		if err := rows.Scan(&it.Class, &it.Tier, &it.Side, &it.Name, &st, &it.Error); err != nil {
			return nil, err
		}
		it.Status = types.Status(st)
		items = append(items, it)
	}
	return items, rows.Err()
}

// Reset drops all ledger tables to clear the database state.
// This is useful for development to force a schema refresh without migrations.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.conn.Exec(ctx, `
		DROP TABLE IF EXISTS run_items CASCADE;
		DROP TABLE IF EXISTS runs CASCADE;
	`)
	return err
}
