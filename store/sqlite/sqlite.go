// Package sqlite provides a store.RunStore backed by an embedded SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/adenhq/hive-go/store"
)

// SqliteRunStore implements store.RunStore using SQLite
type SqliteRunStore struct {
	db        *sql.DB
	tableName string
}

// SqliteOptions configuration for SQLite connection
type SqliteOptions struct {
	Path      string
	TableName string // Default "runs"
}

var _ store.RunStore = (*SqliteRunStore)(nil)

// NewSqliteRunStore creates a new SQLite run store
func NewSqliteRunStore(opts SqliteOptions) (*SqliteRunStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "runs"
	}

	s := &SqliteRunStore{
		db:        db,
		tableName: tableName,
	}

	if err := s.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// InitSchema creates the necessary table if it doesn't exist
func (s *SqliteRunStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT NOT NULL,
			agent TEXT NOT NULL,
			status TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			document TEXT NOT NULL,
			PRIMARY KEY (agent, id)
		);
		CREATE INDEX IF NOT EXISTS idx_%s_agent_started ON %s (agent, started_at);
	`, s.tableName, s.tableName, s.tableName)

	_, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SqliteRunStore) Close() error {
	return s.db.Close()
}

// Save stores a run, overwriting any existing run with the same ID
func (s *SqliteRunStore) Save(ctx context.Context, run *store.Run) error {
	document, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, agent, status, started_at, document)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(agent, id) DO UPDATE SET
			status = excluded.status,
			started_at = excluded.started_at,
			document = excluded.document
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query,
		run.ID,
		run.Agent,
		run.Status,
		run.StartedAt,
		string(document),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// Load retrieves a run by ID
func (s *SqliteRunStore) Load(ctx context.Context, agent, runID string) (*store.Run, error) {
	query := fmt.Sprintf(`
		SELECT document FROM %s WHERE agent = ? AND id = ?
	`, s.tableName)

	var document string
	err := s.db.QueryRowContext(ctx, query, agent, runID).Scan(&document)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	var run store.Run
	if err := json.Unmarshal([]byte(document), &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s: %w", runID, err)
	}

	return &run, nil
}

// List returns all runs for an agent, most recent first
func (s *SqliteRunStore) List(ctx context.Context, agent string) ([]*store.Run, error) {
	query := fmt.Sprintf(`
		SELECT document FROM %s WHERE agent = ? ORDER BY started_at DESC
	`, s.tableName)

	rows, err := s.db.QueryContext(ctx, query, agent)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*store.Run
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}

		var run store.Run
		if err := json.Unmarshal([]byte(document), &run); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run: %w", err)
		}
		runs = append(runs, &run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}

	return runs, nil
}

// Latest returns the most recent run for an agent
func (s *SqliteRunStore) Latest(ctx context.Context, agent string) (*store.Run, error) {
	query := fmt.Sprintf(`
		SELECT document FROM %s WHERE agent = ? ORDER BY started_at DESC LIMIT 1
	`, s.tableName)

	var document string
	err := s.db.QueryRowContext(ctx, query, agent).Scan(&document)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to load latest run: %w", err)
	}

	var run store.Run
	if err := json.Unmarshal([]byte(document), &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}

	return &run, nil
}

// Delete removes a run
func (s *SqliteRunStore) Delete(ctx context.Context, agent, runID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE agent = ? AND id = ?", s.tableName)
	_, err := s.db.ExecContext(ctx, query, agent, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

// Clear removes all runs for an agent
func (s *SqliteRunStore) Clear(ctx context.Context, agent string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE agent = ?", s.tableName)
	_, err := s.db.ExecContext(ctx, query, agent)
	if err != nil {
		return fmt.Errorf("failed to clear runs: %w", err)
	}
	return nil
}
