// Package postgres provides a store.RunStore backed by PostgreSQL via pgx.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adenhq/hive-go/store"
)

// DBPool abstracts the pgx pool so the store can be tested with pgxmock.
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresRunStore implements store.RunStore using PostgreSQL
type PostgresRunStore struct {
	pool      DBPool
	tableName string
}

// PostgresOptions configuration for PostgreSQL connection
type PostgresOptions struct {
	ConnString string
	TableName  string // Default "runs"
}

var _ store.RunStore = (*PostgresRunStore)(nil)

// NewPostgresRunStore creates a new PostgreSQL run store
func NewPostgresRunStore(ctx context.Context, opts PostgresOptions) (*PostgresRunStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	s := NewPostgresRunStoreWithPool(pool, opts.TableName)
	if err := s.InitSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// NewPostgresRunStoreWithPool creates a store on an existing pool. The
// caller is responsible for schema initialization.
func NewPostgresRunStoreWithPool(pool DBPool, tableName string) *PostgresRunStore {
	if tableName == "" {
		tableName = "runs"
	}
	return &PostgresRunStore{
		pool:      pool,
		tableName: tableName,
	}
}

// InitSchema creates the necessary table if it doesn't exist
func (s *PostgresRunStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT NOT NULL,
			agent TEXT NOT NULL,
			status TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			document JSONB NOT NULL,
			PRIMARY KEY (agent, id)
		);
		CREATE INDEX IF NOT EXISTS idx_%s_agent_started ON %s (agent, started_at DESC);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *PostgresRunStore) Close() {
	s.pool.Close()
}

// Save stores a run, overwriting any existing run with the same ID
func (s *PostgresRunStore) Save(ctx context.Context, run *store.Run) error {
	document, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, agent, status, started_at, document)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (agent, id) DO UPDATE SET
			status = EXCLUDED.status,
			started_at = EXCLUDED.started_at,
			document = EXCLUDED.document
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query,
		run.ID,
		run.Agent,
		run.Status,
		run.StartedAt,
		document,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// Load retrieves a run by ID
func (s *PostgresRunStore) Load(ctx context.Context, agent, runID string) (*store.Run, error) {
	query := fmt.Sprintf(`
		SELECT document FROM %s WHERE agent = $1 AND id = $2
	`, s.tableName)

	var document []byte
	err := s.pool.QueryRow(ctx, query, agent, runID).Scan(&document)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	var run store.Run
	if err := json.Unmarshal(document, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s: %w", runID, err)
	}

	return &run, nil
}

// List returns all runs for an agent, most recent first
func (s *PostgresRunStore) List(ctx context.Context, agent string) ([]*store.Run, error) {
	query := fmt.Sprintf(`
		SELECT document FROM %s WHERE agent = $1 ORDER BY started_at DESC
	`, s.tableName)

	rows, err := s.pool.Query(ctx, query, agent)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*store.Run
	for rows.Next() {
		var document []byte
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}

		var run store.Run
		if err := json.Unmarshal(document, &run); err != nil {
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
func (s *PostgresRunStore) Latest(ctx context.Context, agent string) (*store.Run, error) {
	query := fmt.Sprintf(`
		SELECT document FROM %s WHERE agent = $1 ORDER BY started_at DESC LIMIT 1
	`, s.tableName)

	var document []byte
	err := s.pool.QueryRow(ctx, query, agent).Scan(&document)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to load latest run: %w", err)
	}

	var run store.Run
	if err := json.Unmarshal(document, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}

	return &run, nil
}

// Delete removes a run
func (s *PostgresRunStore) Delete(ctx context.Context, agent, runID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE agent = $1 AND id = $2", s.tableName)
	if _, err := s.pool.Exec(ctx, query, agent, runID); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

// Clear removes all runs for an agent
func (s *PostgresRunStore) Clear(ctx context.Context, agent string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE agent = $1", s.tableName)
	if _, err := s.pool.Exec(ctx, query, agent); err != nil {
		return fmt.Errorf("failed to clear runs: %w", err)
	}
	return nil
}
