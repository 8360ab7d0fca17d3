// Package file provides a store.RunStore backed by JSON documents on disk.
//
// Runs live under <base>/<agent>/runs/<run-id>.json, defaulting to
// ~/.hive/storage, so run history survives process restarts and can be
// inspected with ordinary shell tooling.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adenhq/hive-go/store"
)

// FileRunStore implements store.RunStore using one JSON file per run.
type FileRunStore struct {
	baseDir string
}

// FileOptions configuration for the file store
type FileOptions struct {
	BaseDir string // Default "~/.hive/storage"
}

var _ store.RunStore = (*FileRunStore)(nil)

// NewFileRunStore creates a new file-backed run store
func NewFileRunStore(opts FileOptions) (*FileRunStore, error) {
	baseDir := opts.BaseDir
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("unable to resolve home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".hive", "storage")
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create storage directory: %w", err)
	}

	return &FileRunStore{baseDir: baseDir}, nil
}

func (s *FileRunStore) runsDir(agent string) string {
	return filepath.Join(s.baseDir, agent, "runs")
}

func (s *FileRunStore) runPath(agent, runID string) string {
	return filepath.Join(s.runsDir(agent), runID+".json")
}

// Save stores a run, overwriting any existing run with the same ID
func (s *FileRunStore) Save(ctx context.Context, run *store.Run) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	dir := s.runsDir(run.Agent)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create runs directory: %w", err)
	}

	// Write-then-rename so readers never observe a half-written document.
	tmp, err := os.CreateTemp(dir, run.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write run: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.runPath(run.Agent, run.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store run: %w", err)
	}

	return nil
}

// Load retrieves a run by ID
func (s *FileRunStore) Load(ctx context.Context, agent, runID string) (*store.Run, error) {
	data, err := os.ReadFile(s.runPath(agent, runID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, store.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to read run: %w", err)
	}

	var run store.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s: %w", runID, err)
	}

	return &run, nil
}

// List returns all runs for an agent, most recent first
func (s *FileRunStore) List(ctx context.Context, agent string) ([]*store.Run, error) {
	entries, err := os.ReadDir(s.runsDir(agent))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*store.Run{}, nil
		}
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	runs := make([]*store.Run, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		run, err := s.Load(ctx, agent, strings.TrimSuffix(name, ".json"))
		if err != nil {
			// Skip documents another process is still writing or has corrupted.
			continue
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	return runs, nil
}

// Latest returns the most recent run for an agent
func (s *FileRunStore) Latest(ctx context.Context, agent string) (*store.Run, error) {
	runs, err := s.List(ctx, agent)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, store.ErrRunNotFound
	}
	return runs[0], nil
}

// Delete removes a run
func (s *FileRunStore) Delete(ctx context.Context, agent, runID string) error {
	err := os.Remove(s.runPath(agent, runID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

// Clear removes all runs for an agent
func (s *FileRunStore) Clear(ctx context.Context, agent string) error {
	err := os.RemoveAll(s.runsDir(agent))
	if err != nil {
		return fmt.Errorf("failed to clear runs: %w", err)
	}
	return nil
}

// ListAgents returns the names of all agents that have stored runs.
func (s *FileRunStore) ListAgents() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read storage directory: %w", err)
	}

	agents := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.baseDir, entry.Name(), "runs")); err == nil {
			agents = append(agents, entry.Name())
		}
	}

	sort.Strings(agents)
	return agents, nil
}
