// Package memory provides an in-process store.RunStore for tests and
// short-lived agents.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/adenhq/hive-go/store"
)

// MemoryRunStore implements store.RunStore with an in-process map.
// It is safe for concurrent use.
type MemoryRunStore struct {
	mu   sync.RWMutex
	runs map[string]map[string]*store.Run // agent -> run ID -> run
}

var _ store.RunStore = (*MemoryRunStore)(nil)

// NewMemoryRunStore creates a new in-memory run store
func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{
		runs: make(map[string]map[string]*store.Run),
	}
}

// Save stores a run, overwriting any existing run with the same ID
func (s *MemoryRunStore) Save(ctx context.Context, run *store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agentRuns, ok := s.runs[run.Agent]
	if !ok {
		agentRuns = make(map[string]*store.Run)
		s.runs[run.Agent] = agentRuns
	}

	clone := *run
	clone.Decisions = append([]store.Decision(nil), run.Decisions...)
	clone.Problems = append([]store.Problem(nil), run.Problems...)
	agentRuns[run.ID] = &clone

	return nil
}

// Load retrieves a run by ID
func (s *MemoryRunStore) Load(ctx context.Context, agent, runID string) (*store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[agent][runID]
	if !ok {
		return nil, store.ErrRunNotFound
	}

	clone := *run
	clone.Decisions = append([]store.Decision(nil), run.Decisions...)
	clone.Problems = append([]store.Problem(nil), run.Problems...)
	return &clone, nil
}

// List returns all runs for an agent, most recent first
func (s *MemoryRunStore) List(ctx context.Context, agent string) ([]*store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]*store.Run, 0, len(s.runs[agent]))
	for _, run := range s.runs[agent] {
		clone := *run
		clone.Decisions = append([]store.Decision(nil), run.Decisions...)
		clone.Problems = append([]store.Problem(nil), run.Problems...)
		runs = append(runs, &clone)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	return runs, nil
}

// Latest returns the most recent run for an agent
func (s *MemoryRunStore) Latest(ctx context.Context, agent string) (*store.Run, error) {
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
func (s *MemoryRunStore) Delete(ctx context.Context, agent, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.runs[agent], runID)
	return nil
}

// Clear removes all runs for an agent
func (s *MemoryRunStore) Clear(ctx context.Context, agent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.runs, agent)
	return nil
}
