package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when a requested run does not exist.
var ErrRunNotFound = errors.New("run not found")

// Run statuses as persisted in run documents.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Problem severities.
const (
	SeverityMinor    = "minor"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Outcome captures what happened after a decision was acted on.
type Outcome struct {
	Success    bool   `json:"success"`
	Summary    string `json:"summary,omitempty"`
	Result     any    `json:"result,omitempty"`
	Error      string `json:"error,omitempty"`
	TokensUsed int    `json:"tokens_used,omitempty"`
	LatencyMS  int64  `json:"latency_ms,omitempty"`
}

// Decision is one step of an agent run: which node ran, why, and how it went.
type Decision struct {
	NodeID         string   `json:"node_id"`
	Intent         string   `json:"intent,omitempty"`
	ChosenOptionID string   `json:"chosen_option_id,omitempty"`
	Reasoning      string   `json:"reasoning,omitempty"`
	Outcome        *Outcome `json:"outcome,omitempty"`
}

// Problem records an issue encountered during a run.
type Problem struct {
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// Run is the persisted record of one agent execution.
type Run struct {
	ID              string     `json:"id"`
	Agent           string     `json:"agent"`
	Status          string     `json:"status"`
	GoalDescription string     `json:"goal_description,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	Decisions       []Decision `json:"decisions"`
	Problems        []Problem  `json:"problems,omitempty"`
}

// RunStore defines the interface for run persistence
type RunStore interface {
	// Save stores a run, overwriting any existing run with the same ID
	Save(ctx context.Context, run *Run) error

	// Load retrieves a run by ID
	Load(ctx context.Context, agent, runID string) (*Run, error)

	// List returns all runs for an agent, most recent first
	List(ctx context.Context, agent string) ([]*Run, error)

	// Latest returns the most recent run for an agent
	Latest(ctx context.Context, agent string) (*Run, error)

	// Delete removes a run
	Delete(ctx context.Context, agent, runID string) error

	// Clear removes all runs for an agent
	Clear(ctx context.Context, agent string) error
}

// NewRunID generates a unique run identifier
func NewRunID() string {
	return "run_" + uuid.New().String()
}

// RunRecorder accumulates decisions and problems while an execution is in
// flight and produces the Run document the audit tooling reads.
// It is safe for concurrent use.
type RunRecorder struct {
	mu  sync.Mutex
	run Run
}

// NewRunRecorder starts recording a run for the given agent.
func NewRunRecorder(agent, goalDescription string) *RunRecorder {
	return &RunRecorder{
		run: Run{
			ID:              NewRunID(),
			Agent:           agent,
			Status:          RunStatusRunning,
			GoalDescription: goalDescription,
			StartedAt:       time.Now().UTC(),
			Decisions:       []Decision{},
		},
	}
}

// RecordDecision appends a decision to the run.
func (r *RunRecorder) RecordDecision(d Decision) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.run.Decisions = append(r.run.Decisions, d)
}

// RecordProblem appends a problem to the run.
func (r *RunRecorder) RecordProblem(p Problem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.run.Problems = append(r.run.Problems, p)
}

// Complete marks the run finished with the given status.
func (r *RunRecorder) Complete(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	r.run.Status = status
	r.run.CompletedAt = &now
}

// Run returns a copy of the run recorded so far.
func (r *RunRecorder) Run() Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	run := r.run
	run.Decisions = append([]Decision(nil), r.run.Decisions...)
	run.Problems = append([]Problem(nil), r.run.Problems...)
	return run
}

// Flush persists the run recorded so far to the given store.
func (r *RunRecorder) Flush(ctx context.Context, s RunStore) error {
	run := r.Run()
	return s.Save(ctx, &run)
}
