package debug

import (
	"context"
	"testing"

	"github.com/adenhq/hive-go/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spec(id, name string) graph.NodeSpec {
	return graph.NodeSpec{ID: id, Name: name}
}

func TestSession_StartsPaused(t *testing.T) {
	s := NewSession()

	verdict := s.OnStep("A", spec("A", "Node A"), map[string]any{"x": 1}, map[string]any{"m": 1})
	assert.Equal(t, graph.VerdictBreak, verdict)
}

func TestSession_VerdictInvariant(t *testing.T) {
	// break iff pauseOnNext at entry or node is breakpointed at entry
	s := NewSession()
	s.Resume()
	s.AddBreakpoint("C")

	assert.Equal(t, graph.VerdictContinue, s.OnStep("A", spec("A", "A"), nil, nil))
	assert.Equal(t, graph.VerdictContinue, s.OnStep("B", spec("B", "B"), nil, nil))
	assert.Equal(t, graph.VerdictBreak, s.OnStep("C", spec("C", "C"), nil, nil))
}

func TestSession_StepDoesNotPersist(t *testing.T) {
	s := NewSession()
	s.Resume()

	s.Step()
	assert.Equal(t, graph.VerdictBreak, s.OnStep("A", spec("A", "A"), nil, nil))
	// The pause flag is consumed by the break; the next call continues.
	assert.Equal(t, graph.VerdictContinue, s.OnStep("B", spec("B", "B"), nil, nil))
}

func TestSession_ResumeKeepsBreakpoints(t *testing.T) {
	s := NewSession()
	s.AddBreakpoint("B")
	s.Resume()

	assert.Equal(t, graph.VerdictBreak, s.OnStep("B", spec("B", "B"), nil, nil))
}

func TestSession_BreakpointManagement(t *testing.T) {
	s := NewSession()

	s.AddBreakpoint("b")
	s.AddBreakpoint("a")
	s.AddBreakpoint("a") // idempotent
	assert.Equal(t, []string{"a", "b"}, s.Breakpoints())

	assert.True(t, s.RemoveBreakpoint("a"))
	assert.False(t, s.RemoveBreakpoint("never-added"))
	assert.True(t, s.RemoveBreakpoint("b"))
	assert.Empty(t, s.Breakpoints())
}

func TestSession_SnapshotBeforeFirstStep(t *testing.T) {
	s := NewSession()

	assert.Nil(t, s.Current())
	assert.NotNil(t, s.Context())
	assert.Empty(t, s.Context())
	assert.NotNil(t, s.MemorySnapshot())
	assert.Empty(t, s.MemorySnapshot())
}

func TestSession_SnapshotReplacedEveryStep(t *testing.T) {
	s := NewSession()
	s.Resume()

	// Snapshots are stored even when continuing.
	s.OnStep("A", spec("A", "First"), map[string]any{"x": 1}, map[string]any{"m": 1})
	assert.Equal(t, map[string]any{"x": 1}, s.Context())

	s.OnStep("B", spec("B", "Second"), map[string]any{"x": 2}, map[string]any{"m": 2})
	require.NotNil(t, s.Current())
	assert.Equal(t, "B", s.Current().NodeID)
	assert.Equal(t, "Second", s.Current().NodeName)
	assert.Equal(t, map[string]any{"x": 2}, s.Context())
	assert.Equal(t, map[string]any{"m": 2}, s.MemorySnapshot())
}

func TestSession_CopyOnCapture(t *testing.T) {
	s := NewSession()
	memory := map[string]any{"m": 1}

	s.OnStep("A", spec("A", "A"), map[string]any{"x": 1}, memory)

	// Engine mutates its live memory after the hook returns.
	memory["m"] = 99
	assert.Equal(t, 1, s.MemorySnapshot()["m"])
}

func TestSession_ScenarioFromColdStart(t *testing.T) {
	s := NewSession() // no breakpoints, pending pause defaults to true

	verdict := s.OnStep("A", spec("A", "A"), map[string]any{"x": 1}, map[string]any{"m": 1})
	assert.Equal(t, graph.VerdictBreak, verdict)
	assert.Equal(t, map[string]any{"x": 1}, s.Context())

	s.Resume()
	verdict = s.OnStep("B", spec("B", "B"), map[string]any{"x": 2}, map[string]any{"m": 2})
	assert.Equal(t, graph.VerdictContinue, verdict)

	s.AddBreakpoint("C")
	verdict = s.OnStep("C", spec("C", "C"), map[string]any{"x": 3}, map[string]any{"m": 3})
	assert.Equal(t, graph.VerdictBreak, verdict)
}

type hookless struct{}

func TestSession_AttachCapabilityCheck(t *testing.T) {
	s := NewSession()

	// An engine without the capability is tolerated, not fatal.
	assert.False(t, s.Attach(hookless{}))

	e := graph.NewExecutor()
	assert.True(t, s.Attach(e))
}

func TestSession_EndToEndWithExecutor(t *testing.T) {
	e := graph.NewExecutor()
	for _, id := range []string{"A", "B", "C"} {
		id := id
		e.AddNode(graph.NodeSpec{
			ID:   id,
			Name: "Node " + id,
			Run: func(ctx context.Context, inputs map[string]any) (map[string]any, error) {
				return map[string]any{"last": id}, nil
			},
		})
	}
	e.SetEntryPoint("A")
	e.AddEdge("A", "B")
	e.AddEdge("B", "C")
	e.AddEdge("C", graph.END)

	s := NewSession()
	require.True(t, s.Attach(e))
	s.Resume()
	s.AddBreakpoint("C")

	var pausedAt []string
	e.SetSuspender(suspenderFunc(func(ctx context.Context) {
		pausedAt = append(pausedAt, s.Current().NodeID)
		s.Resume()
	}))

	memory, err := e.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "C", memory["last"])
	assert.Equal(t, []string{"C"}, pausedAt)
	// Snapshot reflects the last visited node, captured before its effects.
	assert.Equal(t, "C", s.Current().NodeID)
	assert.Equal(t, "B", s.MemorySnapshot()["last"])
}

type suspenderFunc func(ctx context.Context)

func (f suspenderFunc) Suspend(ctx context.Context) { f(ctx) }
