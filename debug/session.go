package debug

import (
	"maps"
	"sort"

	"github.com/adenhq/hive-go/graph"
	"github.com/adenhq/hive-go/log"
)

// StepSnapshot captures the node most recently presented to the session's
// hook: its identity plus copies of the input context and shared memory at
// that instant. Exactly one snapshot is live at a time; each hook call
// replaces it.
type StepSnapshot struct {
	NodeID   string
	NodeName string
	Context  map[string]any
	Memory   map[string]any
}

// Session controls execution flow for one engine run: step-by-step
// execution, breakpoints and state inspection. It is created once per
// debugging session and bound to a single engine via Attach.
//
// A new session starts with the pause flag set, so the first node presented
// to the hook breaks and hands control to the operator.
type Session struct {
	breakpoints map[string]struct{}
	pauseOnNext bool
	current     *StepSnapshot
	logger      log.Logger
}

// NewSession creates a session that pauses before the first node.
func NewSession() *Session {
	return &Session{
		breakpoints: make(map[string]struct{}),
		pauseOnNext: true,
		logger:      log.GetDefaultLogger(),
	}
}

// SetLogger sets the logger used for hook diagnostics.
func (s *Session) SetLogger(logger log.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Attach registers the session's hook with the engine, if the engine exposes
// the debug-hook capability. The check happens once, here; an engine without
// the capability simply runs unsupervised and Attach reports false.
func (s *Session) Attach(engine any) bool {
	sink, ok := engine.(graph.DebugHookSink)
	if !ok {
		s.logger.Warn("engine does not accept a debug hook; running unsupervised")
		return false
	}
	sink.SetDebugHook(s.OnStep)
	return true
}

// AddBreakpoint sets a breakpoint at the given node ID. Idempotent; the ID
// is not validated against the graph, so breakpoints may name nodes that are
// never reached.
func (s *Session) AddBreakpoint(nodeID string) {
	s.breakpoints[nodeID] = struct{}{}
}

// RemoveBreakpoint removes a breakpoint. It reports whether a breakpoint
// existed at that node.
func (s *Session) RemoveBreakpoint(nodeID string) bool {
	if _, ok := s.breakpoints[nodeID]; !ok {
		return false
	}
	delete(s.breakpoints, nodeID)
	return true
}

// Breakpoints returns the current breakpoints in sorted order.
func (s *Session) Breakpoints() []string {
	ids := make([]string, 0, len(s.breakpoints))
	for id := range s.breakpoints {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Step requests a pause before the next node, regardless of breakpoints.
// The effect is observed at the next OnStep call, not retroactively.
func (s *Session) Step() {
	s.pauseOnNext = true
}

// Resume clears the pending pause so execution continues until the next
// breakpoint. Breakpoints are independent of the pause flag and still break.
func (s *Session) Resume() {
	s.pauseOnNext = false
}

// OnStep is the hook the engine calls once per node, before the node's
// effects are applied. It stores a fresh snapshot unconditionally, so
// inspection always reflects the most recently visited node, and returns
// VerdictBreak iff a pause was pending or the node is breakpointed. It
// never blocks; suspension is the engine's job.
func (s *Session) OnStep(nodeID string, spec graph.NodeSpec, inputs, memory map[string]any) graph.StepVerdict {
	_, breakpointed := s.breakpoints[nodeID]
	shouldBreak := s.pauseOnNext || breakpointed

	s.current = &StepSnapshot{
		NodeID:   nodeID,
		NodeName: spec.Name,
		Context:  cloneMap(inputs),
		Memory:   cloneMap(memory),
	}

	if shouldBreak {
		s.pauseOnNext = false // consume the single-step request
		s.logger.Debug("breaking at node %q", nodeID)
		return graph.VerdictBreak
	}

	return graph.VerdictContinue
}

// Current returns the snapshot of the most recently visited node, or nil if
// no node has been presented yet.
func (s *Session) Current() *StepSnapshot {
	return s.current
}

// Context returns the input context of the current snapshot, or an empty
// map before the first step.
func (s *Session) Context() map[string]any {
	if s.current == nil {
		return map[string]any{}
	}
	return s.current.Context
}

// MemorySnapshot returns the shared-memory snapshot of the current step, or
// an empty map before the first step.
func (s *Session) MemorySnapshot() map[string]any {
	if s.current == nil {
		return map[string]any{}
	}
	return s.current.Memory
}

// cloneMap copies the engine-owned map so the snapshot stays stable after
// the engine mutates its live memory.
func cloneMap(m map[string]any) map[string]any {
	cloned := make(map[string]any, len(m))
	maps.Copy(cloned, m)
	return cloned
}
