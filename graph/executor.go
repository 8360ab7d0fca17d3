package graph

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/adenhq/hive-go/log"
	"github.com/adenhq/hive-go/store"
)

// RetryPolicy defines how to handle node failures
type RetryPolicy struct {
	MaxRetries      int
	BackoffStrategy BackoffStrategy
	RetryableErrors []string
}

// BackoffStrategy defines different backoff strategies
type BackoffStrategy int

const (
	FixedBackoff BackoffStrategy = iota
	ExponentialBackoff
	LinearBackoff
)

// Executor runs a node graph serially: one node at a time, in edge order,
// against a shared memory map. Node visits are never concurrent, so a debug
// hook observing the executor needs no internal locking.
type Executor struct {
	nodes            map[string]NodeSpec
	edges            []Edge
	conditionalEdges map[string]Condition
	entryPoint       string
	retryPolicy      *RetryPolicy

	hook      DebugHook
	suspender Suspender
	recorder  *store.RunRecorder
	logger    log.Logger
}

var (
	_ DebugHookSink = (*Executor)(nil)
	_ SuspendSink   = (*Executor)(nil)
)

// NewExecutor creates an empty executor.
func NewExecutor() *Executor {
	return &Executor{
		nodes:            make(map[string]NodeSpec),
		conditionalEdges: make(map[string]Condition),
		logger:           log.GetDefaultLogger(),
	}
}

// AddNode adds a node to the graph. The spec's ID must be unique; adding a
// spec with an existing ID replaces the previous one.
func (e *Executor) AddNode(spec NodeSpec) {
	if spec.Name == "" {
		spec.Name = spec.ID
	}
	e.nodes[spec.ID] = spec
}

// AddEdge adds a static edge between the "from" and "to" nodes.
func (e *Executor) AddEdge(from, to string) {
	e.edges = append(e.edges, Edge{From: from, To: to})
}

// AddConditionalEdge adds an edge whose target is determined at runtime.
func (e *Executor) AddConditionalEdge(from string, condition Condition) {
	e.conditionalEdges[from] = condition
}

// SetEntryPoint sets the entry point node ID for the graph.
func (e *Executor) SetEntryPoint(id string) {
	e.entryPoint = id
}

// SetRetryPolicy sets the retry policy for failed nodes.
func (e *Executor) SetRetryPolicy(policy *RetryPolicy) {
	e.retryPolicy = policy
}

// SetLogger sets the logger used for execution diagnostics.
func (e *Executor) SetLogger(logger log.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// SetDebugHook registers the callback invoked before each node executes.
// Only one hook is held; registering again replaces the previous hook.
func (e *Executor) SetDebugHook(hook DebugHook) {
	e.hook = hook
}

// SetSuspender registers the component that takes over when the debug hook
// returns VerdictBreak.
func (e *Executor) SetSuspender(s Suspender) {
	e.suspender = s
}

// SetRecorder attaches a run recorder; when set, the executor records one
// decision per node visit and a problem per node failure.
func (e *Executor) SetRecorder(r *store.RunRecorder) {
	e.recorder = r
}

// Nodes returns the specs of all registered nodes.
func (e *Executor) Nodes() []NodeSpec {
	specs := make([]NodeSpec, 0, len(e.nodes))
	for _, spec := range e.nodes {
		specs = append(specs, spec)
	}
	return specs
}

// Run executes the graph from the entry point until END, starting from the
// given initial memory. It returns the final shared memory.
func (e *Executor) Run(ctx context.Context, initial map[string]any) (map[string]any, error) {
	if e.entryPoint == "" {
		return nil, ErrEntryPointNotSet
	}

	memory := make(map[string]any, len(initial))
	maps.Copy(memory, initial)

	current := e.entryPoint
	for current != END {
		if err := ctx.Err(); err != nil {
			return memory, err
		}

		node, ok := e.nodes[current]
		if !ok {
			return memory, fmt.Errorf("%w: %s", ErrNodeNotFound, current)
		}

		inputs := e.inputContext(node, memory)

		if e.hook != nil {
			verdict := e.hook(node.ID, node, inputs, memory)
			if verdict == VerdictBreak && e.suspender != nil {
				e.logger.Debug("execution suspended before node %q", node.ID)
				e.suspender.Suspend(ctx)
			}
		}

		e.logger.Debug("executing node %q", node.ID)
		started := time.Now()
		outputs, err := e.runWithRetry(ctx, node, inputs)
		latency := time.Since(started).Milliseconds()

		if err != nil {
			e.logger.Error("node %q failed: %v", node.ID, err)
			e.recordDecision(node, &store.Outcome{
				Success:   false,
				Error:     err.Error(),
				LatencyMS: latency,
			})
			e.recordProblem(store.Problem{
				Severity:    store.SeverityCritical,
				Description: fmt.Sprintf("node %s failed: %v", node.ID, err),
			})
			return memory, fmt.Errorf("error in node %s: %w", node.ID, err)
		}

		e.mergeOutputs(node, memory, outputs)
		e.recordDecision(node, &store.Outcome{
			Success:   true,
			Summary:   fmt.Sprintf("node %s completed", node.ID),
			LatencyMS: latency,
		})

		next, err := e.nextNode(ctx, current, memory)
		if err != nil {
			return memory, err
		}
		current = next
	}

	return memory, nil
}

// inputContext builds the node's input view of shared memory. The returned
// map is always a copy so nodes and hooks cannot alias live memory.
func (e *Executor) inputContext(node NodeSpec, memory map[string]any) map[string]any {
	inputs := make(map[string]any)
	if len(node.InputKeys) == 0 {
		maps.Copy(inputs, memory)
		return inputs
	}
	for _, key := range node.InputKeys {
		if value, ok := memory[key]; ok {
			inputs[key] = value
		}
	}
	return inputs
}

// mergeOutputs writes node outputs back into shared memory, restricted to
// OutputKeys when declared.
func (e *Executor) mergeOutputs(node NodeSpec, memory, outputs map[string]any) {
	if len(node.OutputKeys) == 0 {
		maps.Copy(memory, outputs)
		return
	}
	for _, key := range node.OutputKeys {
		if value, ok := outputs[key]; ok {
			memory[key] = value
		}
	}
}

// nextNode determines the node to run after current, preferring a
// conditional edge over static edges.
func (e *Executor) nextNode(ctx context.Context, current string, memory map[string]any) (string, error) {
	if condition, ok := e.conditionalEdges[current]; ok {
		next := condition(ctx, memory)
		if next == "" {
			return "", fmt.Errorf("conditional edge returned empty next node from %s", current)
		}
		return next, nil
	}

	for _, edge := range e.edges {
		if edge.From == current {
			return edge.To, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNoOutgoingEdge, current)
}

// runWithRetry executes a node with retry logic based on the retry policy.
func (e *Executor) runWithRetry(ctx context.Context, node NodeSpec, inputs map[string]any) (map[string]any, error) {
	var lastErr error

	maxAttempts := 1
	if e.retryPolicy != nil {
		maxAttempts = e.retryPolicy.MaxRetries + 1 // +1 for initial attempt
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		outputs, err := node.Run(ctx, inputs)
		if err == nil {
			return outputs, nil
		}

		lastErr = err

		if e.retryPolicy != nil && attempt < maxAttempts-1 && e.isRetryableError(err) {
			delay := e.backoffDelay(attempt)
			e.logger.Warn("node %q attempt %d failed, retrying in %s: %v", node.ID, attempt+1, delay, err)
			if delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			continue
		}

		break
	}

	return nil, lastErr
}

// isRetryableError checks if an error matches the retry policy's patterns.
func (e *Executor) isRetryableError(err error) bool {
	if e.retryPolicy == nil {
		return false
	}
	msg := err.Error()
	for _, pattern := range e.retryPolicy.RetryableErrors {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// backoffDelay calculates the delay for a retry attempt.
func (e *Executor) backoffDelay(attempt int) time.Duration {
	if e.retryPolicy == nil {
		return 0
	}

	baseDelay := time.Second

	switch e.retryPolicy.BackoffStrategy {
	case FixedBackoff:
		return baseDelay
	case ExponentialBackoff:
		return baseDelay * time.Duration(1<<attempt)
	case LinearBackoff:
		return baseDelay * time.Duration(attempt+1)
	default:
		return baseDelay
	}
}

func (e *Executor) recordDecision(node NodeSpec, outcome *store.Outcome) {
	if e.recorder == nil {
		return
	}
	e.recorder.RecordDecision(store.Decision{
		NodeID:  node.ID,
		Intent:  node.Description,
		Outcome: outcome,
	})
}

func (e *Executor) recordProblem(p store.Problem) {
	if e.recorder == nil {
		return
	}
	e.recorder.RecordProblem(p)
}
