package graph

import "context"

// StepVerdict is the value a debug hook returns to the executor before a
// node runs.
type StepVerdict string

const (
	// VerdictContinue lets the executor proceed with the node.
	VerdictContinue StepVerdict = "continue"

	// VerdictBreak suspends execution before the node runs. The executor
	// hands control to its Suspender and proceeds once it returns.
	VerdictBreak StepVerdict = "break"
)

// DebugHook is invoked once per node, strictly before the node's effects are
// applied and strictly in execution order. The inputs and memory maps are
// owned by the executor; hooks must treat them as read-only snapshots.
type DebugHook func(nodeID string, spec NodeSpec, inputs map[string]any, memory map[string]any) StepVerdict

// DebugHookSink is the capability an engine exposes to accept a debug hook.
// Engines without this capability run unsupervised.
type DebugHookSink interface {
	SetDebugHook(hook DebugHook)
}

// Suspender is invoked synchronously by the executor when a hook returns
// VerdictBreak. Execution does not proceed until Suspend returns.
type Suspender interface {
	Suspend(ctx context.Context)
}

// SuspendSink is the capability an engine exposes to accept a Suspender.
type SuspendSink interface {
	SetSuspender(s Suspender)
}
