// Package graph implements the node-graph execution engine.
//
// An Executor holds NodeSpecs connected by static or conditional edges and
// runs them serially from an entry point until the END sentinel. Nodes read
// an input context derived from shared memory (InputKeys) and write their
// results back into it (OutputKeys).
//
//	e := graph.NewExecutor()
//	e.AddNode(graph.NodeSpec{
//		ID:   "classify",
//		Name: "Classify Request",
//		Run: func(ctx context.Context, inputs map[string]any) (map[string]any, error) {
//			return map[string]any{"category": "billing"}, nil
//		},
//	})
//	e.AddEdge("classify", graph.END)
//	e.SetEntryPoint("classify")
//
//	memory, err := e.Run(ctx, map[string]any{"request": "refund please"})
//
// # Debug capability
//
// The executor implements DebugHookSink and SuspendSink. A registered
// DebugHook is called once per node, before the node's effects are applied,
// and returns a StepVerdict. On VerdictBreak the executor synchronously
// invokes the registered Suspender before proceeding; "pausing" is nothing
// more than the executor not advancing until Suspend returns. The debug
// package builds an interactive breakpoint debugger on top of these two
// capabilities.
//
// # Run recording
//
// With SetRecorder the executor appends one store.Decision per node visit
// (intent, outcome, latency) and a store.Problem per failure, producing the
// run documents consumed by the audit-trail tool.
package graph
