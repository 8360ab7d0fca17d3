// Package debug implements an interactive, breakpoint-driven controller for
// the graph execution engine.
//
// A Session attaches a hook to any engine exposing the graph.DebugHookSink
// capability. The hook is consulted once per node, before the node runs, and
// answers with a verdict: break when a single-step is pending or the node is
// breakpointed, continue otherwise. The session never blocks inside the
// hook; suspension is the engine's own behavior upon a break verdict.
//
// The CLI is the operator front-end. It implements graph.Suspender, so a
// break verdict lands in its command loop, nested inside the engine's call
// frame. Commands inspect the captured snapshot (memory, context, node
// info) and manage breakpoints; step and continue return control to the
// engine; quit terminates the process.
//
//	executor := graph.NewExecutor()
//	// ... build the graph ...
//
//	session := debug.NewSession()
//	cli := debug.NewCLI(session)
//	cli.Install(executor)
//
//	memory, err := executor.Run(ctx, initial)
//
// A fresh session starts paused, so the run stops on the first node and the
// operator decides how to proceed.
package debug
