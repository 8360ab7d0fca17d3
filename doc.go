// Hive Go - Debuggable Agent Graphs in Go
//
// Hive Go is a framework for building node-graph agents that can be paused,
// inspected and resumed interactively while they run. An executor walks a
// graph of nodes over a shared memory map; a breakpoint debugger attaches
// to the executor through small capability interfaces and suspends execution
// before any node of interest.
//
// # Quick Start
//
// Install the package:
//
//	go get github.com/adenhq/hive-go
//
// Basic example:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/adenhq/hive-go/debug"
//		"github.com/adenhq/hive-go/graph"
//	)
//
//	func main() {
//		g := graph.NewExecutor()
//		g.AddNode(graph.NodeSpec{
//			ID: "plan",
//			Run: func(ctx context.Context, inputs map[string]any) (map[string]any, error) {
//				return map[string]any{"plan": "outline first"}, nil
//			},
//		})
//		g.SetEntryPoint("plan")
//		g.AddEdge("plan", graph.END)
//
//		// Attach the interactive debugger; execution pauses before the
//		// first node and a (debug) prompt appears.
//		cli := debug.NewCLI(debug.NewSession())
//		cli.Install(g)
//
//		memory, err := g.Run(context.Background(), map[string]any{"goal": "demo"})
//		fmt.Println(memory, err)
//	}
//
// # Key Features
//
//   - Serial Graph Execution: nodes run one at a time over shared memory,
//     with input/output key filtering and retry policies
//   - Interactive Debugging: step, continue, breakpoints, and memory
//     inspection through a pdb-style command loop
//   - Run Auditing: every execution can record its decisions and problems
//     to a pluggable store (file, SQLite, Redis, PostgreSQL)
//   - LLM Providers: OpenAI, any langchaingo model, and a deterministic
//     mock for tests
//   - Agent Tools: audit trail timelines and a robots-aware web scraper
//
// # Packages
//
//   - graph: the executor and its debug capability interfaces
//   - debug: the breakpoint session and interactive CLI
//   - store: run document persistence and its backends
//   - llm: language-model providers
//   - tool: agent tools
//   - log: leveled logging used across the framework
package hive
