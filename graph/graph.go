package graph

import (
	"context"
	"errors"
)

// END is a special constant used to represent the end node in the graph.
const END = "END"

var (
	// ErrEntryPointNotSet is returned when the entry point of the graph is not set.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when a node is not found in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned when no outgoing edge is found for a node.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")
)

// NodeSpec describes one unit of work in the execution graph.
type NodeSpec struct {
	// ID is the stable identifier for the node, unique within a graph.
	ID string

	// Name is the human-readable display name.
	Name string

	// Description describes the functionality of the node.
	Description string

	// InputKeys selects which shared-memory keys form the node's input
	// context. Empty means the node sees the whole memory.
	InputKeys []string

	// OutputKeys restricts which returned keys are merged back into shared
	// memory. Empty means all returned keys are merged.
	OutputKeys []string

	// Run executes the node against its input context and returns the
	// values to merge into shared memory.
	Run func(ctx context.Context, inputs map[string]any) (map[string]any, error)
}

// Edge represents a static edge between two nodes.
type Edge struct {
	// From is the ID of the node from which the edge originates.
	From string

	// To is the ID of the node to which the edge points.
	To string
}

// Condition selects the next node ID based on the current shared memory.
type Condition func(ctx context.Context, memory map[string]any) string
