package llm

import "context"

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Tool describes a callable tool offered to the model.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema,omitempty"`
}

// ToolUse is a model request to invoke a tool.
type ToolUse struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

// ToolResult carries the outcome of a tool invocation back to the model.
type ToolResult struct {
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error,omitempty"`
}

// ToolExecutor runs a requested tool call and returns its result.
type ToolExecutor func(use ToolUse) ToolResult

// ResponseFormat requests structured output. Type is "json_object" or
// "json_schema"; Schema holds the JSON schema for the latter.
type ResponseFormat struct {
	Type   string         `json:"type"`
	Name   string         `json:"name,omitempty"`
	Schema map[string]any `json:"schema,omitempty"`
}

// Response is a completed model turn.
type Response struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	StopReason   string `json:"stop_reason"`
}

// StreamChunk is one increment of a streaming completion.
type StreamChunk struct {
	Content      string `json:"content"`
	IsComplete   bool   `json:"is_complete"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	Model        string `json:"model"`
	StopReason   string `json:"stop_reason,omitempty"`
}

// CompleteRequest bundles the arguments of a completion call.
type CompleteRequest struct {
	Messages       []Message
	System         string
	Tools          []Tool
	MaxTokens      int
	ResponseFormat *ResponseFormat
	JSONMode       bool
}

// Provider abstracts an LLM backend. Node behavior consumes providers as
// opaque completion functions; nothing in the engine or the debugger depends
// on which provider is wired in.
type Provider interface {
	// Complete generates a single completion.
	Complete(ctx context.Context, req CompleteRequest) (*Response, error)

	// StreamComplete generates a completion incrementally. The returned
	// channel is closed after the final chunk. The optional callback is
	// invoked for every chunk as it is produced.
	StreamComplete(ctx context.Context, req CompleteRequest, callback func(StreamChunk)) (<-chan StreamChunk, error)

	// CompleteWithTools runs a tool-use loop: the model may request tool
	// invocations, which are executed via the executor and fed back until
	// the model produces a final response or maxIterations is reached.
	CompleteWithTools(ctx context.Context, req CompleteRequest, executor ToolExecutor, maxIterations int) (*Response, error)
}
