package llm

import (
	"context"
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"time"
)

// MockProvider generates placeholder responses without making real API
// calls, allowing structural validation and graph execution testing without
// incurring costs or requiring API keys.
//
// When structured output is requested, the provider inspects the response
// format (or the system prompt) for the expected output keys and returns a
// JSON document with a mock value per key.
type MockProvider struct {
	// Model is the model name reported in responses.
	Model string

	// StreamDelay is the simulated delay between stream chunks.
	StreamDelay time.Duration
}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates a mock provider reporting the given model name.
// An empty model defaults to "mock-model".
func NewMockProvider(model string) *MockProvider {
	if model == "" {
		model = "mock-model"
	}
	return &MockProvider{Model: model}
}

var (
	outputKeysPattern = regexp.MustCompile(`(?i)output_keys:\s*\[(.*?)\]`)
	keysPattern       = regexp.MustCompile(`(?i)(?:keys|with keys):\s*([a-zA-Z0-9_,\s]+)`)
	jsonKeyPattern    = regexp.MustCompile(`"([a-zA-Z0-9_]+)":\s*`)
)

// extractOutputKeys pulls expected output keys from a system prompt.
// Recognized patterns, in priority order:
//
//	output_keys: [key1, key2]
//	keys: key1, key2   /   Generate JSON with keys: key1, key2
//	an inline JSON example: {"key1": ..., "key2": ...}
func extractOutputKeys(system string) []string {
	if match := outputKeysPattern.FindStringSubmatch(system); match != nil {
		var keys []string
		for _, part := range strings.Split(match[1], ",") {
			key := strings.Trim(strings.TrimSpace(part), `"'`)
			if key != "" {
				keys = append(keys, key)
			}
		}
		return keys
	}

	if match := keysPattern.FindStringSubmatch(system); match != nil {
		var keys []string
		for _, part := range strings.Split(match[1], ",") {
			if key := strings.TrimSpace(part); key != "" {
				keys = append(keys, key)
			}
		}
		return keys
	}

	if matches := jsonKeyPattern.FindAllStringSubmatch(system, -1); matches != nil {
		seen := make(map[string]struct{})
		var keys []string
		for _, match := range matches {
			if _, ok := seen[match[1]]; !ok {
				seen[match[1]] = struct{}{}
				keys = append(keys, match[1])
			}
		}
		sort.Strings(keys)
		return keys
	}

	return nil
}

// mockResponse builds the placeholder content for a request.
func (p *MockProvider) mockResponse(req CompleteRequest) string {
	if !req.JSONMode && req.ResponseFormat == nil {
		return "This is a mock response for testing purposes."
	}

	var keys []string

	// Prefer keys declared in a JSON schema response format.
	if req.ResponseFormat != nil && req.ResponseFormat.Type == "json_schema" {
		if properties, ok := req.ResponseFormat.Schema["properties"].(map[string]any); ok {
			for key := range properties {
				keys = append(keys, key)
			}
			sort.Strings(keys)
		}
	}

	if len(keys) == 0 {
		keys = extractOutputKeys(req.System)
	}

	if len(keys) == 0 {
		return `{
  "result": "mock_result_value"
}`
	}

	mock := make(map[string]string, len(keys))
	for _, key := range keys {
		mock[key] = "mock_" + key + "_value"
	}
	data, _ := json.MarshalIndent(mock, "", "  ")
	return string(data)
}

// Complete generates a mock completion.
func (p *MockProvider) Complete(ctx context.Context, req CompleteRequest) (*Response, error) {
	return &Response{
		Content:    p.mockResponse(req),
		Model:      p.Model,
		StopReason: "mock_complete",
	}, nil
}

// StreamComplete simulates a streaming completion, emitting the mock
// response word by word.
func (p *MockProvider) StreamComplete(ctx context.Context, req CompleteRequest, callback func(StreamChunk)) (<-chan StreamChunk, error) {
	full := p.mockResponse(req)
	words := strings.Split(full, " ")

	out := make(chan StreamChunk)
	go func() {
		defer close(out)
		for i, word := range words {
			content := word
			if i < len(words)-1 {
				content += " "
			}

			if p.StreamDelay > 0 {
				select {
				case <-time.After(p.StreamDelay):
				case <-ctx.Done():
					return
				}
			}

			chunk := StreamChunk{
				Content:      content,
				IsComplete:   i == len(words)-1,
				OutputTokens: i + 1,
				Model:        p.Model,
			}
			if chunk.IsComplete {
				chunk.StopReason = "mock_complete"
			}

			if callback != nil {
				callback(chunk)
			}

			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// CompleteWithTools returns a final mock response immediately; no tools are
// executed in mock mode.
func (p *MockProvider) CompleteWithTools(ctx context.Context, req CompleteRequest, executor ToolExecutor, maxIterations int) (*Response, error) {
	lowered := strings.ToLower(req.System)
	req.JSONMode = req.JSONMode || strings.Contains(lowered, "json") || strings.Contains(lowered, "output_keys")
	return p.Complete(ctx, req)
}
