package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// LangChainProvider adapts any langchaingo llms.Model to the Provider
// interface, so graphs can run against the whole ecosystem of langchaingo
// backends (Ollama, Anthropic, Bedrock, ...).
//
// Tool use is not bridged: CompleteWithTools degrades to a plain
// completion, matching how the provider is consumed by node behavior.
type LangChainProvider struct {
	model llms.Model
	name  string
}

var _ Provider = (*LangChainProvider)(nil)

// NewLangChainProvider wraps a langchaingo model. The name is reported in
// responses.
func NewLangChainProvider(model llms.Model, name string) *LangChainProvider {
	if name == "" {
		name = "langchain"
	}
	return &LangChainProvider{model: model, name: name}
}

func toMessageContent(req CompleteRequest) []llms.MessageContent {
	content := make([]llms.MessageContent, 0, len(req.Messages)+1)
	if req.System != "" {
		content = append(content, llms.TextParts(schema.ChatMessageTypeSystem, req.System))
	}
	for _, m := range req.Messages {
		var role schema.ChatMessageType
		switch m.Role {
		case "system":
			role = schema.ChatMessageTypeSystem
		case "assistant":
			role = schema.ChatMessageTypeAI
		case "tool":
			role = schema.ChatMessageType("tool")
		default:
			role = schema.ChatMessageTypeHuman
		}
		content = append(content, llms.TextParts(role, m.Content))
	}
	return content
}

func (p *LangChainProvider) options(req CompleteRequest) []llms.CallOption {
	var opts []llms.CallOption
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.JSONMode || req.ResponseFormat != nil {
		opts = append(opts, llms.WithJSONMode())
	}
	return opts
}

// Complete generates a single completion.
func (p *LangChainProvider) Complete(ctx context.Context, req CompleteRequest) (*Response, error) {
	resp, err := p.model.GenerateContent(ctx, toMessageContent(req), p.options(req)...)
	if err != nil {
		return nil, fmt.Errorf("langchain completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("langchain model returned no choices")
	}

	choice := resp.Choices[0]
	return &Response{
		Content:    choice.Content,
		Model:      p.name,
		StopReason: choice.StopReason,
	}, nil
}

// StreamComplete generates a completion incrementally through langchaingo's
// streaming callback.
func (p *LangChainProvider) StreamComplete(ctx context.Context, req CompleteRequest, callback func(StreamChunk)) (<-chan StreamChunk, error) {
	out := make(chan StreamChunk)

	go func() {
		defer close(out)

		tokens := 0
		opts := append(p.options(req), llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			tokens++
			sc := StreamChunk{
				Content:      string(chunk),
				OutputTokens: tokens,
				Model:        p.name,
			}
			if callback != nil {
				callback(sc)
			}
			select {
			case out <- sc:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}))

		if _, err := p.model.GenerateContent(ctx, toMessageContent(req), opts...); err != nil {
			return
		}

		final := StreamChunk{IsComplete: true, OutputTokens: tokens, Model: p.name, StopReason: "stop"}
		if callback != nil {
			callback(final)
		}
		select {
		case out <- final:
		case <-ctx.Done():
		}
	}()

	return out, nil
}

// CompleteWithTools degrades to a plain completion; see the type comment.
func (p *LangChainProvider) CompleteWithTools(ctx context.Context, req CompleteRequest, executor ToolExecutor, maxIterations int) (*Response, error) {
	return p.Complete(ctx, req)
}
