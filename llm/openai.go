package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider on the OpenAI chat completions API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a provider for the given model. If apiKey is
// empty, it is read from the OPENAI_API_KEY environment variable.
func NewOpenAIProvider(apiKey, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY not set")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// buildRequest maps a CompleteRequest onto the OpenAI request shape.
func (p *OpenAIProvider) buildRequest(req CompleteRequest) (openai.ChatCompletionRequest, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	out := openai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	}

	switch {
	case req.ResponseFormat != nil && req.ResponseFormat.Type == "json_schema":
		schemaJSON, err := json.Marshal(CleanSchema(req.ResponseFormat.Schema))
		if err != nil {
			return out, fmt.Errorf("failed to marshal response schema: %w", err)
		}
		name := req.ResponseFormat.Name
		if name == "" {
			name = "response"
		}
		out.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Schema: json.RawMessage(schemaJSON),
				Strict: true,
			},
		}
	case req.JSONMode || req.ResponseFormat != nil:
		out.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	for _, tool := range req.Tools {
		out.Tools = append(out.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.InputSchema,
			},
		})
	}

	return out, nil
}

// Complete generates a single completion.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompleteRequest) (*Response, error) {
	oaiReq, err := p.buildRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.CreateChatCompletion(ctx, oaiReq)
	if err != nil {
		return nil, fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}

	choice := resp.Choices[0]
	return &Response{
		Content:      choice.Message.Content,
		Model:        resp.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		StopReason:   string(choice.FinishReason),
	}, nil
}

// StreamComplete generates a completion incrementally.
func (p *OpenAIProvider) StreamComplete(ctx context.Context, req CompleteRequest, callback func(StreamChunk)) (<-chan StreamChunk, error) {
	oaiReq, err := p.buildRequest(req)
	if err != nil {
		return nil, err
	}
	oaiReq.Stream = true

	stream, err := p.client.CreateChatCompletionStream(ctx, oaiReq)
	if err != nil {
		return nil, fmt.Errorf("openai stream failed: %w", err)
	}

	out := make(chan StreamChunk)
	go func() {
		defer close(out)
		defer stream.Close()

		tokens := 0
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				final := StreamChunk{IsComplete: true, OutputTokens: tokens, Model: p.model, StopReason: "stop"}
				if callback != nil {
					callback(final)
				}
				select {
				case out <- final:
				case <-ctx.Done():
				}
				return
			}
			if err != nil {
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}

			tokens++
			chunk := StreamChunk{
				Content:      resp.Choices[0].Delta.Content,
				OutputTokens: tokens,
				Model:        resp.Model,
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

// CompleteWithTools runs the tool-use loop until the model stops requesting
// tools or maxIterations is reached.
func (p *OpenAIProvider) CompleteWithTools(ctx context.Context, req CompleteRequest, executor ToolExecutor, maxIterations int) (*Response, error) {
	if maxIterations <= 0 {
		maxIterations = 10
	}

	oaiReq, err := p.buildRequest(req)
	if err != nil {
		return nil, err
	}

	for iteration := 0; iteration < maxIterations; iteration++ {
		resp, err := p.client.CreateChatCompletion(ctx, oaiReq)
		if err != nil {
			return nil, fmt.Errorf("openai completion failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, errors.New("openai returned no choices")
		}

		choice := resp.Choices[0]
		if len(choice.Message.ToolCalls) == 0 {
			return &Response{
				Content:      choice.Message.Content,
				Model:        resp.Model,
				InputTokens:  resp.Usage.PromptTokens,
				OutputTokens: resp.Usage.CompletionTokens,
				StopReason:   string(choice.FinishReason),
			}, nil
		}

		oaiReq.Messages = append(oaiReq.Messages, choice.Message)
		for _, call := range choice.Message.ToolCalls {
			var input map[string]any
			if err := json.Unmarshal([]byte(call.Function.Arguments), &input); err != nil {
				input = map[string]any{}
			}

			result := executor(ToolUse{
				ID:    call.ID,
				Name:  call.Function.Name,
				Input: input,
			})

			oaiReq.Messages = append(oaiReq.Messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    result.Content,
				ToolCallID: call.ID,
			})
		}
	}

	return nil, fmt.Errorf("tool loop did not converge after %d iterations", maxIterations)
}
