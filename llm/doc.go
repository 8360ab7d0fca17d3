// Package llm abstracts the language-model backends consumed by node
// behavior.
//
// The Provider interface covers single completions, streaming and a
// tool-use loop. Three implementations ship with the framework:
//
//   - MockProvider: deterministic placeholder responses for testing graphs
//     without API keys or cost. Structured-output requests yield JSON with
//     one mock value per expected output key.
//   - OpenAIProvider: the OpenAI chat completions API via
//     github.com/sashabaranov/go-openai, including strict json_schema
//     response formats and a tool round-trip loop.
//   - LangChainProvider: adapts any github.com/tmc/langchaingo llms.Model.
//
// CleanSchema prepares JSON schemas for strict structured-output mode by
// stripping presentation-only fields and closing object schemas.
package llm
