// Package llm provides the language-model collaborator used by the
// model-assisted extraction paths. The collaborator is treated as opaque
// and fallible: text in, text out, with classification of failures so
// callers can decide between retrying and falling back to heuristics.
package llm

import "context"

// Client defines the interface for model calls.
// Use this interface for dependency injection to enable mocking in tests.
type Client interface {
	// GenerateResponse generates a single chat completion response.
	GenerateResponse(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error)

	// GetModel returns the configured model name.
	GetModel() string
}

// Ensure both providers implement Client at compile time.
var (
	_ Client = (*OpenAIClient)(nil)
	_ Client = (*AnthropicClient)(nil)
	_ Client = (*MockClient)(nil)
)
