package llm

import (
	"context"
)

// JSONProvider defines the interface that all LLM providers must implement.
// Every call in the pipeline asks for a single JSON object back, so providers
// only need to support one non-streaming request shape.
type JSONProvider interface {
	// GenerateJSON sends one system/user exchange and returns the raw text of
	// the model's reply. The caller parses and validates the JSON.
	GenerateJSON(ctx context.Context, req *JSONRequest) (*JSONResponse, error)

	// Name returns the provider name (e.g., "anthropic", "openai")
	Name() string

	// SupportsModel returns true if the provider supports the given model.
	SupportsModel(model string) bool
}

// JSONRequest contains the parameters for one strict-JSON generation.
type JSONRequest struct {
	// Model is the provider-local model identifier (prefix already stripped)
	Model string

	// System is the fixed instruction describing the output shape
	System string

	// User carries the document text or the draft inputs
	User string

	MaxTokens   int
	Temperature *float64
}

// JSONResponse contains the provider's reply.
type JSONResponse struct {
	// Content is the reply text, expected to be a JSON object
	Content string

	// Model is the model that was used (may differ from request if aliased)
	Model string

	InputTokens  int
	OutputTokens int

	// StopReason indicates why generation stopped (e.g., "end_turn", "max_tokens")
	StopReason string
}

// ProviderResolver maps a "provider/model" string to a provider and the
// provider-local model name.
type ProviderResolver interface {
	ForModel(modelStr string) (JSONProvider, string, error)
}
