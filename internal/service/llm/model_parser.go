package llm

import (
	"fmt"
	"strings"
)

// ModelInfo contains parsed provider and model information
type ModelInfo struct {
	Provider string // "openai", "anthropic", "openrouter" or "gemini"
	Model    string // Model identifier for that provider
}

// String renders the info back into provider/model form
func (m ModelInfo) String() string {
	return m.Provider + "/" + m.Model
}

// ParseModel extracts provider information from a model string
//
// Supported formats:
//   - "openai/google/gemini-2.5-flash" → {Provider: "openai", Model: "google/gemini-2.5-flash"} (OpenAI-compatible gateway)
//   - "anthropic/claude-sonnet-4-5" → {Provider: "anthropic", Model: "claude-sonnet-4-5"}
//   - "openrouter/anthropic/claude-sonnet-4.5" → {Provider: "openrouter", Model: "anthropic/claude-sonnet-4.5"}
//   - "claude-haiku-4-5" → {Provider: "anthropic", Model: "claude-haiku-4-5"}
//   - "gemini-2.5-flash" → {Provider: "gemini", Model: "gemini-2.5-flash"}
//
// If the string contains "/" the part before the first "/" is the provider,
// otherwise the provider is inferred from the model prefix.
func ParseModel(modelStr string) (*ModelInfo, error) {
	if modelStr == "" {
		return nil, fmt.Errorf("model string cannot be empty")
	}

	if provider, model, ok := strings.Cut(modelStr, "/"); ok {
		if provider == "" {
			return nil, fmt.Errorf("provider cannot be empty in model string: %s", modelStr)
		}
		if model == "" {
			return nil, fmt.Errorf("model cannot be empty in model string: %s", modelStr)
		}
		return &ModelInfo{Provider: provider, Model: model}, nil
	}

	provider := inferProvider(modelStr)
	if provider == "" {
		return nil, fmt.Errorf("unable to infer provider from model: %s", modelStr)
	}

	return &ModelInfo{Provider: provider, Model: modelStr}, nil
}

// inferProvider infers the provider from model name prefix
func inferProvider(model string) string {
	modelLower := strings.ToLower(model)

	switch {
	case strings.HasPrefix(modelLower, "claude-"):
		return "anthropic"
	case strings.HasPrefix(modelLower, "gpt-"),
		strings.HasPrefix(modelLower, "o1-"),
		strings.HasPrefix(modelLower, "o3-"),
		strings.HasPrefix(modelLower, "o4-"):
		return "openai"
	case strings.HasPrefix(modelLower, "gemini-"):
		return "gemini"
	default:
		return ""
	}
}
