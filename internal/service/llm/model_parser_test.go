package llm

import (
	"testing"
)

func TestParseModel(t *testing.T) {
	tests := []struct {
		name         string
		modelStr     string
		wantProvider string
		wantModel    string
		wantErr      bool
	}{
		{
			name:         "gateway model keeps nested path",
			modelStr:     "openai/google/gemini-2.5-flash",
			wantProvider: "openai",
			wantModel:    "google/gemini-2.5-flash",
		},
		{
			name:         "explicit anthropic",
			modelStr:     "anthropic/claude-sonnet-4-5",
			wantProvider: "anthropic",
			wantModel:    "claude-sonnet-4-5",
		},
		{
			name:         "openrouter keeps vendor slug",
			modelStr:     "openrouter/anthropic/claude-sonnet-4.5",
			wantProvider: "openrouter",
			wantModel:    "anthropic/claude-sonnet-4.5",
		},
		{
			name:         "explicit gemini",
			modelStr:     "gemini/gemini-2.5-pro",
			wantProvider: "gemini",
			wantModel:    "gemini-2.5-pro",
		},
		{
			name:         "claude inferred",
			modelStr:     "claude-haiku-4-5",
			wantProvider: "anthropic",
			wantModel:    "claude-haiku-4-5",
		},
		{
			name:         "gpt inferred",
			modelStr:     "gpt-4o-mini",
			wantProvider: "openai",
			wantModel:    "gpt-4o-mini",
		},
		{
			name:         "gemini inferred",
			modelStr:     "gemini-2.5-flash",
			wantProvider: "gemini",
			wantModel:    "gemini-2.5-flash",
		},
		{
			name:     "empty string",
			modelStr: "",
			wantErr:  true,
		},
		{
			name:     "unknown model prefix",
			modelStr: "unknown-model-123",
			wantErr:  true,
		},
		{
			name:     "empty provider",
			modelStr: "/gpt-4o",
			wantErr:  true,
		},
		{
			name:     "empty model",
			modelStr: "openai/",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseModel(tt.modelStr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseModel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Provider != tt.wantProvider {
				t.Errorf("Provider = %v, want %v", got.Provider, tt.wantProvider)
			}
			if got.Model != tt.wantModel {
				t.Errorf("Model = %v, want %v", got.Model, tt.wantModel)
			}
		})
	}
}
