package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainllm "oaresponse/internal/domain/services/llm"
)

func TestProvider_GenerateJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.5-flash:generateContent"), r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		genConfig := body["generationConfig"].(map[string]any)
		assert.Equal(t, "application/json", genConfig["responseMimeType"])
		assert.NotNil(t, body["systemInstruction"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "{\"claims\":[{\"no\":1,\"text\":\"A widget\"}]}"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 30, "candidatesTokenCount": 11},
			"modelVersion": "gemini-2.5-flash-001"
		}`))
	}))
	defer srv.Close()

	p, err := NewProvider("test-key", srv.URL, 0)
	require.NoError(t, err)

	resp, err := p.GenerateJSON(context.Background(), &domainllm.JSONRequest{
		Model:  "gemini-2.5-flash",
		System: "Return JSON.",
		User:   "OA text",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"claims":[{"no":1,"text":"A widget"}]}`, resp.Content)
	assert.Equal(t, 30, resp.InputTokens)
	assert.Equal(t, 11, resp.OutputTokens)
	assert.Equal(t, "STOP", resp.StopReason)
	assert.Equal(t, "gemini-2.5-flash-001", resp.Model)
}
