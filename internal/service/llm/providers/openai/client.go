package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"oaresponse/internal/domain"
	domainllm "oaresponse/internal/domain/services/llm"
)

// Provider implements the JSONProvider interface for OpenAI and any gateway
// that speaks the OpenAI chat completions API.
type Provider struct {
	client *openai.Client
}

// NewProvider creates a provider. An empty baseURL talks to api.openai.com.
func NewProvider(apiKey, baseURL string, timeout time.Duration) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: timeout}
	}

	return &Provider{client: openai.NewClientWithConfig(clientConfig)}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "openai"
}

// SupportsModel accepts any model; gateways route vendor-prefixed names
// like "google/gemini-2.5-flash".
func (p *Provider) SupportsModel(model string) bool {
	return model != ""
}

// GenerateJSON runs one chat completion in JSON object mode.
func (p *Provider) GenerateJSON(ctx context.Context, req *domainllm.JSONRequest) (*domainllm.JSONResponse, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model is required")
	}

	chatReq := openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens: req.MaxTokens,
	}
	if req.Temperature != nil {
		chatReq.Temperature = float32(*req.Temperature)
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, toUpstreamError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &domain.UpstreamError{Service: "llm", Message: "no choices in response"}
	}

	return &domainllm.JSONResponse{
		Content:      resp.Choices[0].Message.Content,
		Model:        resp.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		StopReason:   string(resp.Choices[0].FinishReason),
	}, nil
}

func toUpstreamError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &domain.UpstreamError{Service: "llm", StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := http.StatusText(reqErr.HTTPStatusCode)
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &domain.UpstreamError{Service: "llm", StatusCode: reqErr.HTTPStatusCode, Message: msg}
	}
	return &domain.UpstreamError{Service: "llm", Message: err.Error()}
}
