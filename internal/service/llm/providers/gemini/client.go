package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"oaresponse/internal/domain"
	domainllm "oaresponse/internal/domain/services/llm"
)

// Provider implements the JSONProvider interface for Gemini models through
// the Gemini API, using its native JSON response MIME type.
type Provider struct {
	client *genai.Client
}

// NewProvider creates a new Gemini provider. baseURL is only set in tests.
func NewProvider(apiKey, baseURL string, timeout time.Duration) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions.BaseURL = baseURL
	}
	if timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: timeout}
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	return &Provider{client: client}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "gemini"
}

// SupportsModel returns true for Gemini model names
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "gemini-")
}

// GenerateJSON runs one generateContent call with application/json output.
func (p *Provider) GenerateJSON(ctx context.Context, req *domainllm.JSONRequest) (*domainllm.JSONResponse, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model '%s' is not supported by Gemini provider", req.Model)
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, []*genai.Content{
		genai.NewContentFromText(req.User, genai.RoleUser),
	}, config)
	if err != nil {
		return nil, toUpstreamError(err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, &domain.UpstreamError{Service: "llm", Message: "empty response from Gemini API"}
	}

	out := &domainllm.JSONResponse{
		Content:    resp.Text(),
		Model:      req.Model,
		StopReason: string(resp.Candidates[0].FinishReason),
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

func toUpstreamError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &domain.UpstreamError{Service: "llm", StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	return &domain.UpstreamError{Service: "llm", Message: err.Error()}
}
