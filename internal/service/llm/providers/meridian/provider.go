// Package meridian backs the JSONProvider interface with the meridian-llm-go
// provider library (Anthropic and OpenRouter).
package meridian

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	llmprovider "github.com/haowjy/meridian-llm-go"
	"github.com/haowjy/meridian-llm-go/providers/anthropic"
	"github.com/haowjy/meridian-llm-go/providers/openrouter"

	"oaresponse/internal/domain"
	domainllm "oaresponse/internal/domain/services/llm"
)

const defaultMaxTokens = 4096

// generator is the slice of llmprovider.Provider this package calls.
type generator interface {
	GenerateResponse(ctx context.Context, req *llmprovider.GenerateRequest) (*llmprovider.GenerateResponse, error)
}

// Provider adapts a library provider to single-turn JSON generation.
type Provider struct {
	name     string
	lib      generator
	supports func(model string) bool
	timeout  time.Duration
}

// NewAnthropic creates a Claude provider through the library's Anthropic client.
func NewAnthropic(apiKey string, timeout time.Duration) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	lib, err := anthropic.NewProvider(apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create anthropic provider: %w", err)
	}
	return newProvider("anthropic", lib, isClaude, timeout), nil
}

// NewOpenRouter creates a provider for OpenRouter model slugs such as
// "anthropic/claude-sonnet-4.5" or "google/gemini-2.5-flash".
func NewOpenRouter(apiKey string, timeout time.Duration) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	lib, err := openrouter.NewProvider(apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create openrouter provider: %w", err)
	}
	return newProvider("openrouter", lib, isSlug, timeout), nil
}

func newProvider(name string, lib generator, supports func(string) bool, timeout time.Duration) *Provider {
	return &Provider{name: name, lib: lib, supports: supports, timeout: timeout}
}

func isClaude(model string) bool { return strings.HasPrefix(model, "claude-") }

func isSlug(model string) bool {
	vendor, name, ok := strings.Cut(model, "/")
	return ok && vendor != "" && name != ""
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return p.name
}

// SupportsModel reports whether model is routable through this provider.
func (p *Provider) SupportsModel(model string) bool {
	return p.supports(model)
}

// GenerateJSON sends one user turn and concatenates the text blocks of the
// reply. The library has no JSON mode; the system prompt carries the format
// contract and the decoder strips code fences.
func (p *Provider) GenerateJSON(ctx context.Context, req *domainllm.JSONRequest) (*domainllm.JSONResponse, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model '%s' is not supported by %s provider", req.Model, p.name)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	resp, err := p.lib.GenerateResponse(ctx, buildRequest(req))
	if err != nil {
		return nil, toUpstreamError(err)
	}
	if resp == nil {
		return nil, &domain.UpstreamError{Service: "llm", Message: p.name + " returned no response"}
	}

	var text strings.Builder
	for _, block := range resp.Blocks {
		if block == nil || block.BlockType != "text" || block.TextContent == nil {
			continue
		}
		text.WriteString(*block.TextContent)
	}

	return &domainllm.JSONResponse{
		Content:      text.String(),
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		StopReason:   resp.StopReason,
	}, nil
}

func buildRequest(req *domainllm.JSONRequest) *llmprovider.GenerateRequest {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	user := req.User

	params := &llmprovider.RequestParams{
		MaxTokens:   &maxTokens,
		Temperature: req.Temperature,
	}
	if req.System != "" {
		system := req.System
		params.System = &system
	}

	return &llmprovider.GenerateRequest{
		Model: req.Model,
		Messages: []llmprovider.Message{{
			Role:   "user",
			Blocks: []*llmprovider.Block{{BlockType: "text", TextContent: &user}},
		}},
		Params: params,
	}
}

func toUpstreamError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &domain.UpstreamError{Service: "llm", Message: err.Error()}
}
