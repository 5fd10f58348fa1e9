package llm

import (
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"

	"oaresponse/internal/config"
	domainllm "oaresponse/internal/domain/services/llm"
	"oaresponse/internal/service/llm/providers/gemini"
	"oaresponse/internal/service/llm/providers/meridian"
	"oaresponse/internal/service/llm/providers/openai"
)

// ProviderFactory creates and caches LLM provider instances. All providers it
// hands out share one rate limiter.
type ProviderFactory struct {
	config    *config.Config
	logger    *slog.Logger
	limiter   *rate.Limiter
	mu        sync.Mutex
	providers map[string]domainllm.JSONProvider
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config, logger *slog.Logger) *ProviderFactory {
	var limiter *rate.Limiter
	if cfg.LLMRateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.LLMRateLimit), max(1, int(cfg.LLMRateLimit)))
	}
	return &ProviderFactory{
		config:    cfg,
		logger:    logger,
		limiter:   limiter,
		providers: make(map[string]domainllm.JSONProvider),
	}
}

// Register installs a provider under name, replacing any cached instance.
// Tests use it to swap in fakes.
func (f *ProviderFactory) Register(name string, p domainllm.JSONProvider) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.providers[name] = p
}

// ForModel parses a "provider/model" string and returns the provider with the
// provider-local model name.
func (f *ProviderFactory) ForModel(modelStr string) (domainllm.JSONProvider, string, error) {
	info, err := ParseModel(modelStr)
	if err != nil {
		return nil, "", err
	}
	p, err := f.GetProvider(info.Provider)
	if err != nil {
		return nil, "", err
	}
	return p, info.Model, nil
}

// GetProvider returns a provider instance for the given provider name
//
// Supported providers:
//   - "openai" - OpenAI or any OpenAI-compatible gateway (OPENAI_BASE_URL)
//   - "anthropic" - Claude models via meridian-llm-go's Anthropic client
//   - "openrouter" - any OpenRouter slug via meridian-llm-go
//   - "gemini" - Google Gemini models via the Gemini API
func (f *ProviderFactory) GetProvider(providerName string) (domainllm.JSONProvider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.providers[providerName]; ok {
		return p, nil
	}

	var (
		p   domainllm.JSONProvider
		err error
	)
	switch providerName {
	case "openai":
		p, err = openai.NewProvider(f.config.OpenAIAPIKey, f.config.OpenAIBaseURL, f.config.LLMTimeout)
	case "anthropic":
		p, err = meridian.NewAnthropic(f.config.AnthropicAPIKey, f.config.LLMTimeout)
	case "openrouter":
		p, err = meridian.NewOpenRouter(f.config.OpenRouterAPIKey, f.config.LLMTimeout)
	case "gemini":
		p, err = gemini.NewProvider(f.config.GeminiAPIKey, "", f.config.LLMTimeout)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", providerName, err)
	}

	p = WithRateLimit(p, f.limiter)
	f.providers[providerName] = p
	f.logger.Info("llm provider initialized", "provider", providerName)
	return p, nil
}
