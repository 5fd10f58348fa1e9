package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
	domainllm "oaresponse/internal/domain/services/llm"
)

// rateLimitedProvider waits for a token before every call. Calls are never
// retried; a vendor error goes straight back to the caller.
type rateLimitedProvider struct {
	domainllm.JSONProvider
	limiter *rate.Limiter
}

// WithRateLimit wraps p so it shares limiter with every other wrapped provider.
func WithRateLimit(p domainllm.JSONProvider, limiter *rate.Limiter) domainllm.JSONProvider {
	if limiter == nil {
		return p
	}
	return &rateLimitedProvider{JSONProvider: p, limiter: limiter}
}

func (p *rateLimitedProvider) GenerateJSON(ctx context.Context, req *domainllm.JSONRequest) (*domainllm.JSONResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for %s rate limit: %w", p.Name(), err)
	}
	return p.JSONProvider.GenerateJSON(ctx, req)
}
