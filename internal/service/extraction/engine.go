package extraction

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"oaresponse/internal/config"
	"oaresponse/internal/domain"
	"oaresponse/internal/domain/models"
	"oaresponse/internal/domain/services"
	domainllm "oaresponse/internal/domain/services/llm"
	llmSvc "oaresponse/internal/service/llm"
)

//go:embed schema/extraction.json
var extractionSchema []byte

// stage names this step in malformed-output errors and logs
const stage = "extraction"

// Engine asks an LLM to turn an office action into an ExtractionRecord.
type Engine struct {
	resolver domainllm.ProviderResolver
	model    string
	schema   *jsonschema.Schema
	logger   *slog.Logger
}

// NewEngine compiles the output schema and returns an engine using model.
func NewEngine(resolver domainllm.ProviderResolver, model string, logger *slog.Logger) (*Engine, error) {
	schema, err := llmSvc.CompileSchema("extraction.json", extractionSchema)
	if err != nil {
		return nil, err
	}
	return &Engine{
		resolver: resolver,
		model:    model,
		schema:   schema,
		logger:   logger,
	}, nil
}

// Extract runs one extraction. Exactly one of in.Text and in.PDF is used;
// PDF wins when both are set.
func (e *Engine) Extract(ctx context.Context, in *services.ExtractionInput) (*services.ExtractionResult, error) {
	if in == nil || (in.PDF == nil && in.Text == "") {
		return nil, domain.Validationf("no document content to extract from")
	}

	provider, model, err := e.resolver.ForModel(e.model)
	if err != nil {
		return nil, fmt.Errorf("resolve extraction model: %w", err)
	}

	user, truncated := userPrompt(in.Text, in.PDF)
	if truncated {
		e.logger.Warn("extraction input truncated", "raw_pdf", in.PDF != nil)
	}

	temperature := 0.0
	resp, err := provider.GenerateJSON(ctx, &domainllm.JSONRequest{
		Model:       model,
		System:      systemPrompt,
		User:        user,
		MaxTokens:   config.MaxLLMOutputTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction call to %s: %w", provider.Name(), err)
	}

	e.logger.Debug("extraction completed",
		"provider", provider.Name(),
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"stop_reason", resp.StopReason,
	)

	record, err := llmSvc.Decode[models.ExtractionRecord](stage, resp.Content, e.schema, normalize).Unwrap()
	if err != nil {
		var mErr *domain.MalformedOutputError
		if errors.As(err, &mErr) {
			e.logger.Error("malformed extraction output",
				"reason", mErr.Reason,
				"raw_length", len(mErr.Raw),
				"stop_reason", resp.StopReason,
			)
		}
		return nil, err
	}
	record.Normalize()

	usedModel := resp.Model
	if usedModel == "" {
		usedModel = model
	}
	return &services.ExtractionResult{
		Record:    *record,
		Truncated: truncated,
		Model:     usedModel,
	}, nil
}
