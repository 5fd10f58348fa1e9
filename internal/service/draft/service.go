package draft

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"oaresponse/internal/config"
	"oaresponse/internal/domain"
	"oaresponse/internal/domain/models"
	"oaresponse/internal/domain/repositories"
	"oaresponse/internal/domain/services"
	domainllm "oaresponse/internal/domain/services/llm"
	"oaresponse/internal/jurisdiction"
	llmSvc "oaresponse/internal/service/llm"
)

//go:embed schema/draft.json
var draftSchema []byte

const stage = "draft"

// Options configures the draft service
type Options struct {
	// Model is the "provider/model" string used for drafting
	Model string
	// Versioning is config.DraftVersioningIncrement or config.DraftVersioningFixed
	Versioning string
}

// draftService implements the DraftService interface
type draftService struct {
	gate           services.AuthorizationGate
	matterRepo     repositories.MatterRepository
	extractionRepo repositories.ExtractionRepository
	draftRepo      repositories.DraftRepository
	txManager      repositories.TransactionManager
	resolver       domainllm.ProviderResolver
	profiles       *jurisdiction.Registry
	schema         *jsonschema.Schema
	opts           Options
	logger         *slog.Logger
}

// NewDraftService creates a new draft service
func NewDraftService(
	gate services.AuthorizationGate,
	matterRepo repositories.MatterRepository,
	extractionRepo repositories.ExtractionRepository,
	draftRepo repositories.DraftRepository,
	txManager repositories.TransactionManager,
	resolver domainllm.ProviderResolver,
	profiles *jurisdiction.Registry,
	opts Options,
	logger *slog.Logger,
) (services.DraftService, error) {
	schema, err := llmSvc.CompileSchema("draft.json", draftSchema)
	if err != nil {
		return nil, err
	}
	if opts.Versioning == "" {
		opts.Versioning = config.DraftVersioningIncrement
	}
	return &draftService{
		gate:           gate,
		matterRepo:     matterRepo,
		extractionRepo: extractionRepo,
		draftRepo:      draftRepo,
		txManager:      txManager,
		resolver:       resolver,
		profiles:       profiles,
		schema:         schema,
		opts:           opts,
		logger:         logger,
	}, nil
}

// Generate drafts a new response version for a matter
func (s *draftService) Generate(ctx context.Context, userID string, req *services.GenerateDraftRequest) (*models.Draft, error) {
	if err := s.validateGenerateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	applyDefaults(req)

	if err := s.gate.CanAccessMatter(ctx, userID, req.MatterID); err != nil {
		return nil, err
	}

	profile, err := s.profiles.Get(models.Jurisdiction(req.Jurisdiction))
	if err != nil {
		return nil, err
	}

	extraction, err := s.extractionRepo.GetByMatterID(ctx, req.MatterID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no extraction for matter %s: %w", req.MatterID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("load extraction: %w", err)
	}

	input := &draftInput{
		Rejections: req.Rejections,
		Claims:     req.Claims,
		PriorArt:   req.PriorArt,
		Style:      req.Style,
	}
	if input.Rejections == nil {
		input.Rejections = extraction.Rejections
	}
	if input.Claims == nil {
		input.Claims = extraction.Claims
	}
	if input.PriorArt == nil {
		input.PriorArt = extraction.PriorArt
	}
	input.fillEmpty()

	content, err := s.draftContent(ctx, profile, req.Sections, input)
	if err != nil {
		return nil, err
	}

	draft := &models.Draft{
		MatterID:     req.MatterID,
		UserID:       userID,
		DraftContent: *content,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		version, err := s.nextVersion(txCtx, req.MatterID)
		if err != nil {
			return err
		}
		draft.Version = version

		if err := s.draftRepo.Create(txCtx, draft); err != nil {
			return fmt.Errorf("save draft: %w", err)
		}
		if err := s.matterRepo.AdvanceStatus(txCtx, req.MatterID, models.MatterStatusDrafted); err != nil {
			return fmt.Errorf("advance matter status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("draft generated",
		"matter_id", req.MatterID,
		"version", draft.Version,
		"jurisdiction", req.Jurisdiction,
		"arguments", len(draft.Arguments),
		"amendments", len(draft.Amendments),
	)
	return draft, nil
}

// nextVersion must run inside the draft transaction
func (s *draftService) nextVersion(ctx context.Context, matterID string) (int, error) {
	if s.opts.Versioning == config.DraftVersioningFixed {
		return 1, nil
	}

	// Serialize concurrent drafts for the same matter until commit
	if err := s.matterRepo.LockForUpdate(ctx, matterID); err != nil {
		return 0, fmt.Errorf("lock matter: %w", err)
	}
	current, err := s.draftRepo.MaxVersion(ctx, matterID)
	if err != nil {
		return 0, fmt.Errorf("read draft version: %w", err)
	}
	return current + 1, nil
}

func (s *draftService) draftContent(ctx context.Context, profile *jurisdiction.Profile, sections []string, input *draftInput) (*models.DraftContent, error) {
	provider, model, err := s.resolver.ForModel(s.opts.Model)
	if err != nil {
		return nil, fmt.Errorf("resolve draft model: %w", err)
	}

	user, err := userPrompt(input)
	if err != nil {
		return nil, err
	}

	temperature := 0.2
	resp, err := provider.GenerateJSON(ctx, &domainllm.JSONRequest{
		Model:       model,
		System:      systemPrompt(profile, sections),
		User:        user,
		MaxTokens:   config.MaxLLMOutputTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("draft call to %s: %w", provider.Name(), err)
	}

	content, err := llmSvc.Decode[models.DraftContent](stage, resp.Content, s.schema, normalize).Unwrap()
	if err != nil {
		s.logger.Error("malformed draft output",
			"error", err,
			"provider", provider.Name(),
			"stop_reason", resp.StopReason,
		)
		return nil, err
	}
	content.Normalize()
	cleanMarkup(content)
	return content, nil
}

// ListDrafts returns every version of a matter's drafts, latest first
func (s *draftService) ListDrafts(ctx context.Context, userID, matterID string) ([]models.Draft, error) {
	if err := s.gate.CanAccessMatter(ctx, userID, matterID); err != nil {
		return nil, err
	}
	drafts, err := s.draftRepo.ListByMatter(ctx, matterID)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return drafts, nil
}

func applyDefaults(req *services.GenerateDraftRequest) {
	if req.Jurisdiction == "" {
		req.Jurisdiction = string(models.JurisdictionUSPTO)
	}
	if req.Style == "" {
		req.Style = DefaultStyle
	}
	if len(req.Sections) == 0 {
		req.Sections = append([]string(nil), DefaultSections...)
	}
}

// validateGenerateRequest validates a draft request
func (s *draftService) validateGenerateRequest(req *services.GenerateDraftRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.MatterID, validation.Required, validation.By(isUUID)),
		validation.Field(&req.Jurisdiction, validation.In(jurisdictionValues()...)),
		validation.Field(&req.Style, validation.Length(0, config.MaxStyleLength)),
		validation.Field(&req.Sections,
			validation.Length(0, config.MaxSections),
			validation.Each(validation.Required),
		),
	)
}

func isUUID(value any) error {
	s, _ := value.(string)
	if _, err := uuid.Parse(s); err != nil {
		return errors.New("must be a valid UUID")
	}
	return nil
}

func jurisdictionValues() []any {
	out := make([]any, len(models.Jurisdictions))
	for i, j := range models.Jurisdictions {
		out[i] = string(j)
	}
	return out
}
