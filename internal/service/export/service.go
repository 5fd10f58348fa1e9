package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"oaresponse/internal/domain"
	"oaresponse/internal/domain/models"
	"oaresponse/internal/domain/repositories"
	"oaresponse/internal/domain/services"
)

// exportService implements the ExportService interface
type exportService struct {
	gate      services.AuthorizationGate
	draftRepo repositories.DraftRepository
	logger    *slog.Logger
}

// NewExportService creates a new export service
func NewExportService(
	gate services.AuthorizationGate,
	draftRepo repositories.DraftRepository,
	logger *slog.Logger,
) services.ExportService {
	return &exportService{
		gate:      gate,
		draftRepo: draftRepo,
		logger:    logger,
	}
}

// Export renders the highest version of a matter's draft
func (s *exportService) Export(ctx context.Context, userID string, req *services.ExportRequest) (*services.ExportedFile, error) {
	if req.Format == "" {
		req.Format = string(Formats[0])
	}
	if err := validateExportRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.gate.CanAccessMatter(ctx, userID, req.MatterID); err != nil {
		return nil, err
	}

	draft, err := s.draftRepo.GetLatest(ctx, req.MatterID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no draft to export for matter %s: %w", req.MatterID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("load latest draft: %w", err)
	}
	draft.Normalize()

	format := Format(req.Format)
	body, err := render(draft, format)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("draft exported",
		"matter_id", req.MatterID,
		"version", draft.Version,
		"format", format,
		"bytes", len(body),
	)

	return &services.ExportedFile{
		Filename:    fmt.Sprintf("OA_Response_%s.%s", req.MatterID, format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func render(d *models.Draft, format Format) ([]byte, error) {
	title := "Office Action Response " + d.MatterID
	switch format {
	case FormatText:
		return []byte(renderText(d)), nil
	case FormatMarkdown:
		return []byte(renderMarkdown(d)), nil
	case FormatHTML:
		return renderHTML(renderMarkdown(d), title)
	case FormatPDF:
		return renderPDF(renderMarkdown(d), title)
	default:
		return nil, domain.Validationf("unsupported export format %q", format)
	}
}

func validateExportRequest(req *services.ExportRequest) error {
	formats := make([]any, len(Formats))
	for i, f := range Formats {
		formats[i] = string(f)
	}
	return validation.ValidateStruct(req,
		validation.Field(&req.MatterID, validation.Required, validation.By(func(value any) error {
			if _, err := uuid.Parse(value.(string)); err != nil {
				return errors.New("must be a valid UUID")
			}
			return nil
		})),
		validation.Field(&req.Format, validation.In(formats...)),
	)
}
