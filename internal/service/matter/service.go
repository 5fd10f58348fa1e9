package matter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"oaresponse/internal/config"
	"oaresponse/internal/domain"
	"oaresponse/internal/domain/models"
	"oaresponse/internal/domain/repositories"
	"oaresponse/internal/domain/services"
)

const (
	// ReparsedStatus is reported by CleanupOCR on success
	ReparsedStatus = "reparsed"

	defaultUploadName = "office-action.pdf"
	pdfContentType    = "application/pdf"
)

// matterService implements the MatterService interface
type matterService struct {
	gate           services.AuthorizationGate
	matterRepo     repositories.MatterRepository
	docRepo        repositories.DocumentRepository
	extractionRepo repositories.ExtractionRepository
	txManager      repositories.TransactionManager
	blobs          repositories.BlobStore
	inspector      services.PDFInspector
	ocr            services.TextExtractor // nil when OCR is not configured
	extractor      services.Extractor
	ingestMode     string
	logger         *slog.Logger
}

// NewMatterService creates a new matter service. ocr may be nil in raw ingest
// mode, in which case CleanupOCR is unavailable.
func NewMatterService(
	gate services.AuthorizationGate,
	matterRepo repositories.MatterRepository,
	docRepo repositories.DocumentRepository,
	extractionRepo repositories.ExtractionRepository,
	txManager repositories.TransactionManager,
	blobs repositories.BlobStore,
	inspector services.PDFInspector,
	ocr services.TextExtractor,
	extractor services.Extractor,
	ingestMode string,
	logger *slog.Logger,
) services.MatterService {
	if ingestMode == "" {
		ingestMode = config.IngestModeOCR
	}
	return &matterService{
		gate:           gate,
		matterRepo:     matterRepo,
		docRepo:        docRepo,
		extractionRepo: extractionRepo,
		txManager:      txManager,
		blobs:          blobs,
		inspector:      inspector,
		ocr:            ocr,
		extractor:      extractor,
		ingestMode:     ingestMode,
		logger:         logger,
	}
}

// Upload stores a PDF under "<uuid>/<name>". The name part keeps the
// client's base name so the default matter title stays readable.
func (s *matterService) Upload(ctx context.Context, req *services.UploadRequest) (*services.UploadResult, error) {
	if len(req.Data) == 0 {
		return nil, domain.Validationf("uploaded file is empty")
	}
	pages, err := s.inspector.PageCount(req.Data)
	if err != nil {
		return nil, err
	}

	fileID := uploadKey(uuid.NewString(), req.Filename)
	if err := s.blobs.Upload(ctx, fileID, req.Data, pdfContentType); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	s.logger.Info("office action uploaded", "file_id", fileID, "bytes", len(req.Data), "pages", pages)
	return &services.UploadResult{FileID: fileID, Bytes: len(req.Data), Pages: pages}, nil
}

// uploadKey joins id with the sanitized base name of filename.
func uploadKey(id, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" || name == "." || name == "/" || name == ".." {
		name = defaultUploadName
	}
	return id + "/" + truncateRunes(name, config.MaxFileIDLength-len(id)-1)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Ingest runs download, preflight, OCR and extraction, then persists the
// matter, its office action document and the extraction in one transaction.
// Nothing is written unless every stage succeeds.
func (s *matterService) Ingest(ctx context.Context, userID string, req *services.IngestRequest) (*services.IngestResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("no caller identity: %w", domain.ErrUnauthorized)
	}
	if req.Jurisdiction == "" {
		req.Jurisdiction = string(models.JurisdictionUSPTO)
	}
	if err := validateIngestRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = truncateRunes(path.Base(req.FileID), config.MaxMatterTitleLength)
	}

	logger := s.logger.With("file_id", req.FileID, "user_id", userID)

	pdf, err := s.blobs.Download(ctx, req.FileID)
	if err != nil {
		return nil, fmt.Errorf("download office action: %w", err)
	}

	pages, err := s.inspector.PageCount(pdf)
	if err != nil {
		return nil, err
	}
	logger.Debug("office action downloaded", "bytes", len(pdf), "pages", pages)

	input := &services.ExtractionInput{}
	var text string
	if s.ingestMode == config.IngestModeRaw {
		input.PDF = pdf
	} else {
		if s.ocr == nil {
			return nil, errors.New("ingest: OCR is not configured")
		}
		text, err = s.ocr.ExtractText(ctx, pdf)
		if err != nil {
			return nil, fmt.Errorf("ocr office action: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			return nil, domain.Validationf("no text could be recovered from %s", req.FileID)
		}
		input.Text = text
	}

	result, err := s.extractor.Extract(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("extract office action: %w", err)
	}

	matter := &models.Matter{
		UserID:       userID,
		Title:        title,
		Jurisdiction: models.Jurisdiction(req.Jurisdiction),
		Status:       models.MatterStatusCreated,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.matterRepo.Create(txCtx, matter); err != nil {
			return err
		}

		doc := &models.Document{
			MatterID:  matter.ID,
			Type:      models.DocumentTypeOfficeAction,
			Path:      req.FileID,
			Text:      text,
			PageCount: pages,
		}
		if err := s.docRepo.Create(txCtx, doc); err != nil {
			return err
		}

		extraction := &models.Extraction{
			MatterID:         matter.ID,
			ExtractionRecord: result.Record,
			Truncated:        result.Truncated,
		}
		if err := s.extractionRepo.Create(txCtx, extraction); err != nil {
			return err
		}

		return s.matterRepo.AdvanceStatus(txCtx, matter.ID, models.MatterStatusParsed)
	})
	if err != nil {
		return nil, fmt.Errorf("save ingested matter: %w", err)
	}

	logger.Info("office action ingested",
		"matter_id", matter.ID,
		"mode", s.ingestMode,
		"model", result.Model,
		"truncated", result.Truncated,
		"rejections", len(result.Record.Rejections),
		"claims", len(result.Record.Claims),
	)

	return &services.IngestResult{
		MatterID:  matter.ID,
		Status:    models.MatterStatusParsed,
		Truncated: result.Truncated,
	}, nil
}

// GetExtraction returns the stored extraction for a matter
func (s *matterService) GetExtraction(ctx context.Context, userID, matterID string) (*models.Extraction, error) {
	if err := s.gate.CanAccessMatter(ctx, userID, matterID); err != nil {
		return nil, err
	}
	return s.extractionRepo.GetByMatterID(ctx, matterID)
}

// CleanupOCR re-runs OCR on the matter's office action and replaces its text.
// With Reextract the extraction is rebuilt from the new text as well.
func (s *matterService) CleanupOCR(ctx context.Context, userID string, req *services.CleanupOCRRequest) (*services.CleanupOCRResult, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.MatterID, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := s.gate.CanAccessMatter(ctx, userID, req.MatterID); err != nil {
		return nil, err
	}
	if s.ocr == nil {
		return nil, domain.Validationf("OCR is not configured for this deployment")
	}

	doc, err := s.docRepo.GetByType(ctx, req.MatterID, models.DocumentTypeOfficeAction)
	if err != nil {
		return nil, err
	}

	pdf, err := s.blobs.Download(ctx, doc.Path)
	if err != nil {
		return nil, fmt.Errorf("download office action: %w", err)
	}

	text, err := s.ocr.ExtractText(ctx, pdf)
	if err != nil {
		return nil, fmt.Errorf("ocr office action: %w", err)
	}

	// Extract before writing anything so a failure leaves the old text in place
	var result *services.ExtractionResult
	if req.Reextract {
		result, err = s.extractor.Extract(ctx, &services.ExtractionInput{Text: text})
		if err != nil {
			return nil, fmt.Errorf("re-extract office action: %w", err)
		}
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.UpdateText(txCtx, doc.ID, text); err != nil {
			return err
		}
		if result == nil {
			return nil
		}
		return s.extractionRepo.Upsert(txCtx, &models.Extraction{
			MatterID:         req.MatterID,
			ExtractionRecord: result.Record,
			Truncated:        result.Truncated,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("save re-ocr: %w", err)
	}

	s.logger.Info("office action re-ocr complete",
		"matter_id", req.MatterID,
		"chars", len(text),
		"reextracted", result != nil,
	)

	out := &services.CleanupOCRResult{Status: ReparsedStatus}
	if result != nil {
		out.Reextracted = true
		out.Truncated = result.Truncated
	}
	return out, nil
}

// GetMatter returns one matter
func (s *matterService) GetMatter(ctx context.Context, userID, matterID string) (*models.Matter, error) {
	if err := s.gate.CanAccessMatter(ctx, userID, matterID); err != nil {
		return nil, err
	}
	return s.matterRepo.GetByIDOnly(ctx, matterID)
}

// ListMatters returns the caller's matters
func (s *matterService) ListMatters(ctx context.Context, userID string) ([]models.Matter, error) {
	if userID == "" {
		return nil, fmt.Errorf("no caller identity: %w", domain.ErrUnauthorized)
	}
	return s.matterRepo.List(ctx, userID)
}

// validateIngestRequest validates an ingest request
func validateIngestRequest(req *services.IngestRequest) error {
	jurisdictions := make([]any, len(models.Jurisdictions))
	for i, j := range models.Jurisdictions {
		jurisdictions[i] = string(j)
	}
	return validation.ValidateStruct(req,
		validation.Field(&req.FileID,
			validation.Required.Error("file_id is required"),
			validation.Length(1, config.MaxFileIDLength),
		),
		validation.Field(&req.Jurisdiction, validation.In(jurisdictions...)),
		validation.Field(&req.Title, validation.Length(0, config.MaxMatterTitleLength)),
	)
}
