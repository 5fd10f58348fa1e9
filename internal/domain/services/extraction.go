package services

import (
	"context"

	"oaresponse/internal/domain/models"
)

// ExtractionInput is either recovered text or, when OCR is skipped, the raw PDF.
type ExtractionInput struct {
	Text string
	PDF  []byte
}

// ExtractionResult is a validated record plus how it was produced
type ExtractionResult struct {
	Record    models.ExtractionRecord
	Truncated bool
	Model     string
}

// Extractor turns an office action into a structured record
type Extractor interface {
	Extract(ctx context.Context, in *ExtractionInput) (*ExtractionResult, error)
}
