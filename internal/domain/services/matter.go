package services

import (
	"context"

	"oaresponse/internal/domain/models"
)

// IngestRequest starts the pipeline for an uploaded office action
type IngestRequest struct {
	FileID       string `json:"file_id"`
	Jurisdiction string `json:"jurisdiction"`
	Title        string `json:"title"`
}

// UploadRequest carries a PDF to store ahead of ingest
type UploadRequest struct {
	Filename string
	Data     []byte
}

// UploadResult names the stored file; FileID is what Ingest takes
type UploadResult struct {
	FileID string `json:"file_id"`
	Bytes  int    `json:"bytes"`
	Pages  int    `json:"pages"`
}

// IngestResult is returned once a matter has been fully parsed
type IngestResult struct {
	MatterID  string              `json:"matter_id"`
	Status    models.MatterStatus `json:"status"`
	Truncated bool                `json:"truncated"`
}

// CleanupOCRRequest re-runs OCR for a matter's office action
type CleanupOCRRequest struct {
	MatterID string `json:"matter_id"`
	// Reextract also re-runs extraction on the new text and replaces the
	// stored extraction.
	Reextract bool `json:"reextract"`
}

// CleanupOCRResult reports the outcome of a re-OCR
type CleanupOCRResult struct {
	Status      string `json:"status"`
	Reextracted bool   `json:"reextracted,omitempty"`
	Truncated   bool   `json:"truncated,omitempty"`
}

// MatterService runs the ingest side of the pipeline and serves matter reads
type MatterService interface {
	// Upload checks that the bytes are a readable PDF and stores them under a
	// fresh random key.
	Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error)

	// Ingest downloads, OCRs and extracts an uploaded PDF and persists the
	// matter, document and extraction together, or nothing at all.
	Ingest(ctx context.Context, userID string, req *IngestRequest) (*IngestResult, error)

	// GetExtraction returns the current extraction for a matter the caller owns
	GetExtraction(ctx context.Context, userID, matterID string) (*models.Extraction, error)

	// CleanupOCR re-runs OCR on the stored office action
	CleanupOCR(ctx context.Context, userID string, req *CleanupOCRRequest) (*CleanupOCRResult, error)

	// GetMatter returns one matter the caller owns
	GetMatter(ctx context.Context, userID, matterID string) (*models.Matter, error)

	// ListMatters returns the caller's matters, newest first
	ListMatters(ctx context.Context, userID string) ([]models.Matter, error)
}
