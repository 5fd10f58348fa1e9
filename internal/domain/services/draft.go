package services

import (
	"context"

	"oaresponse/internal/domain/models"
)

// GenerateDraftRequest asks for a new draft version.
// Rejections, Claims and PriorArt are optional; when all are nil the stored
// extraction for the matter is used.
type GenerateDraftRequest struct {
	MatterID     string             `json:"matter_id"`
	Jurisdiction string             `json:"jurisdiction"`
	Style        string             `json:"style"`
	Sections     []string           `json:"sections"`
	Rejections   []models.Rejection `json:"rejections"`
	Claims       []models.Claim     `json:"claims"`
	PriorArt     []models.PriorArt  `json:"prior_art"`
}

// DraftService generates and lists response drafts
type DraftService interface {
	Generate(ctx context.Context, userID string, req *GenerateDraftRequest) (*models.Draft, error)
	ListDrafts(ctx context.Context, userID, matterID string) ([]models.Draft, error)
}

// ExportRequest selects a matter and an output format
type ExportRequest struct {
	MatterID string `json:"matter_id"`
	Format   string `json:"format"`
}

// ExportedFile is a rendered draft ready for download
type ExportedFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the latest draft of a matter
type ExportService interface {
	Export(ctx context.Context, userID string, req *ExportRequest) (*ExportedFile, error)
}
