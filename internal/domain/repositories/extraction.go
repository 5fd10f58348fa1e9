package repositories

import (
	"context"

	"oaresponse/internal/domain/models"
)

// ExtractionRepository defines data access operations for extractions.
// A matter has at most one extraction row.
type ExtractionRepository interface {
	// Create inserts the extraction; a second insert for the same matter is a conflict
	Create(ctx context.Context, extraction *models.Extraction) error

	// Upsert inserts or replaces the extraction for a matter
	Upsert(ctx context.Context, extraction *models.Extraction) error

	// GetByMatterID retrieves the extraction for a matter
	GetByMatterID(ctx context.Context, matterID string) (*models.Extraction, error)
}
