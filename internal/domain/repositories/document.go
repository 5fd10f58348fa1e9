package repositories

import (
	"context"

	"oaresponse/internal/domain/models"
)

// DocumentRepository defines data access operations for matter documents
type DocumentRepository interface {
	// Create inserts a document and fills in its generated ID and timestamps
	Create(ctx context.Context, doc *models.Document) error

	// GetByType returns the most recent document of the given type for a matter
	GetByType(ctx context.Context, matterID string, docType models.DocumentType) (*models.Document, error)

	// UpdateText replaces the recovered text of a document
	UpdateText(ctx context.Context, id, text string) error
}
