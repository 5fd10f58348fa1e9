package repositories

import (
	"context"

	"oaresponse/internal/domain/models"
)

// DraftRepository defines data access operations for draft versions
type DraftRepository interface {
	// Create inserts a draft with the version already set on it
	Create(ctx context.Context, draft *models.Draft) error

	// MaxVersion returns the highest version for a matter, 0 if none
	MaxVersion(ctx context.Context, matterID string) (int, error)

	// GetLatest returns the highest version, ties broken by most recent insert
	GetLatest(ctx context.Context, matterID string) (*models.Draft, error)

	// ListByMatter returns every draft for a matter, latest first
	ListByMatter(ctx context.Context, matterID string) ([]models.Draft, error)
}
