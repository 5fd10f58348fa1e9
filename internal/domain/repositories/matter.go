package repositories

import (
	"context"

	"oaresponse/internal/domain/models"
)

// MatterRepository defines data access operations for matters
type MatterRepository interface {
	// Create inserts a matter and fills in its generated ID and timestamps
	Create(ctx context.Context, matter *models.Matter) error

	// GetByID retrieves a matter owned by userID
	GetByID(ctx context.Context, id, userID string) (*models.Matter, error)

	// GetByIDOnly retrieves a matter without owner scoping (authorization lookups)
	GetByIDOnly(ctx context.Context, id string) (*models.Matter, error)

	// LockForUpdate takes a row lock on the matter for the rest of the transaction
	LockForUpdate(ctx context.Context, id string) error

	// List retrieves all matters for a user, newest first
	List(ctx context.Context, userID string) ([]models.Matter, error)

	// AdvanceStatus moves a matter forward to status. A matter already at or
	// beyond status is left unchanged.
	AdvanceStatus(ctx context.Context, id string, status models.MatterStatus) error
}
