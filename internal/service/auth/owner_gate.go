package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"oaresponse/internal/domain"
	"oaresponse/internal/domain/repositories"
	"oaresponse/internal/domain/services"
)

// OwnerGate implements AuthorizationGate using ownership checks.
// A user can access a matter if they created it.
type OwnerGate struct {
	matterRepo repositories.MatterRepository
}

// NewOwnerGate creates a new ownership-based gate
func NewOwnerGate(matterRepo repositories.MatterRepository) *OwnerGate {
	return &OwnerGate{matterRepo: matterRepo}
}

var _ services.AuthorizationGate = (*OwnerGate)(nil)

// CanAccessMatter checks if user owns the matter.
// Absent and foreign matters both report domain.ErrNotFound.
func (g *OwnerGate) CanAccessMatter(ctx context.Context, userID, matterID string) error {
	if userID == "" {
		return fmt.Errorf("no caller identity: %w", domain.ErrUnauthorized)
	}
	if _, err := uuid.Parse(matterID); err != nil {
		return domain.Validationf("matter_id must be a UUID")
	}

	// Get matter by UUID only (no owner scoping) so the decision is made here
	matter, err := g.matterRepo.GetByIDOnly(ctx, matterID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("matter %s: %w", matterID, domain.ErrNotFound)
		}
		return fmt.Errorf("get matter for auth: %w", err)
	}

	if matter.UserID != userID {
		return fmt.Errorf("matter %s: %w", matterID, domain.ErrNotFound)
	}
	return nil
}
