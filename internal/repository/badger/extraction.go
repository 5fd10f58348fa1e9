package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"oaresponse/internal/domain"
	"oaresponse/internal/domain/models"
)

type extractionRepo struct{ s *Store }

func (r *extractionRepo) Create(ctx context.Context, extraction *models.Extraction) error {
	return r.put(ctx, extraction, false)
}

func (r *extractionRepo) Upsert(ctx context.Context, extraction *models.Extraction) error {
	return r.put(ctx, extraction, true)
}

func (r *extractionRepo) put(ctx context.Context, extraction *models.Extraction, replace bool) error {
	extraction.Normalize()
	key := extractionPrefix + extraction.MatterID

	err := r.s.write(ctx, func(txn *badger.Txn) error {
		if err := matterExists(txn, extraction.MatterID); err != nil {
			return err
		}

		now := time.Now().UTC()
		stored := *extraction
		stored.CreatedAt = now
		stored.UpdatedAt = now

		var existing models.Extraction
		err := getJSON(txn, key, &existing)
		switch {
		case err == nil && !replace:
			return &domain.ConflictError{
				Message:      fmt.Sprintf("extraction for matter %s already exists", extraction.MatterID),
				ResourceType: "extraction",
				ResourceID:   extraction.MatterID,
			}
		case err == nil:
			stored.CreatedAt = existing.CreatedAt
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}

		if err := putJSON(txn, key, &stored); err != nil {
			return err
		}
		*extraction = stored
		return nil
	})
	if err != nil {
		return fmt.Errorf("save extraction: %w", err)
	}
	return nil
}

func (r *extractionRepo) GetByMatterID(ctx context.Context, matterID string) (*models.Extraction, error) {
	var extraction models.Extraction
	err := r.s.read(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, extractionPrefix+matterID, &extraction)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("extraction for matter %s: %w", matterID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get extraction: %w", err)
	}
	extraction.Normalize()
	return &extraction, nil
}
