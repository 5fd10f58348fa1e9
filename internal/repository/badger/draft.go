package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"oaresponse/internal/domain"
	"oaresponse/internal/domain/models"
)

type draftRepo struct{ s *Store }

func draftKeyPrefix(matterID string) string {
	return draftPrefix + matterID + ":"
}

func (r *draftRepo) Create(ctx context.Context, draft *models.Draft) error {
	draft.Normalize()

	err := r.s.write(ctx, func(txn *badger.Txn) error {
		if err := matterExists(txn, draft.MatterID); err != nil {
			return err
		}
		if r.s.opts.UniqueDraftVersions {
			existing, err := listDrafts(txn, draft.MatterID)
			if err != nil {
				return err
			}
			for _, d := range existing {
				if d.Version == draft.Version {
					return &domain.ConflictError{
						Message:      fmt.Sprintf("draft version %d already exists for matter %s", draft.Version, draft.MatterID),
						ResourceType: "draft",
						ResourceID:   d.ID,
					}
				}
			}
		}

		stored := *draft
		stored.ID = uuid.NewString()
		stored.CreatedAt = time.Now().UTC()
		if err := putJSON(txn, draftKeyPrefix(stored.MatterID)+stored.ID, &stored); err != nil {
			return err
		}
		*draft = stored
		return nil
	})
	if err != nil {
		return fmt.Errorf("create draft: %w", err)
	}
	return nil
}

func (r *draftRepo) MaxVersion(ctx context.Context, matterID string) (int, error) {
	drafts, err := r.list(ctx, matterID)
	if err != nil {
		return 0, err
	}
	if len(drafts) == 0 {
		return 0, nil
	}
	return drafts[0].Version, nil
}

func (r *draftRepo) GetLatest(ctx context.Context, matterID string) (*models.Draft, error) {
	drafts, err := r.list(ctx, matterID)
	if err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return nil, fmt.Errorf("draft for matter %s: %w", matterID, domain.ErrNotFound)
	}
	return &drafts[0], nil
}

func (r *draftRepo) ListByMatter(ctx context.Context, matterID string) ([]models.Draft, error) {
	return r.list(ctx, matterID)
}

func (r *draftRepo) list(ctx context.Context, matterID string) ([]models.Draft, error) {
	var drafts []models.Draft
	err := r.s.read(ctx, func(txn *badger.Txn) error {
		var err error
		drafts, err = listDrafts(txn, matterID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return drafts, nil
}

// listDrafts returns a matter's drafts by version, then insertion time, newest first
func listDrafts(txn *badger.Txn, matterID string) ([]models.Draft, error) {
	drafts := []models.Draft{}
	err := scanJSON(txn, draftKeyPrefix(matterID), func(val []byte) error {
		var d models.Draft
		if err := json.Unmarshal(val, &d); err != nil {
			return err
		}
		d.Normalize()
		drafts = append(drafts, d)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(drafts, func(a, b models.Draft) int {
		if a.Version != b.Version {
			return b.Version - a.Version
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return drafts, nil
}
