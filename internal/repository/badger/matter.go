package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"oaresponse/internal/domain"
	"oaresponse/internal/domain/models"
)

type matterRepo struct{ s *Store }

func (r *matterRepo) Create(ctx context.Context, matter *models.Matter) error {
	if matter.Status == "" {
		matter.Status = models.MatterStatusCreated
	}
	now := time.Now().UTC()
	stored := *matter
	stored.ID = uuid.NewString()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	err := r.s.write(ctx, func(txn *badger.Txn) error {
		return putJSON(txn, matterPrefix+stored.ID, &stored)
	})
	if err != nil {
		return fmt.Errorf("create matter: %w", err)
	}
	*matter = stored
	return nil
}

func (r *matterRepo) get(ctx context.Context, id string) (*models.Matter, error) {
	var matter models.Matter
	err := r.s.read(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, matterPrefix+id, &matter)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("matter %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get matter: %w", err)
	}
	return &matter, nil
}

func (r *matterRepo) GetByID(ctx context.Context, id, userID string) (*models.Matter, error) {
	matter, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if matter.UserID != userID {
		return nil, fmt.Errorf("matter %s: %w", id, domain.ErrNotFound)
	}
	return matter, nil
}

func (r *matterRepo) GetByIDOnly(ctx context.Context, id string) (*models.Matter, error) {
	return r.get(ctx, id)
}

// LockForUpdate rewrites the matter key so that two transactions drafting the
// same matter conflict on commit.
func (r *matterRepo) LockForUpdate(ctx context.Context, id string) error {
	return r.s.write(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(matterPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("matter %s: %w", id, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("lock matter: %w", err)
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("lock matter: %w", err)
		}
		return txn.Set([]byte(matterPrefix+id), val)
	})
}

func (r *matterRepo) List(ctx context.Context, userID string) ([]models.Matter, error) {
	matters := []models.Matter{}
	err := r.s.read(ctx, func(txn *badger.Txn) error {
		return scanJSON(txn, matterPrefix, func(val []byte) error {
			var m models.Matter
			if err := json.Unmarshal(val, &m); err != nil {
				return err
			}
			if m.UserID == userID {
				matters = append(matters, m)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list matters: %w", err)
	}

	slices.SortFunc(matters, func(a, b models.Matter) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return matters, nil
}

func (r *matterRepo) AdvanceStatus(ctx context.Context, id string, status models.MatterStatus) error {
	if len(status.Predecessors()) == 0 {
		return domain.Validationf("unknown matter status %q", status)
	}

	return r.s.write(ctx, func(txn *badger.Txn) error {
		var matter models.Matter
		err := getJSON(txn, matterPrefix+id, &matter)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("matter %s: %w", id, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("advance matter status: %w", err)
		}
		if !matter.Status.CanAdvanceTo(status) {
			return nil
		}
		matter.Status = status
		matter.UpdatedAt = time.Now().UTC()
		return putJSON(txn, matterPrefix+id, &matter)
	})
}
