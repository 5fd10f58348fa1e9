package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"oaresponse/internal/domain"
	"oaresponse/internal/domain/models"
)

type documentRepo struct{ s *Store }

func (r *documentRepo) Create(ctx context.Context, doc *models.Document) error {
	now := time.Now().UTC()
	stored := *doc
	stored.ID = uuid.NewString()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	err := r.s.write(ctx, func(txn *badger.Txn) error {
		if err := matterExists(txn, stored.MatterID); err != nil {
			return err
		}
		return putJSON(txn, documentPrefix+stored.ID, &stored)
	})
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	*doc = stored
	return nil
}

func (r *documentRepo) GetByType(ctx context.Context, matterID string, docType models.DocumentType) (*models.Document, error) {
	var latest *models.Document
	err := r.s.read(ctx, func(txn *badger.Txn) error {
		return scanJSON(txn, documentPrefix, func(val []byte) error {
			var d models.Document
			if err := json.Unmarshal(val, &d); err != nil {
				return err
			}
			if d.MatterID == matterID && d.Type == docType && (latest == nil || d.CreatedAt.After(latest.CreatedAt)) {
				latest = &d
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if latest == nil {
		return nil, fmt.Errorf("%s document for matter %s: %w", docType, matterID, domain.ErrNotFound)
	}
	return latest, nil
}

func (r *documentRepo) UpdateText(ctx context.Context, id, text string) error {
	return r.s.write(ctx, func(txn *badger.Txn) error {
		var doc models.Document
		err := getJSON(txn, documentPrefix+id, &doc)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("update document text: %w", err)
		}
		doc.Text = text
		doc.UpdatedAt = time.Now().UTC()
		return putJSON(txn, documentPrefix+id, &doc)
	})
}
