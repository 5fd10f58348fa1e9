package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"oaresponse/internal/domain"
	"oaresponse/internal/domain/models"
	"oaresponse/internal/domain/repositories"
)

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (matter_id, type, path, text, page_count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, r.tables.Documents)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		doc.MatterID,
		doc.Type,
		doc.Path,
		doc.Text,
		doc.PageCount,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("matter %s: %w", doc.MatterID, domain.ErrNotFound)
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByType returns the newest document of docType for a matter
func (r *PostgresDocumentRepository) GetByType(ctx context.Context, matterID string, docType models.DocumentType) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, matter_id, type, path, text, page_count, created_at, updated_at
		FROM %s
		WHERE matter_id = $1 AND type = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, r.tables.Documents)

	var doc models.Document
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, matterID, docType).Scan(
		&doc.ID,
		&doc.MatterID,
		&doc.Type,
		&doc.Path,
		&doc.Text,
		&doc.PageCount,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("%s document for matter %s: %w", docType, matterID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

// UpdateText replaces the recovered text of a document
func (r *PostgresDocumentRepository) UpdateText(ctx context.Context, id, text string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET text = $1, updated_at = now()
		WHERE id = $2
	`, r.tables.Documents)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, text, id)
	if err != nil {
		return fmt.Errorf("update document text: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
