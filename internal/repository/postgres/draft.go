package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"oaresponse/internal/domain"
	"oaresponse/internal/domain/models"
	"oaresponse/internal/domain/repositories"
)

// PostgresDraftRepository implements the DraftRepository interface
type PostgresDraftRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewDraftRepository creates a new draft repository
func NewDraftRepository(config *RepositoryConfig) repositories.DraftRepository {
	return &PostgresDraftRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const draftColumns = `id, matter_id, user_id, version, outline, arguments, amendments, citations, created_at`

// Create inserts a draft with its version already assigned
func (r *PostgresDraftRepository) Create(ctx context.Context, draft *models.Draft) error {
	draft.Normalize()
	arguments, err := jsonbArg(draft.Arguments)
	if err != nil {
		return err
	}
	amendments, err := jsonbArg(draft.Amendments)
	if err != nil {
		return err
	}
	citations, err := jsonbArg(draft.Citations)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (matter_id, user_id, version, outline, arguments, amendments, citations)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, r.tables.Drafts)

	err = GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		draft.MatterID,
		draft.UserID,
		draft.Version,
		draft.Outline,
		arguments,
		amendments,
		citations,
	).Scan(&draft.ID, &draft.CreatedAt)
	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("draft version %d already exists for matter %s", draft.Version, draft.MatterID),
				ResourceType: "draft",
				ResourceID:   draft.MatterID,
			}
		}
		if isPgForeignKeyError(err) {
			return fmt.Errorf("matter %s: %w", draft.MatterID, domain.ErrNotFound)
		}
		return fmt.Errorf("create draft: %w", err)
	}

	return nil
}

// MaxVersion returns the highest version for a matter, 0 if none
func (r *PostgresDraftRepository) MaxVersion(ctx context.Context, matterID string) (int, error) {
	query := fmt.Sprintf(`SELECT COALESCE(MAX(version), 0) FROM %s WHERE matter_id = $1`, r.tables.Drafts)

	var version int
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, matterID).Scan(&version); err != nil {
		return 0, fmt.Errorf("max draft version: %w", err)
	}
	return version, nil
}

// GetLatest returns the highest version; among equal versions the most
// recently inserted row wins.
func (r *PostgresDraftRepository) GetLatest(ctx context.Context, matterID string) (*models.Draft, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE matter_id = $1
		ORDER BY version DESC, created_at DESC
		LIMIT 1
	`, draftColumns, r.tables.Drafts)

	draft, err := scanDraft(GetExecutor(ctx, r.pool).QueryRow(ctx, query, matterID))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("draft for matter %s: %w", matterID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get latest draft: %w", err)
	}
	return draft, nil
}

// ListByMatter returns every draft for a matter, latest first
func (r *PostgresDraftRepository) ListByMatter(ctx context.Context, matterID string) ([]models.Draft, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE matter_id = $1
		ORDER BY version DESC, created_at DESC
	`, draftColumns, r.tables.Drafts)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, matterID)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	drafts := []models.Draft{}
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		drafts = append(drafts, *draft)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drafts: %w", err)
	}

	return drafts, nil
}

func scanDraft(row pgx.Row) (*models.Draft, error) {
	var (
		d                               models.Draft
		arguments, amendments, citations []byte
	)
	if err := row.Scan(
		&d.ID,
		&d.MatterID,
		&d.UserID,
		&d.Version,
		&d.Outline,
		&arguments,
		&amendments,
		&citations,
		&d.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := scanJSONB(arguments, &d.Arguments); err != nil {
		return nil, err
	}
	if err := scanJSONB(amendments, &d.Amendments); err != nil {
		return nil, err
	}
	if err := scanJSONB(citations, &d.Citations); err != nil {
		return nil, err
	}
	d.Normalize()
	return &d, nil
}
