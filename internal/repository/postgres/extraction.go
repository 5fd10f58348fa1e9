package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"oaresponse/internal/domain"
	"oaresponse/internal/domain/models"
	"oaresponse/internal/domain/repositories"
)

// PostgresExtractionRepository implements the ExtractionRepository interface.
// matter_id is the primary key, so a matter can never hold two extractions.
type PostgresExtractionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewExtractionRepository creates a new extraction repository
func NewExtractionRepository(config *RepositoryConfig) repositories.ExtractionRepository {
	return &PostgresExtractionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

type extractionArgs struct {
	metadata, rejections, formalities, claims, priorArt string
}

func newExtractionArgs(e *models.Extraction) (*extractionArgs, error) {
	e.Normalize()
	var (
		a   extractionArgs
		err error
	)
	if a.metadata, err = jsonbArg(e.Metadata); err != nil {
		return nil, err
	}
	if a.rejections, err = jsonbArg(e.Rejections); err != nil {
		return nil, err
	}
	if a.formalities, err = jsonbArg(e.Formalities); err != nil {
		return nil, err
	}
	if a.claims, err = jsonbArg(e.Claims); err != nil {
		return nil, err
	}
	if a.priorArt, err = jsonbArg(e.PriorArt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts the extraction for a matter
func (r *PostgresExtractionRepository) Create(ctx context.Context, extraction *models.Extraction) error {
	args, err := newExtractionArgs(extraction)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (matter_id, metadata, rejections, formalities, claims, prior_art, truncated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, r.tables.Extractions)

	err = GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		extraction.MatterID,
		args.metadata,
		args.rejections,
		args.formalities,
		args.claims,
		args.priorArt,
		extraction.Truncated,
	).Scan(&extraction.CreatedAt, &extraction.UpdatedAt)
	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("extraction for matter %s already exists", extraction.MatterID),
				ResourceType: "extraction",
				ResourceID:   extraction.MatterID,
			}
		}
		if isPgForeignKeyError(err) {
			return fmt.Errorf("matter %s: %w", extraction.MatterID, domain.ErrNotFound)
		}
		return fmt.Errorf("create extraction: %w", err)
	}

	return nil
}

// Upsert inserts the extraction or replaces the existing one in a single
// statement, so concurrent re-extractions leave exactly one row.
func (r *PostgresExtractionRepository) Upsert(ctx context.Context, extraction *models.Extraction) error {
	args, err := newExtractionArgs(extraction)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (matter_id, metadata, rejections, formalities, claims, prior_art, truncated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (matter_id) DO UPDATE SET
			metadata = EXCLUDED.metadata,
			rejections = EXCLUDED.rejections,
			formalities = EXCLUDED.formalities,
			claims = EXCLUDED.claims,
			prior_art = EXCLUDED.prior_art,
			truncated = EXCLUDED.truncated,
			updated_at = now()
		RETURNING created_at, updated_at
	`, r.tables.Extractions)

	err = GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		extraction.MatterID,
		args.metadata,
		args.rejections,
		args.formalities,
		args.claims,
		args.priorArt,
		extraction.Truncated,
	).Scan(&extraction.CreatedAt, &extraction.UpdatedAt)
	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("matter %s: %w", extraction.MatterID, domain.ErrNotFound)
		}
		return fmt.Errorf("upsert extraction: %w", err)
	}

	return nil
}

// GetByMatterID retrieves the extraction for a matter
func (r *PostgresExtractionRepository) GetByMatterID(ctx context.Context, matterID string) (*models.Extraction, error) {
	query := fmt.Sprintf(`
		SELECT matter_id, metadata, rejections, formalities, claims, prior_art, truncated, created_at, updated_at
		FROM %s
		WHERE matter_id = $1
	`, r.tables.Extractions)

	var (
		e                                                    models.Extraction
		metadata, rejections, formalities, claims, priorArt []byte
	)
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, matterID).Scan(
		&e.MatterID,
		&metadata,
		&rejections,
		&formalities,
		&claims,
		&priorArt,
		&e.Truncated,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("extraction for matter %s: %w", matterID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get extraction: %w", err)
	}

	for _, col := range []struct {
		raw []byte
		dst any
	}{
		{metadata, &e.Metadata},
		{rejections, &e.Rejections},
		{formalities, &e.Formalities},
		{claims, &e.Claims},
		{priorArt, &e.PriorArt},
	} {
		if err := scanJSONB(col.raw, col.dst); err != nil {
			return nil, fmt.Errorf("decode extraction for matter %s: %w", matterID, err)
		}
	}
	e.Normalize()

	return &e, nil
}
