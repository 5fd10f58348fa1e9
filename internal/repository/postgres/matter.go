package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"oaresponse/internal/domain"
	"oaresponse/internal/domain/models"
	"oaresponse/internal/domain/repositories"
)

// PostgresMatterRepository implements the MatterRepository interface
type PostgresMatterRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewMatterRepository creates a new matter repository
func NewMatterRepository(config *RepositoryConfig) repositories.MatterRepository {
	return &PostgresMatterRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const matterColumns = `id, user_id, title, jurisdiction, status, created_at, updated_at`

// Create creates a new matter
func (r *PostgresMatterRepository) Create(ctx context.Context, matter *models.Matter) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, title, jurisdiction, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, r.tables.Matters)

	if matter.Status == "" {
		matter.Status = models.MatterStatusCreated
	}

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		matter.UserID,
		matter.Title,
		matter.Jurisdiction,
		matter.Status,
	).Scan(&matter.ID, &matter.CreatedAt, &matter.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create matter: %w", err)
	}

	return nil
}

// GetByID retrieves a matter owned by userID
func (r *PostgresMatterRepository) GetByID(ctx context.Context, id, userID string) (*models.Matter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND user_id = $2`, matterColumns, r.tables.Matters)

	var matter models.Matter
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, userID).Scan(
		&matter.ID,
		&matter.UserID,
		&matter.Title,
		&matter.Jurisdiction,
		&matter.Status,
		&matter.CreatedAt,
		&matter.UpdatedAt,
	)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("matter %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get matter: %w", err)
	}

	return &matter, nil
}

// GetByIDOnly retrieves a matter without owner scoping
func (r *PostgresMatterRepository) GetByIDOnly(ctx context.Context, id string) (*models.Matter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, matterColumns, r.tables.Matters)

	var matter models.Matter
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&matter.ID,
		&matter.UserID,
		&matter.Title,
		&matter.Jurisdiction,
		&matter.Status,
		&matter.CreatedAt,
		&matter.UpdatedAt,
	)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("matter %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get matter: %w", err)
	}

	return &matter, nil
}

// LockForUpdate takes a row lock on the matter. Only meaningful inside a
// transaction; the lock is held until it ends.
func (r *PostgresMatterRepository) LockForUpdate(ctx context.Context, id string) error {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 FOR UPDATE`, r.tables.Matters)

	var locked string
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id).Scan(&locked); err != nil {
		if isPgNoRowsError(err) {
			return fmt.Errorf("matter %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("lock matter: %w", err)
	}
	return nil
}

// List retrieves all matters for a user, newest first
func (r *PostgresMatterRepository) List(ctx context.Context, userID string) ([]models.Matter, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, matterColumns, r.tables.Matters)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list matters: %w", err)
	}
	defer rows.Close()

	matters := []models.Matter{}
	for rows.Next() {
		var matter models.Matter
		if err := rows.Scan(
			&matter.ID,
			&matter.UserID,
			&matter.Title,
			&matter.Jurisdiction,
			&matter.Status,
			&matter.CreatedAt,
			&matter.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan matter: %w", err)
		}
		matters = append(matters, matter)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matters: %w", err)
	}

	return matters, nil
}

// AdvanceStatus moves the matter forward. The WHERE clause only matches rows
// whose current status may move to status, so a concurrent writer can never
// push a matter backwards.
func (r *PostgresMatterRepository) AdvanceStatus(ctx context.Context, id string, status models.MatterStatus) error {
	predecessors := status.Predecessors()
	if len(predecessors) == 0 {
		return domain.Validationf("unknown matter status %q", status)
	}
	from := make([]string, len(predecessors))
	for i, s := range predecessors {
		from[i] = string(s)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = ANY($3)
	`, r.tables.Matters)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, status, id, from)
	if err != nil {
		return fmt.Errorf("advance matter status: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either missing or already further along; only the former is an error
		if _, err := r.GetByIDOnly(ctx, id); err != nil {
			return err
		}
	}

	return nil
}
