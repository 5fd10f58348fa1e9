package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SchemaOptions controls the constraints Migrate creates.
type SchemaOptions struct {
	// UniqueDraftVersions adds a unique index on (matter_id, version). It must
	// be off when drafts are written with a fixed version; Migrate then drops
	// an index left by an earlier increment-mode run.
	UniqueDraftVersions bool
}

// Migrate creates the pipeline tables if they do not exist. It is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, opts SchemaOptions) error {
	statements := []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL,
			title VARCHAR(255) NOT NULL DEFAULT '',
			jurisdiction TEXT NOT NULL CHECK (jurisdiction IN ('USPTO', 'EPO', 'WIPO')),
			status TEXT NOT NULL DEFAULT 'created' CHECK (status IN ('created', 'parsed', 'drafted')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, tables.Matters),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_user_created_idx ON %[1]s (user_id, created_at DESC)`, tables.Matters),

		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			matter_id UUID NOT NULL REFERENCES %[2]s (id) ON DELETE CASCADE,
			type TEXT NOT NULL,
			path TEXT NOT NULL,
			text TEXT NOT NULL DEFAULT '',
			page_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, tables.Documents, tables.Matters),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_matter_type_idx ON %[1]s (matter_id, type, created_at DESC)`, tables.Documents),

		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			matter_id UUID PRIMARY KEY REFERENCES %[2]s (id) ON DELETE CASCADE,
			metadata JSONB NOT NULL DEFAULT '{}',
			rejections JSONB NOT NULL DEFAULT '[]',
			formalities JSONB NOT NULL DEFAULT '[]',
			claims JSONB NOT NULL DEFAULT '[]',
			prior_art JSONB NOT NULL DEFAULT '[]',
			truncated BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, tables.Extractions, tables.Matters),

		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			matter_id UUID NOT NULL REFERENCES %[2]s (id) ON DELETE CASCADE,
			user_id UUID NOT NULL,
			version INTEGER NOT NULL CHECK (version >= 1),
			outline TEXT NOT NULL DEFAULT '',
			arguments JSONB NOT NULL DEFAULT '[]',
			amendments JSONB NOT NULL DEFAULT '[]',
			citations JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
		)`, tables.Drafts, tables.Matters),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_matter_version_idx ON %[1]s (matter_id, version DESC, created_at DESC)`, tables.Drafts),
	}

	// the index follows the current mode, so switching to fixed drops it
	if opts.UniqueDraftVersions {
		statements = append(statements,
			fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %[1]s_matter_version_key ON %[1]s (matter_id, version)`, tables.Drafts))
	} else {
		statements = append(statements,
			fmt.Sprintf(`DROP INDEX IF EXISTS %s_matter_version_key`, tables.Drafts))
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// DropAll drops every pipeline table for the configured prefix.
func DropAll(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	// children first
	for _, table := range []string{tables.Drafts, tables.Extractions, tables.Documents, tables.Matters} {
		if _, err := pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}
