package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"oaresponse/internal/config"
	"oaresponse/internal/repository/postgres"
)

var dropTables bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the pipeline tables",
	Long: `Creates the matters, documents, extractions and drafts tables for the
configured TABLE_PREFIX. Safe to run repeatedly.

With --drop the tables are dropped first. Dropping is refused in prod.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVar(&dropTables, "drop", false, "drop all tables before creating them")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.StoreBackend != config.StoreBackendPostgres {
		return fmt.Errorf("migrate only applies to STORE_BACKEND=%s", config.StoreBackendPostgres)
	}
	if dropTables && cfg.Environment == "prod" {
		return fmt.Errorf("refusing to drop tables in the prod environment")
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if dropTables {
		if err := postgres.DropAll(ctx, pool, tables); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "dropped tables (prefix %q)\n", cfg.TablePrefix)
	}

	opts := postgres.SchemaOptions{UniqueDraftVersions: cfg.DraftVersioning == config.DraftVersioningIncrement}
	if err := postgres.Migrate(ctx, pool, tables, opts); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema ready (prefix %q)\n", cfg.TablePrefix)
	return nil
}
