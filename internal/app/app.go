// Package app assembles the pipeline services from configuration. The HTTP
// server and the operator CLI share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/dgraph-io/badger/v4"

	"oaresponse/internal/config"
	"oaresponse/internal/domain/repositories"
	"oaresponse/internal/domain/services"
	"oaresponse/internal/jurisdiction"
	"oaresponse/internal/ocr"
	recordstore "oaresponse/internal/repository/badger"
	"oaresponse/internal/repository/postgres"
	authSvc "oaresponse/internal/service/auth"
	draftSvc "oaresponse/internal/service/draft"
	exportSvc "oaresponse/internal/service/export"
	"oaresponse/internal/service/extraction"
	llmSvc "oaresponse/internal/service/llm"
	matterSvc "oaresponse/internal/service/matter"
	blobstore "oaresponse/internal/storage/badger"
	"oaresponse/internal/storage/supabase"
)

// Options adjusts how the services are assembled
type Options struct {
	// Trusted skips per-user ownership checks (operator tooling only)
	Trusted bool
}

// App holds the assembled services and the resources backing them
type App struct {
	Matters services.MatterService
	Drafts  services.DraftService
	Exports services.ExportService

	closers []func() error
}

// Repositories groups the record store implementations
type Repositories struct {
	Matters     repositories.MatterRepository
	Documents   repositories.DocumentRepository
	Extractions repositories.ExtractionRepository
	Drafts      repositories.DraftRepository
	Tx          repositories.TransactionManager
}

// New builds every service from cfg. Close releases pools and databases.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	a := &App{}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	var badgerDB *badger.DB
	openBadger := func() (*badger.DB, error) {
		if badgerDB != nil {
			return badgerDB, nil
		}
		db, err := blobstore.OpenDB(cfg.BadgerDir, logger)
		if err != nil {
			return nil, err
		}
		badgerDB = db
		a.closers = append(a.closers, db.Close)
		return db, nil
	}

	repos, err := a.openRepositories(ctx, cfg, logger, openBadger)
	if err != nil {
		return nil, err
	}

	var blobs repositories.BlobStore
	switch cfg.BlobBackend {
	case config.BlobBackendBadger:
		db, err := openBadger()
		if err != nil {
			return nil, err
		}
		blobs = blobstore.NewBlobStore(db, logger)
		logger.Info("blob store ready", "backend", cfg.BlobBackend, "dir", cfg.BadgerDir)
	default:
		blobs = supabase.NewStorageClient(cfg.SupabaseURL, cfg.BlobBucket, cfg.SupabaseKey, logger)
		logger.Info("blob store ready", "backend", cfg.BlobBackend, "bucket", cfg.BlobBucket)
	}

	textExtractor, err := newOCRClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	providers, err := llmSvc.SetupProviders(cfg, logger)
	if err != nil {
		return nil, err
	}
	extractor, err := extraction.NewEngine(providers, cfg.ExtractionModel, logger)
	if err != nil {
		return nil, fmt.Errorf("extraction engine: %w", err)
	}

	profiles, err := jurisdiction.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("jurisdiction registry: %w", err)
	}

	var gate services.AuthorizationGate = authSvc.TrustedGate{}
	if !opts.Trusted {
		gate = authSvc.NewCachedGate(authSvc.NewOwnerGate(repos.Matters), cfg.AuthCacheTTL)
	}

	a.Matters = matterSvc.NewMatterService(
		gate,
		repos.Matters,
		repos.Documents,
		repos.Extractions,
		repos.Tx,
		blobs,
		ocr.NewInspector(),
		textExtractor,
		extractor,
		cfg.IngestMode,
		logger,
	)

	a.Drafts, err = draftSvc.NewDraftService(
		gate,
		repos.Matters,
		repos.Extractions,
		repos.Drafts,
		repos.Tx,
		providers,
		profiles,
		draftSvc.Options{Model: cfg.DraftModel, Versioning: cfg.DraftVersioning},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("draft service: %w", err)
	}

	a.Exports = exportSvc.NewExportService(gate, repos.Drafts, logger)

	ok = true
	return a, nil
}

func (a *App) openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger, openBadger func() (*badger.DB, error)) (*Repositories, error) {
	uniqueVersions := cfg.DraftVersioning == config.DraftVersioningIncrement

	if cfg.StoreBackend == config.StoreBackendBadger {
		db, err := openBadger()
		if err != nil {
			return nil, err
		}
		store := recordstore.NewStore(db, recordstore.Options{UniqueDraftVersions: uniqueVersions}, logger)
		logger.Info("record store ready", "backend", cfg.StoreBackend, "dir", cfg.BadgerDir)
		return &Repositories{
			Matters:     store.Matters(),
			Documents:   store.Documents(),
			Extractions: store.Extractions(),
			Drafts:      store.Drafts(),
			Tx:          store,
		}, nil
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a.closers = append(a.closers, func() error { pool.Close(); return nil })

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.Migrate(ctx, pool, tables, postgres.SchemaOptions{UniqueDraftVersions: uniqueVersions}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("database connected", "table_prefix", cfg.TablePrefix)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	return &Repositories{
		Matters:     postgres.NewMatterRepository(repoConfig),
		Documents:   postgres.NewDocumentRepository(repoConfig),
		Extractions: postgres.NewExtractionRepository(repoConfig),
		Drafts:      postgres.NewDraftRepository(repoConfig),
		Tx:          postgres.NewTransactionManager(pool, logger),
	}, nil
}

// newOCRClient returns nil in raw ingest mode
func newOCRClient(cfg *config.Config, logger *slog.Logger) (services.TextExtractor, error) {
	if cfg.IngestMode != config.IngestModeOCR {
		logger.Info("ocr disabled", "ingest_mode", cfg.IngestMode)
		return nil, nil
	}

	raw := []byte(cfg.DocAICredentialsJSON)
	if _, err := os.Stat(cfg.DocAICredentialsJSON); err == nil {
		// GCP_SA_KEY_JSON may also point at the key file
		raw, err = os.ReadFile(cfg.DocAICredentialsJSON)
		if err != nil {
			return nil, fmt.Errorf("read service account key: %w", err)
		}
	}
	key, err := ocr.ParseServiceAccountKey(raw)
	if err != nil {
		return nil, err
	}

	client := ocr.NewClient(
		ocr.ProcessorConfig{
			ProjectID:   cfg.DocAIProjectID,
			Location:    cfg.DocAILocation,
			ProcessorID: cfg.DocAIProcessorID,
		},
		ocr.NewServiceAccountCredentials(key, nil),
		logger,
		ocr.WithRateLimit(cfg.DocAIRateLimit),
		ocr.WithHTTPClient(&http.Client{Timeout: cfg.DocAITimeout}),
	)
	logger.Info("ocr ready", "processor", cfg.DocAIProcessorID, "location", cfg.DocAILocation)
	return client, nil
}

// Close releases every resource opened by New, newest first
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
