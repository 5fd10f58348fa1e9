package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"oaresponse/internal/domain"
	"oaresponse/internal/domain/repositories"
)

const keyPrefix = "blob:"

// BlobStore keeps uploaded files in an embedded Badger database. It stands in
// for the hosted bucket during local development and in the CLI.
type BlobStore struct {
	db     *badger.DB
	owned  bool
	logger *slog.Logger
}

// Open opens a database in dir and returns a blob store that owns it.
func Open(dir string, logger *slog.Logger) (*BlobStore, error) {
	db, err := OpenDB(dir, logger)
	if err != nil {
		return nil, err
	}
	return &BlobStore{db: db, owned: true, logger: logger}, nil
}

// NewBlobStore returns a blob store on a database shared with other stores.
// Close leaves a shared database open.
func NewBlobStore(db *badger.DB, logger *slog.Logger) *BlobStore {
	return &BlobStore{db: db, logger: logger}
}

// OpenDB opens (or creates) a Badger database in dir. An empty dir opens an
// in-memory database.
func OpenDB(dir string, logger *slog.Logger) (*badger.DB, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create blob directory: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	// badger's own logger is noisy at INFO
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug("badger database opened", "dir", dir, "in_memory", dir == "")
	return db, nil
}

var _ repositories.BlobStore = (*BlobStore)(nil)

// Download returns the object stored at key.
func (s *BlobStore) Download(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("file %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", key, err)
	}
	return data, nil
}

// Upload stores data at key, replacing any existing object.
func (s *BlobStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), data)
	})
	if err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}

	s.logger.Debug("blob stored", "key", key, "bytes", len(data), "content_type", contentType)
	return nil
}

// Close closes the database if this store opened it.
func (s *BlobStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
