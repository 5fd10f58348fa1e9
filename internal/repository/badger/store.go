// Package badger implements the record store on an embedded Badger database.
// It mirrors the Postgres repositories for local development without a
// database server and backs the service tests.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"oaresponse/internal/domain"
	"oaresponse/internal/domain/repositories"
)

const (
	matterPrefix     = "matter:"
	documentPrefix   = "document:"
	extractionPrefix = "extraction:"
	draftPrefix      = "draft:"
)

// Options mirrors postgres.SchemaOptions
type Options struct {
	// UniqueDraftVersions rejects a second draft with the same (matter, version)
	UniqueDraftVersions bool
}

// Store holds every repository on one database
type Store struct {
	db     *badger.DB
	opts   Options
	logger *slog.Logger
}

// NewStore returns a record store on db. The caller owns db.
func NewStore(db *badger.DB, opts Options, logger *slog.Logger) *Store {
	return &Store{db: db, opts: opts, logger: logger}
}

func (s *Store) Matters() repositories.MatterRepository { return &matterRepo{s} }
func (s *Store) Documents() repositories.DocumentRepository { return &documentRepo{s} }
func (s *Store) Extractions() repositories.ExtractionRepository { return &extractionRepo{s} }
func (s *Store) Drafts() repositories.DraftRepository { return &draftRepo{s} }

type txnKey struct{}

func txnFromContext(ctx context.Context) *badger.Txn {
	txn, _ := ctx.Value(txnKey{}).(*badger.Txn)
	return txn
}

// ExecTx runs fn in one read-write transaction. Badger transactions are
// optimistic: a concurrent commit that touched the same keys makes this one
// fail with a conflict instead of blocking.
func (s *Store) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if txnFromContext(ctx) != nil {
		return fn(ctx)
	}

	txn := s.db.NewTransaction(true)
	defer txn.Discard()

	if err := fn(context.WithValue(ctx, txnKey{}, txn)); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return commitError(err)
	}
	return nil
}

var _ repositories.TransactionManager = (*Store)(nil)

func (s *Store) read(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if txn := txnFromContext(ctx); txn != nil {
		return fn(txn)
	}
	return s.db.View(fn)
}

func (s *Store) write(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if txn := txnFromContext(ctx); txn != nil {
		return fn(txn)
	}
	if err := s.db.Update(fn); err != nil {
		return commitError(err)
	}
	return nil
}

func commitError(err error) error {
	if errors.Is(err, badger.ErrConflict) {
		return &domain.ConflictError{
			Message:      "concurrent update to the same matter, try again",
			ResourceType: "matter",
		}
	}
	return err
}

// getJSON decodes the value at key into dst. A missing key returns badger.ErrKeyNotFound.
func getJSON(txn *badger.Txn, key string, dst any) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dst)
	})
}

func putJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return txn.Set([]byte(key), data)
}

// scanJSON calls fn with the raw value of every key under prefix
func scanJSON(txn *badger.Txn, prefix string, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

func matterExists(txn *badger.Txn, id string) error {
	_, err := txn.Get([]byte(matterPrefix + id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("matter %s: %w", id, domain.ErrNotFound)
	}
	return err
}
