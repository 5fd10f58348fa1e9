package repositories

import "context"

// BlobStore is the external file store holding uploaded PDFs.
// Keys are the paths the client uploaded to (the ingest file_id).
type BlobStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}
