package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"oaresponse/internal/domain"
	"oaresponse/internal/domain/repositories"
)

// maxObjectSize bounds downloads; office actions are rarely above a few MB.
const maxObjectSize = 50 << 20

// StorageClient reads and writes objects in a Supabase Storage bucket using
// the service role key.
type StorageClient struct {
	baseURL    string
	bucket     string
	serviceKey string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewStorageClient creates a new Supabase Storage client.
// Requires the service role key for access to private buckets.
func NewStorageClient(supabaseURL, bucket, serviceKey string, logger *slog.Logger) repositories.BlobStore {
	return &StorageClient{
		baseURL:    strings.TrimRight(supabaseURL, "/"),
		bucket:     bucket,
		serviceKey: serviceKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

func (c *StorageClient) objectURL(key string) string {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, url.PathEscape(c.bucket), strings.Join(segments, "/"))
}

func (c *StorageClient) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
}

// Download fetches an object. A missing object is domain.ErrNotFound; any other
// non-2xx response is an UpstreamError carrying the storage API's message.
func (c *StorageClient) Download(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.objectURL(key), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Service: "blob_store", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if isNotFound(resp.StatusCode, body) {
			return nil, fmt.Errorf("file %s: %w", key, domain.ErrNotFound)
		}
		return nil, &domain.UpstreamError{Service: "blob_store", StatusCode: resp.StatusCode, Message: string(body)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxObjectSize+1))
	if err != nil {
		return nil, &domain.UpstreamError{Service: "blob_store", Message: fmt.Sprintf("read body: %v", err)}
	}
	if len(data) > maxObjectSize {
		return nil, domain.Validationf("file %s exceeds %d bytes", key, maxObjectSize)
	}

	c.logger.Debug("blob downloaded", "key", key, "bytes", len(data))
	return data, nil
}

// Upload writes an object, replacing any existing one at key.
func (c *StorageClient) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.objectURL(key), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.UpstreamError{Service: "blob_store", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &domain.UpstreamError{Service: "blob_store", StatusCode: resp.StatusCode, Message: string(body)}
	}
	return nil
}

// Storage reports missing objects either as 404 or as 400 with
// {"statusCode":"404",...} in the body.
func isNotFound(status int, body []byte) bool {
	if status == http.StatusNotFound {
		return true
	}
	return status == http.StatusBadRequest &&
		(bytes.Contains(body, []byte(`"404"`)) || bytes.Contains(body, []byte("not_found")))
}
