package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
	"oaresponse/internal/domain"
	"oaresponse/internal/domain/services"
)

const (
	// DefaultTimeout bounds one process call; large scans take a while.
	DefaultTimeout = 90 * time.Second

	// DefaultRateLimit is requests per second to the processor.
	DefaultRateLimit = 2
)

// ProcessorConfig identifies a Document AI processor.
type ProcessorConfig struct {
	ProjectID   string
	Location    string // "us" or "eu"
	ProcessorID string
}

// Endpoint returns the :process URL for the processor.
func (p ProcessorConfig) Endpoint() string {
	return fmt.Sprintf("https://%s-documentai.googleapis.com/v1/projects/%s/locations/%s/processors/%s:process",
		p.Location, p.ProjectID, p.Location, p.ProcessorID)
}

// Client calls Document AI's synchronous process endpoint.
type Client struct {
	endpoint    string
	credentials services.CredentialProvider
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *slog.Logger
}

var _ services.TextExtractor = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithEndpoint overrides the process URL (tests, regional endpoints).
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit sets requests per second; burst equals the rounded-up rate.
func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), max(1, int(requestsPerSecond+0.999)))
	}
}

// NewClient creates a Document AI client.
func NewClient(processor ProcessorConfig, credentials services.CredentialProvider, logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:    processor.Endpoint(),
		credentials: credentials,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		limiter:     rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type rawDocument struct {
	Content  string `json:"content"`
	MimeType string `json:"mimeType"`
}

type processRequest struct {
	RawDocument rawDocument `json:"rawDocument"`
}

type processResponse struct {
	Document *struct {
		Text string `json:"text"`
	} `json:"document"`
}

// ExtractText sends the PDF for OCR and returns the recognised text, or ""
// when the processor found none. It makes exactly one attempt.
func (c *Client) ExtractText(ctx context.Context, pdf []byte) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for document ai rate limit: %w", err)
	}

	token, err := c.credentials.Token(ctx)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(processRequest{RawDocument: rawDocument{
		Content:  base64.StdEncoding.EncodeToString(pdf),
		MimeType: "application/pdf",
	}})
	if err != nil {
		return "", fmt.Errorf("marshal process request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create process request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.UpstreamError{Service: "document_ai", Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.UpstreamError{Service: "document_ai", Message: fmt.Sprintf("read body: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("document ai request failed", "status", resp.StatusCode, "elapsed", time.Since(start))
		return "", &Error{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed processResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &domain.UpstreamError{Service: "document_ai", StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}

	if parsed.Document == nil {
		return "", nil
	}

	c.logger.Debug("document ai processed",
		"pdf_bytes", len(pdf),
		"text_chars", len(parsed.Document.Text),
		"elapsed", time.Since(start))

	return parsed.Document.Text, nil
}
