package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"
	"oaresponse/internal/domain"
	"oaresponse/internal/domain/services"
)

const (
	// CloudPlatformScope grants access to Document AI
	CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

	defaultTokenURL = "https://oauth2.googleapis.com/token"
)

// ServiceAccountKey is the subset of a Google service-account key file we use.
type ServiceAccountKey struct {
	ClientEmail  string `json:"client_email"`
	PrivateKey   string `json:"private_key"`
	PrivateKeyID string `json:"private_key_id"`
	TokenURI     string `json:"token_uri"`
}

// ParseServiceAccountKey decodes a service-account key file.
func ParseServiceAccountKey(raw []byte) (*ServiceAccountKey, error) {
	var key ServiceAccountKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, errors.New("service account key missing client_email or private_key")
	}
	if key.TokenURI == "" {
		key.TokenURI = defaultTokenURL
	}
	return &key, nil
}

// ServiceAccountCredentials exchanges a signed RS256 assertion for an access
// token using the JWT-bearer grant. Tokens are reused until shortly before
// they expire.
type ServiceAccountCredentials struct {
	source oauth2.TokenSource
}

var _ services.CredentialProvider = (*ServiceAccountCredentials)(nil)

// NewServiceAccountCredentials builds a credential provider for key.
// httpClient is used for the token exchange; nil means http.DefaultClient.
func NewServiceAccountCredentials(key *ServiceAccountKey, httpClient *http.Client) *ServiceAccountCredentials {
	conf := &jwt.Config{
		Email:        key.ClientEmail,
		PrivateKey:   []byte(key.PrivateKey),
		PrivateKeyID: key.PrivateKeyID,
		Scopes:       []string{CloudPlatformScope},
		TokenURL:     key.TokenURI,
		// aud defaults to TokenURL, exp to one hour
	}

	ctx := context.Background()
	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}

	return &ServiceAccountCredentials{
		source: oauth2.ReuseTokenSource(nil, conf.TokenSource(ctx)),
	}
}

// Token returns a valid bearer token, refreshing it when needed.
func (c *ServiceAccountCredentials) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tok, err := c.source.Token()
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			return "", &domain.UpstreamError{Service: "document_ai", StatusCode: rerr.Response.StatusCode, Message: "token exchange failed: " + string(rerr.Body)}
		}
		return "", &domain.UpstreamError{Service: "document_ai", Message: "token exchange failed: " + err.Error()}
	}
	return tok.AccessToken, nil
}
