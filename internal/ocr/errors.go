package ocr

import (
	"fmt"

	"oaresponse/internal/domain"
)

// Error is a non-success response from the Document AI process endpoint.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("Document AI error %d: %s", e.StatusCode, e.Body)
}

// Unwrap exposes the failure as a domain.UpstreamError so callers outside
// this package can handle every vendor the same way.
func (e *Error) Unwrap() error {
	return &domain.UpstreamError{Service: "document_ai", StatusCode: e.StatusCode, Message: e.Body}
}
