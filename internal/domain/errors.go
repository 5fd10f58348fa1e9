package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUpstream        = errors.New("upstream service failed")
	ErrMalformedOutput = errors.New("malformed model output")
)

// UpstreamError reports a non-success response from an external vendor
// (OCR, LLM or blob store). The vendor's message is embedded verbatim.
type UpstreamError struct {
	Service    string // "document_ai", "llm", "blob_store"
	StatusCode int    // vendor HTTP status, 0 if the call never got a response
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error %d: %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Service, e.Message)
}

// Is allows errors.Is() to match against ErrUpstream
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// MalformedOutputError is returned when a model response cannot be parsed into
// the expected record. Raw holds the unparsed output for logging.
type MalformedOutputError struct {
	Stage  string // "extraction" or "draft"
	Raw    string
	Reason error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed %s output from model: %v", e.Stage, e.Reason)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to match against ErrMalformedOutput
func (e *MalformedOutputError) Is(target error) bool {
	return target == ErrMalformedOutput
}

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string
	ResourceType string
	ResourceID   string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Validationf builds an error wrapping ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
