package models

import (
	"time"
)

// DocumentType classifies an uploaded or derived file.
type DocumentType string

const (
	DocumentTypeOfficeAction DocumentType = "office_action"
	DocumentTypeResponse     DocumentType = "response"
)

// Document references a file in the blob store and the text recovered from it.
type Document struct {
	ID        string       `json:"id" db:"id"`
	MatterID  string       `json:"matter_id" db:"matter_id"`
	Type      DocumentType `json:"type" db:"type"`
	Path      string       `json:"path" db:"path"` // blob store key
	Text      string       `json:"text" db:"text"` // may be empty in raw ingest mode
	PageCount int          `json:"page_count" db:"page_count"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}
