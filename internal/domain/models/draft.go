package models

import (
	"time"
)

// Argument answers one rejection or targets one claim.
type Argument struct {
	Target string `json:"target"`
	Text   string `json:"text"`
}

// Amendment proposes new wording for a claim.
type Amendment struct {
	Claim     string `json:"claim"`
	Proposed  string `json:"proposed"`
	Rationale string `json:"rationale"`
}

// Citation points at an authority relied on in the response.
type Citation struct {
	Source string `json:"source"`
	Link   string `json:"link,omitempty"`
}

// DraftContent is the model-generated body of a response.
type DraftContent struct {
	Outline    string      `json:"outline"`
	Arguments  []Argument  `json:"arguments"`
	Amendments []Amendment `json:"amendments"`
	Citations  []Citation  `json:"citations"`
}

// Normalize replaces nil slices with empty ones.
func (c *DraftContent) Normalize() {
	if c.Arguments == nil {
		c.Arguments = []Argument{}
	}
	if c.Amendments == nil {
		c.Amendments = []Amendment{}
	}
	if c.Citations == nil {
		c.Citations = []Citation{}
	}
}

// Draft is one persisted version of a response.
type Draft struct {
	ID       string `json:"id" db:"id"`
	MatterID string `json:"matter_id" db:"matter_id"`
	UserID   string `json:"user_id" db:"user_id"`
	Version  int    `json:"version" db:"version"`
	DraftContent
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
