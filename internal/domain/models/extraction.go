package models

import (
	"time"
)

// ExtractionMetadata holds the bibliographic fields of an office action.
// Every field is optional; unknown values are empty strings.
type ExtractionMetadata struct {
	ApplicationNumber string `json:"application_number"`
	Examiner          string `json:"examiner"`
	ArtUnit           string `json:"art_unit"`
	MailDate          string `json:"mail_date"`
}

// Rejection is one ground of rejection raised by the examiner.
// Claims holds claim numbers as written in the action (e.g. "1", "3-5").
type Rejection struct {
	Code    string   `json:"code"`
	Basis   string   `json:"basis"`
	Claims  []string `json:"claims"`
	Summary string   `json:"summary"`
}

// Formality is a non-substantive objection (drawings, abstract, ...).
type Formality struct {
	Topic  string `json:"topic"`
	Detail string `json:"detail"`
}

// Claim is a numbered claim of the application.
type Claim struct {
	Number int    `json:"no"`
	Text   string `json:"text"`
}

// PriorArt is a reference cited against the claims.
type PriorArt struct {
	Kind   string `json:"kind"`
	Number string `json:"number"`
	Title  string `json:"title"`
}

// ExtractionRecord is the canonical structured content of an office action.
type ExtractionRecord struct {
	Metadata    ExtractionMetadata `json:"metadata"`
	Rejections  []Rejection        `json:"rejections"`
	Formalities []Formality        `json:"formalities"`
	Claims      []Claim            `json:"claims"`
	PriorArt    []PriorArt         `json:"prior_art"`
}

// Normalize replaces nil slices with empty ones so the record always
// serializes with arrays rather than nulls.
func (r *ExtractionRecord) Normalize() {
	if r.Rejections == nil {
		r.Rejections = []Rejection{}
	}
	for i := range r.Rejections {
		if r.Rejections[i].Claims == nil {
			r.Rejections[i].Claims = []string{}
		}
	}
	if r.Formalities == nil {
		r.Formalities = []Formality{}
	}
	if r.Claims == nil {
		r.Claims = []Claim{}
	}
	if r.PriorArt == nil {
		r.PriorArt = []PriorArt{}
	}
}

// Extraction is the persisted extraction for a matter.
type Extraction struct {
	MatterID string `json:"matter_id" db:"matter_id"`
	ExtractionRecord
	// Truncated is set when the input was cut to fit the model context.
	Truncated bool      `json:"truncated" db:"truncated"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
