package models

import (
	"time"
)

// Jurisdiction identifies the patent office a matter is prosecuted before.
type Jurisdiction string

const (
	JurisdictionUSPTO Jurisdiction = "USPTO"
	JurisdictionEPO   Jurisdiction = "EPO"
	JurisdictionWIPO  Jurisdiction = "WIPO"
)

// Jurisdictions lists every supported jurisdiction in display order.
var Jurisdictions = []Jurisdiction{JurisdictionUSPTO, JurisdictionEPO, JurisdictionWIPO}

// IsValid reports whether j is a supported jurisdiction.
func (j Jurisdiction) IsValid() bool {
	for _, known := range Jurisdictions {
		if j == known {
			return true
		}
	}
	return false
}

// MatterStatus tracks how far a matter has progressed through the pipeline.
type MatterStatus string

const (
	MatterStatusCreated MatterStatus = "created"
	MatterStatusParsed  MatterStatus = "parsed"
	MatterStatusDrafted MatterStatus = "drafted"
)

func (s MatterStatus) rank() int {
	switch s {
	case MatterStatusCreated:
		return 1
	case MatterStatusParsed:
		return 2
	case MatterStatusDrafted:
		return 3
	default:
		return 0
	}
}

// CanAdvanceTo reports whether moving from s to next keeps the status monotonic.
// Re-asserting the current status is allowed.
func (s MatterStatus) CanAdvanceTo(next MatterStatus) bool {
	return next.rank() > 0 && next.rank() >= s.rank()
}

// Predecessors returns the statuses from which s may be reached.
func (s MatterStatus) Predecessors() []MatterStatus {
	var out []MatterStatus
	for _, from := range []MatterStatus{MatterStatusCreated, MatterStatusParsed, MatterStatusDrafted} {
		if from.CanAdvanceTo(s) {
			out = append(out, from)
		}
	}
	return out
}

// Matter is one patent-prosecution response cycle.
type Matter struct {
	ID           string       `json:"id" db:"id"`
	UserID       string       `json:"user_id" db:"user_id"`
	Title        string       `json:"title" db:"title"`
	Jurisdiction Jurisdiction `json:"jurisdiction" db:"jurisdiction"`
	Status       MatterStatus `json:"status" db:"status"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}
