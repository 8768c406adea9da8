package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is the three-value lifecycle of a funding call.
type Status string

const (
	StatusOpen    Status = "Open"
	StatusClosed  Status = "Closed"
	StatusUnknown Status = "Unknown"
)

// Record is the canonical structured representation of one funding opportunity.
// Adapters produce raw records, the processing pipeline attaches the derived
// RelevanceScore and KeywordsMatched fields; a record is never mutated after
// it has been retained.
type Record struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	FundingOrganization string    `json:"funding_organization"`
	Amount              string    `json:"amount"`   // free-text money expression, deliberately unparsed
	Deadline            string    `json:"deadline"` // free-text date expression
	Status              Status    `json:"status"`
	Eligibility         string    `json:"eligibility"`
	ResearchAreas       string    `json:"research_areas"`
	Description         string    `json:"description"`
	ApplicationProcess  string    `json:"application_process"`
	ContactInfo         string    `json:"contact_info"`
	URL                 string    `json:"url"`
	RawText             string    `json:"raw_text"` // all extractable text, retained for scoring

	// Provenance, stamped by the orchestrator.
	SourceID    string    `json:"source_id"`
	DateScraped time.Time `json:"date_scraped"`

	// Derived fields, attached after scoring.
	RelevanceScore  float64  `json:"relevance_score"`
	KeywordsMatched []string `json:"keywords_matched"`
}
