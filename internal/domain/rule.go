package domain

import "time"

// ComplianceLevel ranks how strict a region's data handling rules are.
type ComplianceLevel string

// Compliance levels.
const (
	ComplianceLow    ComplianceLevel = "low"
	ComplianceMedium ComplianceLevel = "medium"
	ComplianceHigh   ComplianceLevel = "high"
)

// Valid reports whether the level is recognized.
func (l ComplianceLevel) Valid() bool {
	return l == ComplianceLow || l == ComplianceMedium || l == ComplianceHigh
}

// ComplianceRule augments the generic pattern detectors with a region's
// legal context. High-level rules whose law description names a known
// data-protection law family enable extra trigger-phrase checks.
type ComplianceRule struct {
	ID              int             `db:"id"               json:"id"`
	RegionID        string          `db:"region_id"        json:"region_id"`
	RegionName      string          `db:"region_name"      json:"region_name,omitempty"`
	ComplianceLevel ComplianceLevel `db:"compliance_level" json:"compliance_level"`
	LawDescription  string          `db:"law_description"  json:"law_description"`
	CreatedAt       time.Time       `db:"created_at"       json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"       json:"updated_at"`
}

// ReviewRecord is an append-only audit trail entry for a review decision.
type ReviewRecord struct {
	ID         int            `db:"id"          json:"id"`
	ItemID     string         `db:"item_id"     json:"item_id"`
	ReviewerID string         `db:"reviewer_id" json:"reviewer_id"`
	Decision   ReviewDecision `db:"decision"    json:"decision"`
	Reason     string         `db:"reason"      json:"reason,omitempty"`
	FromStatus ItemStatus     `db:"from_status" json:"from_status"`
	ToStatus   ItemStatus     `db:"to_status"   json:"to_status"`
	DecidedAt  time.Time      `db:"decided_at"  json:"decided_at"`
}
