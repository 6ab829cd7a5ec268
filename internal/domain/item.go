// Package domain defines the core types shared across the governance engine.
package domain

import "time"

// ItemStatus is the review lifecycle state of a knowledge item.
type ItemStatus string

// Item lifecycle states.
const (
	StatusDraft         ItemStatus = "draft"
	StatusPendingReview ItemStatus = "pending_review"
	StatusApproved      ItemStatus = "approved"
	StatusRejected      ItemStatus = "rejected"
	StatusArchived      ItemStatus = "archived"
)

// ItemType constants. Policy and procedure items always review at high priority.
const (
	ItemTypeArticle   = "article"
	ItemTypeGuide     = "guide"
	ItemTypePolicy    = "policy"
	ItemTypeProcedure = "procedure"
	ItemTypeFAQ       = "faq"
)

// ContentItem is a knowledge submission plus its governance metadata.
// Content fields are owned by the authoring layer; governance fields
// (DuplicateOf, ComplianceViolations, scan flags, validation stamps) are
// mutated only through the governance engine.
type ContentItem struct {
	ID           string     `db:"id"            json:"id"`
	Title        string     `db:"title"         json:"title"`
	Description  string     `db:"description"   json:"description,omitempty"`
	BodyText     string     `db:"body_text"     json:"body_text"`
	Status       ItemStatus `db:"status"        json:"status"`
	Type         string     `db:"item_type"     json:"item_type"`
	AuthorID     string     `db:"author_id"     json:"author_id"`
	RegionID     string     `db:"region_id"     json:"region_id,omitempty"`
	RepositoryID string     `db:"repository_id" json:"repository_id,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Views int `db:"views" json:"views"`
	Likes int `db:"likes" json:"likes"`

	ValidatedBy     string     `db:"validated_by"     json:"validated_by,omitempty"`
	ValidatedAt     *time.Time `db:"validated_at"     json:"validated_at,omitempty"`
	RejectionReason string     `db:"rejection_reason" json:"rejection_reason,omitempty"`

	// DuplicateOf holds the IDs of corpus items whose similarity met the
	// duplicate threshold at the last scan. Set semantics, no ordering.
	DuplicateOf []string `db:"-" json:"duplicate_of"`

	// ComplianceViolations holds violation messages in detector order.
	ComplianceViolations []string `db:"-" json:"compliance_violations"`

	// Scan flags distinguish "scanned clean" from "scan never ran".
	// A false DuplicateScanRan with empty DuplicateOf means duplicate
	// detection is unknown, not negative.
	DuplicateScanRan  bool `db:"duplicate_scan_ran"  json:"duplicate_scan_ran"`
	ComplianceScanRan bool `db:"compliance_scan_ran" json:"compliance_scan_ran"`

	// Version guards concurrent review transitions and scan write-backs.
	Version int `db:"version" json:"version"`
}

// IsTerminal reports whether the status admits no transitions other than
// an explicit resubmission.
func (s ItemStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusArchived
}

// Valid reports whether the status is one of the known lifecycle states.
func (s ItemStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusApproved, StatusRejected, StatusArchived:
		return true
	}
	return false
}

// HasViolations reports whether the last compliance scan found violations.
func (c *ContentItem) HasViolations() bool {
	return len(c.ComplianceViolations) > 0
}

// HasDuplicates reports whether the last similarity scan found blocking duplicates.
func (c *ContentItem) HasDuplicates() bool {
	return len(c.DuplicateOf) > 0
}

// ReviewDecision is a human reviewer's verdict on a pending item.
type ReviewDecision string

// Review decisions.
const (
	DecisionApprove ReviewDecision = "approve"
	DecisionReject  ReviewDecision = "reject"
)

// Valid reports whether the decision is recognized.
func (d ReviewDecision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// AccessScope limits which regions an aggregator call may see. It is
// passed explicitly on every call so the engine carries no ambient
// identity or authorization state.
type AccessScope struct {
	AllRegions bool     `json:"all_regions"`
	RegionIDs  []string `json:"region_ids,omitempty"`
}

// ScopeAll grants visibility over every region.
func ScopeAll() AccessScope {
	return AccessScope{AllRegions: true}
}

// ScopeRegions grants visibility over the given regions only.
func ScopeRegions(regionIDs ...string) AccessScope {
	return AccessScope{RegionIDs: regionIDs}
}

// Allows reports whether an item with the given region is visible in this
// scope. Items without a region are visible to everyone.
func (s AccessScope) Allows(regionID string) bool {
	if s.AllRegions || regionID == "" {
		return true
	}
	for _, id := range s.RegionIDs {
		if id == regionID {
			return true
		}
	}
	return false
}
