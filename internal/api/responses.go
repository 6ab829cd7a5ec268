package api

import (
	"strings"

	"github.com/Sam231221/dkn-governance/internal/domain"
)

// ItemResponse wraps a single item.
type ItemResponse struct {
	Item *domain.ContentItem `json:"item"`
}

// AuditEntryResponse flattens an audit entry for dashboard consumption.
type AuditEntryResponse struct {
	Item     *domain.ContentItem  `json:"item"`
	Priority string               `json:"priority"`
	Reasons  []domain.AuditReason `json:"reasons"`
}

// AuditQueueResponse is the prioritized review queue.
type AuditQueueResponse struct {
	Entries []AuditEntryResponse `json:"entries"`
	Total   int                  `json:"total"`
}

// RulesListResponse is a list of regional compliance rules.
type RulesListResponse struct {
	Rules []*domain.ComplianceRule `json:"rules"`
	Total int                      `json:"total"`
}

// CreateRuleRequest creates or replaces a region's compliance rule.
type CreateRuleRequest struct {
	RegionID        string `json:"region_id"        binding:"required"`
	RegionName      string `json:"region_name"`
	ComplianceLevel string `json:"compliance_level" binding:"required,oneof=low medium high"`
	LawDescription  string `json:"law_description"`
}

// UpdateRuleRequest updates a region's compliance rule.
type UpdateRuleRequest struct {
	RegionName      string `json:"region_name"`
	ComplianceLevel string `json:"compliance_level" binding:"required,oneof=low medium high"`
	LawDescription  string `json:"law_description"`
}

// UpdateItemRequest carries a content edit plus the version the editor
// last read.
type UpdateItemRequest struct {
	Title       string `json:"title"       binding:"required"`
	Description string `json:"description"`
	BodyText    string `json:"body_text"   binding:"required"`
	Version     int    `json:"version"     binding:"required"`
}

// ReviewRequest carries a reviewer decision.
type ReviewRequest struct {
	Decision   string `json:"decision"    binding:"required,oneof=approve reject"`
	Reason     string `json:"reason"`
	ReviewerID string `json:"reviewer_id" binding:"required"`
}

// ReviewerRequest identifies the acting reviewer for archive and reroute.
type ReviewerRequest struct {
	ReviewerID string `json:"reviewer_id" binding:"required"`
}

func toAuditEntries(entries []*domain.AuditEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, len(entries))
	for i, entry := range entries {
		out[i] = AuditEntryResponse{
			Item:     entry.Item,
			Priority: entry.Priority.String(),
			Reasons:  entry.Reasons,
		}
	}
	return out
}

// parseScope builds an access scope from the regions query parameter.
// Empty or "all" grants full visibility; otherwise a comma-separated
// region list.
func parseScope(regions string) domain.AccessScope {
	regions = strings.TrimSpace(regions)
	if regions == "" || regions == "all" {
		return domain.ScopeAll()
	}
	parts := strings.Split(regions, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	if len(ids) == 0 {
		return domain.ScopeAll()
	}
	return domain.ScopeRegions(ids...)
}
