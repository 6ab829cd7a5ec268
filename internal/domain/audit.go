package domain

// AuditPriority orders the review queue. Lower value sorts first.
type AuditPriority int

// Audit priorities.
const (
	PriorityHigh AuditPriority = iota
	PriorityMedium
	PriorityLow
)

// String returns the priority label used in API responses.
func (p AuditPriority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// AuditReason tags why an item landed in the audit queue.
type AuditReason string

// Audit reasons.
const (
	ReasonDuplicate  AuditReason = "duplicate"
	ReasonCompliance AuditReason = "compliance"
	ReasonStaleness  AuditReason = "staleness"
	ReasonItemType   AuditReason = "type"
)

// AuditEntry is a derived view of a pending item awaiting review. It is
// computed per request from governance metadata and never persisted.
type AuditEntry struct {
	Item     *ContentItem  `json:"item"`
	Priority AuditPriority `json:"-"`
	Reasons  []AuditReason `json:"reasons"`
}

// HasReason reports whether the entry carries the given reason tag.
func (e *AuditEntry) HasReason(r AuditReason) bool {
	for _, reason := range e.Reasons {
		if reason == r {
			return true
		}
	}
	return false
}
