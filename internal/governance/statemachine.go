package governance

import "github.com/Sam231221/dkn-governance/internal/domain"

// legalTransitions encodes the review state machine:
//
//	draft -> pending_review -> {approved, rejected}
//	approved -> {archived, pending_review}   (archival / stale re-route)
//	rejected, archived -> draft              (explicit resubmission only)
//
// Nothing else is legal. Rejected and archived are otherwise terminal.
var legalTransitions = map[domain.ItemStatus][]domain.ItemStatus{
	domain.StatusDraft:         {domain.StatusPendingReview},
	domain.StatusPendingReview: {domain.StatusApproved, domain.StatusRejected},
	domain.StatusApproved:      {domain.StatusArchived, domain.StatusPendingReview},
	domain.StatusRejected:      {domain.StatusDraft},
	domain.StatusArchived:      {domain.StatusDraft},
}

// canTransition reports whether from -> to is a legal state change.
func canTransition(from, to domain.ItemStatus) bool {
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// transitionErr builds the error for an illegal transition attempt.
func transitionErr(itemID string, from, to domain.ItemStatus, reason string) error {
	return &domain.InvalidStateTransitionError{ItemID: itemID, From: from, To: to, Reason: reason}
}
