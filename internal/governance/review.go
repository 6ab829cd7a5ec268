package governance

import (
	"context"
	"strings"
	"time"

	"github.com/Sam231221/dkn-governance/internal/domain"
	"github.com/Sam231221/dkn-governance/internal/logger"
)

// ReviewTransition applies a human decision to a pending item. Legal only
// from pending_review; reject requires a non-empty reason. Approvals stamp
// ValidatedBy/ValidatedAt, rejections store the reason and leave the
// validation stamps untouched. The write is guarded by the version the
// caller read, so two reviewers racing on the same item cannot both
// succeed. Illegal transitions fail loudly; a human decision is never
// silently dropped.
func (e *Engine) ReviewTransition(ctx context.Context, itemID string, decision domain.ReviewDecision, reason, reviewerID string) (*domain.ContentItem, error) {
	if !decision.Valid() {
		return nil, domain.NewValidationError("decision", "must be approve or reject")
	}
	if decision == domain.DecisionReject && strings.TrimSpace(reason) == "" {
		return nil, domain.NewValidationError("reason", "reject requires a reason")
	}
	if strings.TrimSpace(reviewerID) == "" {
		return nil, domain.NewValidationError("reviewer_id", "must not be empty")
	}

	item, err := e.store.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}

	target := domain.StatusApproved
	if decision == domain.DecisionReject {
		target = domain.StatusRejected
	}

	if item.Status != domain.StatusPendingReview || !canTransition(item.Status, target) {
		e.recordDenied(ctx)
		return nil, transitionErr(item.ID, item.Status, target, "")
	}

	// Approval may not skip the required checks: both scans must have run
	// since the last content edit.
	if decision == domain.DecisionApprove && (!item.ComplianceScanRan || !item.DuplicateScanRan) {
		e.recordDenied(ctx)
		return nil, transitionErr(item.ID, item.Status, target, "governance scans have not run since the last edit")
	}

	from := item.Status
	expectedVersion := item.Version
	now := time.Now()

	item.Status = target
	if decision == domain.DecisionApprove {
		item.ValidatedBy = reviewerID
		item.ValidatedAt = &now
	} else {
		item.RejectionReason = reason
	}

	if err := e.store.ApplyTransition(ctx, item, expectedVersion); err != nil {
		e.recordDenied(ctx)
		return nil, err
	}
	item.Version++

	e.logReview(ctx, item, reviewerID, decision, reason, from)
	e.telemetry.RecordReviewDecision(ctx, string(decision))

	e.logger.Info("review transition applied",
		logger.String("item_id", item.ID),
		logger.String("decision", string(decision)),
		logger.String("reviewer_id", reviewerID),
	)

	return item, nil
}

// Archive moves an approved item out of circulation.
func (e *Engine) Archive(ctx context.Context, itemID, reviewerID string) (*domain.ContentItem, error) {
	return e.manualTransition(ctx, itemID, reviewerID, domain.StatusArchived, "archive", "")
}

// RerouteStale sends an approved item back to review, typically after the
// staleness sweep flagged it. The sweep itself never mutates state; this
// is the explicit reviewer action.
func (e *Engine) RerouteStale(ctx context.Context, itemID, reviewerID string) (*domain.ContentItem, error) {
	return e.manualTransition(ctx, itemID, reviewerID, domain.StatusPendingReview, "reroute", "flagged stale")
}

// Resubmit restarts a rejected or archived item at draft. Governance
// metadata and validation stamps are cleared; the item re-enters the
// pipeline through SubmitExisting.
func (e *Engine) Resubmit(ctx context.Context, itemID string) (*domain.ContentItem, error) {
	item, err := e.store.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.Status.IsTerminal() || !canTransition(item.Status, domain.StatusDraft) {
		e.recordDenied(ctx)
		return nil, transitionErr(item.ID, item.Status, domain.StatusDraft, "only rejected or archived items can be resubmitted")
	}

	expectedVersion := item.Version
	item.Status = domain.StatusDraft
	item.DuplicateOf = nil
	item.ComplianceViolations = nil
	item.DuplicateScanRan = false
	item.ComplianceScanRan = false
	item.ValidatedBy = ""
	item.ValidatedAt = nil
	item.RejectionReason = ""

	if err := e.store.ApplyTransition(ctx, item, expectedVersion); err != nil {
		return nil, err
	}
	item.Version++

	// Drafts do not participate in duplicate detection.
	e.dropFromIndex(ctx, item.ID)
	return item, nil
}

func (e *Engine) manualTransition(ctx context.Context, itemID, reviewerID string, target domain.ItemStatus, action, reason string) (*domain.ContentItem, error) {
	item, err := e.store.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Status != domain.StatusApproved || !canTransition(item.Status, target) {
		e.recordDenied(ctx)
		return nil, transitionErr(item.ID, item.Status, target, "")
	}

	from := item.Status
	expectedVersion := item.Version
	item.Status = target

	if err := e.store.ApplyTransition(ctx, item, expectedVersion); err != nil {
		e.recordDenied(ctx)
		return nil, err
	}
	item.Version++

	if e.reviews != nil && reviewerID != "" {
		e.logReviewRecord(ctx, &domain.ReviewRecord{
			ItemID:     item.ID,
			ReviewerID: reviewerID,
			Decision:   domain.ReviewDecision(action),
			Reason:     reason,
			FromStatus: from,
			ToStatus:   target,
			DecidedAt:  time.Now(),
		})
	}
	return item, nil
}

func (e *Engine) logReview(ctx context.Context, item *domain.ContentItem, reviewerID string, decision domain.ReviewDecision, reason string, from domain.ItemStatus) {
	if e.reviews == nil {
		return
	}
	e.logReviewRecord(ctx, &domain.ReviewRecord{
		ItemID:     item.ID,
		ReviewerID: reviewerID,
		Decision:   decision,
		Reason:     reason,
		FromStatus: from,
		ToStatus:   item.Status,
		DecidedAt:  time.Now(),
	})
}

func (e *Engine) logReviewRecord(ctx context.Context, record *domain.ReviewRecord) {
	if err := e.reviews.Record(ctx, record); err != nil {
		// The audit trail is best-effort; the transition already
		// committed.
		e.logger.Warn("failed to record review decision",
			logger.String("item_id", record.ItemID),
			logger.Error(err),
		)
	}
}

func (e *Engine) recordDenied(ctx context.Context) {
	e.telemetry.RecordTransitionDenied(ctx)
}
