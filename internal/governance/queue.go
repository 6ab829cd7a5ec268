package governance

import (
	"context"
	"sort"
	"time"

	"github.com/Sam231221/dkn-governance/internal/domain"
	"github.com/Sam231221/dkn-governance/internal/logger"
)

// BuildAuditQueue assembles the prioritized review queue from the current
// pending items. The queue is derived on every call and never persisted,
// so it cannot drift from item state. Items outside the caller's scope
// are filtered out, not errored on.
//
// Priority is high when the item carries violations, blocking duplicates,
// or is a policy or procedure; everything else is medium. Within a
// priority the queue is FIFO on CreatedAt so old submissions cannot
// starve behind a stream of newer high-volume ones.
func (e *Engine) BuildAuditQueue(ctx context.Context, scope domain.AccessScope) ([]*domain.AuditEntry, error) {
	ctx, span := e.telemetry.StartSpan(ctx, "governance.build_audit_queue")
	defer span.End()

	pending, err := e.store.ListByStatus(ctx, domain.StatusPendingReview)
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.AuditEntry, 0, len(pending))
	for _, item := range pending {
		if !scope.Allows(item.RegionID) {
			continue
		}
		entries = append(entries, e.classify(item))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority < entries[j].Priority
		}
		return entries[i].Item.CreatedAt.Before(entries[j].Item.CreatedAt)
	})

	var high, medium, low int
	for _, entry := range entries {
		switch entry.Priority {
		case domain.PriorityHigh:
			high++
		case domain.PriorityMedium:
			medium++
		default:
			low++
		}
	}
	e.telemetry.RecordAuditQueue(ctx, high, medium, low)

	e.logger.Debug("audit queue built",
		logger.Int("total", len(entries)),
		logger.Int("high", high),
		logger.Int("medium", medium),
	)

	return entries, nil
}

func (e *Engine) classify(item *domain.ContentItem) *domain.AuditEntry {
	entry := &domain.AuditEntry{
		Item:     item,
		Priority: domain.PriorityMedium,
	}

	if item.HasViolations() {
		entry.Reasons = append(entry.Reasons, domain.ReasonCompliance)
	}
	if item.HasDuplicates() {
		entry.Reasons = append(entry.Reasons, domain.ReasonDuplicate)
	}
	if item.Type == domain.ItemTypePolicy || item.Type == domain.ItemTypeProcedure {
		entry.Reasons = append(entry.Reasons, domain.ReasonItemType)
	}
	if len(entry.Reasons) > 0 {
		entry.Priority = domain.PriorityHigh
	}

	return entry
}

// FlagStale returns the approved items in scope whose content has not
// been touched for longer than the staleness threshold. It only reports;
// sending a stale item back to review is a separate explicit action
// (RerouteStale), so a sweep can never change item state by itself.
func (e *Engine) FlagStale(ctx context.Context, scope domain.AccessScope) ([]*domain.AuditEntry, error) {
	ctx, span := e.telemetry.StartSpan(ctx, "governance.flag_stale")
	defer span.End()

	start := time.Now()

	approved, err := e.store.ListByStatus(ctx, domain.StatusApproved)
	if err != nil {
		return nil, err
	}

	cutoff := start.Add(-e.staleAge)
	stale := make([]*domain.AuditEntry, 0)
	for _, item := range approved {
		if !scope.Allows(item.RegionID) {
			continue
		}
		if item.UpdatedAt.After(cutoff) {
			continue
		}
		stale = append(stale, &domain.AuditEntry{
			Item:     item,
			Priority: domain.PriorityLow,
			Reasons:  []domain.AuditReason{domain.ReasonStaleness},
		})
	}

	sort.SliceStable(stale, func(i, j int) bool {
		return stale[i].Item.UpdatedAt.Before(stale[j].Item.UpdatedAt)
	})

	e.telemetry.RecordStaleSweep(ctx, time.Since(start), len(stale))
	e.logger.Info("stale sweep completed",
		logger.Int("approved_checked", len(approved)),
		logger.Int("flagged", len(stale)),
		logger.Duration("elapsed", time.Since(start)),
	)

	return stale, nil
}
