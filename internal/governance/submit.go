package governance

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Sam231221/dkn-governance/internal/compliance"
	"github.com/Sam231221/dkn-governance/internal/domain"
	"github.com/Sam231221/dkn-governance/internal/logger"
	"github.com/Sam231221/dkn-governance/internal/similarity"
	"github.com/Sam231221/dkn-governance/internal/textnorm"
)

// Submission outcomes reported to telemetry.
const (
	outcomeScanned   = "scanned"
	outcomeDuplicate = "duplicate"
	outcomeViolation = "violation"
	outcomeDegraded  = "degraded"
	outcomeAsync     = "async"
)

// SubmitRequest carries a new knowledge submission from the CRUD layer.
type SubmitRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	BodyText     string `json:"body_text"`
	Type         string `json:"item_type"`
	AuthorID     string `json:"author_id"`
	RegionID     string `json:"region_id"`
	RepositoryID string `json:"repository_id"`
}

func (r *SubmitRequest) validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return domain.NewValidationError("title", "must not be empty")
	}
	if strings.TrimSpace(r.BodyText) == "" {
		return domain.NewValidationError("body_text", "must not be empty")
	}
	if strings.TrimSpace(r.AuthorID) == "" {
		return domain.NewValidationError("author_id", "must not be empty")
	}
	return nil
}

// Submit validates and records a new submission, runs the governance
// scans, and places the item in pending review. A clean scan never
// auto-approves; human review is mandatory. Scan failures never lose the
// submission: if the corpus is unavailable the item is recorded with
// duplicate detection explicitly marked as not run.
func (e *Engine) Submit(ctx context.Context, req SubmitRequest) (*domain.ContentItem, error) {
	start := time.Now()

	if err := req.validate(); err != nil {
		return nil, err
	}

	itemType := req.Type
	if itemType == "" {
		itemType = domain.ItemTypeArticle
	}

	now := time.Now()
	item := &domain.ContentItem{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Description:  req.Description,
		BodyText:     req.BodyText,
		Status:       domain.StatusPendingReview,
		Type:         itemType,
		AuthorID:     req.AuthorID,
		RegionID:     req.RegionID,
		RepositoryID: req.RepositoryID,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}

	if err := e.store.Create(ctx, item); err != nil {
		return nil, err
	}
	e.syncIndex(ctx, item)

	outcome := e.scanOrEnqueue(ctx, item)

	e.telemetry.RecordSubmission(ctx, outcome, time.Since(start))

	e.logger.Info("submission recorded",
		logger.String("item_id", item.ID),
		logger.String("item_type", item.Type),
		logger.String("outcome", outcome),
		logger.Int("duplicates", len(item.DuplicateOf)),
		logger.Int("violations", len(item.ComplianceViolations)),
	)

	return item, nil
}

// UpdateContent applies a content edit and re-runs the governance scans.
// Stale governance metadata after an edit is a correctness bug, so the
// scan flags are cleared in the same write that changes the text.
func (e *Engine) UpdateContent(ctx context.Context, itemID string, version int, title, description, body string) (*domain.ContentItem, error) {
	if strings.TrimSpace(title) == "" {
		return nil, domain.NewValidationError("title", "must not be empty")
	}
	if strings.TrimSpace(body) == "" {
		return nil, domain.NewValidationError("body_text", "must not be empty")
	}

	if err := e.store.UpdateContent(ctx, itemID, version, title, description, body); err != nil {
		return nil, err
	}

	item, err := e.store.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	e.syncIndex(ctx, item)

	e.scanOrEnqueue(ctx, item)
	return item, nil
}

// SubmitExisting promotes a draft into the review pipeline, running the
// governance scans on the way.
func (e *Engine) SubmitExisting(ctx context.Context, itemID string) (*domain.ContentItem, error) {
	item, err := e.store.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !canTransition(item.Status, domain.StatusPendingReview) || item.Status != domain.StatusDraft {
		return nil, transitionErr(item.ID, item.Status, domain.StatusPendingReview, "only drafts can be submitted")
	}

	item.Status = domain.StatusPendingReview
	if err := e.store.ApplyTransition(ctx, item, item.Version); err != nil {
		return nil, err
	}
	item.Version++
	e.syncIndex(ctx, item)

	e.scanOrEnqueue(ctx, item)
	return item, nil
}

// Rescan re-runs both scans for an item and writes the results back under
// the existence and version guard. Used by the background worker and by
// operators after an infrastructure outage.
func (e *Engine) Rescan(ctx context.Context, itemID string) error {
	item, err := e.store.Get(ctx, itemID)
	if err != nil {
		return err
	}
	e.runScans(ctx, item)
	return nil
}

// scanOrEnqueue decides between the inline scan path and the background
// worker, based on corpus size. The item already persists either way.
func (e *Engine) scanOrEnqueue(ctx context.Context, item *domain.ContentItem) string {
	if e.enqueue != nil && e.asyncThreshold > 0 {
		count, err := e.store.CountNonDraft(ctx)
		if err == nil && count > e.asyncThreshold {
			if e.enqueue(item.ID) {
				if e.telemetry != nil {
					e.telemetry.Metrics.AsyncScans.Inc()
				}
				return outcomeAsync
			}
			// Queue full: fall through to the inline path rather than
			// leaving the item unscanned.
		}
	}
	return e.runScans(ctx, item)
}

// runScans executes the similarity and compliance scans in parallel over
// a corpus snapshot and writes results back to the item's governance
// fields. Both scans are read-only over the corpus and write only to this
// item, so concurrent submissions need no cross-item locking.
func (e *Engine) runScans(ctx context.Context, item *domain.ContentItem) string {
	normalized := textnorm.Normalize(item.Title, item.BodyText)

	var (
		wg        sync.WaitGroup
		simResult *similarity.Result
		simErr    error
		scanRes   *compliance.ScanResult
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		simResult, simErr = e.similarity.FindSimilar(ctx, normalized, item.ID)
	}()
	go func() {
		defer wg.Done()
		scanRes = e.compliance.Scan(ctx, item.Title, item.BodyText, item.RegionID)
	}()
	wg.Wait()

	duplicateScanRan := true
	var duplicates []string
	switch {
	case simErr != nil:
		// Corpus unavailable: record the honest unknown instead of a
		// false "no duplicates".
		duplicateScanRan = false
		e.logger.Warn("duplicate detection did not run",
			logger.String("item_id", item.ID),
			logger.Error(errors.Join(domain.ErrCorpusUnavailable, simErr)),
		)
	case simResult.Insufficient:
		// Empty normalized text participates in no duplicate
		// classification.
		duplicates = nil
	default:
		duplicates = simResult.Duplicates
	}

	item.DuplicateOf = duplicates
	item.ComplianceViolations = scanRes.Violations
	item.DuplicateScanRan = duplicateScanRan
	item.ComplianceScanRan = true

	// Guarded write-back: a submission deleted or re-edited mid-scan must
	// not receive stale results.
	err := e.store.ApplyScan(ctx, item.ID, item.Version, duplicates, scanRes.Violations, duplicateScanRan, true)
	switch {
	case errors.Is(err, domain.ErrItemNotFound):
		e.logger.Info("scan results discarded, item deleted mid-scan", logger.String("item_id", item.ID))
	case errors.Is(err, domain.ErrVersionConflict):
		e.logger.Info("scan results discarded, item changed mid-scan", logger.String("item_id", item.ID))
	case err != nil:
		e.logger.Error("scan write-back failed", logger.String("item_id", item.ID), logger.Error(err))
	default:
		item.Version++
	}

	switch {
	case !duplicateScanRan:
		return outcomeDegraded
	case len(scanRes.Violations) > 0:
		return outcomeViolation
	case len(duplicates) > 0:
		return outcomeDuplicate
	default:
		return outcomeScanned
	}
}

// syncIndex mirrors the item into the prefilter index. Best-effort: the
// full-scan finder remains correct without it, so index failures degrade
// performance, not results.
func (e *Engine) syncIndex(ctx context.Context, item *domain.ContentItem) {
	if e.indexer == nil {
		return
	}
	text := textnorm.Normalize(item.Title, item.BodyText)
	if err := e.indexer.IndexItem(ctx, item.ID, text, item.Status, item.CreatedAt); err != nil {
		e.logger.Warn("prefilter index update failed",
			logger.String("item_id", item.ID),
			logger.Error(err),
		)
	}
}

// dropFromIndex removes an item that left the comparable corpus.
func (e *Engine) dropFromIndex(ctx context.Context, itemID string) {
	if e.indexer == nil {
		return
	}
	if err := e.indexer.DeleteItem(ctx, itemID); err != nil {
		e.logger.Warn("prefilter index delete failed",
			logger.String("item_id", itemID),
			logger.Error(err),
		)
	}
}
