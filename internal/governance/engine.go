// Package governance aggregates duplicate, compliance, and staleness
// signals into a prioritized audit queue and drives the item review state
// machine.
package governance

import (
	"context"
	"time"

	"github.com/Sam231221/dkn-governance/internal/compliance"
	"github.com/Sam231221/dkn-governance/internal/domain"
	"github.com/Sam231221/dkn-governance/internal/logger"
	"github.com/Sam231221/dkn-governance/internal/similarity"
	"github.com/Sam231221/dkn-governance/internal/telemetry"
)

// DefaultStaleAge is the age past which an untouched approved item is
// flagged for re-review.
const DefaultStaleAge = 365 * 24 * time.Hour

// ItemStore is the corpus persistence port consumed by the engine. The
// database layer and the in-memory test store both implement it.
type ItemStore interface {
	// Get returns an item or domain.ErrItemNotFound.
	Get(ctx context.Context, id string) (*domain.ContentItem, error)
	// Create inserts a new item.
	Create(ctx context.Context, item *domain.ContentItem) error
	// ListByStatus returns all items in the given status.
	ListByStatus(ctx context.Context, status domain.ItemStatus) ([]*domain.ContentItem, error)
	// CountNonDraft returns the comparable corpus size.
	CountNonDraft(ctx context.Context) (int, error)
	// UpdateContent replaces the content fields, bumps the version, and
	// refreshes UpdatedAt. Returns domain.ErrItemNotFound or
	// domain.ErrVersionConflict.
	UpdateContent(ctx context.Context, id string, version int, title, description, body string) error
	// ApplyScan writes governance scan results, guarded by existence and
	// version so a scan for a deleted or re-edited item writes nothing.
	ApplyScan(ctx context.Context, id string, version int, duplicates, violations []string, duplicateScanRan, complianceScanRan bool) error
	// ApplyTransition persists a status change plus validation stamps,
	// guarded by version. Returns domain.ErrVersionConflict if the item
	// moved since it was read.
	ApplyTransition(ctx context.Context, item *domain.ContentItem, expectedVersion int) error
}

// ReviewLog records review decisions for the audit trail.
type ReviewLog interface {
	Record(ctx context.Context, record *domain.ReviewRecord) error
}

// EnqueueFunc offloads a scan to the background worker. It reports false
// when the queue is full, in which case the scan stays pending.
type EnqueueFunc func(itemID string) bool

// CorpusIndexer mirrors corpus writes into the similarity prefilter
// index. Optional; without one the candidate finder scans the store
// directly.
type CorpusIndexer interface {
	IndexItem(ctx context.Context, id, normalizedText string, status domain.ItemStatus, createdAt time.Time) error
	DeleteItem(ctx context.Context, id string) error
}

// Config tunes the engine.
type Config struct {
	// AsyncScanThreshold is the corpus size above which submission scans
	// run on the background worker instead of inline.
	AsyncScanThreshold int
	// StaleAge is the age threshold for the staleness sweep.
	StaleAge time.Duration
}

// Engine is the governance aggregator.
type Engine struct {
	store      ItemStore
	reviews    ReviewLog
	similarity *similarity.Engine
	compliance *compliance.Scanner
	logger     logger.Logger
	telemetry  *telemetry.Provider

	asyncThreshold int
	staleAge       time.Duration
	enqueue        EnqueueFunc
	indexer        CorpusIndexer
}

// NewEngine wires the aggregator. reviews and tp may be nil.
func NewEngine(
	store ItemStore,
	reviews ReviewLog,
	sim *similarity.Engine,
	scanner *compliance.Scanner,
	cfg Config,
	log logger.Logger,
	tp *telemetry.Provider,
) *Engine {
	if cfg.StaleAge == 0 {
		cfg.StaleAge = DefaultStaleAge
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{
		store:          store,
		reviews:        reviews,
		similarity:     sim,
		compliance:     scanner,
		logger:         log,
		telemetry:      tp,
		asyncThreshold: cfg.AsyncScanThreshold,
		staleAge:       cfg.StaleAge,
	}
}

// SetEnqueue installs the async scan offload hook. Called once during
// wiring, before the engine serves requests.
func (e *Engine) SetEnqueue(fn EnqueueFunc) {
	e.enqueue = fn
}

// SetIndexer installs the prefilter index mirror. Called once during
// wiring, before the engine serves requests.
func (e *Engine) SetIndexer(idx CorpusIndexer) {
	e.indexer = idx
}

// StaleAge returns the configured staleness threshold.
func (e *Engine) StaleAge() time.Duration {
	return e.staleAge
}
