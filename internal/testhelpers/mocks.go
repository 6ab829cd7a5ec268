// Package testhelpers provides shared in-memory fakes for the governance
// service tests.
package testhelpers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Sam231221/dkn-governance/internal/domain"
	"github.com/Sam231221/dkn-governance/internal/similarity"
	"github.com/Sam231221/dkn-governance/internal/textnorm"
)

// MemoryItemStore implements governance.ItemStore and
// similarity.CorpusLister over a map. It honors the same version guard
// semantics as the database repository.
type MemoryItemStore struct {
	mu    sync.RWMutex
	items map[string]*domain.ContentItem

	// FailList forces ListNonDraft to fail, simulating an unavailable
	// corpus.
	FailList bool
}

// NewMemoryItemStore creates an empty in-memory store.
func NewMemoryItemStore() *MemoryItemStore {
	return &MemoryItemStore{items: make(map[string]*domain.ContentItem)}
}

// Seed inserts items directly for test setup.
func (m *MemoryItemStore) Seed(items ...*domain.ContentItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		copied := *item
		m.items[item.ID] = &copied
	}
}

// Get returns a copy of the item or domain.ErrItemNotFound.
func (m *MemoryItemStore) Get(_ context.Context, id string) (*domain.ContentItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	copied := *item
	return &copied, nil
}

// Create inserts a new item.
func (m *MemoryItemStore) Create(_ context.Context, item *domain.ContentItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *item
	m.items[item.ID] = &copied
	return nil
}

// ListByStatus returns copies of all items in the given status.
func (m *MemoryItemStore) ListByStatus(_ context.Context, status domain.ItemStatus) ([]*domain.ContentItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ContentItem
	for _, item := range m.items {
		if item.Status == status {
			copied := *item
			out = append(out, &copied)
		}
	}
	return out, nil
}

// CountNonDraft returns the comparable corpus size.
func (m *MemoryItemStore) CountNonDraft(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, item := range m.items {
		if item.Status != domain.StatusDraft {
			count++
		}
	}
	return count, nil
}

// ListNonDraft returns a normalized corpus snapshot.
func (m *MemoryItemStore) ListNonDraft(_ context.Context) ([]similarity.CorpusDoc, error) {
	if m.FailList {
		return nil, errors.New("corpus unavailable")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var docs []similarity.CorpusDoc
	for _, item := range m.items {
		if item.Status == domain.StatusDraft {
			continue
		}
		docs = append(docs, similarity.CorpusDoc{
			ID:        item.ID,
			Text:      textnorm.Normalize(item.Title, item.BodyText),
			Status:    item.Status,
			CreatedAt: item.CreatedAt,
		})
	}
	return docs, nil
}

// UpdateContent replaces content fields under the version guard.
func (m *MemoryItemStore) UpdateContent(_ context.Context, id string, version int, title, description, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return domain.ErrItemNotFound
	}
	if item.Version != version {
		return domain.ErrVersionConflict
	}
	item.Title = title
	item.Description = description
	item.BodyText = body
	item.DuplicateOf = nil
	item.ComplianceViolations = nil
	item.DuplicateScanRan = false
	item.ComplianceScanRan = false
	item.UpdatedAt = time.Now()
	item.Version++
	return nil
}

// ApplyScan writes scan results under the version guard.
func (m *MemoryItemStore) ApplyScan(_ context.Context, id string, version int, duplicates, violations []string, duplicateScanRan, complianceScanRan bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return domain.ErrItemNotFound
	}
	if item.Version != version {
		return domain.ErrVersionConflict
	}
	item.DuplicateOf = duplicates
	item.ComplianceViolations = violations
	item.DuplicateScanRan = duplicateScanRan
	item.ComplianceScanRan = complianceScanRan
	item.Version++
	return nil
}

// ApplyTransition persists a status change under the version guard.
func (m *MemoryItemStore) ApplyTransition(_ context.Context, updated *domain.ContentItem, expectedVersion int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[updated.ID]
	if !ok {
		return domain.ErrItemNotFound
	}
	if item.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	copied := *updated
	copied.Version = expectedVersion + 1
	m.items[updated.ID] = &copied
	return nil
}

// MemoryRuleProvider implements compliance.RuleProvider over a map.
type MemoryRuleProvider struct {
	mu    sync.RWMutex
	rules map[string]*domain.ComplianceRule

	// Fail forces lookups to error, simulating a degraded rule store.
	Fail bool
}

// NewMemoryRuleProvider creates an empty rule provider.
func NewMemoryRuleProvider() *MemoryRuleProvider {
	return &MemoryRuleProvider{rules: make(map[string]*domain.ComplianceRule)}
}

// SetRule sets a region's rule directly (for test setup).
func (m *MemoryRuleProvider) SetRule(rule *domain.ComplianceRule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[rule.RegionID] = rule
}

// GetComplianceRule returns the region's rule, nil when unset.
func (m *MemoryRuleProvider) GetComplianceRule(_ context.Context, regionID string) (*domain.ComplianceRule, error) {
	if m.Fail {
		return nil, errors.New("rule store unavailable")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rules[regionID], nil
}

// MemoryReviewLog implements governance.ReviewLog by appending to a slice.
type MemoryReviewLog struct {
	mu      sync.Mutex
	records []*domain.ReviewRecord
}

// NewMemoryReviewLog creates an empty review log.
func NewMemoryReviewLog() *MemoryReviewLog {
	return &MemoryReviewLog{}
}

// Record appends one review decision.
func (m *MemoryReviewLog) Record(_ context.Context, record *domain.ReviewRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *record
	m.records = append(m.records, &copied)
	return nil
}

// Records returns a snapshot of the recorded decisions.
func (m *MemoryReviewLog) Records() []*domain.ReviewRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.ReviewRecord, len(m.records))
	copy(out, m.records)
	return out
}
