package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Sam231221/dkn-governance/internal/domain"
)

// ReviewHistoryRepository persists the append-only review audit trail.
// It implements governance.ReviewLog.
type ReviewHistoryRepository struct {
	db *sqlx.DB
}

// NewReviewHistoryRepository creates a new review history repository.
func NewReviewHistoryRepository(db *sqlx.DB) *ReviewHistoryRepository {
	return &ReviewHistoryRepository{db: db}
}

// Record appends one review decision.
func (r *ReviewHistoryRepository) Record(ctx context.Context, record *domain.ReviewRecord) error {
	query := `
		INSERT INTO review_history (
			item_id, reviewer_id, decision, reason, from_status, to_status, decided_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		record.ItemID,
		record.ReviewerID,
		record.Decision,
		record.Reason,
		record.FromStatus,
		record.ToStatus,
		record.DecidedAt,
	).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("failed to record review decision: %w", err)
	}

	return nil
}

// ListByItem returns an item's review trail, newest first.
func (r *ReviewHistoryRepository) ListByItem(ctx context.Context, itemID string) ([]*domain.ReviewRecord, error) {
	var records []*domain.ReviewRecord
	query := `
		SELECT id, item_id, reviewer_id, decision, reason, from_status, to_status, decided_at
		FROM review_history
		WHERE item_id = $1
		ORDER BY decided_at DESC
	`

	if err := r.db.SelectContext(ctx, &records, query, itemID); err != nil {
		return nil, fmt.Errorf("failed to list review history: %w", err)
	}

	return records, nil
}

// DecisionStat is the decision count for one decision type.
type DecisionStat struct {
	Decision string `db:"decision" json:"decision"`
	Count    int    `db:"count"    json:"count"`
}

// DecisionStats returns review decision counts grouped by decision.
func (r *ReviewHistoryRepository) DecisionStats(ctx context.Context) ([]DecisionStat, error) {
	var stats []DecisionStat
	query := `
		SELECT decision, COUNT(*) AS count
		FROM review_history
		GROUP BY decision
		ORDER BY count DESC
	`

	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get decision stats: %w", err)
	}

	return stats, nil
}
