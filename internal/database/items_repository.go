package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Sam231221/dkn-governance/internal/domain"
	"github.com/Sam231221/dkn-governance/internal/similarity"
	"github.com/Sam231221/dkn-governance/internal/textnorm"
)

const itemColumns = `
	id, title, description, body_text, status, item_type, author_id,
	region_id, repository_id, created_at, updated_at, views, likes,
	validated_by, validated_at, rejection_reason,
	duplicate_of, compliance_violations,
	duplicate_scan_ran, compliance_scan_ran, version
`

// ItemsRepository persists content items and their governance metadata.
// It implements governance.ItemStore and similarity.CorpusLister.
type ItemsRepository struct {
	db *sqlx.DB
}

// NewItemsRepository creates a new items repository.
func NewItemsRepository(db *sqlx.DB) *ItemsRepository {
	return &ItemsRepository{db: db}
}

// Create inserts a new item.
func (r *ItemsRepository) Create(ctx context.Context, item *domain.ContentItem) error {
	query := `
		INSERT INTO content_items (
			id, title, description, body_text, status, item_type, author_id,
			region_id, repository_id, created_at, updated_at, views, likes,
			duplicate_of, compliance_violations,
			duplicate_scan_ran, compliance_scan_ran, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.Title,
		item.Description,
		item.BodyText,
		item.Status,
		item.Type,
		item.AuthorID,
		item.RegionID,
		item.RepositoryID,
		item.CreatedAt,
		item.UpdatedAt,
		item.Views,
		item.Likes,
		pq.Array(item.DuplicateOf),
		pq.Array(item.ComplianceViolations),
		item.DuplicateScanRan,
		item.ComplianceScanRan,
		item.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

// Get retrieves an item by ID.
func (r *ItemsRepository) Get(ctx context.Context, id string) (*domain.ContentItem, error) {
	query := `SELECT ` + itemColumns + ` FROM content_items WHERE id = $1`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return item, nil
}

// ListByStatus returns all items in the given status, oldest first.
func (r *ItemsRepository) ListByStatus(ctx context.Context, status domain.ItemStatus) ([]*domain.ContentItem, error) {
	query := `SELECT ` + itemColumns + ` FROM content_items WHERE status = $1 ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var items []*domain.ContentItem
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan item: %w", scanErr)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

// CountNonDraft returns the size of the comparable corpus.
func (r *ItemsRepository) CountNonDraft(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM content_items WHERE status <> $1`

	err := r.db.QueryRowContext(ctx, query, domain.StatusDraft).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count corpus: %w", err)
	}

	return count, nil
}

// ListNonDraft returns a point-in-time snapshot of the comparable corpus
// with text pre-normalized for similarity scoring. The read runs in a
// repeatable-read transaction so a scan never mixes corpus states.
func (r *ItemsRepository) ListNonDraft(ctx context.Context) ([]similarity.CorpusDoc, error) {
	query := `
		SELECT id, title, body_text, status, created_at
		FROM content_items
		WHERE status <> $1
	`

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin corpus snapshot: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows, err := tx.QueryContext(ctx, query, domain.StatusDraft)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot corpus: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []similarity.CorpusDoc
	for rows.Next() {
		var doc similarity.CorpusDoc
		var title, body string
		if err = rows.Scan(&doc.ID, &title, &body, &doc.Status, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan corpus doc: %w", err)
		}
		doc.Text = textnorm.Normalize(title, body)
		docs = append(docs, doc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating corpus: %w", err)
	}

	return docs, nil
}

// UpdateContent replaces the content fields of an editable item, bumps
// the version, and clears the scan flags so stale results cannot be
// mistaken for current ones.
func (r *ItemsRepository) UpdateContent(ctx context.Context, id string, version int, title, description, body string) error {
	query := `
		UPDATE content_items
		SET title = $1, description = $2, body_text = $3,
		    duplicate_of = '{}', compliance_violations = '{}',
		    duplicate_scan_ran = FALSE, compliance_scan_ran = FALSE,
		    updated_at = NOW(), version = version + 1
		WHERE id = $4 AND version = $5
	`

	result, err := r.db.ExecContext(ctx, query, title, description, body, id, version)
	if err != nil {
		return fmt.Errorf("failed to update item content: %w", err)
	}

	return r.guardResult(ctx, result, id)
}

// ApplyScan writes governance scan results, guarded by existence and
// version: a scan finishing after the item was deleted or re-edited
// writes nothing.
func (r *ItemsRepository) ApplyScan(ctx context.Context, id string, version int, duplicates, violations []string, duplicateScanRan, complianceScanRan bool) error {
	query := `
		UPDATE content_items
		SET duplicate_of = $1, compliance_violations = $2,
		    duplicate_scan_ran = $3, compliance_scan_ran = $4,
		    version = version + 1
		WHERE id = $5 AND version = $6
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		pq.Array(duplicates),
		pq.Array(violations),
		duplicateScanRan,
		complianceScanRan,
		id,
		version,
	)
	if err != nil {
		return fmt.Errorf("failed to apply scan results: %w", err)
	}

	return r.guardResult(ctx, result, id)
}

// ApplyTransition persists a status change plus validation stamps,
// guarded by the version the caller read.
func (r *ItemsRepository) ApplyTransition(ctx context.Context, item *domain.ContentItem, expectedVersion int) error {
	query := `
		UPDATE content_items
		SET status = $1, validated_by = $2, validated_at = $3,
		    rejection_reason = $4,
		    duplicate_of = $5, compliance_violations = $6,
		    duplicate_scan_ran = $7, compliance_scan_ran = $8,
		    version = version + 1
		WHERE id = $9 AND version = $10
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		item.Status,
		nullIfEmpty(item.ValidatedBy),
		item.ValidatedAt,
		nullIfEmpty(item.RejectionReason),
		pq.Array(item.DuplicateOf),
		pq.Array(item.ComplianceViolations),
		item.DuplicateScanRan,
		item.ComplianceScanRan,
		item.ID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to apply transition: %w", err)
	}

	return r.guardResult(ctx, result, item.ID)
}

// IncrementViews bumps the view counter. Best-effort; not version guarded
// because access counters never gate governance decisions.
func (r *ItemsRepository) IncrementViews(ctx context.Context, id string) error {
	query := `UPDATE content_items SET views = views + 1 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

// IncrementLikes bumps the like counter. Same contract as IncrementViews.
func (r *ItemsRepository) IncrementLikes(ctx context.Context, id string) error {
	query := `UPDATE content_items SET likes = likes + 1 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to increment likes: %w", err)
	}
	return nil
}

// StatusCounts returns the number of items per lifecycle status.
func (r *ItemsRepository) StatusCounts(ctx context.Context) (map[domain.ItemStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM content_items GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get status counts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make(map[domain.ItemStatus]int)
	for rows.Next() {
		var status domain.ItemStatus
		var count int
		if err = rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	return counts, nil
}

// guardResult maps a zero-row UPDATE to the matching sentinel: the item
// is either gone or its version moved.
func (r *ItemsRepository) guardResult(ctx context.Context, result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM content_items WHERE id = $1)`
	if err = r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check item existence: %w", err)
	}
	if !exists {
		return domain.ErrItemNotFound
	}
	return domain.ErrVersionConflict
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.ContentItem, error) {
	var item domain.ContentItem
	var validatedBy, rejectionReason sql.NullString

	err := row.Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.BodyText,
		&item.Status,
		&item.Type,
		&item.AuthorID,
		&item.RegionID,
		&item.RepositoryID,
		&item.CreatedAt,
		&item.UpdatedAt,
		&item.Views,
		&item.Likes,
		&validatedBy,
		&item.ValidatedAt,
		&rejectionReason,
		pq.Array(&item.DuplicateOf),
		pq.Array(&item.ComplianceViolations),
		&item.DuplicateScanRan,
		&item.ComplianceScanRan,
		&item.Version,
	)
	if err != nil {
		return nil, err
	}

	item.ValidatedBy = validatedBy.String
	item.RejectionReason = rejectionReason.String

	return &item, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
