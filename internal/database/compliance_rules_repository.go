package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Sam231221/dkn-governance/internal/domain"
)

// ComplianceRulesRepository handles database operations for regional
// compliance rules. It implements compliance.RuleProvider.
type ComplianceRulesRepository struct {
	db *sqlx.DB
}

// NewComplianceRulesRepository creates a new compliance rules repository.
func NewComplianceRulesRepository(db *sqlx.DB) *ComplianceRulesRepository {
	return &ComplianceRulesRepository{db: db}
}

// GetComplianceRule returns the rule for a region, or nil when the region
// has none configured. Errors indicate lookup failure, which the scanner
// treats as a degraded scan rather than a clean result.
func (r *ComplianceRulesRepository) GetComplianceRule(ctx context.Context, regionID string) (*domain.ComplianceRule, error) {
	var rule domain.ComplianceRule
	query := `
		SELECT id, region_id, region_name, compliance_level, law_description,
		       created_at, updated_at
		FROM compliance_rules
		WHERE region_id = $1
	`

	err := r.db.GetContext(ctx, &rule, query, regionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get compliance rule: %w", err)
	}

	return &rule, nil
}

// Create inserts a new regional rule.
func (r *ComplianceRulesRepository) Create(ctx context.Context, rule *domain.ComplianceRule) error {
	query := `
		INSERT INTO compliance_rules (region_id, region_name, compliance_level, law_description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		rule.RegionID,
		rule.RegionName,
		rule.ComplianceLevel,
		rule.LawDescription,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create compliance rule: %w", err)
	}

	return nil
}

// List retrieves all regional rules, optionally filtered by level.
func (r *ComplianceRulesRepository) List(ctx context.Context, level domain.ComplianceLevel) ([]*domain.ComplianceRule, error) {
	var rules []*domain.ComplianceRule

	query := `
		SELECT id, region_id, region_name, compliance_level, law_description,
		       created_at, updated_at
		FROM compliance_rules
	`
	var args []any
	if level != "" {
		query += ` WHERE compliance_level = $1`
		args = append(args, level)
	}
	query += ` ORDER BY region_id ASC`

	if err := r.db.SelectContext(ctx, &rules, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list compliance rules: %w", err)
	}

	return rules, nil
}

// Update replaces an existing rule's level and description.
func (r *ComplianceRulesRepository) Update(ctx context.Context, rule *domain.ComplianceRule) error {
	query := `
		UPDATE compliance_rules
		SET region_name = $1, compliance_level = $2, law_description = $3,
		    updated_at = NOW()
		WHERE region_id = $4
		RETURNING id, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		rule.RegionName,
		rule.ComplianceLevel,
		rule.LawDescription,
		rule.RegionID,
	).Scan(&rule.ID, &rule.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("compliance rule not found: %s", rule.RegionID)
		}
		return fmt.Errorf("failed to update compliance rule: %w", err)
	}

	return nil
}

// Delete removes a region's rule. Scans for that region fall back to the
// generic detectors only.
func (r *ComplianceRulesRepository) Delete(ctx context.Context, regionID string) error {
	query := `DELETE FROM compliance_rules WHERE region_id = $1`

	result, err := r.db.ExecContext(ctx, query, regionID)
	if err != nil {
		return fmt.Errorf("failed to delete compliance rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("compliance rule not found: %s", regionID)
	}

	return nil
}
