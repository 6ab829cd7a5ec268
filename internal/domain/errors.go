package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for non-fatal degradations and infrastructure gaps.
var (
	// ErrCorpusUnavailable means the persistence layer could not supply
	// the corpus for similarity scanning. Ingestion still proceeds; the
	// item records that duplicate detection did not run.
	ErrCorpusUnavailable = errors.New("corpus unavailable")

	// ErrDegradedScan means a compliance scan fell back to generic checks
	// because the regional rule lookup failed.
	ErrDegradedScan = errors.New("compliance scan degraded")

	// ErrItemNotFound is returned by stores when an item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrVersionConflict means an optimistic write lost a race: the item's
	// version changed after it was read.
	ErrVersionConflict = errors.New("item version conflict")
)

// ValidationError reports malformed input, rejected before any scanning.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a named field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InvalidStateTransitionError reports an illegal review transition. It
// always propagates to the caller; the engine never silently no-ops a
// human decision.
type InvalidStateTransitionError struct {
	ItemID string
	From   ItemStatus
	To     ItemStatus
	Reason string
}

func (e *InvalidStateTransitionError) Error() string {
	msg := fmt.Sprintf("invalid state transition for item %s: %s -> %s", e.ItemID, e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// IsInvalidTransition reports whether err is an InvalidStateTransitionError.
func IsInvalidTransition(err error) bool {
	var te *InvalidStateTransitionError
	return errors.As(err, &te)
}
