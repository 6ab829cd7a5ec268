package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemStatus(t *testing.T) {
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusArchived.IsTerminal())
	assert.False(t, StatusDraft.IsTerminal())
	assert.False(t, StatusPendingReview.IsTerminal())
	assert.False(t, StatusApproved.IsTerminal())

	for _, s := range []ItemStatus{StatusDraft, StatusPendingReview, StatusApproved, StatusRejected, StatusArchived} {
		assert.True(t, s.Valid(), "status %s", s)
	}
	assert.False(t, ItemStatus("published").Valid())
}

func TestReviewDecisionValid(t *testing.T) {
	assert.True(t, DecisionApprove.Valid())
	assert.True(t, DecisionReject.Valid())
	assert.False(t, ReviewDecision("escalate").Valid())
	assert.False(t, ReviewDecision("").Valid())
}

func TestAccessScopeAllows(t *testing.T) {
	all := ScopeAll()
	assert.True(t, all.Allows("eu-central"))
	assert.True(t, all.Allows(""))

	eu := ScopeRegions("eu-central", "eu-west")
	assert.True(t, eu.Allows("eu-central"))
	assert.True(t, eu.Allows("eu-west"))
	assert.False(t, eu.Allows("us-east"))

	// Regionless items are global content, visible in every scope.
	assert.True(t, eu.Allows(""))
}

func TestContentItemFindings(t *testing.T) {
	item := &ContentItem{}
	assert.False(t, item.HasViolations())
	assert.False(t, item.HasDuplicates())

	item.ComplianceViolations = []string{"Potential payment card number detected"}
	item.DuplicateOf = []string{"other-item"}
	assert.True(t, item.HasViolations())
	assert.True(t, item.HasDuplicates())
}

func TestAuditPriorityString(t *testing.T) {
	assert.Equal(t, "high", PriorityHigh.String())
	assert.Equal(t, "medium", PriorityMedium.String())
	assert.Equal(t, "low", PriorityLow.String())
}
