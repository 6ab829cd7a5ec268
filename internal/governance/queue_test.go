package governance

import (
	"context"
	"testing"
	"time"

	"github.com/Sam231221/dkn-governance/internal/domain"
)

func TestBuildAuditQueue_PriorityAndOrder(t *testing.T) {
	env := newTestEnv(Config{})
	base := time.Now().Add(-time.Hour)

	clean := pendingItem("clean-old", base)
	cleanNew := pendingItem("clean-new", base.Add(30*time.Minute))

	flagged := pendingItem("flagged", base.Add(10*time.Minute))
	flagged.ComplianceViolations = []string{"Potential payment card number detected"}

	dup := pendingItem("dup", base.Add(20*time.Minute))
	dup.DuplicateOf = []string{"clean-old"}

	policy := pendingItem("policy", base.Add(25*time.Minute))
	policy.Type = domain.ItemTypePolicy

	env.store.Seed(clean, cleanNew, flagged, dup, policy)

	entries, err := env.engine.BuildAuditQueue(context.Background(), domain.ScopeAll())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}

	// High-priority items first, FIFO by creation time within the band.
	wantOrder := []string{"flagged", "dup", "policy", "clean-old", "clean-new"}
	for i, want := range wantOrder {
		if entries[i].Item.ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, entries[i].Item.ID)
		}
	}

	for _, e := range entries {
		switch e.Item.ID {
		case "flagged":
			if e.Priority != domain.PriorityHigh || !e.HasReason(domain.ReasonCompliance) {
				t.Errorf("flagged: priority %v reasons %v", e.Priority, e.Reasons)
			}
		case "dup":
			if e.Priority != domain.PriorityHigh || !e.HasReason(domain.ReasonDuplicate) {
				t.Errorf("dup: priority %v reasons %v", e.Priority, e.Reasons)
			}
		case "policy":
			if e.Priority != domain.PriorityHigh || !e.HasReason(domain.ReasonItemType) {
				t.Errorf("policy: priority %v reasons %v", e.Priority, e.Reasons)
			}
		case "clean-old", "clean-new":
			if e.Priority != domain.PriorityMedium || len(e.Reasons) != 0 {
				t.Errorf("%s: priority %v reasons %v", e.Item.ID, e.Priority, e.Reasons)
			}
		}
	}
}

func TestBuildAuditQueue_ScopeFilter(t *testing.T) {
	env := newTestEnv(Config{})

	eu := pendingItem("eu-item", time.Now())
	eu.RegionID = "eu-central"
	us := pendingItem("us-item", time.Now())
	us.RegionID = "us-east"
	env.store.Seed(eu, us)

	entries, err := env.engine.BuildAuditQueue(context.Background(), domain.ScopeRegions("eu-central"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Item.ID != "eu-item" {
		t.Fatalf("scope filter failed: %v", entries)
	}
}

func TestBuildAuditQueue_OnlyPendingReview(t *testing.T) {
	env := newTestEnv(Config{})

	approved := pendingItem("approved-1", time.Now())
	approved.Status = domain.StatusApproved
	env.store.Seed(approved, pendingItem("pending-1", time.Now()))

	entries, err := env.engine.BuildAuditQueue(context.Background(), domain.ScopeAll())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Item.ID != "pending-1" {
		t.Fatalf("expected only the pending item, got %v", entries)
	}
}

func TestFlagStale(t *testing.T) {
	env := newTestEnv(Config{StaleAge: 180 * 24 * time.Hour})
	now := time.Now()

	stale := pendingItem("stale-1", now.Add(-400*24*time.Hour))
	stale.Status = domain.StatusApproved
	stale.UpdatedAt = now.Add(-200 * 24 * time.Hour)

	staler := pendingItem("stale-2", now.Add(-400*24*time.Hour))
	staler.Status = domain.StatusApproved
	staler.UpdatedAt = now.Add(-300 * 24 * time.Hour)

	fresh := pendingItem("fresh", now.Add(-400*24*time.Hour))
	fresh.Status = domain.StatusApproved
	fresh.UpdatedAt = now.Add(-10 * 24 * time.Hour)

	env.store.Seed(stale, staler, fresh)

	entries, err := env.engine.FlagStale(context.Background(), domain.ScopeAll())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 stale entries, got %d", len(entries))
	}
	// Oldest update first.
	if entries[0].Item.ID != "stale-2" || entries[1].Item.ID != "stale-1" {
		t.Errorf("expected oldest-first order, got %s, %s", entries[0].Item.ID, entries[1].Item.ID)
	}
	for _, e := range entries {
		if e.Priority != domain.PriorityLow || !e.HasReason(domain.ReasonStaleness) {
			t.Errorf("%s: priority %v reasons %v", e.Item.ID, e.Priority, e.Reasons)
		}
	}

	// The sweep reports, it never transitions.
	got, _ := env.store.Get(context.Background(), "stale-1")
	if got.Status != domain.StatusApproved {
		t.Errorf("sweep must not mutate item state, got %s", got.Status)
	}
}
