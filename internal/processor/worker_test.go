package processor

import (
	"context"
	"testing"
	"time"

	"github.com/Sam231221/dkn-governance/internal/compliance"
	"github.com/Sam231221/dkn-governance/internal/domain"
	"github.com/Sam231221/dkn-governance/internal/governance"
	"github.com/Sam231221/dkn-governance/internal/similarity"
	"github.com/Sam231221/dkn-governance/internal/testhelpers"
)

func newEngine(store *testhelpers.MemoryItemStore, cfg governance.Config) *governance.Engine {
	sim := similarity.NewEngine(similarity.NewFullScanFinder(store), similarity.Config{}, nil, nil)
	scanner := compliance.NewScanner(testhelpers.NewMemoryRuleProvider(), nil, nil)
	return governance.NewEngine(store, testhelpers.NewMemoryReviewLog(), sim, scanner, cfg, nil, nil)
}

func seedPending(store *testhelpers.MemoryItemStore, id string) {
	now := time.Now()
	store.Seed(&domain.ContentItem{
		ID:        id,
		Title:     "Item " + id,
		BodyText:  "body text for " + id,
		Status:    domain.StatusPendingReview,
		Type:      domain.ItemTypeArticle,
		AuthorID:  "author-1",
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	})
}

func TestScanWorker_DrainsQueue(t *testing.T) {
	store := testhelpers.NewMemoryItemStore()
	engine := newEngine(store, governance.Config{})
	seedPending(store, "item-1")
	seedPending(store, "item-2")

	worker := NewScanWorker(engine, ScanWorkerConfig{QueueSize: 8, ScansPerSecond: 100, Workers: 2}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := worker.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	if !worker.Enqueue("item-1") || !worker.Enqueue("item-2") {
		t.Fatal("enqueue must succeed with a free queue")
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		a, _ := store.Get(context.Background(), "item-1")
		b, _ := store.Get(context.Background(), "item-2")
		if a.DuplicateScanRan && b.DuplicateScanRan {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	worker.Stop()

	for _, id := range []string{"item-1", "item-2"} {
		item, err := store.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if !item.DuplicateScanRan || !item.ComplianceScanRan {
			t.Errorf("%s: worker did not run the scans", id)
		}
	}
}

func TestScanWorker_FullQueueReportsFalse(t *testing.T) {
	store := testhelpers.NewMemoryItemStore()
	engine := newEngine(store, governance.Config{})

	// Never started, so nothing drains the single slot.
	worker := NewScanWorker(engine, ScanWorkerConfig{QueueSize: 1, ScansPerSecond: 1, Workers: 1}, nil, nil)

	if !worker.Enqueue("item-1") {
		t.Fatal("first enqueue must fill the queue")
	}
	if worker.Enqueue("item-2") {
		t.Fatal("second enqueue must report a full queue")
	}
}

func TestScanWorker_StartTwice(t *testing.T) {
	store := testhelpers.NewMemoryItemStore()
	worker := NewScanWorker(newEngine(store, governance.Config{}), ScanWorkerConfig{}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := worker.Start(ctx); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	defer worker.Stop()

	if err := worker.Start(ctx); err == nil {
		t.Fatal("second start must fail")
	}
}

func TestSweeper_SweepOnce(t *testing.T) {
	store := testhelpers.NewMemoryItemStore()
	engine := newEngine(store, governance.Config{StaleAge: time.Hour})

	now := time.Now()
	store.Seed(&domain.ContentItem{
		ID:        "stale-1",
		Title:     "Old guide",
		BodyText:  "content last touched long ago",
		Status:    domain.StatusApproved,
		Type:      domain.ItemTypeArticle,
		AuthorID:  "author-1",
		CreatedAt: now.Add(-48 * time.Hour),
		UpdatedAt: now.Add(-24 * time.Hour),
		Version:   1,
	})

	sweeper := NewSweeper(engine, SweeperConfig{Interval: time.Hour}, nil)
	if err := sweeper.SweepOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	// Reporting only: the item must keep its state.
	item, err := store.Get(context.Background(), "stale-1")
	if err != nil {
		t.Fatal(err)
	}
	if item.Status != domain.StatusApproved {
		t.Errorf("sweep must not transition items, got %s", item.Status)
	}
}
