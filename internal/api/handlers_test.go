package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sam231221/dkn-governance/internal/compliance"
	"github.com/Sam231221/dkn-governance/internal/domain"
	"github.com/Sam231221/dkn-governance/internal/governance"
	"github.com/Sam231221/dkn-governance/internal/similarity"
	"github.com/Sam231221/dkn-governance/internal/testhelpers"
)

func newTestRouter(t *testing.T) (*gin.Engine, *testhelpers.MemoryItemStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := testhelpers.NewMemoryItemStore()
	rules := testhelpers.NewMemoryRuleProvider()
	reviews := testhelpers.NewMemoryReviewLog()

	sim := similarity.NewEngine(similarity.NewFullScanFinder(store), similarity.Config{}, nil, nil)
	scanner := compliance.NewScanner(rules, nil, nil)
	engine := governance.NewEngine(store, reviews, sim, scanner, governance.Config{}, nil, nil)

	// DB-backed repositories stay nil: these tests cover the routes that
	// go through the engine.
	handler := NewHandler(engine, nil, nil, nil, nil, nil)
	router := gin.New()
	SetupRoutes(router, handler, nil)
	return router, store
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitItem(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/items", map[string]any{
		"title":     "Rotating the on-call pager schedule",
		"body_text": "Swap the primary and secondary a week before the rotation starts.",
		"author_id": "author-1",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp ItemResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Item.Status != domain.StatusPendingReview {
		t.Errorf("expected pending_review, got %s", resp.Item.Status)
	}
	if resp.Item.ID == "" {
		t.Error("response must carry the assigned item ID")
	}
}

func TestSubmitItem_ValidationError(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/items", map[string]any{
		"title":     "",
		"body_text": "body with no title",
		"author_id": "author-1",
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSubmitItem_MalformedBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestReviewItem(t *testing.T) {
	router, store := newTestRouter(t)

	store.Seed(&domain.ContentItem{
		ID:                "item-1",
		Title:             "Review me",
		BodyText:          "content of the item under review",
		Status:            domain.StatusPendingReview,
		Type:              domain.ItemTypeArticle,
		AuthorID:          "author-1",
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
		DuplicateScanRan:  true,
		ComplianceScanRan: true,
		Version:           1,
	})

	w := doJSON(router, http.MethodPost, "/api/v1/items/item-1/review", map[string]any{
		"decision":    "approve",
		"reviewer_id": "reviewer-1",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp ItemResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Item.Status != domain.StatusApproved {
		t.Errorf("expected approved, got %s", resp.Item.Status)
	}
}

func TestReviewItem_WrongStateConflicts(t *testing.T) {
	router, store := newTestRouter(t)

	store.Seed(&domain.ContentItem{
		ID:        "item-1",
		Title:     "Already approved",
		BodyText:  "content",
		Status:    domain.StatusApproved,
		Type:      domain.ItemTypeArticle,
		AuthorID:  "author-1",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Version:   1,
	})

	w := doJSON(router, http.MethodPost, "/api/v1/items/item-1/review", map[string]any{
		"decision":    "approve",
		"reviewer_id": "reviewer-1",
	})

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestReviewItem_UnknownItem(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/items/missing/review", map[string]any{
		"decision":    "approve",
		"reviewer_id": "reviewer-1",
	})

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateItem_StaleVersionConflicts(t *testing.T) {
	router, store := newTestRouter(t)

	store.Seed(&domain.ContentItem{
		ID:        "item-1",
		Title:     "Editable",
		BodyText:  "original content",
		Status:    domain.StatusPendingReview,
		Type:      domain.ItemTypeArticle,
		AuthorID:  "author-1",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Version:   3,
	})

	w := doJSON(router, http.MethodPut, "/api/v1/items/item-1", map[string]any{
		"title":     "Edited title",
		"body_text": "edited content",
		"version":   2,
	})

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetAuditQueue(t *testing.T) {
	router, store := newTestRouter(t)

	store.Seed(&domain.ContentItem{
		ID:                   "flagged",
		Title:                "Has violations",
		BodyText:             "content",
		Status:               domain.StatusPendingReview,
		Type:                 domain.ItemTypeArticle,
		AuthorID:             "author-1",
		RegionID:             "eu-central",
		CreatedAt:            time.Now(),
		UpdatedAt:            time.Now(),
		ComplianceViolations: []string{"Potential payment card number detected"},
		DuplicateScanRan:     true,
		ComplianceScanRan:    true,
		Version:              1,
	})

	w := doJSON(router, http.MethodGet, "/api/v1/audit/queue", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp AuditQueueResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Total != 1 || len(resp.Entries) != 1 {
		t.Fatalf("expected one entry, got %+v", resp)
	}
	if resp.Entries[0].Priority != "high" {
		t.Errorf("expected high priority, got %q", resp.Entries[0].Priority)
	}

	// Scoped to a region the item is not in.
	w = doJSON(router, http.MethodGet, "/api/v1/audit/queue?regions=us-east", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp = AuditQueueResponse{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Total != 0 {
		t.Errorf("expected empty scoped queue, got %d entries", resp.Total)
	}
}

func TestHealthAndReady(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", w.Code)
	}

	// No database wired in this test setup; readiness still answers.
	w = doJSON(router, http.MethodGet, "/ready", nil)
	if w.Code != http.StatusOK {
		t.Errorf("ready: expected 200, got %d", w.Code)
	}
}
