// Package api exposes the governance engine over HTTP.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/Sam231221/dkn-governance/internal/database"
	"github.com/Sam231221/dkn-governance/internal/domain"
	"github.com/Sam231221/dkn-governance/internal/governance"
	"github.com/Sam231221/dkn-governance/internal/logger"
	"github.com/Sam231221/dkn-governance/internal/trend"
)

const defaultTrendingLimit = 20

// Handler handles HTTP requests for the governance API.
type Handler struct {
	engine      *governance.Engine
	itemsRepo   *database.ItemsRepository
	rulesRepo   *database.ComplianceRulesRepository
	historyRepo *database.ReviewHistoryRepository
	db          *sqlx.DB
	logger      logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(
	engine *governance.Engine,
	itemsRepo *database.ItemsRepository,
	rulesRepo *database.ComplianceRulesRepository,
	historyRepo *database.ReviewHistoryRepository,
	db *sqlx.DB,
	log logger.Logger,
) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		engine:      engine,
		itemsRepo:   itemsRepo,
		rulesRepo:   rulesRepo,
		historyRepo: historyRepo,
		db:          db,
		logger:      log,
	}
}

// SubmitItem handles POST /api/v1/items.
func (h *Handler) SubmitItem(c *gin.Context) {
	var req governance.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.engine.Submit(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err, "submission failed")
		return
	}

	c.JSON(http.StatusCreated, ItemResponse{Item: item})
}

// GetItem handles GET /api/v1/items/:id.
func (h *Handler) GetItem(c *gin.Context) {
	item, err := h.itemsRepo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "failed to get item")
		return
	}

	c.JSON(http.StatusOK, ItemResponse{Item: item})
}

// UpdateItem handles PUT /api/v1/items/:id. The edit carries the version
// the editor last saw; a stale version is rejected with 409.
func (h *Handler) UpdateItem(c *gin.Context) {
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.engine.UpdateContent(c.Request.Context(), c.Param("id"), req.Version, req.Title, req.Description, req.BodyText)
	if err != nil {
		h.writeError(c, err, "content update failed")
		return
	}

	c.JSON(http.StatusOK, ItemResponse{Item: item})
}

// SubmitExistingItem handles POST /api/v1/items/:id/submit, moving a
// draft into review.
func (h *Handler) SubmitExistingItem(c *gin.Context) {
	item, err := h.engine.SubmitExisting(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "draft submission failed")
		return
	}

	c.JSON(http.StatusOK, ItemResponse{Item: item})
}

// ReviewItem handles POST /api/v1/items/:id/review.
func (h *Handler) ReviewItem(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.engine.ReviewTransition(
		c.Request.Context(),
		c.Param("id"),
		domain.ReviewDecision(req.Decision),
		req.Reason,
		req.ReviewerID,
	)
	if err != nil {
		h.writeError(c, err, "review failed")
		return
	}

	c.JSON(http.StatusOK, ItemResponse{Item: item})
}

// ArchiveItem handles POST /api/v1/items/:id/archive.
func (h *Handler) ArchiveItem(c *gin.Context) {
	var req ReviewerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.engine.Archive(c.Request.Context(), c.Param("id"), req.ReviewerID)
	if err != nil {
		h.writeError(c, err, "archive failed")
		return
	}

	c.JSON(http.StatusOK, ItemResponse{Item: item})
}

// ResubmitItem handles POST /api/v1/items/:id/resubmit, restarting a
// rejected or archived item at draft.
func (h *Handler) ResubmitItem(c *gin.Context) {
	item, err := h.engine.Resubmit(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "resubmit failed")
		return
	}

	c.JSON(http.StatusOK, ItemResponse{Item: item})
}

// RerouteItem handles POST /api/v1/items/:id/reroute, sending an approved
// item back to review.
func (h *Handler) RerouteItem(c *gin.Context) {
	var req ReviewerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.engine.RerouteStale(c.Request.Context(), c.Param("id"), req.ReviewerID)
	if err != nil {
		h.writeError(c, err, "reroute failed")
		return
	}

	c.JSON(http.StatusOK, ItemResponse{Item: item})
}

// RescanItem handles POST /api/v1/items/:id/rescan.
func (h *Handler) RescanItem(c *gin.Context) {
	if err := h.engine.Rescan(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err, "rescan failed")
		return
	}

	item, err := h.itemsRepo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "failed to get item")
		return
	}

	c.JSON(http.StatusOK, ItemResponse{Item: item})
}

// RecordView handles POST /api/v1/items/:id/view. Access counters feed
// the trend scorer.
func (h *Handler) RecordView(c *gin.Context) {
	if err := h.itemsRepo.IncrementViews(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err, "failed to record view")
		return
	}
	c.Status(http.StatusNoContent)
}

// RecordLike handles POST /api/v1/items/:id/like.
func (h *Handler) RecordLike(c *gin.Context) {
	if err := h.itemsRepo.IncrementLikes(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err, "failed to record like")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetItemHistory handles GET /api/v1/items/:id/history.
func (h *Handler) GetItemHistory(c *gin.Context) {
	records, err := h.historyRepo.ListByItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "failed to load review history")
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": records, "total": len(records)})
}

// GetAuditQueue handles GET /api/v1/audit/queue?regions=eu,us.
func (h *Handler) GetAuditQueue(c *gin.Context) {
	scope := parseScope(c.Query("regions"))

	entries, err := h.engine.BuildAuditQueue(c.Request.Context(), scope)
	if err != nil {
		h.writeError(c, err, "failed to build audit queue")
		return
	}

	c.JSON(http.StatusOK, AuditQueueResponse{
		Entries: toAuditEntries(entries),
		Total:   len(entries),
	})
}

// GetStaleItems handles GET /api/v1/audit/stale?regions=eu,us.
func (h *Handler) GetStaleItems(c *gin.Context) {
	scope := parseScope(c.Query("regions"))

	entries, err := h.engine.FlagStale(c.Request.Context(), scope)
	if err != nil {
		h.writeError(c, err, "staleness sweep failed")
		return
	}

	c.JSON(http.StatusOK, AuditQueueResponse{
		Entries: toAuditEntries(entries),
		Total:   len(entries),
	})
}

// GetTrending handles GET /api/v1/trending?window=week&limit=20. Ranks
// the approved corpus by access score within the window.
func (h *Handler) GetTrending(c *gin.Context) {
	window := trend.ParseWindow(c.Query("window"))

	limit := defaultTrendingLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	items, err := h.itemsRepo.ListByStatus(c.Request.Context(), domain.StatusApproved)
	if err != nil {
		h.writeError(c, err, "failed to load approved items")
		return
	}

	ranked := trend.Rank(items, window, time.Now())
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"window": window,
		"ranked": ranked,
		"total":  len(ranked),
	})
}

// ListRules handles GET /api/v1/rules.
func (h *Handler) ListRules(c *gin.Context) {
	rules, err := h.rulesRepo.List(c.Request.Context(), domain.ComplianceLevel(c.Query("level")))
	if err != nil {
		h.writeError(c, err, "failed to list compliance rules")
		return
	}

	c.JSON(http.StatusOK, RulesListResponse{Rules: rules, Total: len(rules)})
}

// CreateRule handles POST /api/v1/rules.
func (h *Handler) CreateRule(c *gin.Context) {
	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule := &domain.ComplianceRule{
		RegionID:        req.RegionID,
		RegionName:      req.RegionName,
		ComplianceLevel: domain.ComplianceLevel(req.ComplianceLevel),
		LawDescription:  req.LawDescription,
	}
	if err := h.rulesRepo.Create(c.Request.Context(), rule); err != nil {
		h.writeError(c, err, "failed to create compliance rule")
		return
	}

	h.logger.Info("compliance rule created",
		logger.String("region_id", rule.RegionID),
		logger.String("level", string(rule.ComplianceLevel)),
	)

	c.JSON(http.StatusCreated, rule)
}

// UpdateRule handles PUT /api/v1/rules/:region_id.
func (h *Handler) UpdateRule(c *gin.Context) {
	var req UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule := &domain.ComplianceRule{
		RegionID:        c.Param("region_id"),
		RegionName:      req.RegionName,
		ComplianceLevel: domain.ComplianceLevel(req.ComplianceLevel),
		LawDescription:  req.LawDescription,
	}
	if err := h.rulesRepo.Update(c.Request.Context(), rule); err != nil {
		h.writeError(c, err, "failed to update compliance rule")
		return
	}

	c.JSON(http.StatusOK, rule)
}

// DeleteRule handles DELETE /api/v1/rules/:region_id.
func (h *Handler) DeleteRule(c *gin.Context) {
	if err := h.rulesRepo.Delete(c.Request.Context(), c.Param("region_id")); err != nil {
		h.writeError(c, err, "failed to delete compliance rule")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetStats handles GET /api/v1/stats.
func (h *Handler) GetStats(c *gin.Context) {
	counts, err := h.itemsRepo.StatusCounts(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "failed to load status counts")
		return
	}

	decisions, err := h.historyRepo.DecisionStats(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "failed to load decision stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items_by_status": counts,
		"decisions":       decisions,
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// ReadyCheck handles GET /ready. Ready means the database answers.
func (h *Handler) ReadyCheck(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// writeError maps domain errors to HTTP status codes. Validation errors
// are 400, unknown items 404, transition and version conflicts 409,
// everything else 500.
func (h *Handler) writeError(c *gin.Context, err error, msg string) {
	switch {
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
	case errors.Is(err, domain.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "item changed since it was read"})
	case domain.IsInvalidTransition(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error(msg, logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
