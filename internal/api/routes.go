package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Sam231221/dkn-governance/internal/telemetry"
)

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, handler *Handler, tp *telemetry.Provider) {
	// Health and readiness checks
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)

	if tp != nil {
		router.GET("/metrics", gin.WrapH(tp.Handler()))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Item lifecycle endpoints
		items := v1.Group("/items")
		{
			items.POST("", handler.SubmitItem)                   // POST /api/v1/items
			items.GET("/:id", handler.GetItem)                   // GET /api/v1/items/:id
			items.PUT("/:id", handler.UpdateItem)                // PUT /api/v1/items/:id
			items.POST("/:id/submit", handler.SubmitExistingItem) // POST /api/v1/items/:id/submit
			items.POST("/:id/review", handler.ReviewItem)        // POST /api/v1/items/:id/review
			items.POST("/:id/archive", handler.ArchiveItem)      // POST /api/v1/items/:id/archive
			items.POST("/:id/resubmit", handler.ResubmitItem)    // POST /api/v1/items/:id/resubmit
			items.POST("/:id/reroute", handler.RerouteItem)      // POST /api/v1/items/:id/reroute
			items.POST("/:id/rescan", handler.RescanItem)        // POST /api/v1/items/:id/rescan
			items.POST("/:id/view", handler.RecordView)          // POST /api/v1/items/:id/view
			items.POST("/:id/like", handler.RecordLike)          // POST /api/v1/items/:id/like
			items.GET("/:id/history", handler.GetItemHistory)    // GET /api/v1/items/:id/history
		}

		// Audit endpoints
		audit := v1.Group("/audit")
		{
			audit.GET("/queue", handler.GetAuditQueue) // GET /api/v1/audit/queue
			audit.GET("/stale", handler.GetStaleItems) // GET /api/v1/audit/stale
		}

		// Trending endpoint
		v1.GET("/trending", handler.GetTrending) // GET /api/v1/trending

		// Compliance rules management endpoints
		rules := v1.Group("/rules")
		{
			rules.GET("", handler.ListRules)                  // GET /api/v1/rules
			rules.POST("", handler.CreateRule)                // POST /api/v1/rules
			rules.PUT("/:region_id", handler.UpdateRule)      // PUT /api/v1/rules/:region_id
			rules.DELETE("/:region_id", handler.DeleteRule)   // DELETE /api/v1/rules/:region_id
		}

		// Statistics endpoint
		v1.GET("/stats", handler.GetStats) // GET /api/v1/stats
	}
}
