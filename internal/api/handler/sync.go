package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/Helper-Yoon/sns-help-counter/internal/tracker"
	"github.com/gin-gonic/gin"
)

// SyncHandler exposes the manual/scheduled sync triggers.
type SyncHandler struct {
	orchestrator *tracker.Orchestrator
	secret       string
}

func NewSyncHandler(orchestrator *tracker.Orchestrator, secret string) *SyncHandler {
	return &SyncHandler{orchestrator: orchestrator, secret: secret}
}

// Authorize is a gin middleware comparing the bearer token to the configured
// sync secret. An empty secret disables the check (local development).
func (h *SyncHandler) Authorize(c *gin.Context) {
	if h.secret == "" {
		c.Next()
		return
	}
	auth := c.GetHeader("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")
	if token == "" || token == auth || token != h.secret {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func (h *SyncHandler) Incremental(c *gin.Context) {
	report := h.orchestrator.RunIncremental(c.Request.Context())
	c.JSON(http.StatusOK, report)
}

func (h *SyncHandler) Full(c *gin.Context) {
	report := h.orchestrator.RunFull(c.Request.Context())
	c.JSON(http.StatusOK, report)
}

// Recompute rebuilds stats for one day (today unless ?date=YYYY-MM-DD).
func (h *SyncHandler) Recompute(c *gin.Context) {
	day := time.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	if err := h.orchestrator.RecomputeDay(c.Request.Context(), day); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "recompute failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "date": day.Format("2006-01-02")})
}
