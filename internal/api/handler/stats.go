package handler

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/Helper-Yoon/sns-help-counter/internal/domain"
	"github.com/Helper-Yoon/sns-help-counter/internal/storage"
	"github.com/gin-gonic/gin"
)

// StatsHandler serves the read API behind the dashboard.
type StatsHandler struct {
	stats  *storage.StatsRepo
	events *storage.HelpEventRepo
}

func NewStatsHandler(stats *storage.StatsRepo, events *storage.HelpEventRepo) *StatsHandler {
	return &StatsHandler{stats: stats, events: events}
}

// CounselorSummary is the per-agent rollup over the requested window.
type CounselorSummary struct {
	CounselorID   string `json:"counselor_id"`
	CounselorName string `json:"counselor_name"`
	HelpCount     int    `json:"help_count"`
	TotalChars    int    `json:"total_chars"`
	AvgChars      int    `json:"avg_chars"`
}

// List aggregates daily stat rows over the last N days (?days=7).
func (h *StatsHandler) List(c *gin.Context) {
	days := 7
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 365 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days"})
			return
		}
		days = parsed
	}

	now := time.Now()
	period := domain.Period{
		Start: domain.DayPeriod(now.AddDate(0, 0, -(days - 1))).Start,
		End:   domain.DayPeriod(now).Start,
	}

	rows, err := h.stats.ListPeriod(c.Request.Context(), period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	merged := make(map[string]*CounselorSummary)
	for _, row := range rows {
		s, ok := merged[row.CounselorID]
		if !ok {
			s = &CounselorSummary{CounselorID: row.CounselorID, CounselorName: row.CounselorName}
			merged[row.CounselorID] = s
		}
		s.HelpCount += row.HelpCount
		s.TotalChars += row.TotalChars
		if row.CounselorName != "" {
			s.CounselorName = row.CounselorName
		}
	}

	summaries := make([]*CounselorSummary, 0, len(merged))
	for _, s := range merged {
		if s.HelpCount > 0 {
			s.AvgChars = int(float64(s.TotalChars)/float64(s.HelpCount) + 0.5)
		}
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].HelpCount > summaries[j].HelpCount
	})

	recent, err := h.events.Recent(c.Request.Context(), 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load recent events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"period_days":    days,
		"stats":          summaries,
		"recent_records": recent,
	})
}

// Today returns the raw per-day stat rows for today.
func (h *StatsHandler) Today(c *gin.Context) {
	period := domain.DayPeriod(time.Now())
	rows, err := h.stats.ListPeriod(c.Request.Context(), period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": rows})
}
