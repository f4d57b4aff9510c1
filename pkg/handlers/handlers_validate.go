package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/models"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/timeline"
)

// ValidateSchedule reports whether a posted schedule payload can be laid out
func (h *Handler) ValidateSchedule(c *gin.Context) {
	var input models.Schedule
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	tl, err := timeline.New(&input, h.Timeline)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": timeline.NoValidWeekMessage})
		return
	}

	// Check for duplicate IDs
	jobIDs := make(map[string]bool)
	for _, sj := range input.ScheduledJobs {
		if sj.ID == "" {
			continue
		}
		if jobIDs[sj.ID] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Duplicate scheduled job ID: " + sj.ID})
			return
		}
		jobIDs[sj.ID] = true
	}

	view := tl.Render(tl.Options().Zoom.Default)
	week, _ := timeline.ISOWeekOfDate(tl.WeekStart())
	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"week_start":    tl.WeekStart(),
			"iso_week":      week.String(),
			"grain_length":  tl.GrainLength(),
			"machine_count": len(tl.Machines()),
			"job_count":     len(input.ScheduledJobs),
			"hidden_count":  view.Hidden,
		},
	})
}

// PreviewLayout lays out a posted schedule at the zoom and job given in the query
func (h *Handler) PreviewLayout(c *gin.Context) {
	var input models.Schedule
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.layoutJSON(c, &input)
}
