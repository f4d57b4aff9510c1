package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/database"
)

const (
	defaultHistoryLimit = 30
	maxHistoryLimit     = 200
)

// SnapshotHistory returns the most recent snapshots with totals per source
func (h *Handler) SnapshotHistory(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	snaps, err := database.ListSnapshots(h.DB, limit)
	if err != nil {
		h.respondError(c, errors.Join(errStorage, err))
		return
	}

	// Calculate totals
	var solves, checks int
	schedules := make(map[string]bool)
	for _, s := range snaps {
		switch s.Source {
		case database.SourceSolve:
			solves++
		case database.SourceCheck:
			checks++
		}
		schedules[s.ScheduleID] = true
	}

	c.JSON(http.StatusOK, gin.H{
		"snapshots": snaps,
		"totals": gin.H{
			"snapshots": len(snaps),
			"solves":    solves,
			"checks":    checks,
			"schedules": len(schedules),
		},
	})
}
