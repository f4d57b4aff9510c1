package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/database"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/models"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/timeline"
)

// Machines lists the backend machines
func (h *Handler) Machines(c *gin.Context) {
	machines, err := h.Backend.Machines(c.Request.Context(), backendToken(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.HTML(http.StatusOK, "machines", gin.H{"Title": "Machines", "Username": c.GetString(ctxUsername), "Machines": machines})
}

// MachineTypes lists the backend machine types
func (h *Handler) MachineTypes(c *gin.Context) {
	types, err := h.Backend.MachineTypes(c.Request.Context(), backendToken(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.HTML(http.StatusOK, "machine_types", gin.H{"Title": "Machine types", "Username": c.GetString(ctxUsername), "MachineTypes": types})
}

// Jobs lists the backend job definitions
func (h *Handler) Jobs(c *gin.Context) {
	jobs, err := h.Backend.Jobs(c.Request.Context(), backendToken(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.HTML(http.StatusOK, "jobs", gin.H{"Title": "Jobs", "Username": c.GetString(ctxUsername), "Jobs": jobs})
}

// scheduleRow is one line of the schedule list
type scheduleRow struct {
	models.Schedule
	Week string
}

// Schedules lists the backend schedules with the solve form and recent snapshots
func (h *Handler) Schedules(c *gin.Context) {
	schedules, err := h.Backend.Schedules(c.Request.Context(), backendToken(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	rows := make([]scheduleRow, 0, len(schedules))
	for _, s := range schedules {
		row := scheduleRow{Schedule: s}
		if start, ok := timeline.ResolveWeekStart(s.WeekStartDate); ok {
			if w, ok := timeline.ISOWeekOfDate(start); ok {
				row.Week = w.String()
			}
		}
		rows = append(rows, row)
	}

	snaps, err := database.ListSnapshots(h.DB, 10)
	if err != nil {
		h.log().Warn("could not list snapshots", "err", err)
	}

	c.HTML(http.StatusOK, "schedules", gin.H{
		"Title":     "Schedules",
		"Username":  c.GetString(ctxUsername),
		"Schedules": rows,
		"Snapshots": snaps,
		"Error":     c.Query("error"),
	})
}

// Solve asks the backend for a new schedule and stores the result as a snapshot
func (h *Handler) Solve(c *gin.Context) {
	var req models.SolveRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Redirect(http.StatusSeeOther, "/schedules?error=weekStartDate+is+required")
		return
	}
	if _, ok := timeline.NormalizeDateOnlyISO(req.WeekStartDate); !ok {
		c.Redirect(http.StatusSeeOther, "/schedules?error=weekStartDate+is+not+a+date")
		return
	}

	schedule, err := h.Backend.Solve(c.Request.Context(), backendToken(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.storeSnapshot(c, schedule, database.SourceSolve)
}

// Check asks the backend to re-validate a schedule and stores the result as a snapshot
func (h *Handler) Check(c *gin.Context) {
	schedule, err := h.Backend.Check(c.Request.Context(), backendToken(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.storeSnapshot(c, schedule, database.SourceCheck)
}

func (h *Handler) storeSnapshot(c *gin.Context, schedule *models.Schedule, source string) {
	snap, err := database.SaveSnapshot(h.DB, schedule, source, c.GetString(ctxUsername))
	if err != nil {
		h.respondError(c, errors.Join(errStorage, err))
		return
	}
	h.log().Info("snapshot stored", "snapshot_id", snap.ID, "schedule_id", snap.ScheduleID, "source", source)
	c.Redirect(http.StatusSeeOther, "/snapshots/"+snap.ID)
}
