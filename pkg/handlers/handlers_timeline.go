package handlers

import (
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/database"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/models"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/timeline"
)

// Popover geometry in pixels
const (
	popoverWidth  = 280.0
	popoverHeight = 190.0
	popoverGap    = 6.0
)

// zoomControls are the links and slider bounds of the zoom toolbar
type zoomControls struct {
	Current  float64 `json:"current"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Step     float64 `json:"step"`
	CanIn    bool    `json:"canZoomIn"`
	CanOut   bool    `json:"canZoomOut"`
	InURL    string  `json:"-"`
	OutURL   string  `json:"-"`
	ResetURL string  `json:"-"`
}

// jobPopover is the detail box of the selected job
type jobPopover struct {
	Bar      timeline.Bar        `json:"bar"`
	Job      models.ScheduledJob `json:"job"`
	Day      timeline.Day        `json:"day"`
	Machine  string              `json:"machine"`
	Duration int                 `json:"durationMinutes"`
	Anchor   timeline.Rect       `json:"anchor"`
	Point    timeline.Point      `json:"position"`
	CloseURL string              `json:"-"`
}

// timelineRender is one schedule laid out for one request. TrackHeight grows
// past the rows when the popover hangs below the last one.
type timelineRender struct {
	View        timeline.View
	Zoom        zoomControls
	Popover     *jobPopover
	TrackHeight float64
}

// timelinePage is the data of the timeline template
type timelinePage struct {
	Title    string
	Username string
	Base     string
	Schedule *models.Schedule
	Snapshot *database.ScheduleSnapshot
	CheckURL string
	NoWeek   string
	timelineRender
}

// ScheduleTimeline renders the timeline of a backend schedule
func (h *Handler) ScheduleTimeline(c *gin.Context) {
	id := c.Param("id")
	schedule, err := h.Backend.Schedule(c.Request.Context(), backendToken(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.timelinePage(c, schedule, nil, "/schedules/"+url.PathEscape(id))
}

// SnapshotTimeline renders the timeline of a stored snapshot
func (h *Handler) SnapshotTimeline(c *gin.Context) {
	snap, schedule, err := h.loadSnapshot(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.timelinePage(c, schedule, snap, "/snapshots/"+snap.ID)
}

// ScheduleLayout returns the computed layout of a backend schedule as JSON
func (h *Handler) ScheduleLayout(c *gin.Context) {
	schedule, err := h.Backend.Schedule(c.Request.Context(), backendToken(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.layoutJSON(c, schedule)
}

// SnapshotLayout returns the computed layout of a stored snapshot as JSON
func (h *Handler) SnapshotLayout(c *gin.Context) {
	_, schedule, err := h.loadSnapshot(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.layoutJSON(c, schedule)
}

func (h *Handler) loadSnapshot(id string) (*database.ScheduleSnapshot, *models.Schedule, error) {
	snap, err := database.GetSnapshot(h.DB, id)
	if err != nil {
		if errors.Is(err, database.ErrSnapshotNotFound) {
			return nil, nil, err
		}
		return nil, nil, errors.Join(errStorage, err)
	}
	schedule, err := snap.Schedule()
	if err != nil {
		return nil, nil, errors.Join(errStorage, err)
	}
	return snap, schedule, nil
}

func (h *Handler) timelinePage(c *gin.Context, schedule *models.Schedule, snap *database.ScheduleSnapshot, base string) {
	page := timelinePage{
		Title:    "Schedule " + schedule.ScheduleID,
		Username: c.GetString(ctxUsername),
		Base:     base,
		Schedule: schedule,
		Snapshot: snap,
	}
	if snap == nil && schedule.ScheduleID != "" {
		page.CheckURL = "/schedules/" + url.PathEscape(schedule.ScheduleID) + "/check"
	}

	render, err := h.render(c, schedule, base)
	if errors.Is(err, timeline.ErrNoValidWeekStart) {
		page.NoWeek = timeline.NoValidWeekMessage
		c.HTML(http.StatusOK, "timeline", page)
		return
	}
	page.timelineRender = render
	c.HTML(http.StatusOK, "timeline", page)
}

func (h *Handler) layoutJSON(c *gin.Context, schedule *models.Schedule) {
	render, err := h.render(c, schedule, "")
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"layout":    render.View,
		"zoom":      render.Zoom,
		"selection": render.Popover,
	})
}

// render builds a timeline for the schedule and applies the zoom and job query parameters
func (h *Handler) render(c *gin.Context, schedule *models.Schedule, base string) (timelineRender, error) {
	tl, err := timeline.New(schedule, h.Timeline)
	if err != nil {
		return timelineRender{}, err
	}

	opts := tl.Options()
	opts.OnJobSelect = func(job models.ScheduledJob, anchor timeline.Rect) {
		h.log().Debug("job selected", "schedule_id", schedule.ScheduleID, "job_id", job.ID, "left", anchor.Left, "top", anchor.Top)
	}
	state := timeline.NewState(opts)
	if raw := c.Query("zoom"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			state.Zoom.Set(v)
		}
	}

	view := tl.Render(state.Zoom.PixelsPerMinute())
	if jobID := c.Query("job"); jobID != "" {
		if bar, anchor, ok := view.Anchor(jobID); ok {
			state.Selection.Select(bar.Job, anchor)
		}
	}

	out := timelineRender{
		View:        view,
		Zoom:        zoomLinks(state.Zoom, base, c.Query("job")),
		TrackHeight: view.ContentHeight(),
	}
	if sel, ok := state.Selection.Selected(); ok {
		bar, _, _ := view.Anchor(sel.Job.ID)
		viewport := timeline.Size{Width: view.TrackWidth, Height: view.ContentHeight()}
		out.Popover = &jobPopover{
			Bar:      bar,
			Job:      sel.Job,
			Day:      view.Days[bar.DayIndex].Day,
			Machine:  machineLabel(sel.Job.AssignedMachine),
			Duration: timeline.JobDuration(sel.Job, view.GrainLength, opts.Window),
			Anchor:   sel.Anchor,
			Point:    timeline.PlacePopover(sel.Anchor, viewport, timeline.Size{Width: popoverWidth, Height: popoverHeight}, popoverGap),
			CloseURL: timelineURL(base, view.PixelsPerMinute, ""),
		}
		out.TrackHeight = math.Max(out.TrackHeight, out.Popover.Point.Top+popoverHeight)
	}
	return out, nil
}

// zoomLinks computes the toolbar links from the current zoom without changing it
func zoomLinks(z *timeline.Zoom, base, jobID string) zoomControls {
	cfg := z.Config()
	cur := z.PixelsPerMinute()
	step := timeline.NewZoom(cfg)

	zc := zoomControls{
		Current: cur,
		Min:     cfg.Min,
		Max:     cfg.Max,
		Step:    cfg.Step,
		CanIn:   z.CanZoomIn(),
		CanOut:  z.CanZoomOut(),
	}
	step.Set(cur)
	zc.InURL = timelineURL(base, step.ZoomIn(), jobID)
	step.Set(cur)
	zc.OutURL = timelineURL(base, step.ZoomOut(), jobID)
	zc.ResetURL = timelineURL(base, step.Reset(), jobID)
	return zc
}
