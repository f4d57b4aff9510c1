// Package timeline lays out a weekly schedule of jobs on machines as a pixel grid.
//
// A Timeline is built once per schedule snapshot: it resolves the week, derives the grain
// length, builds the machine rows and normalizes every job start to minutes relative to the
// business window. Render then places the bars for a zoom factor, so changing the zoom only
// repeats the geometry step.
package timeline

import (
	"errors"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/models"
)

// NoValidWeekMessage is shown instead of the timeline when the week cannot be resolved
const NoValidWeekMessage = "No valid week start date in schedule"

// ErrNoValidWeekStart is returned by New when weekStartDate cannot be normalized
var ErrNoValidWeekStart = errors.New("no valid week start date in schedule")

// Row is one machine with its bars
type Row struct {
	Key     string         `json:"key"`
	Machine models.Machine `json:"machine"`
	Label   string         `json:"label"`
	Top     float64        `json:"top"`
	Bars    []Bar          `json:"bars"`
}

// View is everything needed to draw the timeline at one zoom factor
type View struct {
	ScheduleID      string      `json:"scheduleId"`
	WeekStart       string      `json:"weekStart"`
	Week            ISOWeek     `json:"week"`
	GrainLength     int         `json:"grainLength"`
	PixelsPerMinute float64     `json:"pixelsPerMinute"`
	TrackWidth      float64     `json:"trackWidth"`
	RowHeight       float64     `json:"rowHeight"`
	HeaderHeight    float64     `json:"headerHeight"`
	Days            []DayHeader `json:"days"`
	Ticks           []Tick      `json:"ticks"`
	Rows            []Row       `json:"rows"`
	Hidden          int         `json:"hidden"`
}

// ContentHeight is the height of the scrollable area below the ruler
func (v View) ContentHeight() float64 {
	return float64(len(v.Rows)) * v.RowHeight
}

// Anchor returns the box of the first bar of jobID, relative to the top-left of the rows area
func (v View) Anchor(jobID string) (Bar, Rect, bool) {
	for _, row := range v.Rows {
		for _, bar := range row.Bars {
			if bar.JobID == jobID {
				return bar, Rect{Left: bar.Left, Top: row.Top, Width: bar.Width, Height: v.RowHeight}, true
			}
		}
	}
	return Bar{}, Rect{}, false
}

// Timeline holds the zoom-independent derivations of one schedule
type Timeline struct {
	opts        Options
	scheduleID  string
	weekStart   string
	days        []Day
	dayIndex    map[string]int
	grainLength int
	machines    []models.Machine
	rows        map[string][]models.ScheduledJob
	total       int
}

// New prepares a schedule for rendering. It fails only when the week cannot be resolved.
func New(schedule *models.Schedule, opts Options) (*Timeline, error) {
	if schedule == nil {
		return nil, ErrNoValidWeekStart
	}
	weekStart, ok := ResolveWeekStart(schedule.WeekStartDate)
	if !ok {
		return nil, ErrNoValidWeekStart
	}
	days, _ := WeekDays(weekStart)
	opts = opts.withDefaults()

	t := &Timeline{
		opts:        opts,
		scheduleID:  schedule.ScheduleID,
		weekStart:   weekStart,
		days:        days,
		dayIndex:    DayIndexMap(days),
		grainLength: DeriveGrainLength(schedule),
		machines:    BuildMachines(schedule),
		rows:        make(map[string][]models.ScheduledJob),
		total:       len(schedule.ScheduledJobs),
	}
	for _, sj := range NormalizeJobs(schedule.ScheduledJobs, t.grainLength, opts.Window) {
		key := MachineKey(sj.AssignedMachine)
		t.rows[key] = append(t.rows[key], sj)
	}
	return t, nil
}

// Options returns the effective options
func (t *Timeline) Options() Options { return t.opts }

// WeekStart returns the Monday of the displayed week
func (t *Timeline) WeekStart() string { return t.weekStart }

// Days returns the seven displayed days
func (t *Timeline) Days() []Day { return t.days }

// GrainLength returns the derived grain length in minutes
func (t *Timeline) GrainLength() int { return t.grainLength }

// Machines returns the machine rows in display order
func (t *Timeline) Machines() []models.Machine { return t.machines }

// Jobs returns the normalized jobs of a machine row
func (t *Timeline) Jobs(key string) []models.ScheduledJob { return t.rows[key] }

// Job looks up a normalized job by id
func (t *Timeline) Job(id string) (models.ScheduledJob, bool) {
	for _, jobs := range t.rows {
		for _, sj := range jobs {
			if sj.ID == id {
				return sj, true
			}
		}
	}
	return models.ScheduledJob{}, false
}

// Render lays out every row at the given zoom factor, clamped to the configured bounds
func (t *Timeline) Render(pixelsPerMinute float64) View {
	ppm := t.opts.Zoom.Clamp(pixelsPerMinute)
	params := LayoutParams{
		DayIndex:        t.dayIndex,
		GrainLength:     t.grainLength,
		PixelsPerMinute: ppm,
		Window:          t.opts.Window,
		MinBarWidth:     t.opts.MinBarWidth,
	}
	headers, ticks := Ruler(t.days, ppm, t.opts.Window)
	week, _ := ISOWeekOfDate(t.weekStart)

	v := View{
		ScheduleID:      t.scheduleID,
		WeekStart:       t.weekStart,
		Week:            week,
		GrainLength:     t.grainLength,
		PixelsPerMinute: ppm,
		TrackWidth:      params.TrackWidth(),
		RowHeight:       t.opts.RowHeight,
		HeaderHeight:    t.opts.HeaderHeight,
		Days:            headers,
		Ticks:           ticks,
		Rows:            make([]Row, 0, len(t.machines)),
	}

	placed := 0
	for i, m := range t.machines {
		key := MachineKey(&m)
		bars := LayoutRow(t.rows[key], params)
		placed += len(bars)
		v.Rows = append(v.Rows, Row{
			Key:     key,
			Machine: m,
			Label:   DisplayName(m),
			Top:     float64(i) * t.opts.RowHeight,
			Bars:    bars,
		})
	}
	v.Hidden = t.total - placed
	return v
}
