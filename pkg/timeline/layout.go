package timeline

import (
	"math"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/models"
)

// Bar is a job placed on the track. Minutes are relative to the window opening.
type Bar struct {
	Job          models.ScheduledJob `json:"-"`
	JobID        string              `json:"jobId"`
	Name         string              `json:"name"`
	MachineKey   string              `json:"machineKey"`
	DayIndex     int                 `json:"dayIndex"`
	StartMinute  int                 `json:"startMinute"`
	EndMinute    int                 `json:"endMinute"`
	VisibleStart int                 `json:"visibleStart"`
	VisibleEnd   int                 `json:"visibleEnd"`
	Left         float64             `json:"left"`
	Width        float64             `json:"width"`
	StartLabel   string              `json:"startLabel"`
	EndLabel     string              `json:"endLabel"`
}

// LayoutParams are the inputs shared by every row of one render
type LayoutParams struct {
	DayIndex        map[string]int
	GrainLength     int
	PixelsPerMinute float64
	Window          Window
	MinBarWidth     float64
}

// TrackWidth is the pixel width of the whole week
func (p LayoutParams) TrackWidth() float64 {
	return TrackWidth(p.Window, p.PixelsPerMinute)
}

// TrackWidth is the pixel width of seven business windows at the given zoom
func TrackWidth(w Window, pixelsPerMinute float64) float64 {
	return float64(DaysPerWeek*w.Span()) * pixelsPerMinute
}

// DayIndexMap maps each day's ISO date to its column
func DayIndexMap(days []Day) map[string]int {
	m := make(map[string]int, len(days))
	for i, d := range days {
		m[d.ISODate] = i
	}
	return m
}

// JobDuration returns the minutes a job occupies: the job's own duration, else its grain
// count times the grain length, else a default capped at the visible span.
func JobDuration(sj models.ScheduledJob, grainLength int, w Window) int {
	if sj.Job.DurationMinutes != nil {
		return *sj.Job.DurationMinutes
	}
	if sj.DurationInGrains != nil {
		return *sj.DurationInGrains * grainLength
	}
	if span := w.Span(); span < defaultJobDuration {
		return span
	}
	return defaultJobDuration
}

// PlaceJob computes the bar of a normalized job. It returns false when the job has no
// resolved start or lies entirely outside the business window.
func PlaceJob(sj models.ScheduledJob, p LayoutParams) (Bar, bool) {
	if sj.StartingTimeGrain == nil || sj.StartingTimeGrain.StartingMinuteOfDay == nil {
		return Bar{}, false
	}

	day := 0
	if idx, ok := p.DayIndex[sj.StartingTimeGrain.Date]; ok {
		day = idx
	}
	day = clampInt(day, 0, DaysPerWeek-1)

	span := p.Window.Span()
	start := *sj.StartingTimeGrain.StartingMinuteOfDay
	end := start + JobDuration(sj, p.GrainLength, p.Window)

	visibleStart := max(0, start)
	visibleEnd := min(span, end)
	if visibleEnd <= visibleStart {
		return Bar{}, false
	}

	ppm := p.PixelsPerMinute
	left := float64(day*span+visibleStart) * ppm
	width := math.Max(p.MinBarWidth, float64(visibleEnd-visibleStart)*ppm)
	if track := p.TrackWidth(); left+width > track {
		width = math.Max(0, track-left)
	}

	return Bar{
		Job:          sj,
		JobID:        sj.ID,
		Name:         sj.Job.Name,
		MachineKey:   MachineKey(sj.AssignedMachine),
		DayIndex:     day,
		StartMinute:  start,
		EndMinute:    end,
		VisibleStart: visibleStart,
		VisibleEnd:   visibleEnd,
		Left:         left,
		Width:        width,
		StartLabel:   FormatTimeFromMinutes(p.Window.OpenMinute + start),
		EndLabel:     FormatTimeFromMinutes(p.Window.OpenMinute + end),
	}, true
}

// LayoutRow places every job of one machine row, dropping the ones that cannot be shown
func LayoutRow(jobs []models.ScheduledJob, p LayoutParams) []Bar {
	bars := make([]Bar, 0, len(jobs))
	for _, sj := range jobs {
		if bar, ok := PlaceJob(sj, p); ok {
			bars = append(bars, bar)
		}
	}
	return bars
}

// DayHeader is a day label spanning its column of the ruler
type DayHeader struct {
	Day
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// Tick is an hourly gridline of the ruler, labeled in clock time
type Tick struct {
	DayIndex int     `json:"dayIndex"`
	Minute   int     `json:"minute"`
	Left     float64 `json:"left"`
	Label    string  `json:"label"`
	DayStart bool    `json:"dayStart"`
}

// Ruler returns day headers and hourly ticks across the business window of every day.
// The closing hour is only ticked on the last day; elsewhere it coincides with the next opening.
func Ruler(days []Day, pixelsPerMinute float64, w Window) ([]DayHeader, []Tick) {
	span := w.Span()
	dayWidth := float64(span) * pixelsPerMinute

	headers := make([]DayHeader, 0, len(days))
	var ticks []Tick
	firstHour := (w.OpenMinute + 59) / 60 * 60
	for i, d := range days {
		headers = append(headers, DayHeader{Day: d, Left: float64(i) * dayWidth, Width: dayWidth})
		last := w.CloseMinute - 1
		if i == len(days)-1 {
			last = w.CloseMinute
		}
		for m := firstHour; m <= last; m += 60 {
			ticks = append(ticks, Tick{
				DayIndex: i,
				Minute:   m,
				Left:     float64(i*span+m-w.OpenMinute) * pixelsPerMinute,
				Label:    FormatTimeFromMinutes(m),
				DayStart: m == w.OpenMinute,
			})
		}
	}
	return headers, ticks
}
