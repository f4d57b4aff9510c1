package timeline

import "github.com/arnavshah/scheduler-dashboard-go/pkg/models"

// Business window and layout defaults
const (
	DefaultOpenMinute  = 7 * 60
	DefaultCloseMinute = 18 * 60

	DaysPerWeek         = 7
	DefaultMinBarWidth  = 4.0
	DefaultRowHeight    = 44.0
	DefaultHeaderHeight = 48.0

	// defaultJobDuration is used when a job carries neither a duration nor a grain count
	defaultJobDuration = 480
)

// Window is the part of each calendar day shown on the timeline, in clock minutes
type Window struct {
	OpenMinute  int
	CloseMinute int
}

// DefaultWindow returns the 07:00 to 18:00 business window
func DefaultWindow() Window {
	return Window{OpenMinute: DefaultOpenMinute, CloseMinute: DefaultCloseMinute}
}

// Span returns the visible minutes per day
func (w Window) Span() int {
	if w.CloseMinute <= w.OpenMinute {
		return 0
	}
	return w.CloseMinute - w.OpenMinute
}

// Valid reports whether the window opens before it closes within one day
func (w Window) Valid() bool {
	return w.OpenMinute >= 0 && w.CloseMinute <= 24*60 && w.Span() > 0
}

// Options configures a Timeline
type Options struct {
	Window       Window
	Zoom         ZoomConfig
	MinBarWidth  float64
	RowHeight    float64
	HeaderHeight float64

	// OnJobSelect is called whenever a job bar becomes the selected job
	OnJobSelect func(job models.ScheduledJob, anchor Rect)
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Window:       DefaultWindow(),
		Zoom:         DefaultZoomConfig(),
		MinBarWidth:  DefaultMinBarWidth,
		RowHeight:    DefaultRowHeight,
		HeaderHeight: DefaultHeaderHeight,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if !o.Window.Valid() {
		o.Window = d.Window
	}
	if !o.Zoom.Valid() {
		o.Zoom = d.Zoom
	}
	if o.MinBarWidth <= 0 {
		o.MinBarWidth = d.MinBarWidth
	}
	if o.RowHeight <= 0 {
		o.RowHeight = d.RowHeight
	}
	if o.HeaderHeight <= 0 {
		o.HeaderHeight = d.HeaderHeight
	}
	return o
}
