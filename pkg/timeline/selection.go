package timeline

import (
	"math"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/models"
)

// Rect is a box in pixels
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bottom returns the lower edge
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Size is a width and height in pixels
type Size struct {
	Width  float64
	Height float64
}

// Point is where a popover is drawn. Above is set when it was flipped over its anchor.
type Point struct {
	Left  float64 `json:"left"`
	Top   float64 `json:"top"`
	Above bool    `json:"above"`
}

// Selection is the job whose details are open, with the box it was opened from
type Selection struct {
	Job    models.ScheduledJob
	Anchor Rect
}

// Selector holds at most one selected job
type Selector struct {
	selected *Selection
	onSelect func(job models.ScheduledJob, anchor Rect)
}

// NewSelector returns an empty selection; onSelect may be nil
func NewSelector(onSelect func(job models.ScheduledJob, anchor Rect)) *Selector {
	return &Selector{onSelect: onSelect}
}

// Select replaces the current selection
func (s *Selector) Select(job models.ScheduledJob, anchor Rect) {
	s.selected = &Selection{Job: job, Anchor: anchor}
	if s.onSelect != nil {
		s.onSelect(job, anchor)
	}
}

// Clear closes the popover
func (s *Selector) Clear() {
	s.selected = nil
}

// Selected returns the current selection, if any
func (s *Selector) Selected() (Selection, bool) {
	if s.selected == nil {
		return Selection{}, false
	}
	return *s.selected, true
}

// State is the per-instance state of a rendered timeline
type State struct {
	Zoom      *Zoom
	Selection *Selector
}

// NewState returns the initial state for the given options
func NewState(opts Options) *State {
	opts = opts.withDefaults()
	return &State{
		Zoom:      NewZoom(opts.Zoom),
		Selection: NewSelector(opts.OnJobSelect),
	}
}

// PlacePopover positions a popover of the given size below anchor, or above it when there is
// not enough room below inside viewport. The result is kept inside the viewport horizontally.
func PlacePopover(anchor Rect, viewport Size, popover Size, gap float64) Point {
	p := Point{Left: anchor.Left, Top: anchor.Bottom() + gap}
	roomBelow := viewport.Height - anchor.Bottom() - gap
	roomAbove := anchor.Top - gap
	if roomBelow < popover.Height && roomAbove > roomBelow {
		p.Top = math.Max(0, anchor.Top-gap-popover.Height)
		p.Above = true
	}
	maxLeft := math.Max(0, viewport.Width-popover.Width)
	p.Left = clampFloat(p.Left, 0, maxLeft)
	return p
}
