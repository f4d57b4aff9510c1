package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/timeline"
)

// TimelineConfig is the optional YAML file tuning the timeline layout.
//
//	window:
//	  open: "07:00"
//	  close: "18:00"
//	zoom:
//	  default: 1
//	  min: 0.25
//	  max: 4
//	  step: 0.25
//	min_bar_width: 4
//	row_height: 44
type TimelineConfig struct {
	Window struct {
		Open  string `yaml:"open"`  // HH:MM clock time the business day opens
		Close string `yaml:"close"` // HH:MM clock time the business day closes
	} `yaml:"window"`
	Zoom struct {
		Default float64 `yaml:"default"`
		Min     float64 `yaml:"min"`
		Max     float64 `yaml:"max"`
		Step    float64 `yaml:"step"`
	} `yaml:"zoom"`
	MinBarWidth  float64 `yaml:"min_bar_width"`
	RowHeight    float64 `yaml:"row_height"`
	HeaderHeight float64 `yaml:"header_height"`
}

// DefaultTimelineConfig mirrors timeline.DefaultOptions
func DefaultTimelineConfig() TimelineConfig {
	var c TimelineConfig
	d := timeline.DefaultOptions()
	c.Window.Open = timeline.FormatTimeFromMinutes(d.Window.OpenMinute)
	c.Window.Close = timeline.FormatTimeFromMinutes(d.Window.CloseMinute)
	c.Zoom.Default = d.Zoom.Default
	c.Zoom.Min = d.Zoom.Min
	c.Zoom.Max = d.Zoom.Max
	c.Zoom.Step = d.Zoom.Step
	c.MinBarWidth = d.MinBarWidth
	c.RowHeight = d.RowHeight
	c.HeaderHeight = d.HeaderHeight
	return c
}

// LoadTimelineConfig reads a YAML file on top of the defaults
func LoadTimelineConfig(path string) (TimelineConfig, error) {
	c := DefaultTimelineConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read timeline config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse timeline config %s: %w", path, err)
	}
	return c, nil
}

// Validate checks the window and zoom bounds
func (c TimelineConfig) Validate() error {
	opts, err := c.Options()
	if err != nil {
		return err
	}
	if !opts.Window.Valid() {
		return fmt.Errorf("timeline window must open before it closes")
	}
	if !opts.Zoom.Valid() {
		return fmt.Errorf("timeline zoom needs 0 < min <= default <= max and a positive step")
	}
	return nil
}

// Options converts the file into timeline options
func (c TimelineConfig) Options() (timeline.Options, error) {
	opts := timeline.DefaultOptions()
	open, err := parseClock(c.Window.Open)
	if err != nil {
		return opts, fmt.Errorf("timeline window.open: %w", err)
	}
	closing, err := parseClock(c.Window.Close)
	if err != nil {
		return opts, fmt.Errorf("timeline window.close: %w", err)
	}
	opts.Window = timeline.Window{OpenMinute: open, CloseMinute: closing}
	opts.Zoom = timeline.ZoomConfig{Default: c.Zoom.Default, Min: c.Zoom.Min, Max: c.Zoom.Max, Step: c.Zoom.Step}
	if c.MinBarWidth > 0 {
		opts.MinBarWidth = c.MinBarWidth
	}
	if c.RowHeight > 0 {
		opts.RowHeight = c.RowHeight
	}
	if c.HeaderHeight > 0 {
		opts.HeaderHeight = c.HeaderHeight
	}
	return opts, nil
}

func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return h*60 + m, nil
}
