package timeline

import "math"

// ZoomConfig bounds the pixels-per-minute factor
type ZoomConfig struct {
	Default float64 `json:"default"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
}

// DefaultZoomConfig returns the built-in zoom bounds
func DefaultZoomConfig() ZoomConfig {
	return ZoomConfig{Default: 1, Min: 0.25, Max: 4, Step: 0.25}
}

// Valid reports whether the bounds are usable
func (c ZoomConfig) Valid() bool {
	return c.Min > 0 && c.Max >= c.Min && c.Step > 0 && c.Default >= c.Min && c.Default <= c.Max
}

// Clamp brings v inside [Min, Max]; NaN and infinities fall back to Default
func (c ZoomConfig) Clamp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return c.Default
	}
	return clampFloat(v, c.Min, c.Max)
}

// Zoom is the zoom state of one timeline instance
type Zoom struct {
	cfg   ZoomConfig
	value float64
}

// NewZoom returns a zoom state at the configured default
func NewZoom(cfg ZoomConfig) *Zoom {
	if !cfg.Valid() {
		cfg = DefaultZoomConfig()
	}
	return &Zoom{cfg: cfg, value: cfg.Default}
}

// PixelsPerMinute returns the current zoom factor
func (z *Zoom) PixelsPerMinute() float64 {
	return z.value
}

// Config returns the bounds of z
func (z *Zoom) Config() ZoomConfig {
	return z.cfg
}

// Set moves the zoom to v, clamped to the bounds, and returns the new value
func (z *Zoom) Set(v float64) float64 {
	z.value = z.cfg.Clamp(v)
	return z.value
}

// ZoomIn increases the zoom by one step
func (z *Zoom) ZoomIn() float64 {
	return z.Set(z.value + z.cfg.Step)
}

// ZoomOut decreases the zoom by one step
func (z *Zoom) ZoomOut() float64 {
	return z.Set(z.value - z.cfg.Step)
}

// Reset returns to the default zoom
func (z *Zoom) Reset() float64 {
	return z.Set(z.cfg.Default)
}

// CanZoomIn reports whether ZoomIn would change the value
func (z *Zoom) CanZoomIn() bool {
	return z.value < z.cfg.Max
}

// CanZoomOut reports whether ZoomOut would change the value
func (z *Zoom) CanZoomOut() bool {
	return z.value > z.cfg.Min
}
