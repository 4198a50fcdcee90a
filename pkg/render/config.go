// Package render draws a segmented waveform bar onto a pixel-ratio-scaled
// raster surface and maps playback progress and pointer input onto it.
package render

import "golang.org/x/exp/constraints"

// DefaultCornerDivisor is the divisor applied to segment width when
// deriving rounded corner radius and no explicit divisor is configured.
const DefaultCornerDivisor = 3.0

// Config is an immutable-per-render snapshot of geometry and style.
// Callers build a fresh Config for every render call so a resize can
// never leave stale dimensions behind. All dimensions are logical (CSS)
// pixels; device pixel ratio is handled once by the Surface.
type Config struct {
	// Width and Height are the viewport dimensions in logical pixels.
	Width  float64
	Height float64

	// Gap is the horizontal spacing between segments.
	Gap float64

	// ActiveColor fills the played portion, InactiveColor the rest.
	// Colors are hex strings ("#rrggbb" or "#rgb").
	ActiveColor   string
	InactiveColor string

	// BackgroundColor, when non-empty, paints a full-width pill behind
	// the segments.
	BackgroundColor string

	// RTL mirrors segment layout and anchors the active fill at the
	// trailing edge of the boundary segment.
	RTL bool

	// RoundedCorners enables rounded segment corners; CornerDivisor is
	// the divisor applied to segment width for the radius (0 means
	// DefaultCornerDivisor).
	RoundedCorners bool
	CornerDivisor  float64

	// MinHeightPercent is the minimum segment height as a percentage of
	// viewport height.
	MinHeightPercent float64
}

func (c Config) cornerDivisor() float64 {
	if c.CornerDivisor > 0 {
		return c.CornerDivisor
	}
	return DefaultCornerDivisor
}

// Segment count bounds for the width-derived default.
const (
	minAutoSegments = 20
	maxAutoSegments = 500
)

// AutoSegmentCount derives a segment count from the effective viewport
// width: narrow views get denser bars relative to width, wide views
// sparser, clamped to [20, 500].
func AutoSegmentCount(width float64) int {
	var n float64
	switch {
	case width <= 300:
		n = width / 8
	case width <= 600:
		n = width / 6
	case width <= 1200:
		n = width / 4
	default:
		n = width / 2
	}

	return clamp(int(n), minAutoSegments, maxAutoSegments)
}

func clamp[N constraints.Ordered](v, lo, hi N) N {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
