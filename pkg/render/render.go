package render

import (
	"math"

	"github.com/fogleman/gg"
	"github.com/wavescrub/wavescrub/pkg/envelope"
)

// Render repaints the full segment set onto dc: every call clears the
// surface and redraws every segment from scratch, so identical inputs
// always produce identical bitmaps. There is no incremental patching.
//
// progress must already be clamped to [0, 1] by the caller. An empty
// envelope is a no-op beyond clearing.
func Render(dc *gg.Context, env envelope.Envelope, progress float64, cfg Config) {
	dc.SetRGBA(0, 0, 0, 0)
	dc.Clear()

	n := len(env)
	if n == 0 {
		return
	}

	if cfg.BackgroundColor != "" {
		fillRoundedRect(dc, 0, 0, cfg.Width, cfg.Height, cfg.Height/2, cfg.BackgroundColor)
	}

	segmentWidth := (cfg.Width - cfg.Gap*float64(n-1)) / float64(n)
	minWidth := 1.0
	if cfg.Width <= 0 {
		// Degenerate viewport: keep a visible sliver instead of zero
		// so nothing downstream divides by it.
		minWidth = 0.1
	}
	if segmentWidth < minWidth {
		segmentWidth = minWidth
	}

	cornerRadius := 0.0
	if cfg.RoundedCorners {
		cornerRadius = math.Max(0, segmentWidth/cfg.cornerDivisor())
	}

	minHeight := math.Max(1, cfg.Height*cfg.MinHeightPercent/100)
	full, partial := Split(progress, n)

	for i, v := range env {
		height := math.Max(minHeight, math.Max(1, v*cfg.Height/100))
		y := math.Max(0, (cfg.Height-height)/2)

		var x float64
		if cfg.RTL {
			x = cfg.Width - (float64(i+1)*segmentWidth + float64(i)*cfg.Gap)
		} else {
			x = float64(i) * (segmentWidth + cfg.Gap)
		}

		fillRoundedRect(dc, x, y, segmentWidth, height, cornerRadius, cfg.InactiveColor)

		switch Classify(i, full) {
		case SegmentActive:
			fillRoundedRect(dc, x, y, segmentWidth, height, cornerRadius, cfg.ActiveColor)
		case SegmentPartial:
			activeWidth := segmentWidth * partial
			if activeWidth <= 0 {
				continue
			}
			activeX := x
			if cfg.RTL {
				// Active fill grows from the trailing edge so the
				// played portion advances in reading direction.
				activeX = x + (segmentWidth - activeWidth)
			}
			fillRoundedRect(dc, activeX, y, activeWidth, height, cornerRadius, cfg.ActiveColor)
		case SegmentInactive:
		}
	}
}

// fillRoundedRect paints one filled rectangle, with the corner radius
// clamped so opposing arcs never overlap.
func fillRoundedRect(dc *gg.Context, x, y, w, h, r float64, hexColor string) {
	dc.SetHexColor(hexColor)

	r = math.Min(r, math.Min(w/2, h/2))
	if r > 0 {
		dc.DrawRoundedRectangle(x, y, w, h, r)
	} else {
		dc.DrawRectangle(x, y, w, h)
	}
	dc.Fill()
}
