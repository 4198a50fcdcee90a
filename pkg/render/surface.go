package render

import (
	"image"
	"io"
	"math"

	"github.com/fogleman/gg"
)

// Surface owns the raster target for a waveform. The backing bitmap is
// physically sized at logical size times the device pixel ratio and the
// drawing context is pre-scaled by that ratio once, here; render logic
// works purely in logical pixels and never multiplies by the ratio.
//
// A Surface is rebuilt wholesale on resize rather than mutated.
type Surface struct {
	dc     *gg.Context
	width  int
	height int
	ratio  float64
}

// NewSurface allocates a surface of width x height logical pixels at the
// given device pixel ratio. Non-positive dimensions are clamped to 1
// physical pixel so drawing never panics; a non-positive ratio falls
// back to 1.
func NewSurface(width, height int, pixelRatio float64) *Surface {
	if pixelRatio <= 0 {
		pixelRatio = 1
	}

	pw := int(math.Round(float64(width) * pixelRatio))
	ph := int(math.Round(float64(height) * pixelRatio))
	if pw < 1 {
		pw = 1
	}
	if ph < 1 {
		ph = 1
	}

	dc := gg.NewContext(pw, ph)
	dc.Scale(pixelRatio, pixelRatio)

	return &Surface{
		dc:     dc,
		width:  width,
		height: height,
		ratio:  pixelRatio,
	}
}

// Context returns the pre-scaled drawing context.
func (s *Surface) Context() *gg.Context {
	return s.dc
}

// Width returns the logical width.
func (s *Surface) Width() int {
	return s.width
}

// Height returns the logical height.
func (s *Surface) Height() int {
	return s.height
}

// PixelRatio returns the device pixel ratio the surface was built with.
func (s *Surface) PixelRatio() float64 {
	return s.ratio
}

// Image returns the backing bitmap at physical resolution.
func (s *Surface) Image() image.Image {
	return s.dc.Image()
}

// EncodePNG writes the backing bitmap as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	return s.dc.EncodePNG(w)
}
