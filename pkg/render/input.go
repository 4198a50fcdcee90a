package render

// Rect is a container bounding box in the pointer's coordinate space.
type Rect struct {
	Left  float64
	Width float64
}

// Right returns the right edge of the box.
func (r Rect) Right() float64 {
	return r.Left + r.Width
}

// PointerToProgress converts a pointer's physical X coordinate into a
// playback fraction in [0, 1]. In LTR mode progress grows from the left
// edge, in RTL from the right. Progress is continuous: there is no
// snapping to segment boundaries. A non-positive box width returns 0.
func PointerToProgress(pointerX float64, box Rect, rtl bool) float64 {
	if box.Width <= 0 {
		return 0
	}

	var relative float64
	if rtl {
		relative = box.Right() - pointerX
	} else {
		relative = pointerX - box.Left
	}

	return clamp(relative, 0, box.Width) / box.Width
}
