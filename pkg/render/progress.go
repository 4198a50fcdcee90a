package render

import "math"

// SegmentState classifies one segment against the playback boundary.
type SegmentState int

const (
	// SegmentInactive lies entirely after the playback position.
	SegmentInactive SegmentState = iota
	// SegmentPartial straddles the playback boundary.
	SegmentPartial
	// SegmentActive lies entirely before the playback position.
	SegmentActive
)

// Split maps a playback fraction onto a segment boundary: full is the
// number of fully played segments and partial the played fraction of the
// boundary segment. Classification is direction-agnostic; RTL only moves
// where segments are drawn, never which ones are active.
func Split(progress float64, segmentCount int) (full int, partial float64) {
	boundary := progress * float64(segmentCount)
	full = int(math.Floor(boundary))
	partial = boundary - float64(full)

	return full, partial
}

// Classify returns the state of segment i given the count of fully
// played segments.
func Classify(i, full int) SegmentState {
	switch {
	case i < full:
		return SegmentActive
	case i == full:
		return SegmentPartial
	default:
		return SegmentInactive
	}
}
