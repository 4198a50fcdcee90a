// Package envelope computes a compact amplitude envelope from decoded
// PCM samples: a fixed number of segment magnitudes suitable for drawing
// a segmented waveform bar.
package envelope

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput is returned for an empty sample buffer, a
	// non-positive segment count, or an unknown sampling quality.
	ErrInvalidInput = errors.New("invalid extraction input")
)

// Envelope is an ordered sequence of segment magnitudes, one per visual
// bar. Values are normalized to [MinValue, MaxValue] so the quietest
// segment still renders as a visible sliver.
type Envelope []float64

const (
	// MinValue is the normalization floor applied to every segment.
	MinValue = 15.0
	// MaxValue is the magnitude of the loudest segment after normalization.
	MaxValue = 100.0

	// minPeak prevents division by zero when normalizing silent audio.
	minPeak = 0.01

	// batchSize is how many segments are processed between progress
	// reports. It has no effect on the numeric output.
	batchSize = 1000
)

// Quality selects the per-segment decimation used while averaging.
// Despite the names, higher quality means a *coarser* sample step
// (fewer samples per segment, denser averaging bins elsewhere). The
// mapping is preserved from the reference behavior because changing it
// changes the rendered shape.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// Valid reports whether q is one of the recognized quality levels.
func (q Quality) Valid() bool {
	switch q {
	case QualityLow, QualityMedium, QualityHigh:
		return true
	}
	return false
}

// decimation returns the divisor applied to samplesPerSegment when
// deriving the sample step.
func (q Quality) decimation() int {
	switch q {
	case QualityLow:
		return 5
	case QualityHigh:
		return 20
	default:
		return 10
	}
}

// Extract reduces a raw sample buffer to segmentCount normalized
// magnitudes. Samples are expected in [-1, 1]; only a single channel is
// analyzed. onProgress, when non-nil, is called with a whole percentage
// at least once per processing batch.
//
// The result is always a complete envelope: exactly segmentCount values,
// each in [MinValue, MaxValue].
func Extract(samples []float64, segmentCount int, quality Quality, onProgress func(percent int)) (Envelope, error) {
	if segmentCount <= 0 {
		return nil, fmt.Errorf("%w: segment count %d", ErrInvalidInput, segmentCount)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: empty sample buffer", ErrInvalidInput)
	}
	if !quality.Valid() {
		return nil, fmt.Errorf("%w: unknown quality %q", ErrInvalidInput, quality)
	}

	samplesPerSegment := len(samples) / segmentCount
	sampleStep := samplesPerSegment / quality.decimation()
	if sampleStep < 1 {
		sampleStep = 1
	}

	means := make([]float64, segmentCount)

	for batchStart := 0; batchStart < segmentCount; batchStart += batchSize {
		batchEnd := min(batchStart+batchSize, segmentCount)

		for j := batchStart; j < batchEnd; j++ {
			start := j * samplesPerSegment
			end := min(start+samplesPerSegment, len(samples))

			var sum float64
			count := 0
			for k := start; k < end; k += sampleStep {
				sum += math.Abs(samples[k])
				count++
			}

			// A degenerate segment whose stepped range yields no
			// samples stays at 0 instead of propagating NaN.
			if count > 0 {
				means[j] = sum / float64(count)
			}
		}

		if onProgress != nil {
			onProgress(int(math.Round(float64(batchEnd) / float64(segmentCount) * 100)))
		}
	}

	maxPeak := minPeak
	for _, m := range means {
		if m > maxPeak {
			maxPeak = m
		}
	}

	env := make(Envelope, segmentCount)
	for i, m := range means {
		env[i] = math.Max(m/maxPeak*MaxValue, MinValue)
	}

	return env, nil
}
