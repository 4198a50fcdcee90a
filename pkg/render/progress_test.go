package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wavescrub/wavescrub/pkg/render"
)

func TestSplit_Boundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		progress float64
		segments int
		full     int
		partial  float64
	}{
		{"start", 0, 10, 0, 0},
		{"end", 1, 10, 10, 0},
		{"midpoint lands on boundary", 0.5, 10, 5, 0},
		{"quarter of a segment", 0.125, 4, 0, 0.5},
		{"single segment", 0.25, 1, 0, 0.25},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			full, partial := render.Split(tc.progress, tc.segments)
			assert.Equal(t, tc.full, full)
			assert.InDelta(t, tc.partial, partial, 1e-9)
		})
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	full, _ := render.Split(0.5, 10)

	for i := 0; i < 5; i++ {
		assert.Equal(t, render.SegmentActive, render.Classify(i, full), "segment %d", i)
	}
	assert.Equal(t, render.SegmentPartial, render.Classify(5, full))
	for i := 6; i < 10; i++ {
		assert.Equal(t, render.SegmentInactive, render.Classify(i, full), "segment %d", i)
	}
}

func TestClassify_AllInactiveAtZero_AllActiveAtOne(t *testing.T) {
	t.Parallel()

	full, partial := render.Split(0, 8)
	assert.Zero(t, partial)
	for i := 0; i < 8; i++ {
		assert.NotEqual(t, render.SegmentActive, render.Classify(i, full))
	}

	full, partial = render.Split(1, 8)
	assert.Zero(t, partial)
	for i := 0; i < 8; i++ {
		assert.Equal(t, render.SegmentActive, render.Classify(i, full))
	}
}

func TestAutoSegmentCount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		width float64
		want  int
	}{
		{0, 20},     // clamped to the floor
		{160, 20},   // 160/8 = 20
		{300, 37},   // 300/8
		{480, 80},   // 480/6
		{1200, 300}, // 1200/4
		{2000, 500}, // 2000/2 clamped to the ceiling
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, render.AutoSegmentCount(tc.width), "width %v", tc.width)
	}
}
