package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefineCutFindsNearestCrossing(t *testing.T) {
	// sign changes between indexes 1/2 and 4/5
	mono := []float64{1, -1, 1, 1, 1, -1, 1}

	tests := []struct {
		name    string
		nominal int
		window  int
		want    int
	}{
		{"closest crossing wins", 3, 3, 4},
		{"nearest is left of nominal", 2, 2, 1},
		{"nominal on crossing", 4, 2, 4},
		{"window excludes crossings", 3, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RefineCut(mono, tt.nominal, tt.window))
		})
	}
}

func TestRefineCutExactZeroSample(t *testing.T) {
	mono := []float64{1, 2, 0, 3, 4}
	assert.Equal(t, 2, RefineCut(mono, 4, 3))
	assert.Equal(t, 2, RefineCut(mono, 2, 1))
}

func TestRefineCutTieBreaksLow(t *testing.T) {
	// a crossing sitting exactly on the window edge is out of reach, the
	// pair straddles the boundary
	mono := []float64{1, 1, -1, -1, -1, -1, 1}
	assert.Equal(t, 1, RefineCut(mono, 3, 2))

	// crossings at 1 and 3, equidistant from nominal 2: the earlier wins
	tie := []float64{-1, -1, 1, 1, -1, -1}
	assert.Equal(t, 1, RefineCut(tie, 2, 2))
}

func TestRefineCutNoCrossing(t *testing.T) {
	ramp := make([]float64, 100)
	for i := range ramp {
		ramp[i] = 0.1 + float64(i)*0.001
	}
	assert.Equal(t, 50, RefineCut(ramp, 50, 10), "all-positive signal keeps the nominal cut")

	dc := []float64{0.5, 0.5, 0.5, 0.5}
	assert.Equal(t, 2, RefineCut(dc, 2, 2))
}

func TestRefineCutClampsNominal(t *testing.T) {
	mono := []float64{1, 1, 1, 1, 1, -1, 1}
	assert.Equal(t, 5, RefineCut(mono, 100, 2), "nominal beyond the end clamps then searches")
	assert.Equal(t, 0, RefineCut(mono, -3, 1), "negative nominal clamps to the start")
}

func TestRefineCutDegenerate(t *testing.T) {
	assert.Equal(t, 7, RefineCut(nil, 7, 5))
	assert.Equal(t, 7, RefineCut([]float64{1, 2}, 7, 0))
}

func TestRefineCutOnSine(t *testing.T) {
	rate := 48000
	mono := make([]float64, rate)
	for i := range mono {
		mono[i] = math.Sin(2 * math.Pi * 100 * float64(i) / float64(rate))
	}

	// 100 Hz at 48 kHz crosses zero every 240 frames
	got := RefineCut(mono, 1000, 240)
	assert.NotEqual(t, 1000, got)
	assert.LessOrEqual(t, int(math.Abs(float64(got-1000))), 240)

	// the found cut really is a crossing
	crossing := mono[got] == 0 || math.Signbit(mono[got]) != math.Signbit(mono[got+1])
	assert.True(t, crossing)
}
