package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeak(t *testing.T) {
	assert.Equal(t, 0.0, Peak(nil))
	assert.Equal(t, 0.0, Peak([]float64{0, 0, 0}))
	assert.Equal(t, 0.9, Peak([]float64{0.1, -0.9, 0.5}))
	assert.Equal(t, 1.0, Peak([]float64{-1.0, 0.2}))
}

func TestPeakToPeak(t *testing.T) {
	assert.Equal(t, 0.0, PeakToPeak(nil))
	assert.Equal(t, 0.0, PeakToPeak([]float64{0.3}))
	assert.Equal(t, 1.5, PeakToPeak([]float64{-0.5, 0.25, 1.0}))
}

func TestRMS(t *testing.T) {
	assert.Equal(t, 0.0, RMS(nil))
	assert.Equal(t, 0.5, RMS([]float64{0.5, -0.5, 0.5, -0.5}))

	// full-scale sine settles at 1/sqrt(2)
	xs := make([]float64, 48000)
	for i := range xs {
		xs[i] = math.Sin(2 * math.Pi * 100 * float64(i) / 48000)
	}
	assert.InDelta(t, 1/math.Sqrt2, RMS(xs), 1e-6)
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 0.25, Mean([]float64{0.5, 0.0, 0.5, 0.0}), 1e-12)
	assert.InDelta(t, -0.1, Mean([]float64{-0.1, -0.1}), 1e-12)
}

func TestDB(t *testing.T) {
	assert.InDelta(t, 0.0, DB(1.0), 1e-12)
	assert.InDelta(t, -6.0205999, DB(0.5), 1e-6)
	assert.InDelta(t, -20.0, DB(0.1), 1e-9)
	assert.True(t, math.IsInf(DB(0), -1))
	assert.True(t, math.IsInf(DB(-0.5), -1))
}

func TestPowerDB(t *testing.T) {
	assert.InDelta(t, 0.0, PowerDB(1.0), 1e-12)
	assert.InDelta(t, -3.0102999, PowerDB(0.5), 1e-6)
	assert.InDelta(t, 20.0, PowerDB(100), 1e-9)
	assert.True(t, math.IsInf(PowerDB(0), -1))
}
