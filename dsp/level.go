// Package dsp holds the sample-level routines behind the split pipeline:
// zero-crossing boundary search, equal-power crossfades, TPDF dithering and
// the level measurements shared with the quality analyzer.
package dsp

import "math"

// Peak returns the largest absolute sample value
func Peak(xs []float64) float64 {
	peak := 0.0
	for _, x := range xs {
		if a := math.Abs(x); a > peak {
			peak = a
		}
	}
	return peak
}

// PeakToPeak returns the full amplitude swing max(xs) - min(xs)
func PeakToPeak(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return hi - lo
}

// RMS returns the root mean square of the samples
func RMS(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x * x
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// Mean returns the arithmetic mean (the DC component)
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// DB converts a linear amplitude to decibels. Zero or negative input maps
// to -Inf; callers that need finite values clamp on their side.
func DB(x float64) float64 {
	if x <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(x)
}

// PowerDB converts a power ratio to decibels with the same zero handling
func PowerDB(x float64) float64 {
	if x <= 0 {
		return math.Inf(-1)
	}
	return 10 * math.Log10(x)
}
