package dsp

import "math"

// RefineCut moves a nominal cut index to the zero crossing nearest to it
// within a symmetric search window, on an already mono-summed signal. A
// crossing is a sign change between consecutive samples or an exact zero
// sample. When the window holds no crossing the nominal index comes back
// unchanged; refinement never fails.
func RefineCut(mono []float64, nominal, window int) int {
	if len(mono) == 0 || window <= 0 {
		return nominal
	}
	if nominal < 0 {
		nominal = 0
	}
	if nominal > len(mono)-1 {
		nominal = len(mono) - 1
	}

	lo := nominal - window
	if lo < 0 {
		lo = 0
	}
	hi := nominal + window
	if hi > len(mono)-1 {
		hi = len(mono) - 1
	}

	best := -1
	bestDist := math.MaxInt
	for i := lo; i <= hi; i++ {
		if mono[i] != 0 && !(i+1 <= hi && math.Signbit(mono[i]) != math.Signbit(mono[i+1])) {
			continue
		}
		dist := i - nominal
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			best = i
			bestDist = dist
		}
	}

	if best < 0 {
		return nominal
	}
	return best
}
