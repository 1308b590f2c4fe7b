package dsp

import (
	"math"

	"github.com/Skryldev/split-lab/domain/model"
)

// CrossfadeGains returns the equal-power gain ramps for an n-frame fade,
// derived from the raised-cosine shape: out[i] = cos(p*pi/2),
// in[i] = sin(p*pi/2) with p running 0..1. At every position
// out^2 + in^2 = 1, in rises monotonically 0..1 and out mirrors it down.
func CrossfadeGains(n int) (out, in []float64) {
	if n < 2 {
		return nil, nil
	}
	out = make([]float64, n)
	in = make([]float64, n)
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n-1)
		theta := p * math.Pi / 2
		out[i] = math.Cos(theta)
		in[i] = math.Sin(theta)
	}
	return out, in
}

// ApplyCrossfade blends the shared cut between two segments extracted from
// the same buffer: the tail of a gets the fade-out ramp and the head of b
// the fade-in ramp, per channel, in place. The fade is clamped to half the
// shorter segment; windows shorter than two frames are skipped. Returns the
// number of frames actually faded.
func ApplyCrossfade(a, b *model.AudioBuffer, fadeFrames int) int {
	if a == nil || b == nil || a.Channels != b.Channels {
		return 0
	}

	n := fadeFrames
	if half := a.Frames() / 2; n > half {
		n = half
	}
	if half := b.Frames() / 2; n > half {
		n = half
	}
	if n < 2 {
		return 0
	}

	gainOut, gainIn := CrossfadeGains(n)
	ch := a.Channels
	aBase := (a.Frames() - n) * ch
	for i := 0; i < n; i++ {
		for c := 0; c < ch; c++ {
			a.Samples[aBase+i*ch+c] *= gainOut[i]
			b.Samples[i*ch+c] *= gainIn[i]
		}
	}
	return n
}
