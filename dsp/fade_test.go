package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/split-lab/domain/model"
)

func TestCrossfadeGainsEqualPower(t *testing.T) {
	for _, n := range []int{2, 3, 16, 441, 4800} {
		out, in := CrossfadeGains(n)
		require.Len(t, out, n)
		require.Len(t, in, n)

		assert.InDelta(t, 1.0, out[0], 1e-12)
		assert.InDelta(t, 0.0, in[0], 1e-12)
		assert.InDelta(t, 0.0, out[n-1], 1e-12)
		assert.InDelta(t, 1.0, in[n-1], 1e-12)

		for i := 0; i < n; i++ {
			assert.InDelta(t, 1.0, out[i]*out[i]+in[i]*in[i], 1e-12,
				"power must stay constant at position %d of %d", i, n)
		}
		for i := 1; i < n; i++ {
			assert.LessOrEqual(t, out[i], out[i-1], "fade-out must not rise")
			assert.GreaterOrEqual(t, in[i], in[i-1], "fade-in must not fall")
		}
	}
}

func TestCrossfadeGainsTooShort(t *testing.T) {
	out, in := CrossfadeGains(1)
	assert.Nil(t, out)
	assert.Nil(t, in)

	out, in = CrossfadeGains(0)
	assert.Nil(t, out)
	assert.Nil(t, in)
}

func constBuffer(frames, channels int, value float64) *model.AudioBuffer {
	samples := make([]float64, frames*channels)
	for i := range samples {
		samples[i] = value
	}
	return &model.AudioBuffer{
		Samples:    samples,
		SampleRate: 48000,
		Channels:   channels,
		Format:     model.FormatFloat64,
	}
}

func TestApplyCrossfade(t *testing.T) {
	a := constBuffer(100, 2, 1.0)
	b := constBuffer(100, 2, 1.0)

	n := ApplyCrossfade(a, b, 10)
	require.Equal(t, 10, n)

	gainOut, gainIn := CrossfadeGains(10)
	for i := 0; i < 10; i++ {
		for c := 0; c < 2; c++ {
			assert.InDelta(t, gainOut[i], a.Sample(90+i, c), 1e-12)
			assert.InDelta(t, gainIn[i], b.Sample(i, c), 1e-12)
		}
	}

	// everything outside the fade windows is untouched
	for i := 0; i < 90; i++ {
		assert.Equal(t, 1.0, a.Sample(i, 0))
	}
	for i := 10; i < 100; i++ {
		assert.Equal(t, 1.0, b.Sample(i, 0))
	}

	// summed power across the cut stays constant
	for i := 0; i < 10; i++ {
		aSq := a.Sample(90+i, 0) * a.Sample(90+i, 0)
		bSq := b.Sample(i, 0) * b.Sample(i, 0)
		assert.InDelta(t, 1.0, aSq+bSq, 1e-12)
	}
}

func TestApplyCrossfadeClampsToHalfSegment(t *testing.T) {
	a := constBuffer(6, 1, 1.0)
	b := constBuffer(100, 1, 1.0)

	n := ApplyCrossfade(a, b, 50)
	assert.Equal(t, 3, n, "fade clamps to half the shorter segment")
}

func TestApplyCrossfadeSkipsDegenerate(t *testing.T) {
	t.Run("segments too short", func(t *testing.T) {
		a := constBuffer(2, 1, 1.0)
		b := constBuffer(100, 1, 1.0)
		assert.Equal(t, 0, ApplyCrossfade(a, b, 10))
		assert.Equal(t, 1.0, a.Sample(1, 0), "skipped fade must not touch samples")
		assert.Equal(t, 1.0, b.Sample(0, 0))
	})

	t.Run("channel mismatch", func(t *testing.T) {
		a := constBuffer(100, 1, 1.0)
		b := constBuffer(100, 2, 1.0)
		assert.Equal(t, 0, ApplyCrossfade(a, b, 10))
	})

	t.Run("nil buffers", func(t *testing.T) {
		assert.Equal(t, 0, ApplyCrossfade(nil, constBuffer(10, 1, 1), 4))
		assert.Equal(t, 0, ApplyCrossfade(constBuffer(10, 1, 1), nil, 4))
	})
}
