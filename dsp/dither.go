package dsp

import (
	"math"
	"math/rand/v2"

	"github.com/Skryldev/split-lab/domain/model"
)

// QuantStep returns the least-significant-bit size at the given depth for
// full-scale [-1, +1) samples.
func QuantStep(bits int) float64 {
	return 1.0 / float64(int64(1)<<(bits-1))
}

// FormatForDepth maps a target bit depth to the sample format recorded on
// requantized buffers. Only the depths of real PCM formats are supported.
func FormatForDepth(bits int) (model.SampleFormat, bool) {
	switch bits {
	case 16:
		return model.FormatPCM16, true
	case 24:
		return model.FormatPCM24, true
	case 32:
		return model.FormatPCM32, true
	default:
		return "", false
	}
}

// DitherTo applies TPDF dither and requantizes the buffer to targetBits, in
// place. The noise per sample is the sum of two independent uniforms, each
// spanning half an LSB at the target depth, so its triangular distribution
// is bounded by one LSB peak. A zero seed picks a random one.
//
// The call is a no-op when the target depth is not below the buffer's
// declared depth; because requantizing records the new depth on the buffer,
// repeating the call with the same target never accumulates noise.
func DitherTo(buf *model.AudioBuffer, targetBits int, seed uint64) bool {
	return requantize(buf, targetBits, seed, true)
}

// Requantize rounds the buffer to the target grid without dithering
func Requantize(buf *model.AudioBuffer, targetBits int) bool {
	return requantize(buf, targetBits, 0, false)
}

func requantize(buf *model.AudioBuffer, targetBits int, seed uint64, dither bool) bool {
	if buf == nil || targetBits <= 0 || targetBits >= buf.Format.BitDepth() {
		return false
	}
	format, ok := FormatForDepth(targetBits)
	if !ok {
		return false
	}

	lsb := QuantStep(targetBits)
	max := 1.0 - lsb

	var rng *rand.Rand
	if dither {
		if seed == 0 {
			seed = rand.Uint64()
		}
		rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}

	for i, s := range buf.Samples {
		if dither {
			s += (rng.Float64() - 0.5) * lsb
			s += (rng.Float64() - 0.5) * lsb
		}
		s = math.Round(s/lsb) * lsb
		if s > max {
			s = max
		} else if s < -1 {
			s = -1
		}
		buf.Samples[i] = s
	}

	buf.Format = format
	return true
}
