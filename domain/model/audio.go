package model

import (
	"time"

	pkgerrors "github.com/Skryldev/split-lab/pkg/errors"
)

// SampleFormat identifies the sample encoding a buffer was decoded from.
// The engine processes float64 internally; the format records the effective
// bit depth for dithering decisions.
type SampleFormat string

const (
	FormatPCM16   SampleFormat = "pcm16"
	FormatPCM24   SampleFormat = "pcm24"
	FormatPCM32   SampleFormat = "pcm32"
	FormatFloat32 SampleFormat = "float32"
	FormatFloat64 SampleFormat = "float64"
)

// BitDepth returns the declared bits per sample, or 0 for unknown formats
func (f SampleFormat) BitDepth() int {
	switch f {
	case FormatPCM16:
		return 16
	case FormatPCM24:
		return 24
	case FormatPCM32, FormatFloat32:
		return 32
	case FormatFloat64:
		return 64
	default:
		return 0
	}
}

// Float reports whether the format is floating point
func (f SampleFormat) Float() bool {
	return f == FormatFloat32 || f == FormatFloat64
}

// Valid reports whether the format is one the engine supports
func (f SampleFormat) Valid() bool {
	return f.BitDepth() != 0
}

func (f SampleFormat) String() string {
	return string(f)
}

// AudioBuffer holds decoded audio: interleaved float64 samples in [-1, +1]
// full scale, frame-major (all channels of frame 0, then frame 1, ...).
type AudioBuffer struct {
	Samples    []float64
	SampleRate int // Hz
	Channels   int
	Format     SampleFormat
}

// Frames returns the number of sample frames in the buffer
func (b *AudioBuffer) Frames() int {
	if b == nil || b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration returns the buffer length as wall-clock time
func (b *AudioBuffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.SampleRate) * float64(time.Second))
}

// Sample returns the sample at (frame, channel) without bounds checking
func (b *AudioBuffer) Sample(frame, ch int) float64 {
	return b.Samples[frame*b.Channels+ch]
}

// Validate checks the buffer geometry and format
func (b *AudioBuffer) Validate() error {
	if b == nil {
		return pkgerrors.NewValidationError("buffer", nil, "buffer is nil")
	}
	if b.SampleRate <= 0 {
		return pkgerrors.NewValidationError("sampleRate", b.SampleRate, "sample rate must be positive")
	}
	if b.Channels <= 0 {
		return pkgerrors.NewValidationError("channels", b.Channels, "channel count must be positive")
	}
	if !b.Format.Valid() {
		return pkgerrors.NewSampleFormatError(string(b.Format))
	}
	if len(b.Samples)%b.Channels != 0 {
		return pkgerrors.NewValidationError("samples", len(b.Samples), "sample count not divisible by channel count")
	}
	return nil
}

// Clone returns a deep copy of the buffer
func (b *AudioBuffer) Clone() *AudioBuffer {
	if b == nil {
		return nil
	}
	out := &AudioBuffer{
		Samples:    make([]float64, len(b.Samples)),
		SampleRate: b.SampleRate,
		Channels:   b.Channels,
		Format:     b.Format,
	}
	copy(out.Samples, b.Samples)
	return out
}

// Slice copies the frame range [start, end) into a new buffer with the same
// geometry. Bounds are the caller's responsibility.
func (b *AudioBuffer) Slice(start, end int) *AudioBuffer {
	out := &AudioBuffer{
		Samples:    make([]float64, (end-start)*b.Channels),
		SampleRate: b.SampleRate,
		Channels:   b.Channels,
		Format:     b.Format,
	}
	copy(out.Samples, b.Samples[start*b.Channels:end*b.Channels])
	return out
}

// MonoSum returns the per-frame channel mean. For mono buffers it copies the
// samples; boundary search and spectral analysis both run on this signal.
func (b *AudioBuffer) MonoSum() []float64 {
	frames := b.Frames()
	mono := make([]float64, frames)
	if b.Channels == 1 {
		copy(mono, b.Samples)
		return mono
	}
	inv := 1.0 / float64(b.Channels)
	for i := 0; i < frames; i++ {
		sum := 0.0
		base := i * b.Channels
		for ch := 0; ch < b.Channels; ch++ {
			sum += b.Samples[base+ch]
		}
		mono[i] = sum * inv
	}
	return mono
}
