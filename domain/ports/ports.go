package ports

import (
	"context"
	"time"

	"github.com/Skryldev/split-lab/domain/model"
	"github.com/Skryldev/split-lab/pkg/progress"
)

// Splitter defines the main segmentation interface
type Splitter interface {
	// Plan validates the requested time ranges against a buffer without
	// touching any samples
	Plan(buf *model.AudioBuffer, specs []model.TimeSpec) (*model.SplitPlan, error)

	// Split runs the full pipeline: plan, refine, extract, crossfade,
	// dither, analyze
	Split(ctx context.Context, buf *model.AudioBuffer, specs []model.TimeSpec, opts ...Option) (*model.SplitResult, error)
}

// Analyzer defines standalone quality measurement
type Analyzer interface {
	// Analyze measures a buffer and returns its quality report
	Analyze(ctx context.Context, buf *model.AudioBuffer, opts ...Option) (*model.QualityReport, error)

	// Validate measures a buffer and gates it against a profile
	Validate(ctx context.Context, buf *model.AudioBuffer, profile model.QualityProfile, opts ...Option) (*model.QualityReport, *model.Verdict, error)
}

// SegmentSink consumes finished segments. Implementations belong to the
// embedding host (container writers, uploaders, test captures); the engine
// itself never persists anything.
type SegmentSink interface {
	// Consume receives one finished segment together with its verdict
	Consume(ctx context.Context, seg *model.SegmentBuffer, verdict *model.Verdict) error
}

// ProgressReporter allows callers to receive progress updates. The engine
// reports through the pkg/progress reporters; the alias keeps the port
// vocabulary complete.
type ProgressReporter = progress.Reporter

// Option is the functional option type
type Option func(*model.ProcessingOptions)

// WithBoundaryRefinement enables or disables zero-crossing boundary search
func WithBoundaryRefinement(enabled bool) Option {
	return func(o *model.ProcessingOptions) {
		o.RefineBoundaries = enabled
	}
}

// WithZeroCrossWindow sets the half-width of the zero-crossing search window
func WithZeroCrossWindow(d time.Duration) Option {
	return func(o *model.ProcessingOptions) {
		if d > 0 {
			o.ZeroCrossWindow = d
		}
	}
}

// WithCrossfade enables or disables equal-power fades at adjacent cuts
func WithCrossfade(enabled bool) Option {
	return func(o *model.ProcessingOptions) {
		o.CrossfadeEnabled = enabled
	}
}

// WithFadeDuration sets the crossfade length
func WithFadeDuration(d time.Duration) Option {
	return func(o *model.ProcessingOptions) {
		if d > 0 {
			o.FadeDuration = d
		}
	}
}

// WithDither enables or disables TPDF dithering on bit-depth reduction
func WithDither(enabled bool) Option {
	return func(o *model.ProcessingOptions) {
		o.DitherEnabled = enabled
	}
}

// WithTargetBitDepth sets the output bit depth segments are quantized to.
// Zero keeps the source depth and disables dithering.
func WithTargetBitDepth(bits int) Option {
	return func(o *model.ProcessingOptions) {
		o.TargetBitDepth = bits
	}
}

// WithDitherSeed fixes the dither noise seed for reproducible output
func WithDitherSeed(seed uint64) Option {
	return func(o *model.ProcessingOptions) {
		o.DitherSeed = seed
	}
}

// WithQualityValidation enables or disables per-segment analysis
func WithQualityValidation(enabled bool) Option {
	return func(o *model.ProcessingOptions) {
		o.ValidateQuality = enabled
	}
}

// WithQualityProfile selects the profile segments are gated against
func WithQualityProfile(p model.QualityProfile) Option {
	return func(o *model.ProcessingOptions) {
		o.Profile = p
	}
}

// WithAnalysisParams overrides the spectral analyzer parameters
func WithAnalysisParams(p model.AnalysisParams) Option {
	return func(o *model.ProcessingOptions) {
		o.Analysis = p
	}
}

// WithReference supplies a reference buffer; comparison metrics are
// preferred over blind estimation when one is present. Analyze and Validate
// compare against the buffer as a whole; Split slices it along the final
// segment cuts, so it must be time-aligned with the input. Without one,
// Split compares requantized segments against their pre-quantization
// clones.
func WithReference(ref *model.AudioBuffer) Option {
	return func(o *model.ProcessingOptions) {
		o.Reference = ref
	}
}

// WithSegmentTimeout bounds the processing time of each segment
func WithSegmentTimeout(d time.Duration) Option {
	return func(o *model.ProcessingOptions) {
		if d > 0 {
			o.SegmentTimeout = d
		}
	}
}
