package model

import "time"

// ProcessingOptions holds all configuration for one split or analysis call
type ProcessingOptions struct {
	// Boundary refinement
	RefineBoundaries bool
	ZeroCrossWindow  time.Duration // half-width of the search window, default: 5ms

	// Crossfade
	CrossfadeEnabled bool
	FadeDuration     time.Duration // default: 10ms

	// Dither
	DitherEnabled  bool
	TargetBitDepth int    // 0: keep source depth, no dithering
	DitherSeed     uint64 // 0: random seed

	// Quality validation
	ValidateQuality bool
	Profile         QualityProfile
	Analysis        AnalysisParams
	Reference       *AudioBuffer // optional reference for comparison metrics

	// Processing
	SegmentTimeout time.Duration // 0: no per-segment deadline
}

// DefaultProcessingOptions returns sane defaults
func DefaultProcessingOptions() *ProcessingOptions {
	return &ProcessingOptions{
		RefineBoundaries: true,
		ZeroCrossWindow:  5 * time.Millisecond,
		CrossfadeEnabled: true,
		FadeDuration:     10 * time.Millisecond,
		DitherEnabled:    true,
		TargetBitDepth:   0,
		ValidateQuality:  true,
		Profile:          ProfileProfessional,
		Analysis:         DefaultAnalysisParams(),
		SegmentTimeout:   0,
	}
}
