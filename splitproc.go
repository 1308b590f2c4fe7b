package splitlab

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Skryldev/split-lab/application/planner"
	"github.com/Skryldev/split-lab/application/usecase"
	"github.com/Skryldev/split-lab/domain/model"
	"github.com/Skryldev/split-lab/domain/ports"
	"github.com/Skryldev/split-lab/domain/timecode"
	"github.com/Skryldev/split-lab/pkg/logger"
	"github.com/Skryldev/split-lab/pkg/progress"
)

// Re-export types for convenient use by callers
type (
	AudioBuffer    = model.AudioBuffer
	SampleFormat   = model.SampleFormat
	TimeSpec       = model.TimeSpec
	SplitPlan      = model.SplitPlan
	SegmentBuffer  = model.SegmentBuffer
	SegmentResult  = model.SegmentResult
	SplitResult    = model.SplitResult
	AnalysisJob    = model.AnalysisJob
	AnalysisResult = model.AnalysisResult
	QualityProfile = model.QualityProfile
	QualityLevel   = model.QualityLevel
	Thresholds     = model.Thresholds
	QualityReport  = model.QualityReport
	Verdict        = model.Verdict
	MetricFailure  = model.MetricFailure
	AnalysisParams = model.AnalysisParams
	SegmentSink    = ports.SegmentSink
	ProgressUpdate = progress.Update
	ProgressStage  = progress.Stage
)

// Re-export sample format and level constants
const (
	FormatPCM16   = model.FormatPCM16
	FormatPCM24   = model.FormatPCM24
	FormatPCM32   = model.FormatPCM32
	FormatFloat32 = model.FormatFloat32
	FormatFloat64 = model.FormatFloat64

	LevelFailed     = model.LevelFailed
	LevelPoor       = model.LevelPoor
	LevelAcceptable = model.LevelAcceptable
	LevelGood       = model.LevelGood
	LevelExcellent  = model.LevelExcellent

	StagePlan      = progress.StagePlan
	StageRefine    = progress.StageRefine
	StageExtract   = progress.StageExtract
	StageCrossfade = progress.StageCrossfade
	StageDither    = progress.StageDither
	StageAnalyze   = progress.StageAnalyze
	StageGate      = progress.StageGate
	StageDone      = progress.StageDone
)

// Re-export quality profiles and option functions
var (
	ProfileStudio       = model.ProfileStudio
	ProfileProfessional = model.ProfileProfessional
	ProfileStandard     = model.ProfileStandard
	ProfileBasic        = model.ProfileBasic
	CustomProfile       = model.CustomProfile

	DefaultAnalysisParams = model.DefaultAnalysisParams

	WithBoundaryRefinement = ports.WithBoundaryRefinement
	WithZeroCrossWindow    = ports.WithZeroCrossWindow
	WithCrossfade          = ports.WithCrossfade
	WithFadeDuration       = ports.WithFadeDuration
	WithDither             = ports.WithDither
	WithTargetBitDepth     = ports.WithTargetBitDepth
	WithDitherSeed         = ports.WithDitherSeed
	WithQualityValidation  = ports.WithQualityValidation
	WithQualityProfile     = ports.WithQualityProfile
	WithAnalysisParams     = ports.WithAnalysisParams
	WithReference          = ports.WithReference
	WithSegmentTimeout     = ports.WithSegmentTimeout
)

// Config holds top-level configuration for the splitter
type Config struct {
	// Logger is an optional custom logger. The engine is silent if neither
	// logger field is set.
	Logger *logger.Logger

	// ZapLogger allows passing a *zap.Logger directly
	ZapLogger *zap.Logger

	// ProgressCh is an optional channel for receiving progress updates
	ProgressCh chan<- ProgressUpdate

	// Sink receives finished segments together with their verdicts
	Sink SegmentSink

	// Workers sets the number of analysis pool workers (default: 4)
	Workers int

	// QueueDepth bounds the analysis pool queue; submissions beyond it are
	// rejected with a BUSY error (default: Workers)
	QueueDepth int

	// PoolParams overrides analyzer parameters for pooled analysis jobs
	PoolParams AnalysisParams
}

// Splitter is the main entry point
type Splitter struct {
	service *usecase.SplitService
	log     *logger.Logger
}

// New creates a new Splitter with the given configuration
func New(cfg Config) (*Splitter, error) {
	log := cfg.Logger
	if log == nil && cfg.ZapLogger != nil {
		log = logger.FromZap(cfg.ZapLogger)
	}
	if log == nil {
		log = logger.Nop()
	}

	var reporter progress.Reporter = progress.NoopReporter{}
	if cfg.ProgressCh != nil {
		reporter = progress.NewChannelReporter(cfg.ProgressCh)
	}

	svc, err := usecase.NewSplitService(usecase.Config{
		Sink:       cfg.Sink,
		Reporter:   reporter,
		Logger:     log,
		Workers:    cfg.Workers,
		QueueDepth: cfg.QueueDepth,
		PoolParams: cfg.PoolParams,
	})
	if err != nil {
		return nil, err
	}

	return &Splitter{
		service: svc,
		log:     log,
	}, nil
}

// Plan validates segment time ranges against a buffer without processing.
// Every violation is collected into the returned error.
func (s *Splitter) Plan(buf *AudioBuffer, specs []TimeSpec) (*SplitPlan, error) {
	return s.service.Plan(buf, specs)
}

// Split cuts a buffer into the requested segments and runs the full
// pipeline over them
func (s *Splitter) Split(ctx context.Context, buf *AudioBuffer, specs []TimeSpec, opts ...ports.Option) (*SplitResult, error) {
	return s.service.Split(ctx, buf, specs, opts...)
}

// Analyze measures a buffer and returns its quality report
func (s *Splitter) Analyze(ctx context.Context, buf *AudioBuffer, opts ...ports.Option) (*QualityReport, error) {
	return s.service.Analyze(ctx, buf, opts...)
}

// Validate measures a buffer and gates it against a profile
func (s *Splitter) Validate(ctx context.Context, buf *AudioBuffer, profile QualityProfile, opts ...ports.Option) (*QualityReport, *Verdict, error) {
	return s.service.Validate(ctx, buf, profile, opts...)
}

// StartPool launches the analysis worker pool; it runs until Close or
// until ctx is canceled
func (s *Splitter) StartPool(ctx context.Context) {
	s.service.StartPool(ctx)
}

// SubmitAnalysis enqueues a standalone analysis job without blocking and
// returns its effective ID. A full queue yields a BUSY error.
func (s *Splitter) SubmitAnalysis(job AnalysisJob) (string, error) {
	return s.service.SubmitAnalysis(job)
}

// AnalysisResults returns the channel pooled analysis outcomes arrive on
func (s *Splitter) AnalysisResults() <-chan AnalysisResult {
	return s.service.AnalysisResults()
}

// ParseSegments turns "START-END:NAME" descriptors into time specs.
// Descriptor errors are collected, one per bad entry.
func (s *Splitter) ParseSegments(descriptors []string) ([]TimeSpec, error) {
	return planner.ParseDescriptors(descriptors)
}

// ParseTime parses "SS[.frac]", "MM:SS[.frac]" or "HH:MM:SS[.frac]" into a
// duration
func ParseTime(s string) (time.Duration, error) {
	return timecode.Parse(s)
}

// FormatTime renders a duration the way ParseTime reads it, at millisecond
// precision
func FormatTime(d time.Duration) string {
	return timecode.Format(d)
}

// Close shuts the analysis pool down, flushes the logger and releases
// resources
func (s *Splitter) Close() {
	s.service.Close()
	_ = s.log.Sync()
}
