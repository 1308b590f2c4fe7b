package usecase

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Skryldev/split-lab/application/pipeline"
	"github.com/Skryldev/split-lab/application/planner"
	"github.com/Skryldev/split-lab/domain/model"
	"github.com/Skryldev/split-lab/domain/ports"
	pkgerrors "github.com/Skryldev/split-lab/pkg/errors"
	"github.com/Skryldev/split-lab/pkg/logger"
	"github.com/Skryldev/split-lab/pkg/progress"
	"github.com/Skryldev/split-lab/quality"
)

// SplitService is the main application service implementing ports.Splitter
// and ports.Analyzer
type SplitService struct {
	pipeline *pipeline.Pipeline
	pool     *pipeline.AnalysisPool
	sink     ports.SegmentSink
	reporter progress.Reporter
	log      *logger.Logger
	validate *validator.Validate
}

// Config holds SplitService configuration. All fields are optional; zero
// values select library defaults.
type Config struct {
	Sink       ports.SegmentSink
	Reporter   progress.Reporter
	Logger     *logger.Logger
	Workers    int `validate:"gte=0,lte=64"`
	QueueDepth int `validate:"gte=0,lte=4096"`

	// PoolParams configures the analyzer used for pooled analysis jobs.
	// Zero-value fields fall back to the analyzer defaults.
	PoolParams model.AnalysisParams
}

// NewSplitService creates a new SplitService
func NewSplitService(cfg Config) (*SplitService, error) {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid service config: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	reporter := cfg.Reporter
	if reporter == nil {
		reporter = progress.NoopReporter{}
	}

	analyzer := quality.NewAnalyzer(cfg.PoolParams, log)

	return &SplitService{
		pipeline: pipeline.NewPipeline(log),
		pool:     pipeline.NewAnalysisPool(analyzer, cfg.Workers, cfg.QueueDepth, log),
		sink:     cfg.Sink,
		reporter: reporter,
		log:      log,
		validate: validate,
	}, nil
}

// Plan validates the requested time ranges against a buffer without touching
// any samples. All violations are collected into the returned error.
func (s *SplitService) Plan(buf *model.AudioBuffer, specs []model.TimeSpec) (*model.SplitPlan, error) {
	return planner.Build(buf, specs)
}

// Split runs the full pipeline for one buffer. On cancellation or timeout
// the partial result built so far is returned alongside the error;
// per-segment analysis failures never fail the call.
func (s *SplitService) Split(ctx context.Context, buf *model.AudioBuffer, specs []model.TimeSpec, opts ...ports.Option) (*model.SplitResult, error) {
	options := model.DefaultProcessingOptions()
	for _, o := range opts {
		o(options)
	}
	if err := s.validateOptions(options); err != nil {
		return nil, err
	}

	plan, err := planner.Build(buf, specs)
	if err != nil {
		return nil, err
	}

	jobID := uuid.NewString()
	s.log.Info("starting split",
		zap.String("job_id", jobID),
		zap.Int("segments", len(plan.Segments)),
		zap.Int("sample_rate", plan.SampleRate),
		zap.String("profile", options.Profile.String()),
	)

	job := &pipeline.Job{
		ID:       jobID,
		Buffer:   buf,
		Plan:     plan,
		Options:  options,
		Reporter: s.reporter,
		Log:      s.log.With(zap.String("job_id", jobID)),
	}

	result, runErr := s.pipeline.Run(ctx, job)
	deliverErr := s.deliver(ctx, result)

	if err := multierr.Append(runErr, deliverErr); err != nil {
		s.log.Error("split finished with errors",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
		return result, err
	}

	s.log.Info("split completed",
		zap.String("job_id", jobID),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// deliver hands finished segments to the configured sink. Segments that
// errored are withheld; sink failures are collected, not fatal to siblings.
func (s *SplitService) deliver(ctx context.Context, result *model.SplitResult) error {
	if s.sink == nil || result == nil {
		return nil
	}

	var errs error
	for i := range result.Segments {
		seg := &result.Segments[i]
		if seg.Err != nil || seg.Buffer == nil {
			continue
		}
		if err := s.sink.Consume(ctx, seg.Buffer, seg.Verdict); err != nil {
			s.log.Warn("sink rejected segment",
				zap.String("segment", seg.Name),
				zap.Error(err),
			)
			errs = multierr.Append(errs, fmt.Errorf("deliver %s: %w", seg.Name, err))
		}
	}
	return errs
}

// Analyze measures a buffer and returns its quality report
func (s *SplitService) Analyze(ctx context.Context, buf *model.AudioBuffer, opts ...ports.Option) (*model.QualityReport, error) {
	options := model.DefaultProcessingOptions()
	for _, o := range opts {
		o(options)
	}
	if err := s.validate.Struct(options.Analysis); err != nil {
		return nil, pkgerrors.NewValidationError("analysis", nil, err.Error())
	}

	analyzer := quality.NewAnalyzer(options.Analysis, s.log)
	return analyzer.Analyze(ctx, buf, options.Reference)
}

// Validate measures a buffer and gates it against a profile. A failed
// analysis yields the FAILED verdict together with the analysis error.
func (s *SplitService) Validate(ctx context.Context, buf *model.AudioBuffer, profile model.QualityProfile, opts ...ports.Option) (*model.QualityReport, *model.Verdict, error) {
	if !profile.Valid() {
		return nil, nil, pkgerrors.NewValidationError("profile", profile.String(), "quality profile must be one of the built-in tiers or CUSTOM")
	}
	if profile.Custom() {
		if err := s.validate.Struct(profile.Thresholds()); err != nil {
			return nil, nil, pkgerrors.NewValidationError("profile", profile.String(), err.Error())
		}
	}

	report, err := s.Analyze(ctx, buf, opts...)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.ErrCodeAnalysis) {
			v := quality.ClassifyFailure(profile)
			return nil, &v, err
		}
		return nil, nil, err
	}

	v := quality.Classify(report, profile)
	return report, &v, nil
}

// StartPool launches the analysis worker pool
func (s *SplitService) StartPool(ctx context.Context) {
	s.pool.Start(ctx)
}

// SubmitAnalysis enqueues a standalone analysis job on the pool without
// blocking. An empty job ID is replaced with a generated one; the effective
// ID is returned so the caller can correlate the result. A full queue
// yields a BUSY error.
func (s *SplitService) SubmitAnalysis(job model.AnalysisJob) (string, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Profile.Custom() {
		if err := s.validate.Struct(job.Profile.Thresholds()); err != nil {
			return "", pkgerrors.NewValidationError("profile", job.Profile.String(), err.Error())
		}
	}
	if err := s.pool.Submit(job); err != nil {
		return "", err
	}
	return job.ID, nil
}

// AnalysisResults returns the channel pooled analysis outcomes arrive on
func (s *SplitService) AnalysisResults() <-chan model.AnalysisResult {
	return s.pool.Results()
}

// Close shuts the analysis pool down and waits for accepted jobs to finish
func (s *SplitService) Close() {
	s.pool.Close()
}

func (s *SplitService) validateOptions(o *model.ProcessingOptions) error {
	switch o.TargetBitDepth {
	case 0, 16, 24, 32:
	default:
		return pkgerrors.NewSampleFormatError(fmt.Sprintf("%d-bit pcm", o.TargetBitDepth))
	}

	if !o.ValidateQuality {
		return nil
	}
	if !o.Profile.Valid() {
		return pkgerrors.NewValidationError("profile", o.Profile.String(), "quality profile must be one of the built-in tiers or CUSTOM")
	}
	if o.Profile.Custom() {
		if err := s.validate.Struct(o.Profile.Thresholds()); err != nil {
			return pkgerrors.NewValidationError("profile", o.Profile.String(), err.Error())
		}
	}
	if err := s.validate.Struct(o.Analysis); err != nil {
		return pkgerrors.NewValidationError("analysis", nil, err.Error())
	}
	return nil
}
