package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Skryldev/split-lab/domain/model"
	"github.com/Skryldev/split-lab/dsp"
	pkgerrors "github.com/Skryldev/split-lab/pkg/errors"
	"github.com/Skryldev/split-lab/pkg/logger"
	"github.com/Skryldev/split-lab/pkg/progress"
	"github.com/Skryldev/split-lab/quality"
)

// Stage represents a single pipeline stage function
type Stage func(ctx context.Context, job *Job) error

// Job holds the state of one split request as it moves through the stages.
// Analysis references are per-segment slices of a caller-supplied reference
// buffer, or pre-quantization clones when there is none; segments with
// neither are analyzed blind.
type Job struct {
	ID       string
	Buffer   *model.AudioBuffer
	Plan     *model.SplitPlan
	Options  *model.ProcessingOptions
	Reporter progress.Reporter
	Log      *logger.Logger

	mono    []float64
	refs    []*model.AudioBuffer
	outputs []*model.SegmentBuffer
	results []model.SegmentResult
}

// Pipeline orchestrates the split stages: refine, extract, crossfade,
// dither, analyze, gate
type Pipeline struct {
	stages []namedStage
	log    *logger.Logger
}

type namedStage struct {
	name  progress.Stage
	stage Stage
}

// NewPipeline creates a split pipeline
func NewPipeline(log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	p := &Pipeline{log: log.Named("pipeline")}
	p.stages = []namedStage{
		{progress.StageRefine, p.refineStage},
		{progress.StageExtract, p.extractStage},
		{progress.StageCrossfade, p.crossfadeStage},
		{progress.StageDither, p.ditherStage},
		{progress.StageAnalyze, p.analyzeStage},
		{progress.StageGate, p.gateStage},
	}
	return p
}

// Run executes the full pipeline for a job. Per-segment analysis failures
// land in the segment results and do not abort the run; a non-nil error
// means the run itself stopped (cancellation, timeout on the whole job).
// The partial result built so far is returned alongside such an error.
func (p *Pipeline) Run(ctx context.Context, job *Job) (*model.SplitResult, error) {
	start := time.Now()
	if job.Log == nil {
		job.Log = p.log
	}
	var runErr error

	for _, s := range p.stages {
		if err := ctx.Err(); err != nil {
			runErr = pkgerrors.NewCanceledError("split", err)
			break
		}

		stageStart := time.Now()
		err := s.stage(ctx, job)
		elapsed := time.Since(stageStart)

		job.Log.Debug("stage finished",
			zap.String("stage", string(s.name)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		job.report(s.name, "", stagePercent(s.name), "stage finished", elapsed)

		if err != nil {
			runErr = err
			break
		}
	}

	if runErr == nil {
		job.report(progress.StageDone, "", 100, "done", time.Since(start))
	}

	return &model.SplitResult{
		JobID:       job.ID,
		Segments:    job.results,
		Duration:    time.Since(start),
		ProcessedAt: time.Now(),
	}, runErr
}

// refineStage nudges every interior cut point to the nearest zero crossing
// of the mono-summed signal. The buffer's absolute start and end are not
// cuts and stay fixed; a cut with no crossing in its window keeps its
// nominal position. Each search window is additionally capped at half the
// distance to the neighboring cuts so refined cuts can never cross or
// produce an empty segment.
func (p *Pipeline) refineStage(_ context.Context, job *Job) error {
	job.mono = job.Buffer.MonoSum()
	if !job.Options.RefineBoundaries {
		return nil
	}

	window := int(job.Options.ZeroCrossWindow.Seconds() * float64(job.Plan.SampleRate))
	if window <= 0 {
		return nil
	}

	cuts := make([]int, 0, 2*len(job.Plan.Segments))
	for _, seg := range job.Plan.Segments {
		cuts = append(cuts, seg.StartFrame, seg.EndFrame)
	}
	cuts = dedupeSorted(cuts)

	refined := make(map[int]int, len(cuts))
	for i, c := range cuts {
		refined[c] = c
		if c <= 0 || c >= job.Plan.TotalFrames {
			continue
		}
		w := window
		if i > 0 {
			if lim := (c - cuts[i-1] - 1) / 2; w > lim {
				w = lim
			}
		}
		if i+1 < len(cuts) {
			if lim := (cuts[i+1] - c - 1) / 2; w > lim {
				w = lim
			}
		}
		if w <= 0 {
			continue
		}
		refined[c] = dsp.RefineCut(job.mono, c, w)
	}

	// the caller's plan stays untouched; the job continues on a refined copy
	segs := make([]model.PlannedSegment, len(job.Plan.Segments))
	copy(segs, job.Plan.Segments)

	moved := 0
	for i := range segs {
		newStart := refined[segs[i].StartFrame]
		newEnd := refined[segs[i].EndFrame]
		if newStart != segs[i].StartFrame || newEnd != segs[i].EndFrame {
			moved++
		}
		segs[i].StartFrame = newStart
		segs[i].EndFrame = newEnd
	}
	job.Plan = &model.SplitPlan{
		Segments:    segs,
		SampleRate:  job.Plan.SampleRate,
		TotalFrames: job.Plan.TotalFrames,
	}

	if moved > 0 {
		job.Log.Debug("boundaries refined",
			zap.Int("segments_moved", moved),
			zap.Int("window_frames", window))
	}
	return nil
}

// extractStage copies each planned range out of the source buffer. A
// caller-supplied reference is sliced along the same cuts, so every segment
// is later compared against its own aligned region; segments past the end
// of a short reference are analyzed blind.
func (p *Pipeline) extractStage(_ context.Context, job *Job) error {
	n := len(job.Plan.Segments)
	job.outputs = make([]*model.SegmentBuffer, n)
	job.refs = make([]*model.AudioBuffer, n)
	job.results = make([]model.SegmentResult, n)

	for i, seg := range job.Plan.Segments {
		out := &model.SegmentBuffer{
			AudioBuffer: *job.Buffer.Slice(seg.StartFrame, seg.EndFrame),
			Name:        seg.Name,
		}
		job.outputs[i] = out
		job.results[i] = model.SegmentResult{Name: seg.Name, Buffer: out}

		if ref := job.Options.Reference; ref != nil {
			hi := seg.EndFrame
			if frames := ref.Frames(); hi > frames {
				hi = frames
			}
			if seg.StartFrame < hi {
				job.refs[i] = ref.Slice(seg.StartFrame, hi)
			}
		}
	}
	return nil
}

// crossfadeStage applies the equal-power fade pair at every shared cut.
// Edges of the plan and gaps between non-adjacent segments are left alone.
func (p *Pipeline) crossfadeStage(_ context.Context, job *Job) error {
	if !job.Options.CrossfadeEnabled {
		return nil
	}

	fadeFrames := int(job.Options.FadeDuration.Seconds() * float64(job.Plan.SampleRate))
	if fadeFrames < 2 {
		return nil
	}

	for i := 0; i+1 < len(job.outputs); i++ {
		if !job.Plan.Adjacent(i) {
			continue
		}
		applied := dsp.ApplyCrossfade(&job.outputs[i].AudioBuffer, &job.outputs[i+1].AudioBuffer, fadeFrames)
		if applied > 0 {
			job.Log.Debug("crossfade applied",
				zap.String("out", job.outputs[i].Name),
				zap.String("in", job.outputs[i+1].Name),
				zap.Int("frames", applied))
		}
	}
	return nil
}

// ditherStage requantizes segments to the target bit depth, with TPDF
// dither unless it was switched off. No target depth means no work. Unless
// the caller already supplied a reference, the segment is cloned before
// quantizing, so the quality metrics later measure exactly the noise added
// here.
func (p *Pipeline) ditherStage(_ context.Context, job *Job) error {
	bits := job.Options.TargetBitDepth
	if bits <= 0 {
		return nil
	}

	for i, out := range job.outputs {
		var ref *model.AudioBuffer
		if job.Options.ValidateQuality && job.refs[i] == nil {
			ref = out.AudioBuffer.Clone()
		}

		var applied bool
		if job.Options.DitherEnabled {
			seed := job.Options.DitherSeed
			if seed != 0 {
				// distinct noise per segment, still reproducible
				seed += uint64(i) + 1
			}
			applied = dsp.DitherTo(&out.AudioBuffer, bits, seed)
		} else {
			applied = dsp.Requantize(&out.AudioBuffer, bits)
		}
		if applied {
			if ref != nil {
				job.refs[i] = ref
			}
			job.report(progress.StageDither, out.Name, stagePercent(progress.StageDither), "requantized", 0)
		}
	}
	return nil
}

// analyzeStage measures each segment. Cancellation is checked between
// segments: remaining ones are marked canceled and the stage returns the
// wrapped context error. A failed analysis is recorded on its segment only.
func (p *Pipeline) analyzeStage(ctx context.Context, job *Job) error {
	if !job.Options.ValidateQuality {
		return nil
	}

	analyzer := quality.NewAnalyzer(job.Options.Analysis, job.Log)

	for i, out := range job.outputs {
		if err := ctx.Err(); err != nil {
			canceled := pkgerrors.NewCanceledError("analysis", err)
			for j := i; j < len(job.results); j++ {
				job.results[j].Err = canceled
			}
			return canceled
		}

		segCtx := ctx
		cancel := context.CancelFunc(func() {})
		if job.Options.SegmentTimeout > 0 {
			segCtx, cancel = context.WithTimeout(ctx, job.Options.SegmentTimeout)
		}

		segStart := time.Now()
		report, err := analyzer.Analyze(segCtx, &out.AudioBuffer, job.refs[i])
		cancel()
		job.results[i].Elapsed = time.Since(segStart)

		if err != nil {
			// segCtx is already canceled here, so the cause is read off the
			// error chain: a dead parent context is a cancellation, a
			// DeadlineExceeded with the parent alive is this segment's
			// deadline, and a plain analysis failure keeps its own code.
			switch {
			case ctx.Err() != nil && pkgerrors.Is(err, ctx.Err()):
				err = pkgerrors.NewCanceledError("segment analysis", err)
			case pkgerrors.Is(err, context.DeadlineExceeded):
				err = pkgerrors.NewTimeoutError("segment analysis", err)
			}
			job.results[i].Err = err
			job.Log.Warn("segment analysis failed",
				zap.String("segment", out.Name),
				zap.Error(err))
			continue
		}

		job.results[i].Report = report
		job.report(progress.StageAnalyze, out.Name,
			analyzePercent(i, len(job.outputs)), "segment analyzed", job.results[i].Elapsed)
	}
	return nil
}

// gateStage turns reports into verdicts against the requested profile.
// Segments whose analysis failed get the FAILED verdict; nothing here is
// an error.
func (p *Pipeline) gateStage(_ context.Context, job *Job) error {
	if !job.Options.ValidateQuality {
		return nil
	}

	for i := range job.results {
		res := &job.results[i]
		if res.Report == nil {
			if res.Err != nil && pkgerrors.HasCode(res.Err, pkgerrors.ErrCodeAnalysis) {
				v := quality.ClassifyFailure(job.Options.Profile)
				res.Verdict = &v
			}
			continue
		}
		v := quality.Classify(res.Report, job.Options.Profile)
		res.Verdict = &v

		if !v.Passed {
			job.Log.Info("segment below profile",
				zap.String("segment", res.Name),
				zap.String("profile", v.Profile),
				zap.String("level", v.Level.String()),
				zap.Int("failing_metrics", len(v.Failures)))
		}
	}
	return nil
}

func dedupeSorted(xs []int) []int {
	if len(xs) == 0 {
		return xs
	}
	out := xs[:0]
	last := xs[0] - 1
	for _, x := range xs {
		if x != last {
			out = append(out, x)
			last = x
		}
	}
	return out
}

func stagePercent(s progress.Stage) float64 {
	switch s {
	case progress.StageRefine:
		return 10
	case progress.StageExtract:
		return 30
	case progress.StageCrossfade:
		return 45
	case progress.StageDither:
		return 55
	case progress.StageAnalyze:
		return 90
	case progress.StageGate:
		return 95
	default:
		return 0
	}
}

func analyzePercent(i, n int) float64 {
	if n == 0 {
		return 90
	}
	return 55 + 35*float64(i+1)/float64(n)
}

// report is a helper to emit progress updates
func (j *Job) report(stage progress.Stage, segment string, percent float64, msg string, elapsed time.Duration) {
	if j.Reporter == nil {
		return
	}
	j.Reporter.Report(progress.Update{
		JobID:     j.ID,
		Segment:   segment,
		Stage:     stage,
		Percent:   percent,
		Message:   msg,
		Elapsed:   elapsed,
		Timestamp: time.Now(),
	})
}
