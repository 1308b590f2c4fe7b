package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os/signal"
	"syscall"
	"time"

	splitlab "github.com/Skryldev/split-lab"
)

func main() {
	// ── Graceful shutdown via signal ──────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Progress channel ──────────────────────────────────────────────────
	progressCh := make(chan splitlab.ProgressUpdate, 32)
	go func() {
		for upd := range progressCh {
			fmt.Printf("[%s] stage=%-10s %.0f%%  %s\n",
				upd.JobID[:8], upd.Stage, upd.Percent, upd.Message)
		}
	}()

	// ── Create splitter ───────────────────────────────────────────────────
	splitter, err := splitlab.New(splitlab.Config{
		Workers:    4,
		ProgressCh: progressCh,
	})
	if err != nil {
		log.Fatalf("failed to create splitter: %v", err)
	}
	defer func() {
		close(progressCh)
		splitter.Close()
	}()

	// ── Example 1: Split a buffer into named segments ────────────────────
	fmt.Println("\n── Example 1: Split Into Segments ──")
	splitExample(ctx, splitter)

	// ── Example 2: Pooled analysis ───────────────────────────────────────
	fmt.Println("\n── Example 2: Pooled Analysis ──")
	poolExample(ctx, splitter)

	// ── Example 3: Validate against a profile ────────────────────────────
	fmt.Println("\n── Example 3: Validate Against STUDIO ──")
	validateExample(ctx, splitter)
}

// testTone synthesizes a stereo sine with a faint noise floor so the
// quality metrics have something to measure.
func testTone(seconds float64, rate int) *splitlab.AudioBuffer {
	frames := int(seconds * float64(rate))
	samples := make([]float64, 2*frames)
	rng := rand.New(rand.NewPCG(7, 13))
	for i := 0; i < frames; i++ {
		s := 0.8*math.Sin(2*math.Pi*440*float64(i)/float64(rate)) +
			0.0001*(rng.Float64()*2-1)
		samples[2*i] = s
		samples[2*i+1] = s
	}
	return &splitlab.AudioBuffer{
		Samples:    samples,
		SampleRate: rate,
		Channels:   2,
		Format:     splitlab.FormatFloat64,
	}
}

func splitExample(ctx context.Context, s *splitlab.Splitter) {
	buf := testTone(30, 44_100)

	specs, err := s.ParseSegments([]string{
		"0:00-0:10:intro",
		"0:10-0:20:verse",
		"0:20-0:30:outro",
	})
	if err != nil {
		fmt.Printf("bad descriptors: %v\n", err)
		return
	}

	result, err := s.Split(ctx, buf, specs,
		splitlab.WithQualityProfile(splitlab.ProfileStandard),
		splitlab.WithTargetBitDepth(16),
		splitlab.WithDitherSeed(42),
		splitlab.WithFadeDuration(10*time.Millisecond),
	)
	if err != nil {
		fmt.Printf("split failed: %v\n", err)
		return
	}

	fmt.Printf("Done! took=%s segments=%d\n", result.Duration, len(result.Segments))
	for _, seg := range result.Segments {
		if seg.Err != nil {
			fmt.Printf("  %-8s FAILED: %v\n", seg.Name, seg.Err)
			continue
		}
		fmt.Printf("  %-8s frames=%d level=%s passed=%v snr=%.1fdB thdn=%.1fdB\n",
			seg.Name,
			seg.Buffer.Frames(),
			seg.Verdict.Level,
			seg.Verdict.Passed,
			seg.Report.SNRDB,
			seg.Report.THDNDB,
		)
	}
}

func poolExample(ctx context.Context, s *splitlab.Splitter) {
	s.StartPool(ctx)

	jobs := 3
	for i := 0; i < jobs; i++ {
		buf := testTone(2, 48_000)
		id, err := s.SubmitAnalysis(splitlab.AnalysisJob{
			Buffer:  buf,
			Profile: splitlab.ProfileBasic,
		})
		if err != nil {
			fmt.Printf("submit rejected: %v\n", err)
			jobs--
			continue
		}
		fmt.Printf("submitted %s\n", id[:8])
	}

	for i := 0; i < jobs; i++ {
		select {
		case res := <-s.AnalysisResults():
			if res.Err != nil {
				fmt.Printf("[%s] FAILED: %v\n", res.JobID[:8], res.Err)
				continue
			}
			fmt.Printf("[%s] OK level=%s score=%.0f\n",
				res.JobID[:8], res.Verdict.Level, res.Report.Score)
		case <-ctx.Done():
			return
		}
	}
}

func validateExample(ctx context.Context, s *splitlab.Splitter) {
	buf := testTone(5, 96_000)

	valCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	report, verdict, err := s.Validate(valCtx, buf, splitlab.ProfileStudio)
	if err != nil {
		fmt.Printf("validation failed: %v\n", err)
		return
	}

	fmt.Printf("Validation result:\n")
	fmt.Printf("  Level       : %s\n", verdict.Level)
	fmt.Printf("  Passed      : %v\n", verdict.Passed)
	fmt.Printf("  SNR         : %.1f dB\n", report.SNRDB)
	fmt.Printf("  THD+N       : %.1f dB\n", report.THDNDB)
	fmt.Printf("  DynamicRange: %.1f %%\n", report.DynamicRangePct)
	fmt.Printf("  Peak        : %.1f dBFS\n", report.PeakDBFS)
	fmt.Printf("  Clipping    : %v\n", report.ClippingDetected)
	for _, f := range verdict.Failures {
		fmt.Printf("  miss %-14s measured=%.1f threshold=%.1f\n",
			f.Metric, f.Value, f.Threshold)
	}
}
