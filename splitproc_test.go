package splitlab

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Skryldev/split-lab/internal/mocks"
	pkgerrors "github.com/Skryldev/split-lab/pkg/errors"
)

// facadeTone builds a mono sine buffer for facade-level tests
func facadeTone(freq float64, seconds, rate int) *AudioBuffer {
	samples := make([]float64, seconds*rate)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return &AudioBuffer{Samples: samples, SampleRate: rate, Channels: 1, Format: FormatFloat64}
}

func TestNew(t *testing.T) {
	t.Run("zero config", func(t *testing.T) {
		s, err := New(Config{})
		require.NoError(t, err)
		require.NotNil(t, s)
		s.Close()
	})

	t.Run("zap logger", func(t *testing.T) {
		s, err := New(Config{ZapLogger: zap.NewNop()})
		require.NoError(t, err)
		require.NotNil(t, s)
		s.Close()
	})

	t.Run("invalid worker count", func(t *testing.T) {
		s, err := New(Config{Workers: -1})
		require.Error(t, err)
		assert.Nil(t, s)
		assert.Contains(t, err.Error(), "invalid service config")
	})
}

func TestSplitterSplit(t *testing.T) {
	sink := &mocks.MemorySink{}
	progressCh := make(chan ProgressUpdate, 64)

	s, err := New(Config{Sink: sink, ProgressCh: progressCh})
	require.NoError(t, err)
	defer s.Close()

	specs, err := s.ParseSegments([]string{"0:00-0:01:first", "0:01-0:02:second"})
	require.NoError(t, err)

	buf := facadeTone(200, 2, 8000)
	result, err := s.Split(context.Background(), buf, specs,
		WithQualityValidation(false),
	)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.JobID)
	require.Len(t, result.Segments, 2)

	first := result.Segments[0].Buffer
	second := result.Segments[1].Buffer
	assert.Equal(t, "first", first.Name)
	assert.Equal(t, "second", second.Name)
	// the shared cut snaps to a zero crossing of the 200 Hz tone near
	// frame 8000; no frames are lost either way
	assert.InDelta(t, 8000, first.Frames(), 1)
	assert.Equal(t, 16000, first.Frames()+second.Frames())

	assert.Equal(t, []string{"first", "second"}, sink.Names())
	for _, got := range sink.Segments() {
		assert.Nil(t, got.Verdict)
	}

	var stages []ProgressStage
	for len(progressCh) > 0 {
		u := <-progressCh
		assert.Equal(t, result.JobID, u.JobID)
		stages = append(stages, u.Stage)
	}
	assert.Equal(t, []ProgressStage{
		StageRefine, StageExtract, StageCrossfade, StageDither,
		StageAnalyze, StageGate, StageDone,
	}, stages)
}

func TestSplitterPlan(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)
	defer s.Close()

	buf := facadeTone(200, 2, 8000)
	plan, err := s.Plan(buf, []TimeSpec{{Start: "0", End: "1", Name: "a"}})
	require.NoError(t, err)
	require.Len(t, plan.Segments, 1)
	assert.Equal(t, 8000, plan.Segments[0].EndFrame)

	_, err = s.Plan(buf, []TimeSpec{{Start: "1", End: "0:60", Name: "b"}})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.ErrCodeTimeFormat))
}

func TestSplitterAnalyze(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)
	defer s.Close()

	report, err := s.Analyze(context.Background(), facadeTone(200, 1, 8000))
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, "spectral", report.Method)
	assert.LessOrEqual(t, report.THDNDB, -100.0)
	assert.GreaterOrEqual(t, report.SNRDB, 100.0)
}

func TestSplitterValidate(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)
	defer s.Close()

	report, verdict, err := s.Validate(context.Background(), facadeTone(200, 1, 8000), ProfileStudio)
	require.NoError(t, err)
	require.NotNil(t, report)
	require.NotNil(t, verdict)

	assert.Equal(t, "STUDIO", verdict.Profile)
	assert.Equal(t, report.Level, verdict.Level)
	// a steady sine has almost no peak-to-RMS headroom, so the studio
	// dynamic range floor rejects it
	assert.False(t, verdict.Passed)
}

func TestSplitterPool(t *testing.T) {
	s, err := New(Config{Workers: 1, QueueDepth: 2, PoolParams: AnalysisParams{FrameSize: 1024}})
	require.NoError(t, err)

	id, err := s.SubmitAnalysis(AnalysisJob{Buffer: facadeTone(250, 1, 8000), Profile: ProfileBasic})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	s.StartPool(context.Background())

	res, ok := <-s.AnalysisResults()
	require.True(t, ok)
	assert.Equal(t, id, res.JobID)
	require.NoError(t, res.Err)
	require.NotNil(t, res.Report)
	require.NotNil(t, res.Verdict)
	assert.Equal(t, "BASIC", res.Verdict.Profile)

	s.Close()
	_, ok = <-s.AnalysisResults()
	assert.False(t, ok)

	_, err = s.SubmitAnalysis(AnalysisJob{Buffer: facadeTone(250, 1, 8000)})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.ErrCodeValidation))
}

func TestSplitterParseSegments(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)
	defer s.Close()

	specs, err := s.ParseSegments([]string{"0:00-0:05:intro", "0:05-1:00:body"})
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, TimeSpec{Start: "0:00", End: "0:05", Name: "intro"}, specs[0])

	_, err = s.ParseSegments([]string{"0:00-0:05:intro", "nonsense", "0:05-0:10:"})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.ErrCodeTimeFormat))
}

func TestTimeHelpers(t *testing.T) {
	d, err := ParseTime("1:02.5")
	require.NoError(t, err)
	assert.Equal(t, 62*time.Second+500*time.Millisecond, d)

	_, err = ParseTime("not a time")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.ErrCodeTimeFormat))

	cases := []struct {
		dur  time.Duration
		text string
	}{
		{0, "0:00"},
		{90 * time.Second, "1:30"},
		{62*time.Second + 500*time.Millisecond, "1:02.500"},
		{3661*time.Second + 250*time.Millisecond, "1:01:01.250"},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.text, FormatTime(tc.dur))
			back, err := ParseTime(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.dur, back)
		})
	}
}
