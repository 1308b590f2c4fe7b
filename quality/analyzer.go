// Package quality measures segment buffers (THD+N, SNR, dynamic range,
// levels, clipping, DC offset, aliasing) and gates the results against a
// quality profile.
package quality

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"github.com/Skryldev/split-lab/domain/model"
	"github.com/Skryldev/split-lab/dsp"
	pkgerrors "github.com/Skryldev/split-lab/pkg/errors"
	"github.com/Skryldev/split-lab/pkg/fallback"
	"github.com/Skryldev/split-lab/pkg/logger"
)

const (
	// snrCapDB bounds SNR when the noise estimate vanishes; thdnFloorDB
	// mirrors it on the distortion side.
	snrCapDB    = 120.0
	thdnFloorDB = -120.0

	// fundLobeBins is how many bins on each side of the fundamental peak
	// count as the fundamental (the Hann main lobe plus leakage margin);
	// dcLobeBins does the same for the DC component.
	fundLobeBins = 3
	dcLobeBins   = 2
)

// Analyzer measures buffers with explicit, caller-supplied parameters.
// Methods are safe for concurrent use.
type Analyzer struct {
	params model.AnalysisParams
	log    *logger.Logger
}

// NewAnalyzer builds an analyzer; zero-valued parameter fields fall back to
// the defaults so a partially filled AnalysisParams stays usable.
func NewAnalyzer(params model.AnalysisParams, log *logger.Logger) *Analyzer {
	if log == nil {
		log = logger.Nop()
	}
	def := model.DefaultAnalysisParams()
	if params.FrameSize <= 0 {
		params.FrameSize = def.FrameSize
	}
	if params.ClipThreshold <= 0 {
		params.ClipThreshold = def.ClipThreshold
	}
	if params.ClipMinRun <= 0 {
		params.ClipMinRun = def.ClipMinRun
	}
	if params.DCOffsetLimit <= 0 {
		params.DCOffsetLimit = def.DCOffsetLimit
	}
	if params.AliasBandRatio <= 0 || params.AliasBandRatio >= 1 {
		params.AliasBandRatio = def.AliasBandRatio
	}
	if params.AliasEnergyRatio <= 0 {
		params.AliasEnergyRatio = def.AliasEnergyRatio
	}
	return &Analyzer{params: params, log: log.Named("analyzer")}
}

// metricSet is the principal metric triple one estimation strategy yields
type metricSet struct {
	thdn float64
	snr  float64
	dr   float64
}

// Analyze measures the buffer and returns a complete report. A non-nil ref
// switches THD+N, SNR and dynamic range to reference comparison, with blind
// spectral estimation as the fallback. All-silent buffers cannot be
// measured and yield an AnalysisFailure.
func (a *Analyzer) Analyze(ctx context.Context, buf *model.AudioBuffer, ref *model.AudioBuffer) (*model.QualityReport, error) {
	started := time.Now()

	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	peak := dsp.Peak(buf.Samples)
	if peak == 0 {
		return nil, pkgerrors.NewAnalysisError("buffer is silent", nil)
	}
	rms := dsp.RMS(buf.Samples)
	mono := buf.MonoSum()
	power := a.spectrum(mono)

	strategies := make([]fallback.Strategy[metricSet], 0, 2)
	if ref != nil {
		strategies = append(strategies, fallback.Strategy[metricSet]{
			Name: "reference",
			Run: func(context.Context) (metricSet, error) {
				return referenceMetrics(buf, ref, peak, rms)
			},
		})
	}
	strategies = append(strategies, fallback.Strategy[metricSet]{
		Name: "spectral",
		Run: func(context.Context) (metricSet, error) {
			return spectralMetrics(power, peak, rms)
		},
	})

	metrics, method, err := fallback.Do(ctx, strategies...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, pkgerrors.NewAnalysisError("no estimation strategy succeeded", err)
	}

	report := &model.QualityReport{
		THDNDB:          metrics.thdn,
		SNRDB:           metrics.snr,
		DynamicRangePct: metrics.dr,
		PeakDBFS:        dsp.DB(peak),
		RMSDBFS:         dsp.DB(rms),
		CrestFactorDB:   dsp.DB(peak) - dsp.DB(rms),
		DCOffset:        dsp.Mean(mono),
		DurationSeconds: buf.Duration().Seconds(),
		SampleRate:      buf.SampleRate,
		Channels:        buf.Channels,
		Method:          method,
	}
	report.DCOffsetExceeded = abs(report.DCOffset) > a.params.DCOffsetLimit
	report.ClippedRuns = a.clippedRuns(buf)
	report.ClippingDetected = report.ClippedRuns > 0
	report.AliasingSuspected = a.aliasingSuspected(power)
	report.Level, report.Score = Grade(report)
	report.AnalysisMillis = time.Since(started).Milliseconds()

	a.log.Debug("analysis complete",
		zap.String("method", method),
		zap.Float64("thdn_db", report.THDNDB),
		zap.Float64("snr_db", report.SNRDB),
		zap.Float64("dynamic_range_pct", report.DynamicRangePct),
		zap.String("level", report.Level.String()),
		zap.Int64("elapsed_ms", report.AnalysisMillis))

	return report, nil
}

// spectrum returns the power spectrum of one windowed frame centered in the
// mono signal, or nil when the signal is too short to transform.
func (a *Analyzer) spectrum(mono []float64) []float64 {
	n := a.params.FrameSize
	if n > len(mono) {
		n = len(mono)
	}
	if n < 16 {
		return nil
	}

	start := (len(mono) - n) / 2
	frame := make([]float64, n)
	copy(frame, mono[start:start+n])

	win := a.params.Window
	if win == nil {
		win = window.Hann
	}
	win(frame)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, frame)

	power := make([]float64, len(coeffs))
	for k, c := range coeffs {
		power[k] = real(c)*real(c) + imag(c)*imag(c)
	}
	return power
}

// spectralMetrics estimates the metric triple from the power spectrum: the
// strongest non-DC lobe is the fundamental, everything else is distortion
// plus noise.
func spectralMetrics(power []float64, peak, rms float64) (metricSet, error) {
	if power == nil {
		return metricSet{}, pkgerrors.NewAnalysisError("buffer too short for spectral analysis", nil)
	}

	total := 0.0
	for _, p := range power {
		total += p
	}

	fundBin := 0
	for k := dcLobeBins + 1; k < len(power); k++ {
		if fundBin == 0 || power[k] > power[fundBin] {
			fundBin = k
		}
	}
	if fundBin == 0 || power[fundBin] == 0 {
		return metricSet{}, pkgerrors.NewAnalysisError("no spectral content above DC", nil)
	}

	dcEnergy := 0.0
	for k := 0; k <= dcLobeBins && k < len(power); k++ {
		dcEnergy += power[k]
	}
	fundEnergy := 0.0
	for k := max(dcLobeBins+1, fundBin-fundLobeBins); k <= fundBin+fundLobeBins && k < len(power); k++ {
		fundEnergy += power[k]
	}

	residual := total - dcEnergy - fundEnergy
	if residual < 0 {
		residual = 0
	}

	m := metricSet{dr: blindDynamicRange(peak, rms)}
	if residual == 0 {
		m.thdn = thdnFloorDB
		m.snr = snrCapDB
		return m, nil
	}
	m.thdn = clampDB(dsp.PowerDB(residual/fundEnergy), thdnFloorDB, -thdnFloorDB)
	m.snr = clampDB(dsp.PowerDB(fundEnergy/residual), -snrCapDB, snrCapDB)
	return m, nil
}

// referenceMetrics derives the triple from the processed-minus-reference
// error signal. Geometry mismatches make the strategy fail so the spectral
// path can take over.
func referenceMetrics(buf, ref *model.AudioBuffer, peak, rms float64) (metricSet, error) {
	if err := ref.Validate(); err != nil {
		return metricSet{}, err
	}
	if buf.Channels != ref.Channels {
		return metricSet{}, pkgerrors.NewAnalysisError("reference channel count differs", nil)
	}

	n := len(buf.Samples)
	if len(ref.Samples) < n {
		n = len(ref.Samples)
	}
	if n == 0 {
		return metricSet{}, pkgerrors.NewAnalysisError("reference is empty", nil)
	}

	var sigPower, errPower float64
	for i := 0; i < n; i++ {
		d := buf.Samples[i] - ref.Samples[i]
		sigPower += buf.Samples[i] * buf.Samples[i]
		errPower += d * d
	}
	sigPower /= float64(n)
	errPower /= float64(n)

	m := metricSet{dr: referenceDynamicRange(buf, ref)}
	if errPower == 0 {
		m.thdn = thdnFloorDB
		m.snr = snrCapDB
		return m, nil
	}
	if sigPower == 0 {
		return metricSet{}, pkgerrors.NewAnalysisError("aligned signal region is silent", nil)
	}
	m.thdn = clampDB(dsp.PowerDB(errPower/sigPower), thdnFloorDB, -thdnFloorDB)
	m.snr = clampDB(dsp.PowerDB(sigPower/errPower), -snrCapDB, snrCapDB)
	return m, nil
}

// blindDynamicRange expresses the peak-to-RMS relationship as the share of
// amplitude headroom the signal keeps below its peak.
func blindDynamicRange(peak, rms float64) float64 {
	if peak == 0 {
		return 0
	}
	return (1 - rms/peak) * 100
}

// referenceDynamicRange reports how much of the reference's amplitude swing
// the processed signal preserves, capped at 100.
func referenceDynamicRange(buf, ref *model.AudioBuffer) float64 {
	refSwing := dsp.PeakToPeak(ref.Samples)
	if refSwing == 0 {
		return 100
	}
	pct := dsp.PeakToPeak(buf.Samples) / refSwing * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// clippedRuns counts, per channel, runs of consecutive samples at or above
// the clip threshold that are longer than the minimum run. Isolated peaks
// below the minimum run length are not clipping.
func (a *Analyzer) clippedRuns(buf *model.AudioBuffer) int {
	runs := 0
	frames := buf.Frames()
	for ch := 0; ch < buf.Channels; ch++ {
		run := 0
		for i := 0; i < frames; i++ {
			if abs(buf.Sample(i, ch)) >= a.params.ClipThreshold {
				run++
				continue
			}
			if run > a.params.ClipMinRun {
				runs++
			}
			run = 0
		}
		if run > a.params.ClipMinRun {
			runs++
		}
	}
	return runs
}

// aliasingSuspected checks how much spectral energy sits above the
// Nyquist-safe band; content that high usually means the source was
// resampled or synthesized badly.
func (a *Analyzer) aliasingSuspected(power []float64) bool {
	if power == nil {
		return false
	}

	bandStart := int(a.params.AliasBandRatio * float64(len(power)-1))
	if bandStart < 1 {
		bandStart = 1
	}

	total, high := 0.0, 0.0
	for k, p := range power {
		total += p
		if k >= bandStart {
			high += p
		}
	}
	if total == 0 {
		return false
	}
	return high/total > a.params.AliasEnergyRatio
}

func clampDB(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
