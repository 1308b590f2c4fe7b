package model

// QualityLevel grades a segment on a closed ordered scale. Higher is better;
// comparisons use the numeric order directly.
type QualityLevel int

const (
	LevelFailed QualityLevel = iota
	LevelPoor
	LevelAcceptable
	LevelGood
	LevelExcellent
)

func (l QualityLevel) String() string {
	switch l {
	case LevelFailed:
		return "FAILED"
	case LevelPoor:
		return "POOR"
	case LevelAcceptable:
		return "ACCEPTABLE"
	case LevelGood:
		return "GOOD"
	case LevelExcellent:
		return "EXCELLENT"
	default:
		return "UNKNOWN"
	}
}

// MarshalText makes levels serialize as their names rather than numbers
func (l QualityLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Thresholds are the pass bars a profile demands of the three principal
// metrics. MaxTHDNDB is an upper bound (more negative is cleaner); the other
// two are lower bounds.
type Thresholds struct {
	MinSNRDB           float64 `json:"min_snr_db" validate:"gt=0"`
	MaxTHDNDB          float64 `json:"max_thdn_db" validate:"lt=0"`
	MinDynamicRangePct float64 `json:"min_dynamic_range_pct" validate:"gte=0,lte=100"`
}

// Meets reports whether measured metric values satisfy every threshold
func (t Thresholds) Meets(thdnDB, snrDB, drPct float64) bool {
	return thdnDB <= t.MaxTHDNDB && snrDB >= t.MinSNRDB && drPct >= t.MinDynamicRangePct
}

type profileKind int

const (
	profileUnknown profileKind = iota
	profileStudio
	profileProfessional
	profileStandard
	profileBasic
	profileCustom
)

// QualityProfile selects the thresholds a verdict is gated against. The set
// of profiles is closed: the built-in tiers plus CUSTOM with caller-supplied
// thresholds. The zero value is invalid and rejected at validation time, so
// every call site names its profile explicitly.
type QualityProfile struct {
	kind   profileKind
	custom Thresholds
}

var (
	ProfileStudio       = QualityProfile{kind: profileStudio}
	ProfileProfessional = QualityProfile{kind: profileProfessional}
	ProfileStandard     = QualityProfile{kind: profileStandard}
	ProfileBasic        = QualityProfile{kind: profileBasic}
)

// CustomProfile builds a profile from caller-supplied thresholds
func CustomProfile(t Thresholds) QualityProfile {
	return QualityProfile{kind: profileCustom, custom: t}
}

// Valid reports whether the profile is one of the closed set
func (p QualityProfile) Valid() bool {
	return p.kind != profileUnknown
}

// Custom reports whether the profile carries caller-supplied thresholds
func (p QualityProfile) Custom() bool {
	return p.kind == profileCustom
}

// Thresholds resolves the profile to concrete pass bars. Strictness is
// monotonically non-increasing from STUDIO down to BASIC on every field.
func (p QualityProfile) Thresholds() Thresholds {
	switch p.kind {
	case profileStudio:
		return Thresholds{MinSNRDB: 100, MaxTHDNDB: -80, MinDynamicRangePct: 98}
	case profileProfessional:
		return Thresholds{MinSNRDB: 90, MaxTHDNDB: -60, MinDynamicRangePct: 95}
	case profileStandard:
		return Thresholds{MinSNRDB: 70, MaxTHDNDB: -40, MinDynamicRangePct: 90}
	case profileBasic:
		return Thresholds{MinSNRDB: 60, MaxTHDNDB: -30, MinDynamicRangePct: 80}
	case profileCustom:
		return p.custom
	default:
		return Thresholds{}
	}
}

func (p QualityProfile) String() string {
	switch p.kind {
	case profileStudio:
		return "STUDIO"
	case profileProfessional:
		return "PROFESSIONAL"
	case profileStandard:
		return "STANDARD"
	case profileBasic:
		return "BASIC"
	case profileCustom:
		return "CUSTOM"
	default:
		return "UNKNOWN"
	}
}

// Metric names used in verdicts and logs
const (
	MetricTHDN         = "thdn"
	MetricSNR          = "snr"
	MetricDynamicRange = "dynamic_range"
)

// MetricFailure records one metric missing its threshold
type MetricFailure struct {
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
}

// Verdict is the gate's output. POOR and FAILED are ordinary results, not
// errors: the caller decides what to do with a segment that misses its bar.
type Verdict struct {
	Level    QualityLevel    `json:"level"`
	Passed   bool            `json:"passed"`
	Profile  string          `json:"profile"`
	Failures []MetricFailure `json:"failures,omitempty"`
}

// QualityReport holds every measured metric for one buffer, flat and ready
// for JSON serialization. All dB fields are finite: silent buffers never
// produce reports.
type QualityReport struct {
	THDNDB            float64      `json:"thdn_db"`
	SNRDB             float64      `json:"snr_db"`
	DynamicRangePct   float64      `json:"dynamic_range_pct"`
	PeakDBFS          float64      `json:"peak_dbfs"`
	RMSDBFS           float64      `json:"rms_dbfs"`
	CrestFactorDB     float64      `json:"crest_factor_db"`
	ClippingDetected  bool         `json:"clipping_detected"`
	ClippedRuns       int          `json:"clipped_runs"`
	DCOffset          float64      `json:"dc_offset"`
	DCOffsetExceeded  bool         `json:"dc_offset_exceeded"`
	AliasingSuspected bool         `json:"aliasing_suspected"`
	DurationSeconds   float64      `json:"duration_seconds"`
	SampleRate        int          `json:"sample_rate"`
	Channels          int          `json:"channels"`
	Method            string       `json:"method"`
	AnalysisMillis    int64        `json:"analysis_millis"`
	Level             QualityLevel `json:"level"`
	Score             float64      `json:"score"`
}

// WindowFunc applies an analysis window to a frame in place and returns it.
// gonum's dsp/window functions satisfy this signature.
type WindowFunc func([]float64) []float64

// AnalysisParams are the tunable knobs of the spectral analyzer. Zero-valued
// fields select the defaults, so a partially filled struct stays usable.
type AnalysisParams struct {
	// FrameSize is the number of mono frames fed to the FFT. Buffers shorter
	// than one frame are analyzed whole.
	FrameSize int `validate:"omitempty,gte=64"`

	// Window shapes the analysis frame; nil selects the Hann window.
	Window WindowFunc

	// ClipThreshold is the absolute sample value treated as clipped, as a
	// fraction of full scale.
	ClipThreshold float64 `validate:"omitempty,gt=0,lte=1"`

	// ClipMinRun is the number of consecutive clipped samples required
	// before clipping is flagged; shorter runs are treated as isolated
	// peaks, not clipping.
	ClipMinRun int `validate:"omitempty,gte=1"`

	// DCOffsetLimit is the |mean| above which DC offset is flagged.
	DCOffsetLimit float64 `validate:"omitempty,gt=0"`

	// AliasBandRatio positions the start of the aliasing detection band as a
	// fraction of Nyquist; AliasEnergyRatio is the share of total spectral
	// energy above that band that raises the aliasing flag.
	AliasBandRatio   float64 `validate:"omitempty,gt=0,lt=1"`
	AliasEnergyRatio float64 `validate:"omitempty,gt=0,lt=1"`
}

// DefaultAnalysisParams returns the analyzer defaults
func DefaultAnalysisParams() AnalysisParams {
	return AnalysisParams{
		FrameSize:        8192,
		Window:           nil, // Hann
		ClipThreshold:    0.99,
		ClipMinRun:       4,
		DCOffsetLimit:    0.01,
		AliasBandRatio:   0.4,
		AliasEnergyRatio: 0.1,
	}
}
