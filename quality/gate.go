package quality

import "github.com/Skryldev/split-lab/domain/model"

// The gate is pure: it maps measured metrics plus an explicit profile to a
// verdict, reads no ambient state and performs no I/O. Each principal
// metric is graded on the ladder the built-in profile tiers form
// (STUDIO -> EXCELLENT, PROFESSIONAL -> GOOD, STANDARD -> ACCEPTABLE, below
// that POOR); the overall level is the worst grade. FAILED is reserved for
// hard failures and overrides everything.

// Grade returns the absolute quality level and 0-100 score for a report.
// Clipping forces FAILED regardless of how clean the metrics look.
func Grade(report *model.QualityReport) (model.QualityLevel, float64) {
	thdn := gradeTHDN(report.THDNDB)
	snr := gradeSNR(report.SNRDB)
	dr := gradeDynamicRange(report.DynamicRangePct)

	level := thdn
	if snr < level {
		level = snr
	}
	if dr < level {
		level = dr
	}
	if report.ClippingDetected {
		level = model.LevelFailed
	}

	score := 100.0
	score = score*0.6 + bracketScore(thdn)*0.4
	score = score*0.7 + bracketScore(snr)*0.3
	score = score*0.8 + bracketScore(dr)*0.2
	if report.ClippingDetected || report.AliasingSuspected || report.DCOffsetExceeded {
		score *= 0.8
	}
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	return level, score
}

// Classify gates a report against the selected profile. POOR and FAILED
// verdicts are ordinary results; the caller owns the decision to keep or
// discard the segment.
func Classify(report *model.QualityReport, profile model.QualityProfile) model.Verdict {
	level, _ := Grade(report)
	t := profile.Thresholds()

	var failures []model.MetricFailure
	if report.THDNDB > t.MaxTHDNDB {
		failures = append(failures, model.MetricFailure{
			Metric: model.MetricTHDN, Value: report.THDNDB, Threshold: t.MaxTHDNDB,
		})
	}
	if report.SNRDB < t.MinSNRDB {
		failures = append(failures, model.MetricFailure{
			Metric: model.MetricSNR, Value: report.SNRDB, Threshold: t.MinSNRDB,
		})
	}
	if report.DynamicRangePct < t.MinDynamicRangePct {
		failures = append(failures, model.MetricFailure{
			Metric: model.MetricDynamicRange, Value: report.DynamicRangePct, Threshold: t.MinDynamicRangePct,
		})
	}

	return model.Verdict{
		Level:    level,
		Passed:   len(failures) == 0 && level != model.LevelFailed,
		Profile:  profile.String(),
		Failures: failures,
	}
}

// ClassifyFailure is the verdict for a segment whose analysis failed
// upstream: FAILED, never passed.
func ClassifyFailure(profile model.QualityProfile) model.Verdict {
	return model.Verdict{
		Level:   model.LevelFailed,
		Passed:  false,
		Profile: profile.String(),
	}
}

func gradeTHDN(v float64) model.QualityLevel {
	switch {
	case v <= model.ProfileStudio.Thresholds().MaxTHDNDB:
		return model.LevelExcellent
	case v <= model.ProfileProfessional.Thresholds().MaxTHDNDB:
		return model.LevelGood
	case v <= model.ProfileStandard.Thresholds().MaxTHDNDB:
		return model.LevelAcceptable
	default:
		return model.LevelPoor
	}
}

func gradeSNR(v float64) model.QualityLevel {
	switch {
	case v >= model.ProfileStudio.Thresholds().MinSNRDB:
		return model.LevelExcellent
	case v >= model.ProfileProfessional.Thresholds().MinSNRDB:
		return model.LevelGood
	case v >= model.ProfileStandard.Thresholds().MinSNRDB:
		return model.LevelAcceptable
	default:
		return model.LevelPoor
	}
}

func gradeDynamicRange(v float64) model.QualityLevel {
	switch {
	case v >= model.ProfileStudio.Thresholds().MinDynamicRangePct:
		return model.LevelExcellent
	case v >= model.ProfileProfessional.Thresholds().MinDynamicRangePct:
		return model.LevelGood
	case v >= model.ProfileStandard.Thresholds().MinDynamicRangePct:
		return model.LevelAcceptable
	default:
		return model.LevelPoor
	}
}

func bracketScore(l model.QualityLevel) float64 {
	switch l {
	case model.LevelExcellent:
		return 100
	case model.LevelGood:
		return 80
	case model.LevelAcceptable:
		return 60
	default:
		return 30
	}
}
