package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualityLevelOrdering(t *testing.T) {
	assert.True(t, LevelFailed < LevelPoor)
	assert.True(t, LevelPoor < LevelAcceptable)
	assert.True(t, LevelAcceptable < LevelGood)
	assert.True(t, LevelGood < LevelExcellent)
}

func TestQualityLevelString(t *testing.T) {
	tests := []struct {
		level QualityLevel
		want  string
	}{
		{LevelFailed, "FAILED"},
		{LevelPoor, "POOR"},
		{LevelAcceptable, "ACCEPTABLE"},
		{LevelGood, "GOOD"},
		{LevelExcellent, "EXCELLENT"},
		{QualityLevel(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.level.String())
	}
}

func TestQualityLevelMarshalsAsName(t *testing.T) {
	b, err := json.Marshal(map[string]QualityLevel{"level": LevelGood})
	require.NoError(t, err)
	assert.JSONEq(t, `{"level":"GOOD"}`, string(b))
}

func TestProfileThresholds(t *testing.T) {
	tests := []struct {
		profile QualityProfile
		want    Thresholds
	}{
		{ProfileStudio, Thresholds{MinSNRDB: 100, MaxTHDNDB: -80, MinDynamicRangePct: 98}},
		{ProfileProfessional, Thresholds{MinSNRDB: 90, MaxTHDNDB: -60, MinDynamicRangePct: 95}},
		{ProfileStandard, Thresholds{MinSNRDB: 70, MaxTHDNDB: -40, MinDynamicRangePct: 90}},
		{ProfileBasic, Thresholds{MinSNRDB: 60, MaxTHDNDB: -30, MinDynamicRangePct: 80}},
	}
	for _, tt := range tests {
		t.Run(tt.profile.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.profile.Thresholds())
		})
	}
}

func TestProfileStrictnessMonotonic(t *testing.T) {
	ladder := []QualityProfile{ProfileStudio, ProfileProfessional, ProfileStandard, ProfileBasic}

	for i := 1; i < len(ladder); i++ {
		stricter := ladder[i-1].Thresholds()
		looser := ladder[i].Thresholds()

		assert.GreaterOrEqual(t, stricter.MinSNRDB, looser.MinSNRDB)
		assert.LessOrEqual(t, stricter.MaxTHDNDB, looser.MaxTHDNDB)
		assert.GreaterOrEqual(t, stricter.MinDynamicRangePct, looser.MinDynamicRangePct)
	}
}

func TestProfileClosedSet(t *testing.T) {
	var zero QualityProfile
	assert.False(t, zero.Valid(), "the zero profile must be rejected")
	assert.Equal(t, "UNKNOWN", zero.String())

	for _, p := range []QualityProfile{ProfileStudio, ProfileProfessional, ProfileStandard, ProfileBasic} {
		assert.True(t, p.Valid())
		assert.False(t, p.Custom())
	}

	custom := CustomProfile(Thresholds{MinSNRDB: 50, MaxTHDNDB: -35, MinDynamicRangePct: 40})
	assert.True(t, custom.Valid())
	assert.True(t, custom.Custom())
	assert.Equal(t, "CUSTOM", custom.String())
	assert.Equal(t, 50.0, custom.Thresholds().MinSNRDB)
}

func TestThresholdsMeets(t *testing.T) {
	th := Thresholds{MinSNRDB: 70, MaxTHDNDB: -40, MinDynamicRangePct: 90}

	tests := []struct {
		name          string
		thdn, snr, dr float64
		want          bool
	}{
		{"all clear", -50, 80, 95, true},
		{"exactly on bars", -40, 70, 90, true},
		{"thdn too high", -39, 80, 95, false},
		{"snr too low", -50, 69, 95, false},
		{"dr too low", -50, 80, 89, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, th.Meets(tt.thdn, tt.snr, tt.dr))
		})
	}
}

func TestDefaultAnalysisParams(t *testing.T) {
	p := DefaultAnalysisParams()
	assert.Equal(t, 8192, p.FrameSize)
	assert.Nil(t, p.Window)
	assert.Equal(t, 0.99, p.ClipThreshold)
	assert.Equal(t, 4, p.ClipMinRun)
	assert.Equal(t, 0.01, p.DCOffsetLimit)
	assert.Equal(t, 0.4, p.AliasBandRatio)
	assert.Equal(t, 0.1, p.AliasEnergyRatio)
}

func TestDefaultProcessingOptions(t *testing.T) {
	o := DefaultProcessingOptions()
	assert.True(t, o.RefineBoundaries)
	assert.True(t, o.CrossfadeEnabled)
	assert.True(t, o.DitherEnabled)
	assert.True(t, o.ValidateQuality)
	assert.Equal(t, 0, o.TargetBitDepth)
	assert.Equal(t, ProfileProfessional, o.Profile)
	assert.Positive(t, o.ZeroCrossWindow)
	assert.Positive(t, o.FadeDuration)
}
