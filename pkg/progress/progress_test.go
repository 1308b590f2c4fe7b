package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelReporterDropsWhenFull(t *testing.T) {
	ch := make(chan Update, 2)
	r := NewChannelReporter(ch)

	for i := 0; i < 5; i++ {
		r.Report(Update{Stage: StageExtract, Percent: float64(i)})
	}

	// the first two updates fit, the rest are dropped without blocking
	require.Len(t, ch, 2)
	assert.Equal(t, 0.0, (<-ch).Percent)
	assert.Equal(t, 1.0, (<-ch).Percent)
}

func TestMultiReporterFansOut(t *testing.T) {
	ch1 := make(chan Update, 1)
	ch2 := make(chan Update, 1)
	m := NewMultiReporter(NewChannelReporter(ch1))
	m.Add(NewChannelReporter(ch2))

	m.Report(Update{Stage: StageDone, Percent: 100})

	require.Len(t, ch1, 1)
	require.Len(t, ch2, 1)
	assert.Equal(t, StageDone, (<-ch1).Stage)
	assert.Equal(t, StageDone, (<-ch2).Stage)
}

func TestNoopReporter(t *testing.T) {
	assert.NotPanics(t, func() {
		NoopReporter{}.Report(Update{Stage: StagePlan})
	})
}
