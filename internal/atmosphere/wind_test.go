package atmosphere

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microweather/internal/history"
)

var w0 = time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)

func directionSamples(step time.Duration, degrees ...float64) []history.TimedValue[float64] {
	out := make([]history.TimedValue[float64], len(degrees))
	for i, d := range degrees {
		out[i] = history.TimedValue[float64]{Timestamp: w0.Add(time.Duration(i) * step), Value: d}
	}
	return out
}

func TestAngularDelta(t *testing.T) {
	assert.Equal(t, 20.0, AngularDelta(350, 10), "shortest arc across north")
	assert.Equal(t, -20.0, AngularDelta(10, 350))
	assert.Equal(t, 180.0, AngularDelta(0, 180))
	assert.Equal(t, 0.0, AngularDelta(90, 90))
}

func TestWindDirectionNeutralDefaults(t *testing.T) {
	for _, samples := range [][]history.TimedValue[float64]{
		nil,
		directionSamples(time.Hour, 90),
		directionSamples(time.Hour, 90, 100),
	} {
		a := AnalyzeWindDirection(samples)
		assert.Equal(t, neutralStability, a.Stability)
		assert.False(t, a.SignificantShift)
		assert.Equal(t, PrevailingUnknown, a.Prevailing)
	}
}

func TestWindDirectionSteadyNortherly(t *testing.T) {
	// Samples straddling the 0/360 wrap: a naive mean would report ~180.
	a := AnalyzeWindDirection(directionSamples(30*time.Minute, 350, 355, 0, 5, 10))

	assert.InDelta(t, 0.0, AngularDelta(0, a.AverageDirection), 2.0)
	assert.Equal(t, PrevailingNorth, a.Prevailing)
	assert.Greater(t, a.Stability, 0.9)
	assert.False(t, a.SignificantShift)
}

func TestWindDirectionSignificantShift(t *testing.T) {
	a := AnalyzeWindDirection(directionSamples(time.Hour, 90, 120, 160))
	assert.True(t, a.SignificantShift, "70 degree first-to-last shift")
	assert.InDelta(t, 70.0/2.0, a.ChangeRateDegPerHr, 1e-9)
}

func TestWindDirectionChaoticIsUnstable(t *testing.T) {
	chaotic := AnalyzeWindDirection(directionSamples(30*time.Minute, 0, 170, 20, 200, 80, 300))
	steady := AnalyzeWindDirection(directionSamples(30*time.Minute, 180, 185, 175, 182, 178, 181))
	assert.Less(t, chaotic.Stability, steady.Stability)
}

func TestPrevailingQuadrants(t *testing.T) {
	cases := map[float64]PrevailingDirection{
		0: PrevailingNorth, 340: PrevailingNorth,
		90: PrevailingEast, 50: PrevailingEast,
		180: PrevailingSouth, 200: PrevailingSouth,
		270: PrevailingWest, 310: PrevailingWest,
	}
	for deg, want := range cases {
		require.Equal(t, want, prevailing(deg), "direction %v", deg)
	}
}
