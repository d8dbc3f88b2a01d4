package atmosphere

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microweather/internal/types"
)

func fogSnap(humidity, spreadF, windMph, solar float64) types.SensorSnapshot {
	temp := 60.0
	return types.SensorSnapshot{
		TemperatureF:      temp,
		Humidity:          humidity,
		WindSpeedMph:      windMph,
		SolarRadiationWM2: solar,
		DewpointF:         temp - spreadF,
		HasDewpoint:       true,
	}
}

func TestFogScoreDenseNightFog(t *testing.T) {
	// Saturated, calm, dark: every factor at its maximum band.
	a := ScoreFog(fogSnap(99.5, 0.1, 1.5, 0), false)
	require.True(t, a.Likely)
	assert.GreaterOrEqual(t, a.Score, 90.0)
}

func TestFogScoreClearWindyDay(t *testing.T) {
	a := ScoreFog(fogSnap(40, 20, 15, 600), true)
	assert.False(t, a.Likely)
	assert.Equal(t, 0.0, a.Score, "negative factors clamp to zero")
}

func TestFogDecisionThresholds(t *testing.T) {
	// humidity 92 (20) + spread 2 (15) + wind 5 (10) + night solar 2 (10) = 55.
	at55 := ScoreFog(fogSnap(92, 2, 5, 2), false)
	assert.Equal(t, 55.0, at55.Score)
	assert.True(t, at55.Likely)

	// humidity 88 (10) + spread 2 (15) + wind 5 (10) + night solar 2 (10) = 45:
	// marginal band requires humidity >= 95, which 88 is not.
	at45 := ScoreFog(fogSnap(88, 2, 5, 2), false)
	assert.Equal(t, 45.0, at45.Score)
	assert.False(t, at45.Likely)

	// Just below the moderate band.
	below := ScoreFog(fogSnap(88, 2, 8, 2), false)
	assert.Equal(t, 40.0, below.Score)
	assert.False(t, below.Likely)
}

func TestFogMarginalBandNeedsSaturation(t *testing.T) {
	// humidity 95 (30) + spread 2.5 (5) + wind 8 (5) + night solar 20 (0) = 40
	// plus nothing else: below marginal.
	low := ScoreFog(fogSnap(95, 2.5, 8, 20), false)
	assert.False(t, low.Likely)

	// humidity 95 (30) + spread 2.5 (5) + wind 5 (10) + night solar 20 (0) = 45
	// with humidity >= 95: marginal band accepts.
	marginal := ScoreFog(fogSnap(95, 2.5, 5, 20), false)
	assert.Equal(t, 45.0, marginal.Score)
	assert.True(t, marginal.Likely)
}

func TestFogScoreMonotonicity(t *testing.T) {
	t.Run("humidity", func(t *testing.T) {
		prev := -1.0
		for _, h := range []float64{80, 88, 92, 95, 98} {
			s := ScoreFog(fogSnap(h, 5, 10, 0), false).Score
			require.GreaterOrEqual(t, s, prev, "humidity %v", h)
			prev = s
		}
	})
	t.Run("spread", func(t *testing.T) {
		prev := -1.0
		for _, sp := range []float64{5, 3, 2, 1, 0.5} {
			s := ScoreFog(fogSnap(85, sp, 10, 0), false).Score
			require.GreaterOrEqual(t, s, prev, "spread %v", sp)
			prev = s
		}
	})
	t.Run("wind", func(t *testing.T) {
		prev := -1.0
		for _, w := range []float64{12, 8, 5, 2} {
			s := ScoreFog(fogSnap(85, 5, w, 0), false).Score
			require.GreaterOrEqual(t, s, prev, "wind %v", w)
			prev = s
		}
	})
}

func TestEvaporationFogBonus(t *testing.T) {
	with := ScoreFog(fogSnap(96, 1.5, 3, 0), false)
	// Same conditions but too cold for evaporation fog.
	cold := fogSnap(96, 1.5, 3, 0)
	cold.TemperatureF = 38
	cold.DewpointF = cold.TemperatureF - 1.5
	without := ScoreFog(cold, false)

	assert.Equal(t, with.Score, without.Score+5)
}

func TestDaytimeSolarPenalty(t *testing.T) {
	bright := ScoreFog(fogSnap(96, 1.5, 3, 500), true)
	dim := ScoreFog(fogSnap(96, 1.5, 3, 40), true)
	assert.Greater(t, dim.Score, bright.Score)
}
