package classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microweather/internal/atmosphere"
	"microweather/internal/history"
	"microweather/internal/solar"
	"microweather/internal/types"
)

var c0 = time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)

func newTestClassifier() *Classifier {
	store := history.NewStore(0, 0)
	return New(Config{
		Solar: solar.NewAnalyzer(solar.Config{Store: store}),
	})
}

func inputs(snap types.SensorSnapshot) Inputs {
	return Inputs{
		Now:             c0,
		Snap:            snap,
		PressureReading: snap.PressureInHg,
		Bands:           atmosphere.SeaLevelThresholds,
		Wind:            atmosphere.DirectionAnalysis{Stability: 0.5},
	}
}

func TestHeavyRainIsPouring(t *testing.T) {
	// Scenario: 0.6 in/h with a wet sensor at 60F.
	c := newTestClassifier()
	got := c.Classify(inputs(types.SensorSnapshot{
		TemperatureF: 60,
		Humidity:     90,
		PressureInHg: 29.92,
		RainRateInHr: 0.6,
		RainState:    types.RainStateWet,
	}))
	assert.Equal(t, types.ConditionPouring, got)
}

func TestFreezingRainIsSnowy(t *testing.T) {
	c := newTestClassifier()
	got := c.Classify(inputs(types.SensorSnapshot{
		TemperatureF: 28,
		PressureInHg: 29.92,
		RainRateInHr: 0.05,
	}))
	assert.Equal(t, types.ConditionSnowy, got)
}

func TestLowPressureStormIsLightningRainy(t *testing.T) {
	// Scenario: pressure below the very-low band, strong wind, moderate rain.
	c := newTestClassifier()
	got := c.Classify(inputs(types.SensorSnapshot{
		TemperatureF: 65,
		PressureInHg: 29.10,
		WindSpeedMph: 22,
		RainRateInHr: 0.15,
	}))
	assert.Equal(t, types.ConditionLightningRainy, got)
}

func TestLightRainIsRainy(t *testing.T) {
	c := newTestClassifier()
	got := c.Classify(inputs(types.SensorSnapshot{
		TemperatureF: 55,
		PressureInHg: 29.95,
		RainRateInHr: 0.05,
	}))
	assert.Equal(t, types.ConditionRainy, got)
}

func TestWetSensorAloneTriggersRain(t *testing.T) {
	c := newTestClassifier()
	got := c.Classify(inputs(types.SensorSnapshot{
		TemperatureF: 55,
		PressureInHg: 29.95,
		RainState:    types.RainStateWet,
	}))
	assert.Equal(t, types.ConditionRainy, got)
}

func TestNightFog(t *testing.T) {
	// Scenario: saturated, calm, dark night resolves to fog.
	c := newTestClassifier()
	got := c.Classify(inputs(types.SensorSnapshot{
		TemperatureF: 70,
		Humidity:     99.5,
		PressureInHg: 29.92,
		WindSpeedMph: 1.5,
		DewpointF:    69.9,
		HasDewpoint:  true,
	}))
	assert.Equal(t, types.ConditionFog, got)
}

func TestPrecipitationBeatsFog(t *testing.T) {
	c := newTestClassifier()
	got := c.Classify(inputs(types.SensorSnapshot{
		TemperatureF: 70,
		Humidity:     99.5,
		PressureInHg: 29.92,
		WindSpeedMph: 1.5,
		DewpointF:    69.9,
		HasDewpoint:  true,
		RainRateInHr: 0.05,
	}))
	assert.Equal(t, types.ConditionRainy, got)
}

func TestDrySquallIsLightning(t *testing.T) {
	c := newTestClassifier()
	got := c.Classify(inputs(types.SensorSnapshot{
		TemperatureF: 80,
		Humidity:     40,
		PressureInHg: 29.20,
		WindSpeedMph: 22,
		WindGustMph:  44, // gust factor 2.0
	}))
	assert.Equal(t, types.ConditionLightning, got)
}

func TestGaleIsWindy(t *testing.T) {
	c := newTestClassifier()
	got := c.Classify(inputs(types.SensorSnapshot{
		TemperatureF: 70,
		Humidity:     40,
		PressureInHg: 29.90,
		WindSpeedMph: 30,
		WindGustMph:  33,
	}))
	assert.Equal(t, types.ConditionWindy, got)
}

func TestSunnyDayMapsFromCloudCover(t *testing.T) {
	c := newTestClassifier()
	clearSky := solar.ClearSkyRadiation(c0, 60, solar.DefaultZenithMaxWM2)
	got := c.Classify(inputs(types.SensorSnapshot{
		TemperatureF:      75,
		Humidity:          45,
		PressureInHg:      30.05,
		SolarRadiationWM2: clearSky,
		SolarLux:          clearSky * 120,
		UVIndex:           clearSky * 0.009,
		SolarElevationDeg: 60,
		HasSolarElevation: true,
	}))
	assert.Equal(t, types.ConditionSunny, got)
}

func TestStrongWindOverridesSunny(t *testing.T) {
	// Scenario: 25 mph sustained with 35 mph gusts under a clear sky.
	c := newTestClassifier()
	clearSky := solar.ClearSkyRadiation(c0, 60, solar.DefaultZenithMaxWM2)
	got := c.Classify(inputs(types.SensorSnapshot{
		TemperatureF:      75,
		Humidity:          45,
		PressureInHg:      30.05,
		WindSpeedMph:      25,
		WindGustMph:       35,
		SolarRadiationWM2: clearSky,
		SolarLux:          clearSky * 120,
		UVIndex:           clearSky * 0.009,
		SolarElevationDeg: 60,
		HasSolarElevation: true,
	}))
	assert.Equal(t, types.ConditionWindy, got)
}

func TestOvercastDayIsCloudy(t *testing.T) {
	c := newTestClassifier()
	got := c.Classify(inputs(types.SensorSnapshot{
		TemperatureF:      60,
		Humidity:          85,
		PressureInHg:      29.70,
		SolarRadiationWM2: 30, // daytime signal, but a fraction of clear sky
		SolarLux:          3600,
		SolarElevationDeg: 50,
		HasSolarElevation: true,
	}))
	assert.Equal(t, types.ConditionCloudy, got)
}

func TestDaytimeHeuristicWithoutSolarGeometry(t *testing.T) {
	// UV-only daytime signal: no radiation, no lux, no elevation. The
	// atmospheric heuristic takes over.
	c := newTestClassifier()
	humid := c.Classify(inputs(types.SensorSnapshot{
		TemperatureF: 60,
		Humidity:     88,
		PressureInHg: 29.60,
		UVIndex:      0.3,
		DewpointF:    45,
		HasDewpoint:  true,
	}))
	assert.Equal(t, types.ConditionCloudy, humid)
}

func TestTwilight(t *testing.T) {
	c := newTestClassifier()

	// Bright twilight (lux above 25 but below the 50-lux daytime claim)
	// with steady pressure reads as broken sky.
	bright := c.Classify(inputs(types.SensorSnapshot{
		TemperatureF:      60,
		Humidity:          60,
		PressureInHg:      29.92,
		SolarLux:          40,
		SolarRadiationWM2: 4,
	}))
	assert.Equal(t, types.ConditionPartlyCloudy, bright)

	dim := c.Classify(inputs(types.SensorSnapshot{
		TemperatureF:      60,
		Humidity:          60,
		PressureInHg:      29.92,
		SolarRadiationWM2: 3,
		SolarLux:          20,
	}))
	assert.Equal(t, types.ConditionCloudy, dim)

	// Bright twilight under falling pressure stays cloudy.
	lowPressure := c.Classify(inputs(types.SensorSnapshot{
		TemperatureF:      60,
		Humidity:          60,
		PressureInHg:      29.50,
		SolarLux:          40,
		SolarRadiationWM2: 4,
	}))
	assert.Equal(t, types.ConditionCloudy, lowPressure)
}

func TestNightLadder(t *testing.T) {
	c := newTestClassifier()

	cases := []struct {
		name string
		snap types.SensorSnapshot
		want types.Condition
	}{
		{
			name: "calm dry high pressure night",
			snap: types.SensorSnapshot{TemperatureF: 55, Humidity: 50, PressureInHg: 30.00, WindSpeedMph: 3},
			want: types.ConditionClearNight,
		},
		{
			// A reported wide spread keeps the fog score down; without it a
			// saturated calm night resolves to fog before the ladder runs.
			name: "saturated breezy night",
			snap: types.SensorSnapshot{TemperatureF: 55, Humidity: 96, PressureInHg: 30.00, WindSpeedMph: 12, DewpointF: 49, HasDewpoint: true},
			want: types.ConditionCloudy,
		},
		{
			name: "deep low night",
			snap: types.SensorSnapshot{TemperatureF: 55, Humidity: 50, PressureInHg: 29.40, WindSpeedMph: 12},
			want: types.ConditionCloudy,
		},
		{
			name: "breezy normal night",
			snap: types.SensorSnapshot{TemperatureF: 55, Humidity: 70, PressureInHg: 29.85, WindSpeedMph: 14},
			want: types.ConditionPartlyCloudy,
		},
		{
			name: "humid marginal night defaults partly cloudy",
			snap: types.SensorSnapshot{TemperatureF: 55, Humidity: 92, PressureInHg: 29.70, WindSpeedMph: 5},
			want: types.ConditionPartlyCloudy,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Classify(inputs(tc.snap))
			require.Equal(t, tc.want, got)
		})
	}
}

func TestClassifierAlwaysReturnsValidCondition(t *testing.T) {
	c := newTestClassifier()
	snaps := []types.SensorSnapshot{
		{},
		{TemperatureF: -20, Humidity: 100, PressureInHg: 27, WindSpeedMph: 80, WindGustMph: 120, RainRateInHr: 3},
		{TemperatureF: 120, Humidity: 0, PressureInHg: 31, SolarRadiationWM2: 1400, SolarLux: 130000, UVIndex: 12},
	}
	for _, snap := range snaps {
		got := c.Classify(inputs(snap))
		assert.True(t, got.Valid(), "snapshot %+v produced %q", snap, got)
	}
}
