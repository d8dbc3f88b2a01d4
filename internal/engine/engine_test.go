package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microweather/internal/types"
)

// fixedClock returns a now func that advances by step on every call.
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(step)
		return now
	}
}

func newTestEngine(start time.Time) *Engine {
	e := New(Config{Seed: 42})
	e.now = fixedClock(start, 5*time.Minute)
	return e
}

func daytimeReadings() map[string]any {
	return map[string]any{
		types.KeyTemperature:    75.0,
		types.KeyHumidity:       45.0,
		types.KeyPressure:       30.10,
		types.KeyWindSpeed:      4.0,
		types.KeyWindGust:       5.0,
		types.KeyWindDirection:  180.0,
		types.KeyRainRate:       0.0,
		types.KeySolarRadiation: 700.0,
		types.KeySolarLux:       80000.0,
		types.KeyUVIndex:        6.0,
		types.KeySolarElevation: 60.0,
	}
}

func TestProcessReturnsCompleteBundle(t *testing.T) {
	start := time.Date(2025, time.June, 21, 12, 0, 0, 0, time.UTC)
	e := newTestEngine(start)

	bundle := e.Process(daytimeReadings())

	require.Len(t, bundle.Daily, 5)
	require.Len(t, bundle.Hourly, 24)
	assert.True(t, bundle.Condition.Valid())
	assert.Equal(t, start, bundle.Timestamp)

	_, err := uuid.Parse(bundle.CycleID)
	assert.NoError(t, err)

	assert.InDelta(t, 23.89, bundle.TemperatureC, 0.01) // 75°F
	assert.InDelta(t, 30.10*33.8639, bundle.PressureHPa, 0.01)
	assert.InDelta(t, 4*1.609344, bundle.WindSpeedKmh, 0.01)
	assert.InDelta(t, 45, bundle.Humidity, 0.001)
	assert.GreaterOrEqual(t, bundle.VisibilityKm, 1.0)
	assert.GreaterOrEqual(t, bundle.StormProbability, 0.0)
	assert.LessOrEqual(t, bundle.StormProbability, 100.0)
}

func TestProcessTaggedPressurePassesThroughAtAltitude(t *testing.T) {
	start := time.Date(2025, time.June, 21, 12, 0, 0, 0, time.UTC)
	e := New(Config{Seed: 42, AltitudeM: 300})
	e.now = fixedClock(start, 5*time.Minute)

	readings := daytimeReadings()
	readings[types.KeyPressureAbsolute] = true
	bundle := e.Process(readings)

	// Sea-level tagged readings skip the altitude correction entirely.
	assert.InDelta(t, 30.10*33.8639, bundle.PressureHPa, 0.01)

	// The same reading untagged is station-level: at 300 m it corrects
	// upward by roughly 36 hPa.
	e2 := New(Config{Seed: 42, AltitudeM: 300})
	e2.now = fixedClock(start, 5*time.Minute)
	untagged := e2.Process(daytimeReadings())
	assert.Greater(t, untagged.PressureHPa, 30.10*33.8639+20)
}

func TestProcessEmptyInputUsesDefaults(t *testing.T) {
	start := time.Date(2025, time.June, 21, 2, 0, 0, 0, time.UTC)
	e := newTestEngine(start)

	bundle := e.Process(map[string]any{})

	require.Len(t, bundle.Daily, 5)
	require.Len(t, bundle.Hourly, 24)
	assert.True(t, bundle.Condition.Valid())
	// Defaults: 70°F, 29.92 inHg, 0 wind.
	assert.InDelta(t, 21.11, bundle.TemperatureC, 0.01)
	assert.InDelta(t, 50, bundle.Humidity, 0.001)
	assert.InDelta(t, 0, bundle.WindSpeedKmh, 0.001)
}

func TestProcessClearDaySunny(t *testing.T) {
	start := time.Date(2025, time.June, 21, 12, 0, 0, 0, time.UTC)
	e := newTestEngine(start)

	// A few cycles of strong clear-sky signal settle the hysteresis.
	var bundle types.Bundle
	for i := 0; i < 4; i++ {
		bundle = e.Process(daytimeReadings())
	}
	assert.Equal(t, types.ConditionSunny, bundle.Condition)
	assert.InDelta(t, 16, bundle.VisibilityKm, 0.001)
}

func TestProcessHeavyRainPouring(t *testing.T) {
	start := time.Date(2025, time.June, 21, 15, 0, 0, 0, time.UTC)
	e := newTestEngine(start)

	bundle := e.Process(map[string]any{
		types.KeyTemperature: 60.0,
		types.KeyRainRate:    0.6,
		types.KeyRainState:   "wet",
	})
	assert.Equal(t, types.ConditionPouring, bundle.Condition)
	assert.InDelta(t, 3, bundle.VisibilityKm, 0.001)
}

func TestProcessSaturatedCalmNightFog(t *testing.T) {
	start := time.Date(2025, time.June, 21, 2, 0, 0, 0, time.UTC)
	e := newTestEngine(start)

	bundle := e.Process(map[string]any{
		types.KeyTemperature:    70.0,
		types.KeyHumidity:       99.5,
		types.KeyDewpoint:       69.9,
		types.KeyWindSpeed:      1.5,
		types.KeySolarRadiation: 0.0,
	})
	assert.Equal(t, types.ConditionFog, bundle.Condition)
	assert.InDelta(t, 1, bundle.VisibilityKm, 0.001)
}

func TestProcessAccumulatesHistory(t *testing.T) {
	start := time.Date(2025, time.June, 21, 12, 0, 0, 0, time.UTC)
	e := newTestEngine(start)

	for i := 0; i < 6; i++ {
		e.Process(daytimeReadings())
	}
	assert.Equal(t, 6, e.store.Len(types.KeyTemperature))
	assert.Equal(t, 6, e.store.Len(types.KeyPressure))
	assert.Equal(t, 6, e.store.Len(types.KeyWindDirection))
}

func TestProcessStringReadingsCoerced(t *testing.T) {
	start := time.Date(2025, time.June, 21, 12, 0, 0, 0, time.UTC)
	e := newTestEngine(start)

	bundle := e.Process(map[string]any{
		types.KeyTemperature: "68.5",
		types.KeyHumidity:    "55",
	})
	assert.InDelta(t, types.FahrenheitToCelsius(68.5), bundle.TemperatureC, 0.001)
	assert.InDelta(t, 55, bundle.Humidity, 0.001)
}

func TestProcessDeterministicWithSeed(t *testing.T) {
	start := time.Date(2025, time.June, 21, 12, 0, 0, 0, time.UTC)
	a := newTestEngine(start)
	b := newTestEngine(start)

	ba := a.Process(daytimeReadings())
	bb := b.Process(daytimeReadings())

	assert.Equal(t, ba.Condition, bb.Condition)
	assert.Equal(t, ba.Daily, bb.Daily)
	assert.Equal(t, ba.Hourly, bb.Hourly)
}

func TestVisibilityLadder(t *testing.T) {
	dry := types.SensorSnapshot{Humidity: 50}
	humid := types.SensorSnapshot{Humidity: 92}

	cases := []struct {
		cond types.Condition
		snap types.SensorSnapshot
		want float64
	}{
		{types.ConditionFog, dry, 1},
		{types.ConditionPouring, dry, 3},
		{types.ConditionLightningRainy, dry, 3},
		{types.ConditionRainy, dry, 6},
		{types.ConditionSnowy, dry, 6},
		{types.ConditionLightning, dry, 8},
		{types.ConditionCloudy, humid, 10},
		{types.ConditionCloudy, dry, 12},
		{types.ConditionPartlyCloudy, dry, 14},
		{types.ConditionSunny, dry, 16},
		{types.ConditionClearNight, dry, 16},
		{types.ConditionWindy, dry, 16},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, visibilityKm(tc.cond, tc.snap), 0.001,
			"condition %q", tc.cond)
	}
}
