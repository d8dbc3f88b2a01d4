// Package forecast projects the aggregated meteorological state forward
// into the 5-day and 24-hour forecast arrays. Both generators damp their
// adjustments with forecast distance and fall back to a minimal forecast on
// internal failure, so the caller always receives exactly 5 daily and 24
// hourly records.
package forecast

import (
	"log/slog"
	"math"
	"math/rand"
	"time"

	"microweather/internal/atmosphere"
	"microweather/internal/evolution"
	"microweather/internal/meteo"
	"microweather/internal/solar"
	"microweather/internal/types"
)

const (
	// DailyRecords and HourlyRecords are the fixed output lengths.
	DailyRecords  = 5
	HourlyRecords = 24

	// stormForceProbability forces precipitation conditions regardless of
	// forecast distance.
	stormForceProbability = 70
)

// Inputs carries everything one generation cycle needs. It is assembled by
// the engine after classification and aggregation.
type Inputs struct {
	Now      time.Time
	Current  types.Condition
	State    meteo.State
	Model    evolution.Model
	Patterns evolution.Patterns
}

// Config holds the generator dependencies. Rand must be non-nil; the engine
// injects a seeded source so runs are reproducible.
type Config struct {
	Latitude  float64
	Longitude float64
	Rand      *rand.Rand
	Logger    *slog.Logger
}

// Generator produces daily and hourly forecasts. It holds no per-cycle
// state; the injected RNG is its only mutable member.
type Generator struct {
	lat       float64
	lon       float64
	hasCoords bool
	rng       *rand.Rand
	logger    *slog.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(cfg Config) *Generator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{
		lat:       cfg.Latitude,
		lon:       cfg.Longitude,
		hasCoords: cfg.Latitude != 0 || cfg.Longitude != 0,
		rng:       rng,
		logger:    logger,
	}
}

// confidenceDecay is the per-day forecast confidence: ~0.95 today falling to
// ~0.35 on day 4.
func confidenceDecay(day int) float64 {
	return math.Exp(-0.5*float64(day))*0.95 + 0.05
}

// hourlyDamping shrinks hour-level adjustments with forecast distance.
func hourlyDamping(hour int) float64 {
	return math.Exp(-float64(hour)/24.0)*0.9 + 0.1
}

// isDaytimeAt resolves day/night for a forecast instant: astronomical when
// station coordinates are configured, a fixed clock window otherwise.
func (g *Generator) isDaytimeAt(t time.Time) bool {
	if g.hasCoords {
		return solar.IsDaytimeAt(t, g.lat, g.lon)
	}
	h := t.Hour()
	return h >= 7 && h < 19
}

// Per-condition base values the precipitation, wind, and humidity
// projections start from.
type conditionProfile struct {
	precipitationIn float64
	windSpeedMph    float64
	humidity        float64
}

var conditionProfiles = map[types.Condition]conditionProfile{
	types.ConditionSunny:          {0, 4, 45},
	types.ConditionClearNight:     {0, 3, 55},
	types.ConditionPartlyCloudy:   {0, 6, 60},
	types.ConditionCloudy:         {0.02, 8, 75},
	types.ConditionRainy:          {0.15, 10, 85},
	types.ConditionPouring:        {0.50, 15, 92},
	types.ConditionSnowy:          {0.12, 10, 85},
	types.ConditionFog:            {0.01, 2, 97},
	types.ConditionLightning:      {0.05, 20, 70},
	types.ConditionLightningRainy: {0.45, 22, 88},
	types.ConditionWindy:          {0, 25, 55},
}

func profileFor(c types.Condition) conditionProfile {
	if p, ok := conditionProfiles[c]; ok {
		return p
	}
	return conditionProfiles[types.ConditionPartlyCloudy]
}

// stormForced maps a forced-storm cycle onto its condition: electrically
// active setups get lightning_rainy, plain deluges get pouring, freezing
// air gets snowy.
func stormForced(st meteo.State) types.Condition {
	if st.Snapshot.TemperatureF <= 32 {
		return types.ConditionSnowy
	}
	if st.WindPattern.GustFactor >= 2.0 || (st.Pressure.System == atmosphere.SystemLowPressure && st.WindPattern.SpeedMph >= 20) {
		return types.ConditionLightningRainy
	}
	return types.ConditionPouring
}

// projectPrecipitation modulates a condition's base precipitation by storm
// probability and pressure trend, then damps by forecast distance. The
// jitter term is the deliberate +-20% natural variation, fed by the seeded
// RNG.
func (g *Generator) projectPrecipitation(base float64, st meteo.State, damping float64) float64 {
	if base <= 0 {
		return 0
	}
	amount := base
	amount *= 1 + st.Pressure.StormProbability/100*0.5
	if fall := -st.Pressure.CurrentTrendHPa; fall > 0 {
		amount *= 1 + math.Min(fall, 4)/8
	}
	amount *= 0.8 + 0.4*g.rng.Float64() // jitter in [0.8, 1.2)
	amount *= damping
	return math.Max(0, amount)
}

// projectWind blends the current wind toward the condition's base wind as
// confidence decays, plus a storm contribution.
func projectWind(current, base float64, st meteo.State, damping float64) float64 {
	speed := current*damping + base*(1-damping)
	speed += st.Pressure.StormProbability / 10 * (1 - damping + 0.2)
	speed += st.WindPattern.SpeedTrend * 2 * damping
	return math.Max(0, speed)
}

// projectHumidity blends the current humidity toward the condition's base
// humidity as confidence decays, nudged by the humidity trend.
func projectHumidity(current, base float64, st meteo.State, damping float64) float64 {
	h := current*damping + base*(1-damping)
	h += st.Moisture.HumidityTrend * 3 * damping
	return types.ClampFloat(h, 5, 100)
}
