// Package engine is the facade over the inference pipeline. One Engine
// instance owns all cross-cycle state: the sensor history, the solar
// analyzer's hysteresis buffers, and the forecast RNG. Instances are not
// safe for concurrent use; the host serializes poll cycles.
package engine

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"microweather/internal/atmosphere"
	"microweather/internal/classifier"
	"microweather/internal/evolution"
	"microweather/internal/forecast"
	"microweather/internal/history"
	"microweather/internal/meteo"
	"microweather/internal/solar"
	"microweather/internal/trend"
	"microweather/internal/types"
)

// Config holds the station parameters the engine is constructed with.
type Config struct {
	AltitudeM    float64
	ZenithMaxWM2 float64
	Latitude     float64
	Longitude    float64

	// Seed makes forecast jitter reproducible. Zero seeds from the clock.
	Seed int64

	Logger *slog.Logger
}

// Engine runs the full inference pipeline once per poll cycle.
type Engine struct {
	store      *history.Store
	trends     *trend.Analyzer
	atmosphere *atmosphere.Analyzer
	solar      *solar.Analyzer
	classifier *classifier.Classifier
	aggregator *meteo.Aggregator
	generator  *forecast.Generator
	logger     *slog.Logger

	// now is swapped in tests to drive deterministic cycles.
	now func() time.Time
}

// New wires the pipeline. All components share one history store and one
// logger.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	hasCoords := cfg.Latitude != 0 || cfg.Longitude != 0

	store := history.NewStore(history.DefaultMaxAge, history.DefaultMaxLen)
	trends := trend.NewAnalyzer(store)

	atm := atmosphere.NewAnalyzer(atmosphere.Config{
		Store:     store,
		Trends:    trends,
		AltitudeM: cfg.AltitudeM,
		Logger:    logger,
	})
	sol := solar.NewAnalyzer(solar.Config{
		Store:        store,
		ZenithMaxWM2: cfg.ZenithMaxWM2,
		Logger:       logger,
	})
	cls := classifier.New(classifier.Config{
		Solar:     sol,
		Latitude:  cfg.Latitude,
		Longitude: cfg.Longitude,
		HasCoords: hasCoords,
		Logger:    logger,
	})
	agg := meteo.NewAggregator(meteo.Config{Trends: trends, Logger: logger})
	gen := forecast.NewGenerator(forecast.Config{
		Latitude:  cfg.Latitude,
		Longitude: cfg.Longitude,
		Rand:      rand.New(rand.NewSource(seed)),
		Logger:    logger,
	})

	return &Engine{
		store:      store,
		trends:     trends,
		atmosphere: atm,
		solar:      sol,
		classifier: cls,
		aggregator: agg,
		generator:  gen,
		logger:     logger,
		now:        time.Now,
	}
}

// Process runs one full cycle over a raw reading map and returns the
// complete bundle: current condition, converted ambient values, and the 5
// daily plus 24 hourly forecast records.
func (e *Engine) Process(raw map[string]any) types.Bundle {
	now := e.now()
	cycleID := uuid.NewString()
	logger := e.logger.With("cycle_id", cycleID)

	snap := types.Normalize(raw, now, logger)
	e.record(now, snap)

	wind := e.atmosphere.AnalyzeWind(now)
	pressure := e.atmosphere.AnalyzePressure(now, snap, wind)
	reading, bands := e.atmosphere.Bands(snap)

	condition := e.classifier.Classify(classifier.Inputs{
		Now:             now,
		Snap:            snap,
		PressureReading: reading,
		Bands:           bands,
		Pressure:        pressure,
		Wind:            wind,
	})

	cloudCover, hasCover := e.solar.LastEstimate()
	state := e.aggregator.Build(now, snap, pressure, wind, cloudCover, hasCover)

	inputs := forecast.Inputs{
		Now:      now,
		Current:  condition,
		State:    state,
		Model:    evolution.BuildModel(state.System, state.Stability),
		Patterns: evolution.AnalyzePatterns(now, e.trends),
	}

	bundle := types.Bundle{
		CycleID:   cycleID,
		Timestamp: now,
		Condition: condition,

		TemperatureC: types.FahrenheitToCelsius(snap.TemperatureF),
		PressureHPa:  types.InHgToHPa(e.atmosphere.SeaLevel(snap)),
		WindSpeedKmh: types.MphToKmh(snap.WindSpeedMph),
		Humidity:     snap.Humidity,
		VisibilityKm: visibilityKm(condition, snap),

		StormProbability: pressure.StormProbability,

		Daily:  e.generator.Daily(inputs),
		Hourly: e.generator.Hourly(inputs),
	}

	logger.Info("cycle complete",
		"condition", string(condition),
		"storm_probability", pressure.StormProbability,
		"stability", state.Stability,
		"system", string(state.System.Type),
	)
	return bundle
}

// record stores the cycle's readings in the sensor history. Pressure is
// stored as read; the analyzers shift thresholds rather than samples.
func (e *Engine) record(now time.Time, snap types.SensorSnapshot) {
	e.store.Add(types.KeyTemperature, now, snap.TemperatureF)
	e.store.Add(types.KeyHumidity, now, snap.Humidity)
	e.store.Add(types.KeyPressure, now, snap.PressureInHg)
	e.store.Add(types.KeyWindSpeed, now, snap.WindSpeedMph)
	e.store.Add(types.KeyWindGust, now, snap.WindGustMph)
	e.store.Add(types.KeyWindDirection, now, snap.WindDirectionDeg)
	e.store.Add(types.KeyRainRate, now, snap.RainRateInHr)
	e.store.Add(types.KeySolarRadiation, now, snap.SolarRadiationWM2)
	e.store.Add(types.KeySolarLux, now, snap.SolarLux)
	e.store.Add(types.KeyUVIndex, now, snap.UVIndex)
	e.store.Add(types.KeyDewpoint, now, snap.DewpointOrDerived())
}

// Visibility bands in km, keyed by condition with a humidity refinement for
// overcast air.
const (
	visibilityFogKm      = 1.0
	visibilityDelugeKm   = 3.0
	visibilityRainKm     = 6.0
	visibilityStormKm    = 8.0
	visibilityHumidKm    = 10.0
	visibilityOvercastKm = 12.0
	visibilityBrokenKm   = 14.0
	visibilityClearKm    = 16.0
)

func visibilityKm(cond types.Condition, snap types.SensorSnapshot) float64 {
	switch cond {
	case types.ConditionFog:
		return visibilityFogKm
	case types.ConditionPouring, types.ConditionLightningRainy:
		return visibilityDelugeKm
	case types.ConditionRainy, types.ConditionSnowy:
		return visibilityRainKm
	case types.ConditionLightning:
		return visibilityStormKm
	case types.ConditionCloudy:
		if snap.Humidity > 85 {
			return visibilityHumidKm
		}
		return visibilityOvercastKm
	case types.ConditionPartlyCloudy:
		return visibilityBrokenKm
	default:
		return visibilityClearKm
	}
}
