// Package meteo aggregates the per-cycle analyzer outputs into one
// meteorological state snapshot for forecasting. The state is rebuilt on
// every forecast cycle and never persisted.
package meteo

import (
	"log/slog"
	"time"

	"microweather/internal/atmosphere"
	"microweather/internal/trend"
	"microweather/internal/types"
)

// WeatherSystemType classifies the synoptic situation driving evolution.
type WeatherSystemType string

const (
	SystemStableHigh    WeatherSystemType = "stable_high"
	SystemActiveLow     WeatherSystemType = "active_low"
	SystemFrontal       WeatherSystemType = "frontal_system"
	SystemAirMassChange WeatherSystemType = "air_mass_change"
	SystemTransitional  WeatherSystemType = "transitional"
)

// WeatherSystem describes the classified system and its propensity to
// change versus persist.
type WeatherSystem struct {
	Type               WeatherSystemType
	EvolutionPotential float64 // [0,1], how likely the system is to evolve
	PersistenceFactor  float64 // [0,1], how strongly today repeats tomorrow
}

// CloudAnalysis is the aggregated cloud situation.
type CloudAnalysis struct {
	Cover    float64
	HasCover bool
}

// MoistureAnalysis is the aggregated humidity situation.
type MoistureAnalysis struct {
	Humidity      float64
	DewpointF     float64
	SpreadF       float64
	HumidityTrend float64 // %/h
	Saturated     bool
}

// WindPatternAnalysis is the aggregated wind situation.
type WindPatternAnalysis struct {
	SpeedMph   float64
	GustFactor float64
	SpeedTrend float64 // mph/h
	Direction  atmosphere.DirectionAnalysis
}

// State is the full snapshot the forecast generators consume.
type State struct {
	Timestamp time.Time
	Snapshot  types.SensorSnapshot

	Pressure         atmosphere.PressureAnalysis
	TemperatureTrend trend.Result
	Stability        float64 // [0,1] atmospheric stability index
	System           WeatherSystem

	Cloud       CloudAnalysis
	Moisture    MoistureAnalysis
	WindPattern WindPatternAnalysis
}

// Trend lookback windows used by the aggregator.
const (
	temperatureWindow = 6 * time.Hour
	humidityWindow    = 6 * time.Hour
	windSpeedWindow   = 3 * time.Hour
)

// Config holds the aggregator dependencies.
type Config struct {
	Trends *trend.Analyzer
	Logger *slog.Logger
}

// Aggregator builds the per-cycle meteorological state.
type Aggregator struct {
	trends *trend.Analyzer
	logger *slog.Logger
}

// NewAggregator creates an Aggregator.
func NewAggregator(cfg Config) *Aggregator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{trends: cfg.Trends, logger: logger}
}

// Build assembles the MeteorologicalState for this cycle from the snapshot
// and the analyses already computed by the classifier stage. cloudCover
// carries ok=false when no estimate exists yet (e.g. first night cycle).
func (a *Aggregator) Build(
	now time.Time,
	snap types.SensorSnapshot,
	pressure atmosphere.PressureAnalysis,
	wind atmosphere.DirectionAnalysis,
	cloudCover float64,
	hasCloudCover bool,
) State {
	st := State{
		Timestamp: now,
		Snapshot:  snap,
		Pressure:  pressure,
	}

	if res, ok := a.trends.Trend(types.KeyTemperature, now, temperatureWindow); ok {
		st.TemperatureTrend = res
	} else {
		st.TemperatureTrend = trend.Result{Current: snap.TemperatureF}
	}

	humidityTrend := 0.0
	if res, ok := a.trends.Trend(types.KeyHumidity, now, humidityWindow); ok {
		humidityTrend = res.Trend
	}
	st.Moisture = MoistureAnalysis{
		Humidity:      snap.Humidity,
		DewpointF:     snap.DewpointOrDerived(),
		SpreadF:       snap.TempDewpointSpreadF(),
		HumidityTrend: humidityTrend,
		Saturated:     snap.Humidity >= 95,
	}

	speedTrend := 0.0
	if res, ok := a.trends.Trend(types.KeyWindSpeed, now, windSpeedWindow); ok {
		speedTrend = res.Trend
	}
	st.WindPattern = WindPatternAnalysis{
		SpeedMph:   snap.WindSpeedMph,
		GustFactor: snap.GustFactor(),
		SpeedTrend: speedTrend,
		Direction:  wind,
	}

	st.Cloud = CloudAnalysis{Cover: cloudCover, HasCover: hasCloudCover}
	if !hasCloudCover {
		// Humidity is the only cloud proxy without a solar estimate.
		st.Cloud.Cover = types.ClampFloat(snap.Humidity*0.9, 0, 100)
	}

	st.Stability = stabilityIndex(snap, pressure)
	st.System = classifySystem(pressure, wind, st.Stability, st.TemperatureTrend.Trend)

	return st
}

// stabilityIndex computes the [0,1] atmospheric stability score: 0.5
// baseline, nudged by pressure-trend magnitude, wind, and humidity.
func stabilityIndex(snap types.SensorSnapshot, pressure atmosphere.PressureAnalysis) float64 {
	st := 0.5

	change := pressure.CurrentTrendHPa
	switch {
	case change < -2 || change > 2:
		st -= 0.2
	case change < -1 || change > 1:
		st -= 0.1
	case change > -0.3 && change < 0.3:
		st += 0.2
	}

	switch {
	case snap.WindSpeedMph > 15:
		st -= 0.15
	case snap.WindSpeedMph > 8:
		st -= 0.05
	case snap.WindSpeedMph < 4:
		st += 0.1
	}

	switch {
	case snap.Humidity > 85:
		st -= 0.05
	case snap.Humidity >= 40 && snap.Humidity <= 70:
		st += 0.05
	}

	return types.ClampFloat(st, 0, 1)
}

// classifySystem maps the analyses onto a weather-system type. Frontal
// signatures take priority; transitional is the residual class.
func classifySystem(pressure atmosphere.PressureAnalysis, wind atmosphere.DirectionAnalysis, stability, tempTrend float64) WeatherSystem {
	switch {
	case wind.SignificantShift && pressure.CurrentTrendHPa < -1:
		return WeatherSystem{Type: SystemFrontal, EvolutionPotential: 0.9, PersistenceFactor: 0.2}
	case pressure.System == atmosphere.SystemLowPressure && stability < 0.5:
		return WeatherSystem{Type: SystemActiveLow, EvolutionPotential: 0.8, PersistenceFactor: 0.3}
	case pressure.System == atmosphere.SystemHighPressure && stability >= 0.6:
		return WeatherSystem{Type: SystemStableHigh, EvolutionPotential: 0.2, PersistenceFactor: 0.9}
	case wind.Stability < 0.4 && (tempTrend > 1.5 || tempTrend < -1.5):
		return WeatherSystem{Type: SystemAirMassChange, EvolutionPotential: 0.7, PersistenceFactor: 0.4}
	default:
		return WeatherSystem{Type: SystemTransitional, EvolutionPotential: 0.5, PersistenceFactor: 0.5}
	}
}
