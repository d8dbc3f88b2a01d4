package atmosphere

import (
	"log/slog"
	"time"

	"microweather/internal/history"
	"microweather/internal/trend"
	"microweather/internal/types"
)

// Lookback windows for pressure trends and wind-direction statistics.
const (
	shortTrendWindow = 3 * time.Hour
	longTrendWindow  = 24 * time.Hour
	windWindow       = 3 * time.Hour
)

// PressureAnalysis is the combined pressure-trend and storm assessment.
// Trend magnitudes are absolute changes over the window, in hPa.
type PressureAnalysis struct {
	CurrentTrendHPa  float64 // change over the last 3h
	LongTermTrendHPa float64 // change over the last 24h
	System           PressureSystem
	StormProbability float64 // [0, 100]
}

// Config holds the dependencies for an atmosphere Analyzer.
type Config struct {
	Store     *history.Store
	Trends    *trend.Analyzer
	AltitudeM float64
	Logger    *slog.Logger
}

// Analyzer derives pressure and wind analyses from sensor history.
type Analyzer struct {
	store      *history.Store
	trends     *trend.Analyzer
	altitudeM  float64
	thresholds Thresholds
	logger     *slog.Logger
}

// NewAnalyzer creates an Analyzer with altitude-adjusted pressure bands.
func NewAnalyzer(cfg Config) *Analyzer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		store:      cfg.Store,
		trends:     cfg.Trends,
		altitudeM:  cfg.AltitudeM,
		thresholds: SeaLevelThresholds.ShiftedForAltitude(cfg.AltitudeM),
		logger:     logger,
	}
}

// Thresholds returns the altitude-adjusted pressure band table used for
// classifying station-level readings.
func (a *Analyzer) Thresholds() Thresholds {
	return a.thresholds
}

// SeaLevel converts the snapshot's pressure reading to sea level.
func (a *Analyzer) SeaLevel(snap types.SensorSnapshot) float64 {
	return SeaLevelPressure(snap.PressureInHg, snap.PressureAbsolute, a.altitudeM)
}

// Bands returns the pressure reading and the band table it should be
// compared against. Station-level readings compare against the
// altitude-shifted table; sea-level readings against the reference table.
// Applying both the reading correction and the table shift would
// double-count the altitude.
func (a *Analyzer) Bands(snap types.SensorSnapshot) (float64, Thresholds) {
	if snap.PressureAbsolute {
		return snap.PressureInHg, SeaLevelThresholds
	}
	return snap.PressureInHg, a.thresholds
}

// AnalyzeWind computes wind-direction circular statistics over the trailing
// window.
func (a *Analyzer) AnalyzeWind(now time.Time) DirectionAnalysis {
	return AnalyzeWindDirection(a.store.Since(types.KeyWindDirection, now, windWindow))
}

// Storm-probability contributions. Accumulated additively and capped at 100.
const (
	stormRapidFallWeight    = 40.0 // 3h change below -2 hPa
	stormSustainedFallWt    = 30.0 // 24h change below -5 hPa
	stormVeryLowPressureWt  = 30.0 // absolute pressure below the very-low band
	stormWindShiftWeight    = 15.0 // >45 degree first-to-last shift
	stormRapidVeerWeight    = 20.0 // >30 deg/hr veer during a pressure fall
	stormUnstableLowWeight  = 10.0 // chaotic direction in a low-pressure system
	rapidVeerDegPerHr       = 30.0
	unstableDirectionBelow  = 0.3
	rapidFallHPaPer3h       = -2.0
	sustainedFallHPaPer24h  = -5.0
)

// AnalyzePressure combines short/long pressure trends, the pressure band
// classification, and wind-direction behavior into one PressureAnalysis
// with a bounded storm probability.
func (a *Analyzer) AnalyzePressure(now time.Time, snap types.SensorSnapshot, wind DirectionAnalysis) PressureAnalysis {
	analysis := PressureAnalysis{System: SystemUnknown}

	// Slopes are inHg per hour; scale to absolute change over the window
	// and convert to hPa.
	if res, ok := a.trends.Trend(types.KeyPressure, now, shortTrendWindow); ok {
		analysis.CurrentTrendHPa = types.InHgToHPa(res.Trend * shortTrendWindow.Hours())
	}
	if res, ok := a.trends.Trend(types.KeyPressure, now, longTrendWindow); ok {
		analysis.LongTermTrendHPa = types.InHgToHPa(res.Trend * longTrendWindow.Hours())
	}

	reading, bands := a.Bands(snap)
	analysis.System = ClassifySystem(reading, bands)

	prob := 0.0
	if analysis.CurrentTrendHPa < rapidFallHPaPer3h {
		prob += stormRapidFallWeight
	}
	if analysis.LongTermTrendHPa < sustainedFallHPaPer24h {
		prob += stormSustainedFallWt
	}
	if reading < bands.VeryLow {
		prob += stormVeryLowPressureWt
	}
	if wind.SignificantShift {
		prob += stormWindShiftWeight
	}
	if wind.ChangeRateDegPerHr > rapidVeerDegPerHr && analysis.CurrentTrendHPa < 0 {
		prob += stormRapidVeerWeight
	}
	if wind.Stability < unstableDirectionBelow && analysis.System == SystemLowPressure {
		prob += stormUnstableLowWeight
	}
	analysis.StormProbability = types.ClampFloat(prob, 0, 100)

	return analysis
}
