// Package evolution projects the classified weather system onto a fixed
// 4-stage future path with decaying confidence, and recognizes simple
// historical and seasonal patterns used by the forecast generators.
package evolution

import (
	"math"
	"time"

	"microweather/internal/meteo"
	"microweather/internal/trend"
	"microweather/internal/types"
)

// Stages is the number of qualitative steps every evolution path carries,
// one per forecast day after today.
const Stages = 4

// rapidChangeThreshold sets how unstable the atmosphere must be before the
// rapid-change transition probability becomes nonzero.
const rapidChangeThreshold = 0.7

// TransitionProbabilities describes how the current system is expected to
// move between stages. The three probabilities always sum to 1.
type TransitionProbabilities struct {
	Persistence   float64
	GradualChange float64
	RapidChange   float64
}

// Model is the evolution projection for one forecast cycle.
type Model struct {
	Path        [Stages]string
	Confidence  [Stages]float64 // strictly non-increasing
	Transitions TransitionProbabilities
}

// Fixed per-system evolution paths and confidence ladders.
var systemPaths = map[meteo.WeatherSystemType]struct {
	path       [Stages]string
	confidence [Stages]float64
}{
	meteo.SystemStableHigh: {
		path:       [Stages]string{"stable_high", "weakening_high", "transitional", "new_system"},
		confidence: [Stages]float64{0.90, 0.75, 0.55, 0.35},
	},
	meteo.SystemActiveLow: {
		path:       [Stages]string{"active_low", "deepening_low", "filling_low", "clearing"},
		confidence: [Stages]float64{0.85, 0.70, 0.50, 0.30},
	},
	meteo.SystemFrontal: {
		path:       [Stages]string{"pre_frontal", "frontal_passage", "post_frontal", "stabilizing"},
		confidence: [Stages]float64{0.80, 0.70, 0.50, 0.35},
	},
	meteo.SystemAirMassChange: {
		path:       [Stages]string{"air_mass_change", "adjustment", "settling", "established"},
		confidence: [Stages]float64{0.75, 0.60, 0.45, 0.30},
	},
	meteo.SystemTransitional: {
		path:       [Stages]string{"transitional", "developing", "organizing", "established"},
		confidence: [Stages]float64{0.70, 0.55, 0.40, 0.30},
	},
}

// stageConditions maps each evolution stage to the base condition the daily
// forecast starts from before its overrides run.
var stageConditions = map[string]types.Condition{
	"stable_high":     types.ConditionSunny,
	"weakening_high":  types.ConditionPartlyCloudy,
	"transitional":    types.ConditionPartlyCloudy,
	"new_system":      types.ConditionCloudy,
	"active_low":      types.ConditionRainy,
	"deepening_low":   types.ConditionPouring,
	"filling_low":     types.ConditionRainy,
	"clearing":        types.ConditionPartlyCloudy,
	"pre_frontal":     types.ConditionCloudy,
	"frontal_passage": types.ConditionRainy,
	"post_frontal":    types.ConditionPartlyCloudy,
	"stabilizing":     types.ConditionPartlyCloudy,
	"air_mass_change": types.ConditionPartlyCloudy,
	"adjustment":      types.ConditionPartlyCloudy,
	"settling":        types.ConditionPartlyCloudy,
	"established":     types.ConditionSunny,
	"developing":      types.ConditionCloudy,
	"organizing":      types.ConditionCloudy,
}

// StageCondition returns the base condition for an evolution stage.
// Unknown stages fall back to partly_cloudy.
func StageCondition(stage string) types.Condition {
	if c, ok := stageConditions[stage]; ok {
		return c
	}
	return types.ConditionPartlyCloudy
}

// BuildModel maps the classified system and stability index onto the fixed
// evolution path and the normalized transition probabilities.
func BuildModel(system meteo.WeatherSystem, stability float64) Model {
	entry, ok := systemPaths[system.Type]
	if !ok {
		entry = systemPaths[meteo.SystemTransitional]
	}

	persistence := types.ClampFloat(stability, 0, 1)
	gradual := 1.0 - persistence
	rapid := math.Max(0, (1.0-persistence)-rapidChangeThreshold)
	total := persistence + gradual + rapid

	return Model{
		Path:       entry.path,
		Confidence: entry.confidence,
		Transitions: TransitionProbabilities{
			Persistence:   persistence / total,
			GradualChange: gradual / total,
			RapidChange:   rapid / total,
		},
	}
}

// PressureRegime is the coarse pressure-cycle classification from recent
// volatility.
type PressureRegime string

const (
	RegimeStable   PressureRegime = "stable"
	RegimeModerate PressureRegime = "moderate"
	RegimeActive   PressureRegime = "active"
)

// Patterns holds the simple historical and seasonal signals.
type Patterns struct {
	// SeasonalFactor is the annual warmth cycle in [-1, 1]: +1 at the
	// summer-solstice peak, -1 midwinter (northern hemisphere).
	SeasonalFactor float64
	Regime         PressureRegime
	// TempPressureCorrelation is the coarse sign agreement of the 24h
	// temperature and pressure slopes: -1, 0, or +1.
	TempPressureCorrelation float64
}

// Volatility bands for the pressure regime, in inHg stdev over 24h.
const (
	stableVolatilityBelow   = 0.02
	moderateVolatilityBelow = 0.06
	patternWindow           = 24 * time.Hour
)

// AnalyzePatterns derives the seasonal factor and pressure-cycle regime for
// the current instant.
func AnalyzePatterns(now time.Time, trends *trend.Analyzer) Patterns {
	p := Patterns{
		SeasonalFactor: seasonalFactor(now),
		Regime:         RegimeStable,
	}

	pressure, pok := trends.Trend(types.KeyPressure, now, patternWindow)
	if pok {
		switch {
		case pressure.Volatility < stableVolatilityBelow:
			p.Regime = RegimeStable
		case pressure.Volatility < moderateVolatilityBelow:
			p.Regime = RegimeModerate
		default:
			p.Regime = RegimeActive
		}
	}

	temperature, tok := trends.Trend(types.KeyTemperature, now, patternWindow)
	if pok && tok {
		p.TempPressureCorrelation = slopeSignCorrelation(temperature.Trend, types.InHgToHPa(pressure.Trend))
	}

	return p
}

// seasonalFactor is the sine of the annual cycle, anchored so the March
// equinox crosses zero and the June solstice peaks.
func seasonalFactor(now time.Time) float64 {
	doy := float64(now.YearDay())
	return math.Sin(2.0 * math.Pi * (doy - 81.0) / 365.0)
}

// slopeSignCorrelation is the coarse agreement between two slopes. Slopes
// too flat to be meaningful report no correlation.
func slopeSignCorrelation(tempPerHr, pressureHPaPerHr float64) float64 {
	if math.Abs(tempPerHr) < 0.1 || math.Abs(pressureHPaPerHr) < 0.1 {
		return 0
	}
	if (tempPerHr > 0) == (pressureHPaPerHr > 0) {
		return 1
	}
	return -1
}
