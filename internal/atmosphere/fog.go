package atmosphere

import "microweather/internal/types"

// FogAnalysis is the result of scoring the current readings for fog.
type FogAnalysis struct {
	Score  float64
	Likely bool
}

// Fog decision thresholds. A score at or above Strong always resolves to
// fog; Moderate does too; Marginal needs near-saturated humidity as
// corroboration.
const (
	fogScoreStrong   = 70.0
	fogScoreModerate = 55.0
	fogScoreMarginal = 45.0
)

// ScoreFog computes the additive 0-100 fog score from humidity, the
// temperature-dewpoint spread, wind, and solar radiation, plus the
// evaporation-fog bonus.
func ScoreFog(snap types.SensorSnapshot, isDaytime bool) FogAnalysis {
	score := humidityFactor(snap.Humidity) +
		spreadFactor(snap.TempDewpointSpreadF()) +
		windFactor(snap.WindSpeedMph) +
		solarFactor(snap.SolarRadiationWM2, isDaytime)

	// Evaporation fog: warm, saturated, near-zero spread.
	if snap.TemperatureF > 40 && snap.Humidity >= 95 && snap.TempDewpointSpreadF() <= 2 {
		score += 5
	}

	score = types.ClampFloat(score, 0, 100)

	likely := score >= fogScoreStrong ||
		score >= fogScoreModerate ||
		(score >= fogScoreMarginal && snap.Humidity >= 95)

	return FogAnalysis{Score: score, Likely: likely}
}

func humidityFactor(humidity float64) float64 {
	switch {
	case humidity >= 98:
		return 40
	case humidity >= 95:
		return 30
	case humidity >= 92:
		return 20
	case humidity >= 88:
		return 10
	default:
		return 0
	}
}

func spreadFactor(spreadF float64) float64 {
	switch {
	case spreadF <= 0.5:
		return 30
	case spreadF <= 1.0:
		return 25
	case spreadF <= 2.0:
		return 15
	case spreadF <= 3.0:
		return 5
	default:
		return 0
	}
}

func windFactor(windMph float64) float64 {
	switch {
	case windMph <= 2:
		return 15
	case windMph <= 5:
		return 10
	case windMph <= 8:
		return 5
	default:
		return -10
	}
}

func solarFactor(radiationWM2 float64, isDaytime bool) float64 {
	if isDaytime {
		switch {
		case radiationWM2 < 50:
			return 15
		case radiationWM2 < 150:
			return 10
		case radiationWM2 < 300:
			return 5
		default:
			return 0
		}
	}
	switch {
	case radiationWM2 <= 2:
		return 10
	case radiationWM2 <= 10:
		return 5
	case radiationWM2 <= 50:
		return 0
	default:
		return -15
	}
}
