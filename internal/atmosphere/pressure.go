// Package atmosphere implements pressure, fog, and wind-direction analysis
// over the sensor history. All pressure values are in inches of mercury
// unless a name says otherwise; trend magnitudes are reported in hPa because
// the meteorological thresholds they are compared against are metric.
package atmosphere

import (
	"math"

	"microweather/internal/types"
)

// PressureSystem classifies the current synoptic regime.
type PressureSystem string

const (
	SystemHighPressure PressureSystem = "high_pressure"
	SystemLowPressure  PressureSystem = "low_pressure"
	SystemNormal       PressureSystem = "normal"
	SystemUnknown      PressureSystem = "unknown"
)

// Thresholds is the sea-level pressure band table, in inHg.
type Thresholds struct {
	VeryHigh     float64
	High         float64
	NormalHigh   float64
	NormalLow    float64
	Low          float64
	VeryLow      float64
	ExtremelyLow float64
}

// SeaLevelThresholds is the reference band table at altitude 0.
var SeaLevelThresholds = Thresholds{
	VeryHigh:     30.40,
	High:         30.20,
	NormalHigh:   30.00,
	NormalLow:    29.80,
	Low:          29.60,
	VeryLow:      29.30,
	ExtremelyLow: 29.00,
}

// Standard-atmosphere constants for the barometric formula.
const (
	lapseRateKPerM = 0.0065
	seaLevelTempK  = 288.15
	barometricExp  = 5.255
	hpaPerMeterDiv = 8.0 // pressure falls roughly 1 hPa per 8 m
)

// ShiftedForAltitude returns the band table shifted down by about 1 hPa per
// 8 m, for comparing station-level (relative) readings without converting
// them to sea level first.
func (t Thresholds) ShiftedForAltitude(altitudeM float64) Thresholds {
	if altitudeM <= 0 {
		return t
	}
	shift := types.HPaToInHg(altitudeM / hpaPerMeterDiv)
	return Thresholds{
		VeryHigh:     t.VeryHigh - shift,
		High:         t.High - shift,
		NormalHigh:   t.NormalHigh - shift,
		NormalLow:    t.NormalLow - shift,
		Low:          t.Low - shift,
		VeryLow:      t.VeryLow - shift,
		ExtremelyLow: t.ExtremelyLow - shift,
	}
}

// SeaLevelPressure converts a station-level reading to its sea-level
// equivalent using the barometric formula. Readings already tagged
// atmospheric (sea-level) or taken at altitude 0 pass through unchanged.
func SeaLevelPressure(readingInHg float64, absolute bool, altitudeM float64) float64 {
	if absolute || altitudeM <= 0 {
		return readingInHg
	}
	ratio := 1.0 - lapseRateKPerM*altitudeM/seaLevelTempK
	if ratio <= 0 {
		return readingInHg
	}
	return readingInHg / math.Pow(ratio, barometricExp)
}

// ClassifySystem maps a sea-level pressure to its synoptic regime.
func ClassifySystem(seaLevelInHg float64, t Thresholds) PressureSystem {
	switch {
	case seaLevelInHg <= 0:
		return SystemUnknown
	case seaLevelInHg >= t.High:
		return SystemHighPressure
	case seaLevelInHg <= t.Low:
		return SystemLowPressure
	default:
		return SystemNormal
	}
}
