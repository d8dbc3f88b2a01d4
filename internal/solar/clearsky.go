// Package solar implements the astronomical clear-sky radiation model, the
// cloud-cover estimator, and the cloud-cover/condition hysteresis that keeps
// the classifier from oscillating under noisy solar input.
package solar

import (
	"math"
	"time"

	"microweather/internal/types"
)

// DefaultZenithMaxWM2 is the calibration constant: the radiation a clean
// sensor would report with the sun at zenith under a clear sky.
const DefaultZenithMaxWM2 = 1000.0

// Clear-sky model bounds. Elevation at or below the horizon returns the
// floor; nothing the model produces exceeds the ceiling.
const (
	clearSkyFloorWM2   = 50.0
	clearSkyCeilingWM2 = 2000.0
)

// Atmospheric extinction coefficients, applied as exp(-k * airmass) each.
const (
	extinctionRayleigh = 0.09
	extinctionOzone    = 0.014
	extinctionWater    = 0.031
	extinctionAerosol  = 0.080
)

// seasonalAmplitude is the annual solar-constant variation from the Earth's
// orbital eccentricity.
const seasonalAmplitude = 0.033

// ClearSkyRadiation returns the theoretical maximum solar irradiance in W/m²
// for the given instant and solar elevation (degrees), calibrated so that a
// zenith sun in January yields roughly zenithMax.
func ClearSkyRadiation(t time.Time, elevationDeg, zenithMaxWM2 float64) float64 {
	if zenithMaxWM2 <= 0 {
		zenithMaxWM2 = DefaultZenithMaxWM2
	}
	if elevationDeg <= 0 {
		return clearSkyFloorWM2
	}

	doy := float64(t.YearDay())
	seasonal := 1.0 + seasonalAmplitude*math.Cos(2.0*math.Pi*doy/365.0)

	am := airMass(elevationDeg)
	// Normalize extinction against the zenith path so the calibration
	// constant keeps its meaning regardless of the coefficients.
	transmit := extinction(am) / extinction(1.0)

	sinElev := math.Sin(elevationDeg * math.Pi / 180.0)
	radiation := zenithMaxWM2 * seasonal * transmit * sinElev

	return types.ClampFloat(radiation, clearSkyFloorWM2, clearSkyCeilingWM2)
}

// airMass is the Kasten-Young approximation of relative atmospheric path
// length for a solar elevation in degrees. 1.0 at zenith, rising sharply
// toward the horizon.
func airMass(elevationDeg float64) float64 {
	sinElev := math.Sin(elevationDeg * math.Pi / 180.0)
	return 1.0 / (sinElev + 0.50572*math.Pow(elevationDeg+6.07995, -1.6364))
}

// extinction is the combined multiplicative atmospheric transmittance for
// the given air mass.
func extinction(am float64) float64 {
	return math.Exp(-extinctionRayleigh*am) *
		math.Exp(-extinctionOzone*am) *
		math.Exp(-extinctionWater*am) *
		math.Exp(-extinctionAerosol*am)
}
