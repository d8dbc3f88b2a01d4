package types

import "math"

// Unit conversion constants. Sensor-facing code works in the units the
// station reports (imperial); the host-facing bundle is metric.
const (
	hpaPerInHg = 33.8639
	kmhPerMph  = 1.609344
)

// FahrenheitToCelsius converts a temperature in degrees Fahrenheit to Celsius.
func FahrenheitToCelsius(f float64) float64 {
	return (f - 32.0) * 5.0 / 9.0
}

// CelsiusToFahrenheit converts a temperature in degrees Celsius to Fahrenheit.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9.0/5.0 + 32.0
}

// InHgToHPa converts a pressure in inches of mercury to hectopascals.
func InHgToHPa(inHg float64) float64 {
	return inHg * hpaPerInHg
}

// HPaToInHg converts a pressure in hectopascals to inches of mercury.
func HPaToInHg(hpa float64) float64 {
	return hpa / hpaPerInHg
}

// MphToKmh converts a speed in miles per hour to kilometers per hour.
func MphToKmh(mph float64) float64 {
	return mph * kmhPerMph
}

// KmhToMph converts a speed in kilometers per hour to miles per hour.
func KmhToMph(kmh float64) float64 {
	return kmh / kmhPerMph
}

// DewpointF approximates the dewpoint in degrees Fahrenheit from temperature
// and relative humidity using the Magnus-Tetens equation, floored by the
// linear spread approximation T - (100-H)/2.
//
// The floor keeps the result finite as humidity approaches zero (Magnus
// diverges to -inf there) and pins DewpointF(t, 0) to exactly t-50. Both
// branches are nondecreasing in humidity, so their max is too.
func DewpointF(tempF, humidity float64) float64 {
	if humidity > 100 {
		humidity = 100
	}
	linear := tempF - (100.0-humidity)/2.0
	if humidity <= 0 {
		return linear
	}

	const (
		magnusA = 17.62
		magnusB = 243.12
	)
	tempC := FahrenheitToCelsius(tempF)
	gamma := math.Log(humidity/100.0) + magnusA*tempC/(magnusB+tempC)
	dewC := magnusB * gamma / (magnusA - gamma)
	magnus := CelsiusToFahrenheit(dewC)

	return math.Max(magnus, linear)
}

// PrecipIntensity grades a rain rate into coarse bands.
type PrecipIntensity string

const (
	PrecipNone     PrecipIntensity = "none"
	PrecipTrace    PrecipIntensity = "trace"
	PrecipLight    PrecipIntensity = "light"
	PrecipModerate PrecipIntensity = "moderate"
	PrecipHeavy    PrecipIntensity = "heavy"
)

// ClassifyPrecipIntensity grades a rain rate (in/h) into intensity bands.
// Band boundaries are inclusive on the upper edge: exactly 0.01 is trace,
// exactly 0.1 is light, exactly 0.5 is moderate.
func ClassifyPrecipIntensity(rateInHr float64) PrecipIntensity {
	switch {
	case rateInHr <= 0:
		return PrecipNone
	case rateInHr <= 0.01:
		return PrecipTrace
	case rateInHr <= 0.1:
		return PrecipLight
	case rateInHr <= 0.5:
		return PrecipModerate
	default:
		return PrecipHeavy
	}
}

// ClampFloat bounds v to the [lo, hi] interval.
func ClampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
