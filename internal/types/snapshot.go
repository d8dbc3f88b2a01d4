package types

import (
	"log/slog"
	"strconv"
	"time"
)

// RainState is the binary moisture sensor reading.
type RainState string

const (
	RainStateDry RainState = "dry"
	RainStateWet RainState = "wet"
)

// Sensor keys used for history tracking. The raw reading map from the host
// uses the same keys.
const (
	KeyTemperature    = "temperature"
	KeyHumidity       = "humidity"
	KeyPressure       = "pressure"
	// KeyPressureAbsolute tags KeyPressure as already sea-level corrected,
	// so no altitude correction applies downstream.
	KeyPressureAbsolute = "pressure_absolute"
	KeyWindSpeed      = "wind_speed"
	KeyWindGust       = "wind_gust"
	KeyWindDirection  = "wind_direction"
	KeyRainRate       = "rain_rate"
	KeyRainState      = "rain_state"
	KeySolarRadiation = "solar_radiation"
	KeySolarLux       = "solar_lux"
	KeyUVIndex        = "uv_index"
	KeyDewpoint       = "dewpoint"
	KeySolarElevation = "solar_elevation"
)

// Documented defaults substituted for missing or malformed readings.
// Formulas downstream never see a null or NaN.
const (
	DefaultTemperatureF  = 70.0
	DefaultHumidity      = 50.0
	DefaultPressureInHg  = 29.92
	DefaultWindSpeedMph  = 0.0
	DefaultWindGustMph   = 0.0
	DefaultWindDirDeg    = 0.0
	DefaultRainRateInHr  = 0.0
	DefaultSolarWM2      = 0.0
	DefaultSolarLux      = 0.0
	DefaultUVIndex       = 0.0
)

// SensorSnapshot is the normalized, strongly typed view of one poll cycle's
// readings. It is created once per cycle by Normalize and is immutable
// thereafter; downstream code never re-checks field types or presence.
type SensorSnapshot struct {
	Timestamp time.Time

	TemperatureF     float64
	Humidity         float64
	PressureInHg     float64
	// PressureAbsolute is true when the station already reports sea-level
	// (atmospheric) pressure, in which case no altitude correction applies.
	PressureAbsolute bool
	WindSpeedMph     float64
	WindGustMph      float64
	WindDirectionDeg float64
	RainRateInHr     float64
	RainState        RainState
	SolarRadiationWM2 float64
	SolarLux         float64
	UVIndex          float64

	// Optional readings. The Has* flags distinguish a genuine zero from an
	// absent sensor.
	DewpointF         float64
	HasDewpoint       bool
	SolarElevationDeg float64
	HasSolarElevation bool
}

// GustFactor returns the gust-to-sustained wind ratio, a turbulence and
// storm indicator. Calm air reports 1.0.
func (s SensorSnapshot) GustFactor() float64 {
	if s.WindSpeedMph <= 0.5 {
		return 1.0
	}
	f := s.WindGustMph / s.WindSpeedMph
	if f < 1.0 {
		return 1.0
	}
	return f
}

// DewpointOrDerived returns the reported dewpoint when the station has a
// dewpoint sensor, otherwise the Magnus approximation from temperature and
// humidity.
func (s SensorSnapshot) DewpointOrDerived() float64 {
	if s.HasDewpoint {
		return s.DewpointF
	}
	return DewpointF(s.TemperatureF, s.Humidity)
}

// TempDewpointSpreadF returns the temperature minus dewpoint spread, the
// primary saturation indicator for fog scoring.
func (s SensorSnapshot) TempDewpointSpreadF() float64 {
	return s.TemperatureF - s.DewpointOrDerived()
}

// Normalize converts a raw reading map into a SensorSnapshot, substituting
// the documented default for every missing or malformed field. Substitutions
// for malformed values are logged at debug level only; missing fields are
// silent.
func Normalize(raw map[string]any, now time.Time, logger *slog.Logger) SensorSnapshot {
	if logger == nil {
		logger = slog.Default()
	}

	snap := SensorSnapshot{
		Timestamp: now,
		RainState: RainStateDry,
	}

	snap.TemperatureF = numericField(raw, KeyTemperature, DefaultTemperatureF, logger)
	snap.Humidity = ClampFloat(numericField(raw, KeyHumidity, DefaultHumidity, logger), 0, 100)
	snap.PressureInHg = numericField(raw, KeyPressure, DefaultPressureInHg, logger)
	snap.PressureAbsolute = boolField(raw, KeyPressureAbsolute, logger)
	snap.WindSpeedMph = numericField(raw, KeyWindSpeed, DefaultWindSpeedMph, logger)
	snap.WindGustMph = numericField(raw, KeyWindGust, DefaultWindGustMph, logger)
	snap.WindDirectionDeg = normalizeDegrees(numericField(raw, KeyWindDirection, DefaultWindDirDeg, logger))
	snap.RainRateInHr = numericField(raw, KeyRainRate, DefaultRainRateInHr, logger)
	snap.SolarRadiationWM2 = numericField(raw, KeySolarRadiation, DefaultSolarWM2, logger)
	snap.SolarLux = numericField(raw, KeySolarLux, DefaultSolarLux, logger)
	snap.UVIndex = numericField(raw, KeyUVIndex, DefaultUVIndex, logger)

	if v, ok := raw[KeyRainState]; ok {
		switch rs := v.(type) {
		case string:
			if RainState(rs) == RainStateWet {
				snap.RainState = RainStateWet
			}
		case bool:
			if rs {
				snap.RainState = RainStateWet
			}
		default:
			logger.Debug("malformed rain_state reading, assuming dry", "value", v)
		}
	}

	if v, ok := numericValue(raw[KeyDewpoint]); ok {
		snap.DewpointF = v
		snap.HasDewpoint = true
	}
	if v, ok := numericValue(raw[KeySolarElevation]); ok {
		snap.SolarElevationDeg = v
		snap.HasSolarElevation = true
	}

	return snap
}

// numericField extracts a numeric reading, substituting def when the field
// is absent or malformed.
func numericField(raw map[string]any, key string, def float64, logger *slog.Logger) float64 {
	v, present := raw[key]
	if !present || v == nil {
		return def
	}
	f, ok := numericValue(v)
	if !ok {
		logger.Debug("malformed sensor reading, substituting default",
			"sensor", key,
			"value", v,
			"default", def,
		)
		return def
	}
	return f
}

// boolField extracts a boolean flag, tolerating string forms. Absent or
// malformed values read false.
func boolField(raw map[string]any, key string, logger *slog.Logger) bool {
	v, present := raw[key]
	if !present || v == nil {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(b)
		if err == nil {
			return parsed
		}
	}
	logger.Debug("malformed sensor flag, assuming false", "sensor", key, "value", v)
	return false
}

// numericValue coerces the loosely typed values sensor payloads actually
// contain (JSON numbers arrive as float64, some firmwares quote them).
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// normalizeDegrees wraps an angle into [0, 360).
func normalizeDegrees(deg float64) float64 {
	for deg < 0 {
		deg += 360
	}
	for deg >= 360 {
		deg -= 360
	}
	return deg
}
