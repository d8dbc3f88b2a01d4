package types

import "time"

// DailyForecast is one day of the 5-day forecast.
type DailyForecast struct {
	Datetime        time.Time `json:"datetime"`
	TemperatureF    float64   `json:"temperature"`
	TempLowF        float64   `json:"templow"`
	Condition       Condition `json:"condition"`
	PrecipitationIn float64   `json:"precipitation"`
	WindSpeedMph    float64   `json:"wind_speed"`
	Humidity        float64   `json:"humidity"`
}

// HourlyForecast is one hour of the 24-hour forecast.
type HourlyForecast struct {
	Datetime        time.Time `json:"datetime"`
	TemperatureF    float64   `json:"temperature"`
	Condition       Condition `json:"condition"`
	PrecipitationIn float64   `json:"precipitation"`
	WindSpeedMph    float64   `json:"wind_speed"`
	Humidity        float64   `json:"humidity"`
	IsNighttime     bool      `json:"is_nighttime"`
}

// Bundle is the complete per-cycle output returned to the host: the current
// condition, converted ambient values, and the two forecast arrays. Daily
// always holds exactly 5 records and Hourly exactly 24, even when forecast
// generation fell back internally.
type Bundle struct {
	CycleID   string    `json:"cycle_id"`
	Timestamp time.Time `json:"timestamp"`

	Condition Condition `json:"condition"`

	TemperatureC float64 `json:"temperature_c"`
	PressureHPa  float64 `json:"pressure_hpa"`
	WindSpeedKmh float64 `json:"wind_speed_kmh"`
	Humidity     float64 `json:"humidity_percent"`
	VisibilityKm float64 `json:"visibility_km"`

	StormProbability float64 `json:"storm_probability"`

	Daily  []DailyForecast  `json:"daily"`
	Hourly []HourlyForecast `json:"hourly"`
}
