// Package config defines the station daemon configuration. Configuration is
// loaded once at process start and is immutable thereafter; values come from
// the OS environment, optionally seeded from a .env file. Any invalid value
// fails the load (fail fast).
package config

import "time"

// Config is the top-level configuration for stationd. Components receive
// only the subsets they require.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Station  StationConfig
	Engine   EngineConfig
	Server   ServerConfig
	Database DatabaseConfig

	// Build metadata, injected via ldflags rather than the environment.
	Build BuildInfo
}

// StationConfig locates the weather station and controls polling.
type StationConfig struct {
	// BaseURL is the LAN endpoint of the station's live-data API.
	BaseURL string `envconfig:"STATION_URL" validate:"required,url"`

	// UpdateIntervalMinutes is the poll cadence. Bounded so the history
	// buffers stay meaningful: faster than 1/min adds no signal, slower
	// than hourly starves the 3h trend window.
	UpdateIntervalMinutes int `envconfig:"UPDATE_INTERVAL_MINUTES" default:"5" validate:"min=1,max=60"`

	RequestTimeout time.Duration `envconfig:"STATION_REQUEST_TIMEOUT" default:"10s"`
}

// EngineConfig holds the inference-engine calibration.
type EngineConfig struct {
	AltitudeM float64 `envconfig:"STATION_ALTITUDE_M" default:"0"`

	// ZenithMaxWM2 calibrates the clear-sky model to the local radiation
	// sensor. 0 uses the model default (1000 W/m²).
	ZenithMaxWM2 float64 `envconfig:"ZENITH_MAX_WM2" default:"0" validate:"gte=0,lte=2000"`

	Latitude  float64 `envconfig:"STATION_LATITUDE" default:"0" validate:"gte=-90,lte=90"`
	Longitude float64 `envconfig:"STATION_LONGITUDE" default:"0" validate:"gte=-180,lte=180"`

	// ForecastSeed fixes the forecast jitter RNG. 0 seeds from the clock.
	ForecastSeed int64 `envconfig:"FORECAST_SEED" default:"0"`
}

// ServerConfig holds the diagnostics HTTP API settings.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
}

// DatabaseConfig holds the optional cycle-archive connection. An empty URL
// disables archiving entirely.
type DatabaseConfig struct {
	URL string `envconfig:"DATABASE_URL" default:"" validate:"omitempty,url"`

	MaxConns       int           `envconfig:"DB_MAX_CONNS" default:"4"`
	AcquireTimeout time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
}

// PollInterval returns the update interval as a duration.
func (c StationConfig) PollInterval() time.Duration {
	return time.Duration(c.UpdateIntervalMinutes) * time.Minute
}

// ArchiveEnabled reports whether the cycle archive is configured.
func (c DatabaseConfig) ArchiveEnabled() bool {
	return c.URL != ""
}
