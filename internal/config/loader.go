// loader.go implements the configuration loading lifecycle:
//
//  1. Enforce UTC to prevent drift bugs in the diurnal and history math.
//  2. Load a .env file via godotenv (non-fatal if absent, never overrides
//     existing environment variables).
//  3. Process envconfig struct tags.
//  4. Populate build metadata from linker-injected variables.
//  5. Validate with go-playground/validator.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load loads and validates the stationd configuration from the environment.
func Load() (*Config, error) {
	time.Local = time.UTC

	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: processing environment: %w", err)
	}
	cfg.Build = NewBuildInfo()

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}
	return &cfg, nil
}
