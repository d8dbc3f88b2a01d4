// Package sensor fetches live readings from the weather station's LAN API
// and maps them onto the raw reading map the engine normalizes. All outbound
// calls run through a circuit breaker; a breaker-open or fetch failure means
// the poll cycle is skipped, never that stale data is invented. The station
// must be configured to report imperial units.
package sensor

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"

	"microweather/internal/types"
)

// Ecowitt live-data sensor ids.
const (
	idTemperature   = "0x02"
	idHumidity      = "0x07"
	idWindDirection = "0x0A"
	idWindSpeed     = "0x0B"
	idWindGust      = "0x0C"
	idRainRate      = "0x0E"
	idSolar         = "0x15"
	idUVIndex       = "0x17"
)

const livedataPath = "/get_livedata_info"

// livedata is the station's live-data payload. Values arrive as strings,
// frequently with a unit suffix.
type livedata struct {
	CommonList []livedataItem `json:"common_list"`
	Rain       []livedataItem `json:"rain"`
	WH25       []wh25Item     `json:"wh25"`
}

type livedataItem struct {
	ID   string `json:"id"`
	Val  string `json:"val"`
	Unit string `json:"unit"`
}

// wh25Item carries the barometer block. Rel is the sea-level (relative)
// reading, Abs the station-level one.
type wh25Item struct {
	Abs string `json:"abs"`
	Rel string `json:"rel"`
}

// Config holds the client settings. RetryWait is overridable so tests do
// not sleep through real backoff.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RetryWait time.Duration
	Logger    *slog.Logger
}

// Client fetches and decodes station readings.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker[map[string]any]
	logger  *slog.Logger
}

// NewClient creates a station client with retries and a circuit breaker.
func NewClient(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retryWait := cfg.RetryWait
	if retryWait <= 0 {
		retryWait = 500 * time.Millisecond
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(10 * retryWait).
		SetHeader("User-Agent", "microweather-stationd")

	breaker := gobreaker.NewCircuitBreaker[map[string]any](gobreaker.Settings{
		Name:        "station",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{http: httpClient, breaker: breaker, logger: logger}
}

// Fetch returns the current readings as a raw reading map keyed by the
// engine's sensor keys.
func (c *Client) Fetch(ctx context.Context) (map[string]any, error) {
	return c.breaker.Execute(func() (map[string]any, error) {
		var payload livedata
		resp, err := c.http.R().
			SetContext(ctx).
			SetResult(&payload).
			Get(livedataPath)
		if err != nil {
			return nil, fmt.Errorf("sensor: fetching live data: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("sensor: station returned status %d", resp.StatusCode())
		}
		return c.mapReadings(payload), nil
	})
}

// mapReadings converts the decoded payload into the engine's raw reading
// map. Unparseable values are skipped; the engine substitutes its defaults.
func (c *Client) mapReadings(payload livedata) map[string]any {
	raw := make(map[string]any)

	put := func(key, val string) {
		f, ok := parseLeadingFloat(val)
		if !ok {
			c.logger.Debug("unparseable station reading", "sensor", key, "value", val)
			return
		}
		raw[key] = f
	}

	for _, item := range payload.CommonList {
		switch item.ID {
		case idTemperature:
			put(types.KeyTemperature, item.Val)
		case idHumidity:
			put(types.KeyHumidity, item.Val)
		case idWindDirection:
			put(types.KeyWindDirection, item.Val)
		case idWindSpeed:
			put(types.KeyWindSpeed, item.Val)
		case idWindGust:
			put(types.KeyWindGust, item.Val)
		case idSolar:
			// The light sensor reports lux or W/m² depending on station
			// display settings; the unit field disambiguates.
			if strings.EqualFold(strings.TrimSpace(item.Unit), "lux") {
				put(types.KeySolarLux, item.Val)
			} else {
				put(types.KeySolarRadiation, item.Val)
			}
		case idUVIndex:
			put(types.KeyUVIndex, item.Val)
		}
	}

	for _, item := range payload.Rain {
		if item.ID == idRainRate {
			put(types.KeyRainRate, item.Val)
		}
	}

	if len(payload.WH25) > 0 {
		// Rel is the station's own sea-level correction; tag it so the
		// engine does not correct for altitude again.
		put(types.KeyPressure, payload.WH25[0].Rel)
		if _, ok := raw[types.KeyPressure]; ok {
			raw[types.KeyPressureAbsolute] = true
		}
	}

	return raw
}

// parseLeadingFloat parses the numeric prefix of a station value string,
// tolerating unit suffixes like "29.92 inHg", "52%", or "612.1 W/m2".
func parseLeadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		ch := s[end]
		if (ch >= '0' && ch <= '9') || ch == '.' || (end == 0 && (ch == '-' || ch == '+')) {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
