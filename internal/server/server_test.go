package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microweather/internal/config"
	"microweather/internal/types"
)

func testBundle() types.Bundle {
	now := time.Date(2025, time.June, 21, 12, 0, 0, 0, time.UTC)
	daily := make([]types.DailyForecast, 5)
	for i := range daily {
		daily[i] = types.DailyForecast{
			Datetime:     now.AddDate(0, 0, i),
			TemperatureF: 75,
			TempLowF:     60,
			Condition:    types.ConditionSunny,
		}
	}
	hourly := make([]types.HourlyForecast, 24)
	for i := range hourly {
		hourly[i] = types.HourlyForecast{
			Datetime:     now.Add(time.Duration(i+1) * time.Hour),
			TemperatureF: 72,
			Condition:    types.ConditionSunny,
		}
	}
	return types.Bundle{
		CycleID:      "0b9cc25e-7a4f-4f6a-b6e5-0123456789ab",
		Timestamp:    now,
		Condition:    types.ConditionSunny,
		TemperatureC: 23.9,
		PressureHPa:  1013.2,
		WindSpeedKmh: 6.4,
		Humidity:     45,
		VisibilityKm: 16,
		Daily:        daily,
		Hourly:       hourly,
	}
}

func newTestServer(withBundle bool) *httptest.Server {
	holder := &BundleHolder{}
	if withBundle {
		holder.Set(testBundle())
	}
	s := New(Config{Source: holder, Build: config.NewBuildInfo()})
	return httptest.NewServer(s.Router())
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(false)
	defer srv.Close()

	resp, body := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "dev", body["version"])
	assert.Equal(t, false, body["has_cycle"])
}

func TestConditionsBeforeFirstCycle(t *testing.T) {
	srv := newTestServer(false)
	defer srv.Close()

	resp, body := get(t, srv, "/v1/conditions")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body["error"], "no cycle")
}

func TestConditions(t *testing.T) {
	srv := newTestServer(true)
	defer srv.Close()

	resp, body := get(t, srv, "/v1/conditions")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "sunny", body["condition"])
	assert.InDelta(t, 23.9, body["temperature_c"], 0.001)
	assert.InDelta(t, 1013.2, body["pressure_hpa"], 0.001)
	assert.InDelta(t, 16, body["visibility_km"], 0.001)
	assert.Equal(t, "2025-06-21T12:00:00Z", body["timestamp"])
}

func TestForecastDaily(t *testing.T) {
	srv := newTestServer(true)
	defer srv.Close()

	resp, body := get(t, srv, "/v1/forecast/daily")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	daily, ok := body["daily"].([]any)
	require.True(t, ok)
	assert.Len(t, daily, 5)
}

func TestForecastHourly(t *testing.T) {
	srv := newTestServer(true)
	defer srv.Close()

	resp, body := get(t, srv, "/v1/forecast/hourly")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	hourly, ok := body["hourly"].([]any)
	require.True(t, ok)
	assert.Len(t, hourly, 24)
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(true)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBundleHolderLatest(t *testing.T) {
	holder := &BundleHolder{}
	_, ok := holder.Latest()
	assert.False(t, ok)

	holder.Set(testBundle())
	got, ok := holder.Latest()
	require.True(t, ok)
	assert.Equal(t, types.ConditionSunny, got.Condition)
}
