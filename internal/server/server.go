// Package server exposes the diagnostics HTTP API: current conditions and
// the forecast arrays from the latest completed cycle. The API serves only
// in-memory state; the engine itself stays synchronous and single-owner.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"microweather/internal/config"
	"microweather/internal/types"
)

// BundleSource yields the most recent completed cycle, if any.
type BundleSource interface {
	Latest() (types.Bundle, bool)
}

// BundleHolder is the concurrency-safe BundleSource the daemon publishes
// cycles into. The scheduler goroutine writes, HTTP handlers read.
type BundleHolder struct {
	mu     sync.RWMutex
	bundle types.Bundle
	set    bool
}

// Set publishes a completed cycle.
func (h *BundleHolder) Set(b types.Bundle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bundle = b
	h.set = true
}

// Latest implements BundleSource.
func (h *BundleHolder) Latest() (types.Bundle, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.bundle, h.set
}

// Config holds the server dependencies.
type Config struct {
	Source BundleSource
	Build  config.BuildInfo
	Logger *slog.Logger
}

// Server maps HTTP requests onto the latest bundle.
type Server struct {
	source BundleSource
	build  config.BuildInfo
	logger *slog.Logger
}

// New creates a Server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{source: cfg.Source, build: cfg.Build, logger: logger}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/conditions", s.handleConditions)
		r.Get("/forecast/daily", s.handleDaily)
		r.Get("/forecast/hourly", s.handleHourly)
	})
	return r
}

// healthResponse is the /healthz payload.
type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	HasCycle  bool   `json:"has_cycle"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, ok := s.source.Latest()
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   s.build.Version,
		Commit:    s.build.Commit,
		BuildTime: s.build.BuildTime,
		HasCycle:  ok,
	})
}

// conditionsResponse is the bundle without its forecast arrays.
type conditionsResponse struct {
	CycleID          string          `json:"cycle_id"`
	Timestamp        string          `json:"timestamp"`
	Condition        types.Condition `json:"condition"`
	TemperatureC     float64         `json:"temperature_c"`
	PressureHPa      float64         `json:"pressure_hpa"`
	WindSpeedKmh     float64         `json:"wind_speed_kmh"`
	Humidity         float64         `json:"humidity_percent"`
	VisibilityKm     float64         `json:"visibility_km"`
	StormProbability float64         `json:"storm_probability"`
}

func (s *Server) handleConditions(w http.ResponseWriter, r *http.Request) {
	bundle, ok := s.source.Latest()
	if !ok {
		s.writeError(w, http.StatusServiceUnavailable, "no cycle completed yet")
		return
	}
	s.writeJSON(w, http.StatusOK, conditionsResponse{
		CycleID:          bundle.CycleID,
		Timestamp:        bundle.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Condition:        bundle.Condition,
		TemperatureC:     bundle.TemperatureC,
		PressureHPa:      bundle.PressureHPa,
		WindSpeedKmh:     bundle.WindSpeedKmh,
		Humidity:         bundle.Humidity,
		VisibilityKm:     bundle.VisibilityKm,
		StormProbability: bundle.StormProbability,
	})
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	bundle, ok := s.source.Latest()
	if !ok {
		s.writeError(w, http.StatusServiceUnavailable, "no cycle completed yet")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"cycle_id": bundle.CycleID,
		"daily":    bundle.Daily,
	})
}

func (s *Server) handleHourly(w http.ResponseWriter, r *http.Request) {
	bundle, ok := s.source.Latest()
	if !ok {
		s.writeError(w, http.StatusServiceUnavailable, "no cycle completed yet")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"cycle_id": bundle.CycleID,
		"hourly":   bundle.Hourly,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encoding response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
