// Package trend derives regression statistics over sensor history windows.
// Results are recomputed per call and never cached.
package trend

import (
	"time"

	"github.com/montanaflynn/stats"

	"microweather/internal/history"
)

// Result holds the derived statistics for one sensor over one lookback
// window. Trend is the ordinary-least-squares slope in value units per hour.
type Result struct {
	Current     float64
	Average     float64
	Trend       float64
	Min         float64
	Max         float64
	Volatility  float64
	SampleCount int
}

// Analyzer computes trend statistics from a history store.
type Analyzer struct {
	store *history.Store
}

// NewAnalyzer creates an Analyzer over the given store.
func NewAnalyzer(store *history.Store) *Analyzer {
	return &Analyzer{store: store}
}

// Trend computes statistics for the sensor key over the trailing window.
// It fails soft: fewer than 2 samples, or an unknown key, returns a zero
// Result and ok=false.
func (a *Analyzer) Trend(key string, now time.Time, window time.Duration) (Result, bool) {
	samples := a.store.Since(key, now, window)
	if len(samples) < 2 {
		return Result{}, false
	}

	values := make([]float64, len(samples))
	elapsed := make([]float64, len(samples))
	start := samples[0].Timestamp
	for i, s := range samples {
		values[i] = s.Value
		elapsed[i] = s.Timestamp.Sub(start).Hours()
	}

	res := Result{
		Current:     values[len(values)-1],
		Trend:       slope(elapsed, values),
		SampleCount: len(values),
	}

	// The statistics library errors only on degenerate input; per the
	// soft-failure contract those degrade to 0 rather than surfacing.
	if mean, err := stats.Mean(values); err == nil {
		res.Average = mean
	}
	if min, err := stats.Min(values); err == nil {
		res.Min = min
	}
	if max, err := stats.Max(values); err == nil {
		res.Max = max
	}
	if sd, err := stats.StandardDeviationSample(values); err == nil {
		res.Volatility = sd
	}

	return res, true
}

// slope is the ordinary-least-squares slope of values over elapsed hours.
// A degenerate time axis (all samples at one instant) yields 0.
func slope(x, y []float64) float64 {
	n := float64(len(x))
	var sumX, sumY, sumXY, sumXX float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumXX += x[i] * x[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
