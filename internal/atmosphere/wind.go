package atmosphere

import (
	"math"

	"github.com/montanaflynn/stats"

	"microweather/internal/history"
)

// PrevailingDirection is the coarse compass quadrant of the circular mean.
type PrevailingDirection string

const (
	PrevailingNorth   PrevailingDirection = "north"
	PrevailingEast    PrevailingDirection = "east"
	PrevailingSouth   PrevailingDirection = "south"
	PrevailingWest    PrevailingDirection = "west"
	PrevailingUnknown PrevailingDirection = "unknown"
)

// DirectionAnalysis holds the circular statistics of recent wind direction.
type DirectionAnalysis struct {
	AverageDirection   float64
	Stability          float64 // 1 steady .. 0 chaotic
	ChangeRateDegPerHr float64
	SignificantShift   bool
	Prevailing         PrevailingDirection
}

// Significant-shift and neutral-default constants.
const (
	significantShiftDeg = 45.0
	neutralStability    = 0.5
	minDirectionSamples = 3
)

// AnalyzeWindDirection computes circular statistics over the given samples
// (degrees, time-ordered). With fewer than 3 samples it fails soft to
// neutral defaults: stability 0.5, no shift, unknown prevailing direction.
func AnalyzeWindDirection(samples []history.TimedValue[float64]) DirectionAnalysis {
	if len(samples) < minDirectionSamples {
		return DirectionAnalysis{
			Stability:  neutralStability,
			Prevailing: PrevailingUnknown,
		}
	}

	// Circular mean via sine/cosine averaging. A plain arithmetic mean is
	// wrong across the 0/360 wrap.
	var sinSum, cosSum float64
	for _, s := range samples {
		rad := s.Value * math.Pi / 180.0
		sinSum += math.Sin(rad)
		cosSum += math.Cos(rad)
	}
	mean := math.Atan2(sinSum, cosSum) * 180.0 / math.Pi
	if mean < 0 {
		mean += 360
	}

	// Volatility is the sample stdev of shortest-arc deviations from the
	// circular mean; stability maps it onto [0,1].
	deviations := make([]float64, len(samples))
	for i, s := range samples {
		deviations[i] = AngularDelta(mean, s.Value)
	}
	volatility := 0.0
	if sd, err := stats.StandardDeviationSample(deviations); err == nil {
		volatility = sd
	}
	stability := math.Max(0, 1.0-volatility/180.0)

	// Mean absolute angular change per hour over the window.
	var totalAbsDelta float64
	for i := 1; i < len(samples); i++ {
		totalAbsDelta += math.Abs(AngularDelta(samples[i-1].Value, samples[i].Value))
	}
	changeRate := 0.0
	elapsed := samples[len(samples)-1].Timestamp.Sub(samples[0].Timestamp).Hours()
	if elapsed > 0 {
		changeRate = totalAbsDelta / elapsed
	}

	firstToLast := AngularDelta(samples[0].Value, samples[len(samples)-1].Value)

	return DirectionAnalysis{
		AverageDirection:   mean,
		Stability:          stability,
		ChangeRateDegPerHr: changeRate,
		SignificantShift:   math.Abs(firstToLast) > significantShiftDeg,
		Prevailing:         prevailing(mean),
	}
}

// AngularDelta returns the shortest-arc difference from a to b, in the
// range [-180, 180].
func AngularDelta(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return d
}

func prevailing(direction float64) PrevailingDirection {
	switch {
	case direction >= 315 || direction < 45:
		return PrevailingNorth
	case direction < 135:
		return PrevailingEast
	case direction < 225:
		return PrevailingSouth
	default:
		return PrevailingWest
	}
}
