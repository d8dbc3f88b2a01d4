package solar

import (
	"log/slog"
	"math"
	"time"

	"microweather/internal/atmosphere"
	"microweather/internal/history"
	"microweather/internal/types"
)

// Cloud-cover blending constants.
const (
	// Radiation dominates the blend once the sensor reports meaningful
	// daylight.
	radiationSignalWM2 = 10.0
	weightRadiation    = 0.80
	weightLux          = 0.15
	weightUV           = 0.05
	// UV is dropped from the blend when it disagrees with radiation by
	// more than this many cloud-cover points.
	uvDisagreement = 30.0

	// Derived maxima: approximate lux and UV-index per W/m² of irradiance.
	luxPerWM2 = 120.0
	uvPerWM2  = 0.009

	// Below this fraction of the clear-sky maximum the radiation signal is
	// too weak to trust on its own and the historical bias kicks in.
	lowSignalFraction = 0.30

	// The weighted moving average window for solar radiation.
	radiationAvgWindow = 15 * time.Minute
)

// Magnitude hysteresis: a jump larger than jumpThreshold against the last
// stored estimate is capped to maxStepPerCycle.
const (
	jumpThreshold   = 40.0
	maxStepPerCycle = 30.0
)

// Condition hysteresis thresholds: the cloud-cover delta required before a
// proposed condition change is accepted. Adjacent sky states need a larger
// delta than unrelated transitions; see DESIGN.md for the threshold choice.
const (
	adjacentPairThreshold    = 15.0
	defaultThreshold         = 5.0
	conditionRingRetention   = 24 * time.Hour
	estimateBufferRetention  = 2 * time.Hour
	estimateBufferMaxEntries = 16
)

// Pressure adjustment weighting and clamp.
const (
	adjWeightShortTerm = 0.3
	adjWeightLongTerm  = 0.4
	adjWeightSystem    = 0.3
	adjFloor           = -40.0
	adjCeiling         = 35.0
)

// conditionSample is one entry in the 24h condition-history ring: the
// accepted condition and the cloud cover that acceptance was anchored at.
type conditionSample struct {
	Condition  types.Condition
	CloudCover float64
}

// Config holds the dependencies for a solar Analyzer.
type Config struct {
	Store        *history.Store
	ZenithMaxWM2 float64
	Logger       *slog.Logger
}

// Analyzer estimates cloud cover and owns the engine's only long-lived
// mutable state besides sensor history: the rolling estimate buffer used
// for magnitude clamping and the 24h condition ring used for hysteresis.
// Not safe for concurrent use; the host serializes poll cycles.
type Analyzer struct {
	store     *history.Store
	zenithMax float64
	logger    *slog.Logger

	estimates  history.Buffer[float64]
	conditions history.Buffer[conditionSample]
}

// NewAnalyzer creates a solar Analyzer.
func NewAnalyzer(cfg Config) *Analyzer {
	zenith := cfg.ZenithMaxWM2
	if zenith <= 0 {
		zenith = DefaultZenithMaxWM2
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		store:     cfg.Store,
		zenithMax: zenith,
		logger:    logger,
	}
}

// EstimateCloudCover returns the current cloud-cover estimate in [0,100].
// It blends radiation, lux, and UV estimates against their clear-sky
// maxima, applies the pressure-trend adjustment, and runs the result
// through magnitude hysteresis before storing it.
func (a *Analyzer) EstimateCloudCover(now time.Time, snap types.SensorSnapshot, elevationDeg float64, pressure atmosphere.PressureAnalysis) float64 {
	clearSky := ClearSkyRadiation(now, elevationDeg, a.zenithMax)

	radAvg := a.weightedRadiationAverage(now, snap.SolarRadiationWM2)
	radCloud := coverAgainstMax(radAvg, clearSky)
	luxCloud := coverAgainstMax(snap.SolarLux, clearSky*luxPerWM2)
	uvCloud := coverAgainstMax(snap.UVIndex, clearSky*uvPerWM2)

	estimate := a.blend(snap, radCloud, luxCloud, uvCloud)

	// Weak-signal fallback: bias toward overcast, tempered by how clear
	// the recent condition history has been.
	if radAvg < lowSignalFraction*clearSky {
		bias := 85.0 - 35.0*a.clearFraction(now)
		estimate = math.Max(estimate, bias)
	}

	estimate = types.ClampFloat(estimate+a.pressureAdjustment(pressure), 0, 100)
	estimate = a.clampJump(estimate)

	a.estimates.Append(now, estimate)
	a.estimates.Evict(now, estimateBufferRetention, estimateBufferMaxEntries)

	return estimate
}

// blend combines the three cloud estimates according to which sensors are
// delivering signal. All sensors dark means complete overcast (or night;
// the classifier never asks for daytime cloud cover at night).
func (a *Analyzer) blend(snap types.SensorSnapshot, radCloud, luxCloud, uvCloud float64) float64 {
	switch {
	case snap.SolarRadiationWM2 > radiationSignalWM2:
		wRad, wLux, wUV := weightRadiation, weightLux, weightUV
		if math.Abs(uvCloud-radCloud) > uvDisagreement {
			wUV = 0
		}
		total := wRad + wLux + wUV
		return (radCloud*wRad + luxCloud*wLux + uvCloud*wUV) / total
	case snap.SolarLux > 0:
		if snap.UVIndex > 0 {
			return luxCloud*0.7 + uvCloud*0.3
		}
		return luxCloud
	case snap.UVIndex > 0:
		return uvCloud
	default:
		return 100.0
	}
}

// weightedRadiationAverage is the recency-weighted moving average of solar
// radiation over the last 15 minutes, falling back to the instantaneous
// reading when history is empty.
func (a *Analyzer) weightedRadiationAverage(now time.Time, current float64) float64 {
	samples := a.store.Since(types.KeySolarRadiation, now, radiationAvgWindow)
	if len(samples) == 0 {
		return current
	}
	var weighted, totalWeight float64
	for i, s := range samples {
		w := float64(i + 1) // linear ramp, newest sample heaviest
		weighted += s.Value * w
		totalWeight += w
	}
	return weighted / totalWeight
}

// pressureAdjustment maps pressure behavior onto a cloud-cover delta,
// weighted across the short-term trend, long-term trend, and classified
// system, clamped to [-40, 35].
func (a *Analyzer) pressureAdjustment(p atmosphere.PressureAnalysis) float64 {
	var short float64
	switch {
	case p.CurrentTrendHPa < -2:
		short = 40
	case p.CurrentTrendHPa < -1:
		short = 20
	case p.CurrentTrendHPa > 2:
		short = -30
	case p.CurrentTrendHPa > 1:
		short = -15
	}

	var long float64
	switch {
	case p.LongTermTrendHPa < -5:
		long = 40
	case p.LongTermTrendHPa < -2:
		long = 20
	case p.LongTermTrendHPa > 5:
		long = -40
	case p.LongTermTrendHPa > 2:
		long = -20
	}

	var system float64
	switch {
	case p.StormProbability >= 70:
		system = 40
	case p.System == atmosphere.SystemLowPressure:
		system = 20
	case p.System == atmosphere.SystemHighPressure:
		system = -50
	}

	adj := adjWeightShortTerm*short + adjWeightLongTerm*long + adjWeightSystem*system
	return types.ClampFloat(adj, adjFloor, adjCeiling)
}

// clampJump applies the magnitude hysteresis: when the raw estimate differs
// from the last stored estimate by more than 40 points, the change is
// capped at 30 points for this cycle.
func (a *Analyzer) clampJump(estimate float64) float64 {
	last, ok := a.estimates.Last()
	if !ok {
		return estimate
	}
	delta := estimate - last.Value
	if math.Abs(delta) <= jumpThreshold {
		return estimate
	}
	if delta > 0 {
		return last.Value + maxStepPerCycle
	}
	return last.Value - maxStepPerCycle
}

// ApplyConditionHysteresis accepts or rejects a proposed sky condition.
// The proposal is accepted only when the cloud-cover delta since the last
// accepted reading exceeds the transition-specific threshold; otherwise the
// previous condition is retained. The condition ring is pruned to 24h on
// every call.
func (a *Analyzer) ApplyConditionHysteresis(now time.Time, proposed types.Condition, cloudCover float64) types.Condition {
	a.conditions.Evict(now, conditionRingRetention, 0)

	last, ok := a.conditions.Last()
	if !ok || last.Value.Condition == proposed {
		a.conditions.Append(now, conditionSample{Condition: proposed, CloudCover: cloudCover})
		return proposed
	}

	delta := math.Abs(cloudCover - last.Value.CloudCover)
	if delta >= transitionThreshold(last.Value.Condition, proposed) {
		a.conditions.Append(now, conditionSample{Condition: proposed, CloudCover: cloudCover})
		return proposed
	}

	// Change rejected: re-record the previous condition at its anchor
	// cover so the reference point does not drift.
	a.conditions.Append(now, conditionSample{Condition: last.Value.Condition, CloudCover: last.Value.CloudCover})
	return last.Value.Condition
}

// LastEstimate returns the most recent stored cloud-cover estimate.
func (a *Analyzer) LastEstimate() (float64, bool) {
	last, ok := a.estimates.Last()
	if !ok {
		return 0, false
	}
	return last.Value, true
}

// LastAcceptedCondition returns the most recent condition in the ring.
func (a *Analyzer) LastAcceptedCondition() (types.Condition, bool) {
	last, ok := a.conditions.Last()
	if !ok {
		return "", false
	}
	return last.Value.Condition, true
}

// clearFraction is the fraction of the 24h condition ring spent in clear or
// mostly clear conditions; an empty ring reports a neutral 0.5.
func (a *Analyzer) clearFraction(now time.Time) float64 {
	entries := a.conditions.Since(now, conditionRingRetention)
	if len(entries) == 0 {
		return 0.5
	}
	clear := 0
	for _, e := range entries {
		switch e.Value.Condition {
		case types.ConditionSunny, types.ConditionClearNight, types.ConditionPartlyCloudy:
			clear++
		}
	}
	return float64(clear) / float64(len(entries))
}

// transitionThreshold returns the cloud-cover delta a transition must show
// before it is accepted.
func transitionThreshold(from, to types.Condition) float64 {
	if adjacentSkyPair(from, to) {
		return adjacentPairThreshold
	}
	return defaultThreshold
}

// adjacentSkyPair reports whether the transition is between neighboring
// members of the sunny / partly_cloudy / cloudy ladder, where noise most
// often causes flapping.
func adjacentSkyPair(from, to types.Condition) bool {
	pair := func(a, b types.Condition) bool {
		return (from == a && to == b) || (from == b && to == a)
	}
	return pair(types.ConditionSunny, types.ConditionPartlyCloudy) ||
		pair(types.ConditionClearNight, types.ConditionPartlyCloudy) ||
		pair(types.ConditionPartlyCloudy, types.ConditionCloudy)
}

// coverAgainstMax converts a signal and its clear-sky maximum into a cloud
// fraction percentage.
func coverAgainstMax(value, max float64) float64 {
	if max <= 0 {
		return 100
	}
	return types.ClampFloat((1.0-value/max)*100.0, 0, 100)
}
