// Package classifier resolves the current weather condition from the
// normalized snapshot and the analyzer outputs. Classification is an
// ordered list of named guard rules evaluated in fixed priority order;
// the first rule that matches wins. Each rule is a pure function over the
// Inputs, independently testable.
package classifier

import (
	"log/slog"
	"time"

	"microweather/internal/atmosphere"
	"microweather/internal/solar"
	"microweather/internal/types"
)

// Inputs is everything a rule may consult. It is assembled once per cycle
// by the engine.
type Inputs struct {
	Now  time.Time
	Snap types.SensorSnapshot

	// PressureReading and Bands are on a consistent comparison basis
	// (see atmosphere.Analyzer.Bands).
	PressureReading float64
	Bands           atmosphere.Thresholds

	Pressure atmosphere.PressureAnalysis
	Wind     atmosphere.DirectionAnalysis
}

// Daylight detection thresholds.
const (
	daytimeRadiationWM2 = 5.0
	daytimeLux          = 50.0
	daytimeUV           = 0.1

	// brightTwilightLux splits the twilight band the daytime rule leaves
	// behind (lux at most daytimeLux) into bright and dim halves.
	brightTwilightLux = 25.0
)

// IsDaytime reports whether any solar sensor shows daytime-level signal.
func (in Inputs) IsDaytime() bool {
	return in.Snap.SolarRadiationWM2 > daytimeRadiationWM2 ||
		in.Snap.SolarLux > daytimeLux ||
		in.Snap.UVIndex > daytimeUV
}

// IsTwilight reports the dim band between day and night.
func (in Inputs) IsTwilight() bool {
	lux := in.Snap.SolarLux
	rad := in.Snap.SolarRadiationWM2
	return (lux > 10 && lux < 100) || (rad > 1 && rad < 50)
}

// Wind thresholds.
const (
	galeWindMph       = 28.0
	strongWindMph     = 20.0
	strongGustMph     = 30.0
	stormGustMph      = 35.0
	severeGustFactor  = 2.2
	stormyGustFactor  = 2.0
	squallGustFactor  = 1.8
	severeGustWindMph = 15.0
)

// Precipitation thresholds.
const (
	rainingRateInHr  = 0.01
	pouringRateInHr  = 0.25
	freezingTempF    = 32.0
	moderateRainInHr = 0.1
	heavyishRainInHr = 0.3
)

// Cloud-cover bands for the sunny / partly_cloudy / cloudy mapping.
const (
	sunnyCoverBelow  = 25.0
	cloudyCoverFrom  = 70.0
	defaultElevation = 45.0
)

// rule is one named guard in the priority ladder.
type rule struct {
	name string
	eval func(in Inputs) (types.Condition, bool)
}

// Config holds the classifier dependencies.
type Config struct {
	Solar     *solar.Analyzer
	Latitude  float64
	Longitude float64
	HasCoords bool
	Logger    *slog.Logger
}

// Classifier owns the rule ladder and the solar analyzer used by the
// daytime sky rule.
type Classifier struct {
	solar     *solar.Analyzer
	latitude  float64
	longitude float64
	hasCoords bool
	logger    *slog.Logger
	rules     []rule
}

// New creates a Classifier with the standard rule order: precipitation,
// fog, severe wind, then the day/twilight/night sky ladder.
func New(cfg Config) *Classifier {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Classifier{
		solar:     cfg.Solar,
		latitude:  cfg.Latitude,
		longitude: cfg.Longitude,
		hasCoords: cfg.HasCoords,
		logger:    logger,
	}
	c.rules = []rule{
		{name: "precipitation", eval: precipitationRule},
		{name: "fog", eval: fogRule},
		{name: "severe_wind", eval: severeWindRule},
		{name: "daytime_sky", eval: c.daytimeSkyRule},
		{name: "twilight_sky", eval: twilightSkyRule},
		{name: "night_sky", eval: nightSkyRule},
	}
	return c
}

// Classify runs the rule ladder and returns the first match. The ladder
// always terminates: the night rule carries a default.
func (c *Classifier) Classify(in Inputs) types.Condition {
	for _, r := range c.rules {
		if cond, ok := r.eval(in); ok {
			c.logger.Debug("condition classified",
				"rule", r.name,
				"condition", string(cond),
			)
			return cond
		}
	}
	// Unreachable: nightSkyRule always matches. Kept as a hard backstop.
	return types.ConditionPartlyCloudy
}

// precipitationRule handles active rain or snow, including thunderstorm
// escalation.
func precipitationRule(in Inputs) (types.Condition, bool) {
	snap := in.Snap
	raining := snap.RainRateInHr > rainingRateInHr || snap.RainState == types.RainStateWet
	if !raining {
		return "", false
	}

	if snap.TemperatureF <= freezingTempF {
		return types.ConditionSnowy, true
	}

	if thunderstormConditions(in) {
		return types.ConditionLightningRainy, true
	}

	intensity := types.ClassifyPrecipIntensity(snap.RainRateInHr)
	if intensity == types.PrecipHeavy || snap.RainRateInHr > pouringRateInHr {
		return types.ConditionPouring, true
	}
	return types.ConditionRainy, true
}

// thunderstormConditions checks the pressure/wind/rain combinations that
// escalate rain to a thunderstorm.
func thunderstormConditions(in Inputs) bool {
	snap := in.Snap
	rate := snap.RainRateInHr
	switch {
	case in.PressureReading < in.Bands.ExtremelyLow:
		return true
	case in.PressureReading < in.Bands.VeryLow &&
		snap.WindSpeedMph >= strongWindMph && rate >= moderateRainInHr:
		return true
	case snap.WindGustMph >= stormGustMph && rate > heavyishRainInHr:
		return true
	case snap.GustFactor() >= stormyGustFactor && rate > moderateRainInHr:
		return true
	}
	return false
}

// fogRule delegates to the atmospheric fog score.
func fogRule(in Inputs) (types.Condition, bool) {
	if atmosphere.ScoreFog(in.Snap, in.IsDaytime()).Likely {
		return types.ConditionFog, true
	}
	return "", false
}

// severeWindRule handles dry thunderstorms and gale-force wind.
func severeWindRule(in Inputs) (types.Condition, bool) {
	snap := in.Snap
	lowPressureSquall := in.PressureReading < in.Bands.VeryLow &&
		snap.WindSpeedMph >= strongWindMph &&
		snap.GustFactor() >= squallGustFactor
	severeTurbulence := snap.GustFactor() >= severeGustFactor &&
		snap.WindSpeedMph >= severeGustWindMph

	if lowPressureSquall || severeTurbulence {
		return types.ConditionLightning, true
	}
	if snap.WindSpeedMph >= galeWindMph {
		return types.ConditionWindy, true
	}
	return "", false
}

// daytimeSkyRule estimates cloud cover, maps it onto the sky ladder,
// applies condition hysteresis, and finally overrides to windy when strong
// wind accompanies a sunny mapping.
func (c *Classifier) daytimeSkyRule(in Inputs) (types.Condition, bool) {
	if !in.IsDaytime() {
		return "", false
	}

	var cover float64
	if elevation, ok := c.resolveElevation(in); ok {
		cover = c.solar.EstimateCloudCover(in.Now, in.Snap, elevation, in.Pressure)
	} else {
		cover = atmosphericCoverHeuristic(in)
	}

	proposed := coverToCondition(cover)
	cond := c.solar.ApplyConditionHysteresis(in.Now, proposed, cover)

	if cond == types.ConditionSunny &&
		(in.Snap.WindSpeedMph >= strongWindMph || in.Snap.WindGustMph >= strongGustMph) {
		return types.ConditionWindy, true
	}
	return cond, true
}

// resolveElevation picks the solar elevation source: the host-supplied
// reading, the astronomical position when coordinates are configured, or
// the 45-degree default while a solar signal is present. Without any of
// those the caller falls back to the atmospheric heuristic.
func (c *Classifier) resolveElevation(in Inputs) (float64, bool) {
	if in.Snap.HasSolarElevation {
		return in.Snap.SolarElevationDeg, true
	}
	if c.hasCoords {
		if elev := solar.ElevationAt(in.Now, c.latitude, c.longitude); elev > 0 {
			return elev, true
		}
	}
	if in.Snap.SolarRadiationWM2 > daytimeRadiationWM2 || in.Snap.SolarLux > daytimeLux {
		return defaultElevation, true
	}
	return 0, false
}

// atmosphericCoverHeuristic estimates cloud cover from humidity, spread,
// and pressure when no usable solar geometry exists.
func atmosphericCoverHeuristic(in Inputs) float64 {
	snap := in.Snap
	switch {
	case snap.Humidity >= 85 && in.PressureReading < in.Bands.NormalLow:
		return 90
	case snap.Humidity >= 85 || snap.TempDewpointSpreadF() <= 3:
		return 75
	case snap.Humidity >= 70 || in.PressureReading < in.Bands.NormalLow:
		return 50
	default:
		return 15
	}
}

// coverToCondition maps a cloud-cover percentage onto the sky ladder.
func coverToCondition(cover float64) types.Condition {
	switch {
	case cover < sunnyCoverBelow:
		return types.ConditionSunny
	case cover < cloudyCoverFrom:
		return types.ConditionPartlyCloudy
	default:
		return types.ConditionCloudy
	}
}

// twilightSkyRule covers the dim band between day and night.
func twilightSkyRule(in Inputs) (types.Condition, bool) {
	if in.IsDaytime() || !in.IsTwilight() {
		return "", false
	}
	if in.Snap.SolarLux > brightTwilightLux && in.PressureReading >= in.Bands.NormalLow {
		return types.ConditionPartlyCloudy, true
	}
	return types.ConditionCloudy, true
}

// nightSkyRule resolves the nocturnal sky from pressure, humidity, and
// wind. It always matches; partly_cloudy is the final default.
func nightSkyRule(in Inputs) (types.Condition, bool) {
	snap := in.Snap
	p := in.PressureReading
	switch {
	case p >= in.Bands.NormalLow && snap.Humidity < 80 && snap.WindSpeedMph < 10:
		return types.ConditionClearNight, true
	case snap.Humidity >= 95 || p < in.Bands.Low:
		return types.ConditionCloudy, true
	case p >= in.Bands.Low && snap.Humidity < 90:
		return types.ConditionPartlyCloudy, true
	default:
		return types.ConditionPartlyCloudy, true
	}
}
