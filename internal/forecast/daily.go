package forecast

import (
	"time"

	"microweather/internal/atmosphere"
	"microweather/internal/evolution"
	"microweather/internal/types"
)

// Temperature-influence weights for the daily projection, in °F.
const (
	seasonalDriftPerDay  = 0.8
	highPressureWarming  = 2.0
	lowPressureCooling   = -3.0
	risingTrendWarming   = 1.0
	fallingTrendCooling  = -2.0
	patternInfluenceCap  = 5.0
	patternTrendHours    = 3.0
	minDiurnalRangeF     = 6.0
	maxDiurnalRangeF     = 20.0
	clearSkyDiurnalRange = 18.0
)

// Daily returns exactly 5 daily forecast records. Internal failure is
// recovered into a minimal persistence forecast rather than surfaced.
func (g *Generator) Daily(in Inputs) (out []types.DailyForecast) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Warn("daily forecast generation failed, using fallback", "panic", r)
			out = g.fallbackDaily(in)
		}
	}()

	out = make([]types.DailyForecast, 0, DailyRecords)
	for day := 0; day < DailyRecords; day++ {
		out = append(out, g.dailyRecord(day, in))
	}
	return out
}

func (g *Generator) dailyRecord(day int, in Inputs) types.DailyForecast {
	st := in.State
	confidence := confidenceDecay(day)
	// High stability means persistence: shrink all projected deltas.
	damp := confidence * (1 - 0.5*st.Stability)

	condition := g.dailyCondition(day, in)
	profile := profileFor(condition)

	delta := g.temperatureDelta(day, in) * damp
	high := st.Snapshot.TemperatureF + delta
	low := high - diurnalRange(st.Cloud.Cover)

	return types.DailyForecast{
		Datetime:        dailyAnchor(in.Now, day),
		TemperatureF:    high,
		TempLowF:        low,
		Condition:       condition,
		PrecipitationIn: g.projectPrecipitation(profile.precipitationIn, st, confidence),
		WindSpeedMph:    projectWind(st.WindPattern.SpeedMph, profile.windSpeedMph, st, confidence),
		Humidity:        projectHumidity(st.Moisture.Humidity, profile.humidity, st, confidence),
	}
}

// temperatureDelta sums the undamped daily temperature influences.
func (g *Generator) temperatureDelta(day int, in Inputs) float64 {
	st := in.State

	seasonal := in.Patterns.SeasonalFactor * seasonalDriftPerDay * float64(day)

	var pressure float64
	switch st.Pressure.System {
	case atmosphere.SystemHighPressure:
		pressure = highPressureWarming
	case atmosphere.SystemLowPressure:
		pressure = lowPressureCooling
	}
	switch {
	case st.Pressure.LongTermTrendHPa > 2:
		pressure += risingTrendWarming
	case st.Pressure.LongTermTrendHPa < -2:
		pressure += fallingTrendCooling
	}

	pattern := types.ClampFloat(st.TemperatureTrend.Trend*patternTrendHours,
		-patternInfluenceCap, patternInfluenceCap)
	if in.Patterns.Regime == evolution.RegimeActive {
		// An active pressure cycle undercuts trend persistence.
		pattern *= 0.5
	}

	return seasonal + pressure + pattern + g.evolutionInfluence(day, in)
}

// evolutionInfluence converts the projected stage for a day into a small
// temperature offset, weighted by the stage confidence.
func (g *Generator) evolutionInfluence(day int, in Inputs) float64 {
	if day == 0 {
		return 0
	}
	stage := in.Model.Path[day-1]
	conf := in.Model.Confidence[day-1]

	var offset float64
	switch evolution.StageCondition(stage) {
	case types.ConditionSunny:
		offset = 1.5
	case types.ConditionPartlyCloudy:
		offset = 0
	case types.ConditionCloudy:
		offset = -1.0
	case types.ConditionRainy:
		offset = -2.0
	case types.ConditionPouring:
		offset = -3.0
	default:
		offset = 0
	}
	return offset * conf
}

// dailyCondition resolves the condition for a forecast day. Day 0 trusts
// the classifier's current condition; later days start from the evolution
// stage. A storm probability at or above the forcing threshold overrides
// every day.
func (g *Generator) dailyCondition(day int, in Inputs) types.Condition {
	st := in.State
	if st.Pressure.StormProbability >= stormForceProbability {
		return stormForced(st)
	}

	if day == 0 {
		return in.Current.ForDaytime()
	}

	base := evolution.StageCondition(in.Model.Path[day-1])

	switch {
	case st.Pressure.System == atmosphere.SystemHighPressure &&
		st.Cloud.Cover < 30 && st.Stability >= 0.6 && !base.IsPrecipitating():
		return types.ConditionSunny
	case st.Pressure.System == atmosphere.SystemLowPressure &&
		st.Moisture.Humidity > 80 && !base.IsPrecipitating():
		return types.ConditionRainy
	case base.IsPrecipitating() && st.Snapshot.TemperatureF <= 32:
		return types.ConditionSnowy
	}
	return base.ForDaytime()
}

// diurnalRange estimates the day/night temperature span from cloud cover:
// clear skies radiate, overcast skies blanket.
func diurnalRange(cloudCover float64) float64 {
	r := clearSkyDiurnalRange - cloudCover/10
	return types.ClampFloat(r, minDiurnalRangeF, maxDiurnalRangeF)
}

// dailyAnchor is local noon of the forecast day, day 0 being today.
func dailyAnchor(now time.Time, day int) time.Time {
	d := now.AddDate(0, 0, day)
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, d.Location())
}

// fallbackDaily is the minimal persistence forecast: today's readings
// carried forward with decaying confidence untouched.
func (g *Generator) fallbackDaily(in Inputs) []types.DailyForecast {
	out := make([]types.DailyForecast, 0, DailyRecords)
	snap := in.State.Snapshot
	cond := in.Current.ForDaytime()
	if !cond.Valid() {
		cond = types.ConditionPartlyCloudy
	}
	for day := 0; day < DailyRecords; day++ {
		out = append(out, types.DailyForecast{
			Datetime:     dailyAnchor(in.Now, day),
			TemperatureF: snap.TemperatureF,
			TempLowF:     snap.TemperatureF - clearSkyDiurnalRange/2,
			Condition:    cond,
			WindSpeedMph: snap.WindSpeedMph,
			Humidity:     snap.Humidity,
		})
	}
	return out
}
