package forecast

import (
	"time"

	"microweather/internal/evolution"
	"microweather/internal/types"
)

// Re-evaluation cadence by pressure-trend regime: a fast-moving barometer
// warrants more frequent condition changes, a flat one fewer. Conditions
// between re-evaluation points are chained from the previous hour.
const (
	rapidTrendHPa    = 2.0
	moderateTrendHPa = 1.0

	rapidCadenceHours    = 2
	moderateCadenceHours = 3
	calmCadenceHours     = 6
)

// Diurnal temperature offsets in °F relative to the daily mean, indexed by
// local period.
var diurnalOffsets = map[string]float64{
	"midnight":  -6,
	"dawn":      -7,
	"morning":   -2,
	"noon":      3,
	"afternoon": 4,
	"evening":   0,
	"night":     -4,
}

func diurnalPeriod(hour int) string {
	switch {
	case hour < 5:
		return "midnight"
	case hour < 8:
		return "dawn"
	case hour < 12:
		return "morning"
	case hour < 14:
		return "noon"
	case hour < 18:
		return "afternoon"
	case hour < 21:
		return "evening"
	default:
		return "night"
	}
}

// Hourly returns exactly 24 hourly forecast records with strictly
// increasing hour-aligned datetimes. Internal failure is recovered into the
// minimal day/night-converted fallback.
func (g *Generator) Hourly(in Inputs) (out []types.HourlyForecast) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Warn("hourly forecast generation failed, using fallback", "panic", r)
			out = g.fallbackHourly(in)
		}
	}()

	cadence := reEvaluationCadence(in.State.Pressure.CurrentTrendHPa)
	start := in.Now.Truncate(time.Hour).Add(time.Hour)

	// The hourly projection swings around the current diurnal position, not
	// around the daily mean, so hour n+0 stays continuous with now.
	nowOffset := diurnalOffsets[diurnalPeriod(in.Now.Hour())]

	out = make([]types.HourlyForecast, 0, HourlyRecords)
	condition := in.Current
	for h := 0; h < HourlyRecords; h++ {
		at := start.Add(time.Duration(h) * time.Hour)
		daytime := g.isDaytimeAt(at)

		if h%cadence == cadence-1 {
			condition = g.reEvaluateCondition(condition, in, h)
		}
		condition = convertForSky(condition, daytime)

		record := types.HourlyForecast{
			Datetime:    at,
			Condition:   condition,
			IsNighttime: !daytime,
		}

		damp := hourlyDamping(h)
		record.TemperatureF = g.hourlyTemperature(at, nowOffset, in, damp)

		profile := profileFor(condition)
		record.PrecipitationIn = g.projectPrecipitation(profile.precipitationIn, in.State, damp)
		record.WindSpeedMph = projectWind(in.State.WindPattern.SpeedMph, profile.windSpeedMph, in.State, damp)
		record.Humidity = projectHumidity(in.State.Moisture.Humidity, profile.humidity, in.State, damp)

		out = append(out, record)
	}
	return out
}

func reEvaluationCadence(trendHPa float64) int {
	abs := trendHPa
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs > rapidTrendHPa:
		return rapidCadenceHours
	case abs > moderateTrendHPa:
		return moderateCadenceHours
	default:
		return calmCadenceHours
	}
}

// reEvaluateCondition steps the chained condition along the sky ladder when
// the barometer demands it. Storm forcing overrides; a rising barometer
// steps toward clearer, a falling one toward wetter.
func (g *Generator) reEvaluateCondition(prev types.Condition, in Inputs, hour int) types.Condition {
	st := in.State
	if st.Pressure.StormProbability >= stormForceProbability {
		return stormForced(st)
	}

	trend := st.Pressure.CurrentTrendHPa
	switch {
	case trend > moderateTrendHPa:
		return clearerStep(prev)
	case trend < -moderateTrendHPa:
		if st.Moisture.Humidity > 75 || prev.IsPrecipitating() {
			return wetterStep(prev, st.Snapshot.TemperatureF)
		}
		return wetterSkyStep(prev)
	}

	// Flat barometer beyond the evolution horizon: lean on the model's
	// first-stage condition once confidence in pure persistence has faded.
	if hour >= 12 && in.Model.Transitions.Persistence < 0.4 {
		return evolutionNudge(prev, in)
	}
	return prev
}

// clearerStep moves one rung toward clear sky.
func clearerStep(c types.Condition) types.Condition {
	switch c {
	case types.ConditionPouring, types.ConditionLightningRainy:
		return types.ConditionRainy
	case types.ConditionRainy, types.ConditionSnowy, types.ConditionLightning:
		return types.ConditionCloudy
	case types.ConditionCloudy, types.ConditionFog:
		return types.ConditionPartlyCloudy
	case types.ConditionPartlyCloudy, types.ConditionWindy:
		return types.ConditionSunny
	default:
		return c
	}
}

// wetterSkyStep moves one rung toward overcast without starting
// precipitation.
func wetterSkyStep(c types.Condition) types.Condition {
	switch c {
	case types.ConditionSunny, types.ConditionClearNight, types.ConditionWindy:
		return types.ConditionPartlyCloudy
	case types.ConditionPartlyCloudy:
		return types.ConditionCloudy
	default:
		return c
	}
}

// wetterStep moves one rung toward precipitation.
func wetterStep(c types.Condition, tempF float64) types.Condition {
	switch c {
	case types.ConditionSunny, types.ConditionClearNight, types.ConditionWindy:
		return types.ConditionPartlyCloudy
	case types.ConditionPartlyCloudy:
		return types.ConditionCloudy
	case types.ConditionCloudy, types.ConditionFog:
		if tempF <= 32 {
			return types.ConditionSnowy
		}
		return types.ConditionRainy
	case types.ConditionRainy:
		return types.ConditionPouring
	default:
		return c
	}
}

// evolutionNudge steps one ladder rung toward the base condition of the
// model's first projected stage, never a jump.
func evolutionNudge(prev types.Condition, in Inputs) types.Condition {
	target := evolution.StageCondition(in.Model.Path[0])
	if target == prev {
		return prev
	}
	if skyRank(target) > skyRank(prev) {
		return wetterSkyStep(prev)
	}
	return clearerStep(prev)
}

// skyRank orders conditions from clearest to wettest for ladder stepping.
func skyRank(c types.Condition) int {
	switch c {
	case types.ConditionSunny, types.ConditionClearNight:
		return 0
	case types.ConditionPartlyCloudy, types.ConditionWindy:
		return 1
	case types.ConditionCloudy, types.ConditionFog:
		return 2
	case types.ConditionRainy, types.ConditionSnowy, types.ConditionLightning:
		return 3
	default:
		return 4
	}
}

// convertForSky applies day/night conversion to the sky pair only.
func convertForSky(c types.Condition, daytime bool) types.Condition {
	if daytime {
		return c.ForDaytime()
	}
	return c.ForNighttime()
}

// hourlyTemperature projects the temperature for one forecast hour from the
// diurnal table, the pressure trend, the evolution potential, and a small
// bounded natural variation.
func (g *Generator) hourlyTemperature(at time.Time, nowOffset float64, in Inputs, damp float64) float64 {
	st := in.State

	diurnal := diurnalOffsets[diurnalPeriod(at.Hour())] - nowOffset

	var pressureMod float64
	switch {
	case st.Pressure.CurrentTrendHPa < -moderateTrendHPa:
		pressureMod = -1.0
	case st.Pressure.CurrentTrendHPa > moderateTrendHPa:
		pressureMod = 0.5
	}

	microEvolution := (st.System.EvolutionPotential - 0.5) * -2.0

	variation := g.rng.Float64() - 0.5 // bounded +-0.5 °F

	return st.Snapshot.TemperatureF + diurnal*dampTowards(damp) +
		(pressureMod+microEvolution)*(1-damp) + variation
}

// dampTowards keeps near-term diurnal swings at full strength and eases
// distant ones toward 80%.
func dampTowards(damp float64) float64 {
	return 0.8 + 0.2*damp
}

// fallbackHourly holds the current temperature and condition for all 24
// hours, with day/night conversion only.
func (g *Generator) fallbackHourly(in Inputs) []types.HourlyForecast {
	start := in.Now.Truncate(time.Hour).Add(time.Hour)
	cond := in.Current
	if !cond.Valid() {
		cond = types.ConditionPartlyCloudy
	}
	snap := in.State.Snapshot

	out := make([]types.HourlyForecast, 0, HourlyRecords)
	for h := 0; h < HourlyRecords; h++ {
		at := start.Add(time.Duration(h) * time.Hour)
		daytime := g.isDaytimeAt(at)
		out = append(out, types.HourlyForecast{
			Datetime:     at,
			TemperatureF: snap.TemperatureF,
			Condition:    convertForSky(cond, daytime),
			WindSpeedMph: snap.WindSpeedMph,
			Humidity:     snap.Humidity,
			IsNighttime:  !daytime,
		})
	}
	return out
}
