package types

// Condition is the discrete weather condition inferred by the engine.
// The set is closed: every classifier rule and forecast generator resolves
// to exactly one of these values.
type Condition string

const (
	ConditionSunny          Condition = "sunny"
	ConditionClearNight     Condition = "clear_night"
	ConditionPartlyCloudy   Condition = "partly_cloudy"
	ConditionCloudy         Condition = "cloudy"
	ConditionRainy          Condition = "rainy"
	ConditionPouring        Condition = "pouring"
	ConditionSnowy          Condition = "snowy"
	ConditionFog            Condition = "fog"
	ConditionLightning      Condition = "lightning"
	ConditionLightningRainy Condition = "lightning_rainy"
	ConditionWindy          Condition = "windy"
)

// AllConditions lists every member of the closed condition set.
var AllConditions = []Condition{
	ConditionSunny,
	ConditionClearNight,
	ConditionPartlyCloudy,
	ConditionCloudy,
	ConditionRainy,
	ConditionPouring,
	ConditionSnowy,
	ConditionFog,
	ConditionLightning,
	ConditionLightningRainy,
	ConditionWindy,
}

// Valid reports whether c is a member of the closed condition set.
func (c Condition) Valid() bool {
	for _, known := range AllConditions {
		if c == known {
			return true
		}
	}
	return false
}

// IsPrecipitating reports whether the condition implies active precipitation.
func (c Condition) IsPrecipitating() bool {
	switch c {
	case ConditionRainy, ConditionPouring, ConditionSnowy, ConditionLightningRainy:
		return true
	}
	return false
}

// ForDaytime converts night-only conditions to their daytime equivalent.
func (c Condition) ForDaytime() Condition {
	if c == ConditionClearNight {
		return ConditionSunny
	}
	return c
}

// ForNighttime converts day-only conditions to their nighttime equivalent.
// Only the clear-sky pair differs between day and night.
func (c Condition) ForNighttime() Condition {
	if c == ConditionSunny {
		return ConditionClearNight
	}
	return c
}
