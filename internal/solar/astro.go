package solar

import (
	"math"
	"time"

	"github.com/sixdouglas/suncalc"
)

// ElevationAt returns the solar elevation in degrees above the horizon for
// the given instant and station coordinates.
func ElevationAt(t time.Time, lat, lon float64) float64 {
	pos := suncalc.GetPosition(t, lat, lon)
	return pos.Altitude * 180.0 / math.Pi
}

// IsDaytimeAt reports whether the sun is above the horizon at the given
// instant and station coordinates.
func IsDaytimeAt(t time.Time, lat, lon float64) bool {
	return ElevationAt(t, lat, lon) > 0
}
