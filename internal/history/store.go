package history

import "time"

// Default retention bounds for sensor history. The longest lookback any
// analyzer uses is 168h (weekly patterns); the capacity bound keeps memory
// flat regardless of poll rate.
const (
	DefaultMaxAge = 168 * time.Hour
	DefaultMaxLen = 192
)

// Store holds one bounded Buffer per sensor key. It is owned by a single
// engine instance and is not safe for concurrent mutation; the host
// serializes poll cycles.
type Store struct {
	maxAge  time.Duration
	maxLen  int
	buffers map[string]*Buffer[float64]
}

// NewStore creates a Store with the given retention bounds. Non-positive
// arguments fall back to the defaults.
func NewStore(maxAge time.Duration, maxLen int) *Store {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &Store{
		maxAge:  maxAge,
		maxLen:  maxLen,
		buffers: make(map[string]*Buffer[float64]),
	}
}

// Add appends a sample for the sensor key and applies eviction.
func (s *Store) Add(key string, ts time.Time, value float64) {
	buf, ok := s.buffers[key]
	if !ok {
		buf = &Buffer[float64]{}
		s.buffers[key] = buf
	}
	buf.Append(ts, value)
	buf.Evict(ts, s.maxAge, s.maxLen)
}

// Since returns the samples for key newer than now minus the lookback.
// Unknown keys return nil.
func (s *Store) Since(key string, now time.Time, lookback time.Duration) []TimedValue[float64] {
	buf, ok := s.buffers[key]
	if !ok {
		return nil
	}
	return buf.Since(now, lookback)
}

// Latest returns the newest sample for key, if any.
func (s *Store) Latest(key string) (TimedValue[float64], bool) {
	buf, ok := s.buffers[key]
	if !ok {
		return TimedValue[float64]{}, false
	}
	return buf.Last()
}

// Len returns the sample count for key. Unknown keys report 0.
func (s *Store) Len(key string) int {
	buf, ok := s.buffers[key]
	if !ok {
		return 0
	}
	return buf.Len()
}
