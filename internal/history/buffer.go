// Package history implements the bounded, time-ordered sample buffers that
// form the engine's only persistent memory. One Buffer holds samples for a
// single series; the Store keys buffers by sensor name.
//
// Eviction is always by both age and capacity, applied on every append, so
// a buffer never grows past its configured bounds between poll cycles.
package history

import "time"

// TimedValue is one (timestamp, value) sample in a buffer.
type TimedValue[T any] struct {
	Timestamp time.Time
	Value     T
}

// Buffer is a bounded, append-only, time-ordered series. The zero value is
// ready to use. Samples within a buffer are in non-decreasing timestamp
// order; appends that would violate the ordering are dropped.
//
// Buffer is the single eviction abstraction shared by the sensor history
// store and the cloud-cover hysteresis rings.
type Buffer[T any] struct {
	entries []TimedValue[T]
}

// Append adds a sample, preserving timestamp ordering. An append older than
// the newest sample is dropped and reported false.
func (b *Buffer[T]) Append(ts time.Time, value T) bool {
	if n := len(b.entries); n > 0 && ts.Before(b.entries[n-1].Timestamp) {
		return false
	}
	b.entries = append(b.entries, TimedValue[T]{Timestamp: ts, Value: value})
	return true
}

// Evict drops samples older than now-maxAge, then trims from the front until
// at most maxLen samples remain. A non-positive maxAge or maxLen disables
// that bound.
func (b *Buffer[T]) Evict(now time.Time, maxAge time.Duration, maxLen int) {
	if maxAge > 0 {
		cutoff := now.Add(-maxAge)
		i := 0
		for i < len(b.entries) && b.entries[i].Timestamp.Before(cutoff) {
			i++
		}
		if i > 0 {
			b.entries = append(b.entries[:0], b.entries[i:]...)
		}
	}
	if maxLen > 0 && len(b.entries) > maxLen {
		excess := len(b.entries) - maxLen
		b.entries = append(b.entries[:0], b.entries[excess:]...)
	}
}

// Since returns the samples newer than now minus the lookback window.
// The returned slice aliases the buffer and must not be mutated.
func (b *Buffer[T]) Since(now time.Time, lookback time.Duration) []TimedValue[T] {
	cutoff := now.Add(-lookback)
	i := 0
	for i < len(b.entries) && b.entries[i].Timestamp.Before(cutoff) {
		i++
	}
	return b.entries[i:]
}

// All returns every sample currently in the buffer. The returned slice
// aliases the buffer and must not be mutated.
func (b *Buffer[T]) All() []TimedValue[T] {
	return b.entries
}

// Last returns the newest sample, if any.
func (b *Buffer[T]) Last() (TimedValue[T], bool) {
	if len(b.entries) == 0 {
		return TimedValue[T]{}, false
	}
	return b.entries[len(b.entries)-1], true
}

// Len returns the number of samples currently held.
func (b *Buffer[T]) Len() int {
	return len(b.entries)
}
