package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func TestBufferOrderingInvariant(t *testing.T) {
	var b Buffer[float64]
	require.True(t, b.Append(t0, 1))
	require.True(t, b.Append(t0.Add(time.Minute), 2))
	// Equal timestamps are allowed (non-decreasing).
	require.True(t, b.Append(t0.Add(time.Minute), 3))
	// Regressions are dropped.
	require.False(t, b.Append(t0.Add(-time.Minute), 4))

	assert.Equal(t, 3, b.Len())
	last, ok := b.Last()
	require.True(t, ok)
	assert.Equal(t, 3.0, last.Value)
}

func TestBufferEvictByAge(t *testing.T) {
	var b Buffer[float64]
	for i := 0; i < 10; i++ {
		b.Append(t0.Add(time.Duration(i)*time.Hour), float64(i))
	}
	now := t0.Add(9 * time.Hour)
	b.Evict(now, 3*time.Hour, 0)

	entries := b.All()
	require.Len(t, entries, 4) // hours 6..9 inclusive of the cutoff edge
	assert.Equal(t, 6.0, entries[0].Value)
}

func TestBufferEvictByCapacity(t *testing.T) {
	var b Buffer[float64]
	for i := 0; i < 10; i++ {
		b.Append(t0.Add(time.Duration(i)*time.Minute), float64(i))
	}
	b.Evict(t0.Add(10*time.Minute), 0, 4)

	entries := b.All()
	require.Len(t, entries, 4)
	assert.Equal(t, 6.0, entries[0].Value)
	assert.Equal(t, 9.0, entries[3].Value)
}

func TestBufferSince(t *testing.T) {
	var b Buffer[float64]
	for i := 0; i < 6; i++ {
		b.Append(t0.Add(time.Duration(i)*time.Hour), float64(i))
	}
	now := t0.Add(5 * time.Hour)
	recent := b.Since(now, 2*time.Hour)
	require.Len(t, recent, 3)
	assert.Equal(t, 3.0, recent[0].Value)
}

func TestStoreRoundTrip(t *testing.T) {
	s := NewStore(0, 0)
	s.Add("temperature", t0, 68.2)
	s.Add("temperature", t0.Add(time.Hour), 69.4)
	s.Add("humidity", t0, 55)

	temps := s.Since("temperature", t0.Add(time.Hour), 3*time.Hour)
	require.Len(t, temps, 2)

	latest, ok := s.Latest("temperature")
	require.True(t, ok)
	assert.Equal(t, 69.4, latest.Value)

	assert.Nil(t, s.Since("no_such_sensor", t0, time.Hour))
	_, ok = s.Latest("no_such_sensor")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len("no_such_sensor"))
}

func TestStoreCapacityBound(t *testing.T) {
	s := NewStore(DefaultMaxAge, 5)
	for i := 0; i < 50; i++ {
		s.Add("pressure", t0.Add(time.Duration(i)*time.Minute), 29.92)
	}
	assert.Equal(t, 5, s.Len("pressure"))
}
