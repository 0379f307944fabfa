package sieve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vm6502q/Eratosthenes/resource"
	"github.com/vm6502q/Eratosthenes/testutil"
	"github.com/vm6502q/Eratosthenes/wheel"
)

var testExclusions = []wheel.Exclusion{
	wheel.Exclude2,
	wheel.Exclude23,
	wheel.Exclude235,
	wheel.Exclude2357,
	wheel.Exclude235711,
}

func newTestEngine(e wheel.Exclusion) *Engine {
	return NewEngine(Config{Wheel: wheel.New(e), Workers: 4})
}

func TestPrimesSmallBounds(t *testing.T) {
	e := newTestEngine(wheel.Exclude235)

	tests := []struct {
		n    uint64
		want []uint64
	}{
		{0, []uint64{}},
		{1, []uint64{}},
		{2, []uint64{2}},
		{3, []uint64{2, 3}},
		{10, []uint64{2, 3, 5, 7}},
		{30, []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}},
	}

	for _, tt := range tests {
		got, err := e.Primes(context.Background(), tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "n=%d", tt.n)
	}
}

func TestPrimesMatchTrialDivision(t *testing.T) {
	want := testutil.TrialDivision(20000)

	for _, excl := range testExclusions {
		e := newTestEngine(excl)
		got, err := e.Primes(context.Background(), 20000)
		require.NoError(t, err)
		require.Equal(t, want, got, excl.String())
	}
}

func TestPrimesEveryBoundaryBelow300(t *testing.T) {
	// Exercises bounds landing on primes, composites and wheel residues.
	for _, excl := range testExclusions {
		e := newTestEngine(excl)
		for n := uint64(0); n <= 300; n++ {
			got, err := e.Primes(context.Background(), n)
			require.NoError(t, err)
			require.Equal(t, testutil.TrialDivision(n), got, "%s: n=%d", excl, n)
		}
	}
}

func TestCountKnownValues(t *testing.T) {
	tests := []struct {
		n    uint64
		want uint64
	}{
		{2, 1},
		{100, 25},
		{1000, 168},
		{10000, 1229},
		{100000, 9592},
		{1000000, 78498},
	}

	for _, excl := range testExclusions {
		e := newTestEngine(excl)
		for _, tt := range tests {
			got, err := e.Count(context.Background(), tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "%s: n=%d", excl, tt.n)
		}
	}
}

func TestCountWithContendedMarking(t *testing.T) {
	// A small wheel and many workers keep several marking tasks in flight
	// over the same flag words at once.
	e := NewEngine(Config{Wheel: wheel.New(wheel.Exclude2), Workers: 8})

	got, err := e.Count(context.Background(), 2_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(148933), got)
}

func TestSieveEmitsAscending(t *testing.T) {
	e := newTestEngine(wheel.Exclude2357)

	prev := uint64(0)
	err := e.Sieve(context.Background(), 50000, func(p uint64) {
		require.Greater(t, p, prev)
		prev = p
	})
	require.NoError(t, err)
}

func TestSieveHonorsCancellation(t *testing.T) {
	e := newTestEngine(wheel.Exclude23)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Sieve(ctx, 10_000_000, func(uint64) {})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSieveMetersMemory(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	e := NewEngine(Config{
		Wheel:     wheel.New(wheel.Exclude235),
		Workers:   2,
		Resources: rc,
	})

	_, err := e.Count(context.Background(), 100000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rc.MemoryUsage(), "reservations must be returned")
}

func TestDefaultEngineConfig(t *testing.T) {
	e := NewEngine(Config{})
	assert.Equal(t, uint64(210), e.Wheel().Period())

	got, err := e.Primes(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, got, 25)
}
