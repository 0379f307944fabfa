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

// segSize forces many windows for the bounds used in these tests.
const segSize = minSegmentSize

func TestSegmentedMatchesPlain(t *testing.T) {
	for _, excl := range testExclusions {
		e := newTestEngine(excl)

		want, err := e.Primes(context.Background(), 200000)
		require.NoError(t, err)

		got, err := e.PrimesSegmented(context.Background(), 200000, segSize)
		require.NoError(t, err)
		require.Equal(t, want, got, excl.String())
	}
}

func TestSegmentedDelegatesSmallBounds(t *testing.T) {
	e := newTestEngine(wheel.Exclude2357)

	// Cardinality(1000) is far below the window size, so this runs the
	// plain path and must agree with the oracle either way.
	got, err := e.PrimesSegmented(context.Background(), 1000, DefaultSegmentSize)
	require.NoError(t, err)
	assert.Equal(t, testutil.TrialDivision(1000), got)
}

func TestSegmentedWindowBoundaries(t *testing.T) {
	// Bounds straddling window edges: one below, on and above the first
	// few window boundaries in value space.
	e := newTestEngine(wheel.Exclude235)
	w := e.Wheel()

	for _, k := range []uint64{1, 2, 3} {
		edge := w.Forward(k * segSize)
		for _, n := range []uint64{edge - 1, edge, edge + 1} {
			want, err := e.Count(context.Background(), n)
			require.NoError(t, err)

			got, err := e.CountSegmented(context.Background(), n, segSize)
			require.NoError(t, err)
			require.Equal(t, want, got, "n=%d", n)
		}
	}
}

func TestSegmentedKnownCounts(t *testing.T) {
	e := newTestEngine(wheel.Exclude2357)

	tests := []struct {
		n    uint64
		want uint64
	}{
		{100000, 9592},
		{1000000, 78498},
	}

	for _, tt := range tests {
		got, err := e.CountSegmented(context.Background(), tt.n, segSize)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "n=%d", tt.n)
	}
}

func TestSegmentedHarvestsBasePrimes(t *testing.T) {
	// With a small window the practical range stops well short of √n, so
	// later windows depend on primes harvested from earlier ones.
	e := newTestEngine(wheel.Exclude2)
	w := e.Wheel()

	require.Less(t, w.Forward(segSize), isqrt(20_000_000),
		"window too large to exercise harvesting")

	got, err := e.CountSegmented(context.Background(), 20_000_000, segSize)
	require.NoError(t, err)
	assert.Equal(t, uint64(1270607), got)
}

func TestSegmentedEmitsAscending(t *testing.T) {
	e := newTestEngine(wheel.Exclude23)

	prev := uint64(0)
	err := e.SieveSegmented(context.Background(), 100000, segSize, func(p uint64) {
		require.Greater(t, p, prev)
		prev = p
	})
	require.NoError(t, err)
}

func TestSegmentedMemoryStaysBounded(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	e := NewEngine(Config{
		Wheel:     wheel.New(wheel.Exclude235),
		Workers:   2,
		Resources: rc,
	})

	peak := int64(0)
	err := e.SieveSegmented(context.Background(), 500000, segSize, func(uint64) {
		if u := rc.MemoryUsage(); u > peak {
			peak = u
		}
	})
	require.NoError(t, err)

	// The windowed phase holds one bit-packed window; the initial
	// practical-range sieve is the only other transient, and the two never
	// overlap.
	assert.Equal(t, int64(0), rc.MemoryUsage())
	assert.LessOrEqual(t, peak, marksFootprint(2*segSize))
}

func TestSegmentedHonorsCancellation(t *testing.T) {
	e := newTestEngine(wheel.Exclude235)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.SieveSegmented(ctx, 10_000_000, segSize, func(uint64) {})
	assert.ErrorIs(t, err, context.Canceled)
}
