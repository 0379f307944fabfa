package sieve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsqrt(t *testing.T) {
	tests := []struct {
		n, want uint64
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 1},
		{4, 2},
		{15, 3},
		{16, 4},
		{17, 4},
		{1 << 52, 1 << 26},
		{1<<52 + 1, 1 << 26},
		{1<<52 - 1, 1<<26 - 1},
		{^uint64(0), 1<<32 - 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isqrt(tt.n), "isqrt(%d)", tt.n)
	}
}

func TestIsqrtExhaustiveSmall(t *testing.T) {
	for n := uint64(0); n <= 10000; n++ {
		r := isqrt(n)
		require.LessOrEqual(t, r*r, n, "n=%d", n)
		require.Greater(t, (r+1)*(r+1), n, "n=%d", n)
	}
}

func TestEstimateCountBoundsPi(t *testing.T) {
	// li(n) overestimates π(n) throughout the tested range, so the reserve
	// avoids reallocation, without overshooting by more than a few percent.
	tests := []struct {
		n  uint64
		pi int
	}{
		{100, 25},
		{1000, 168},
		{10000, 1229},
		{100000, 9592},
		{1000000, 78498},
	}

	for _, tt := range tests {
		got := estimateCount(tt.n)
		require.GreaterOrEqual(t, got, tt.pi, "n=%d", tt.n)
		require.Less(t, got, tt.pi+tt.pi/10+20, "n=%d", tt.n)
	}
}

func TestEstimateCountTinyBounds(t *testing.T) {
	for n := uint64(0); n < 16; n++ {
		assert.Equal(t, 8, estimateCount(n))
	}
}
