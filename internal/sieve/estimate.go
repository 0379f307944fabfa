package sieve

import "math"

// eulerGamma is the Euler-Mascheroni constant.
const eulerGamma = 0.57721566490153286

// logIntegral approximates li(x) through the exponential-integral series
// Ei(z) = γ + ln z + Σ z^k / (k·k!) with z = ln x. The series converges
// quickly for the magnitudes the sieve sees and overshoots π(x) slightly,
// which is the right direction for a capacity reserve.
func logIntegral(x float64) float64 {
	if x < 2 {
		return 0
	}

	z := math.Log(x)
	sum := eulerGamma + math.Log(z)
	term := 1.0
	for k := 1; k < 200; k++ {
		term *= z / float64(k)
		delta := term / float64(k)
		sum += delta
		if delta < sum*1e-12 {
			break
		}
	}
	return sum
}

// estimateCount returns a slice-capacity estimate for the number of primes
// up to n.
func estimateCount(n uint64) int {
	if n < 16 {
		return 8
	}
	return int(logIntegral(float64(n))) + 1
}

// isqrt returns floor(sqrt(n)). The float approximation is corrected in both
// directions, which matters above 2^52 where float64 loses unit precision.
func isqrt(n uint64) uint64 {
	r := uint64(math.Sqrt(float64(n)))
	for r > 0 && r > n/r {
		r--
	}
	for (r+1) <= n/(r+1) {
		r++
	}
	return r
}
