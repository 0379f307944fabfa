// Package wheel implements the index compression used by the sieve engines:
// a bidirectional mapping between the natural numbers coprime to a prefix of
// small primes and a dense, 1-based index space.
//
// Excluding multiples of {2, 3, 5, 7} compresses the representable range to
// 48/210 (about 22.9%) of n, which directly sizes the composite-marking
// storage the sieve allocates.
package wheel

import (
	"fmt"
	"sort"
)

// Exclusion selects which prefix of small primes the wheel excludes.
type Exclusion int

const (
	// Exclude2 skips multiples of 2.
	Exclude2 Exclusion = iota + 1
	// Exclude23 skips multiples of 2 and 3.
	Exclude23
	// Exclude235 skips multiples of 2, 3 and 5.
	Exclude235
	// Exclude2357 skips multiples of 2, 3, 5 and 7.
	Exclude2357
	// Exclude235711 skips multiples of 2, 3, 5, 7 and 11.
	Exclude235711
)

var smallPrimes = []uint64{2, 3, 5, 7, 11}

// String implements fmt.Stringer.
func (e Exclusion) String() string {
	if e < Exclude2 || e > Exclude235711 {
		return fmt.Sprintf("Exclusion(%d)", int(e))
	}
	return fmt.Sprintf("wheel%d", smallPrimes[int(e)-1])
}

func (e Exclusion) primes() []uint64 {
	if e < Exclude2 || e > Exclude235711 {
		e = Exclude2357
	}
	return smallPrimes[:int(e)]
}

// Wheel maps between natural numbers coprime to the excluded primes and a
// dense 1-based index space. Forward(1) == 1 for every configuration.
//
// A Wheel is immutable and safe for concurrent use.
type Wheel struct {
	primes   []uint64
	period   uint64
	residues []uint64
}

// New precomputes the wheel for the given exclusion: the period (product of
// the excluded primes) and the sorted table of residues in [1, period]
// coprime to all of them.
func New(e Exclusion) *Wheel {
	primes := e.primes()

	period := uint64(1)
	for _, p := range primes {
		period *= p
	}

	var residues []uint64
	for r := uint64(1); r <= period; r++ {
		if coprime(r, primes) {
			residues = append(residues, r)
		}
	}

	return &Wheel{
		primes:   primes,
		period:   period,
		residues: residues,
	}
}

func coprime(n uint64, primes []uint64) bool {
	for _, p := range primes {
		if n%p == 0 {
			return false
		}
	}
	return true
}

// Primes returns the excluded primes in ascending order. The returned slice
// must not be modified.
func (w *Wheel) Primes() []uint64 { return w.primes }

// Period returns the product of the excluded primes.
func (w *Wheel) Period() uint64 { return w.period }

// Len returns the number of coprime residues per period.
func (w *Wheel) Len() int { return len(w.residues) }

// Forward maps a dense 1-based index to the corresponding coprime value.
// Index 1 maps to 1; indices increase with the values they denote.
func (w *Wheel) Forward(i uint64) uint64 {
	i--
	l := uint64(len(w.residues))
	return w.period*(i/l) + w.residues[i%l]
}

// Backward returns the number of coprime values ≤ n. For n coprime to the
// excluded primes this is the exact inverse of Forward, so
// Forward(Backward(n)) == n; for any n it is monotonically non-decreasing.
func (w *Wheel) Backward(n uint64) uint64 {
	l := uint64(len(w.residues))
	q, r := n/w.period, n%w.period
	k := sort.Search(len(w.residues), func(i int) bool { return w.residues[i] > r })
	return l*q + uint64(k)
}

// Cardinality returns the size of the dense index space covering [1, n],
// which is the marking-array length the sieve engines allocate.
func (w *Wheel) Cardinality(n uint64) uint64 { return w.Backward(n) }

// Coprime reports whether n is divisible by none of the excluded primes.
func (w *Wheel) Coprime(n uint64) bool { return coprime(n, w.primes) }

// PrevCoprime returns the largest wheel-valid value ≤ n. n must be ≥ 1.
func (w *Wheel) PrevCoprime(n uint64) uint64 {
	for !w.Coprime(n) {
		n--
	}
	return n
}

// NextCoprime returns the smallest wheel-valid value ≥ n.
func (w *Wheel) NextCoprime(n uint64) uint64 {
	for !w.Coprime(n) {
		n++
	}
	return n
}
