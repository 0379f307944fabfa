package wheel

import "github.com/bits-and-blooms/bitset"

// Stepper enumerates wheel-valid candidates without a modulo per step.
//
// Candidates live in the dense index space of a base wheel: {2} when 2 is the
// only excluded prime, {2, 3} otherwise. Each excluded prime beyond the first
// two contributes one rotating bit ring whose pattern encodes which upcoming
// base candidates are multiples of that prime (10 bits for 5, 56 for 7, 528
// for 11). Next consumes ring bits cascade-style and returns the number of
// base indices to advance, amortized O(1).
//
// A Stepper carries mutable cursor state and is not safe for concurrent use;
// create one per traversal.
type Stepper struct {
	base  *Wheel
	rings []ring
}

// ring is the rotating skip pattern for one excluded prime. A set bit means
// the corresponding candidate is a multiple of the prime. pos walks the ring
// circularly; the pattern itself never changes.
type ring struct {
	bits *bitset.BitSet
	size uint
	pos  uint
}

// NewStepper returns a stepper positioned at base index 1 (the value 1). The
// first call to Next advances to the first candidate coprime to every
// excluded prime.
func (w *Wheel) NewStepper() *Stepper {
	base := w
	if len(w.primes) > 2 {
		base = New(Exclude23)
	}

	s := &Stepper{base: base}
	for i := 2; i < len(w.primes); i++ {
		s.rings = append(s.rings, buildRing(w.primes[:i], w.primes[i]))
	}

	return s
}

// buildRing enumerates the values coprime to all smaller excluded primes
// within one combined period, starting just past 1, and sets a bit for every
// multiple of q. The ring for q is only consulted for candidates that passed
// every earlier ring, which is exactly that value sequence.
func buildRing(smaller []uint64, q uint64) ring {
	period := q
	for _, p := range smaller {
		period *= p
	}

	bits := bitset.New(uint(period / q))
	var size uint
	for v := uint64(2); v <= period+1; v++ {
		if !coprime(v, smaller) {
			continue
		}
		if v%q == 0 {
			bits.Set(size)
		}
		size++
	}

	return ring{bits: bits, size: size}
}

// Forward maps a base-wheel index produced by this stepper to its value.
func (s *Stepper) Forward(i uint64) uint64 { return s.base.Forward(i) }

// Next returns the number of base indices to advance to reach the next
// candidate coprime to every excluded prime. With no rings (exclusions {2}
// and {2, 3}) every base index is valid and the increment is always 1.
func (s *Stepper) Next() uint64 {
	var inc uint64
	for {
		inc++
		multiple := false
		for i := range s.rings {
			r := &s.rings[i]
			bit := r.bits.Test(r.pos)
			r.pos++
			if r.pos == r.size {
				r.pos = 0
			}
			if bit {
				multiple = true
				break
			}
		}
		if !multiple {
			return inc
		}
	}
}
