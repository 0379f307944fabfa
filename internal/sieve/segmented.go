package sieve

import (
	"context"
	"math/bits"
	"time"

	"github.com/vm6502q/Eratosthenes/internal/dispatch"
	"github.com/vm6502q/Eratosthenes/wheel"
)

// SieveSegmented streams every prime ≤ n to emit in increasing order while
// holding at most one window of segmentSize flags plus the base prime list.
//
// Bounds whose whole index space fits in a single window delegate to the
// plain engine. Otherwise the plain engine first covers the practical range,
// the smaller of the first window and √n, seeding the base prime list; each
// following window is then marked against the base primes across the pool,
// scanned serially after the window barrier, and any harvested prime still
// at most √n joins the base list for later windows. Windows are processed in
// order, so a base prime is always harvested before the first window whose
// composites need it.
func (e *Engine) SieveSegmented(ctx context.Context, n, segmentSize uint64, emit func(uint64)) error {
	w := e.wheel
	if segmentSize == 0 {
		segmentSize = DefaultSegmentSize
	}
	// The practical range must reach the square root of the first window's
	// end so the base list can seed it; a floor on the window size keeps
	// that true for every wheel.
	if segmentSize < minSegmentSize {
		segmentSize = minSegmentSize
	}

	if w.Cardinality(n) <= segmentSize {
		return e.Sieve(ctx, n, emit)
	}

	// Trailing values not coprime to the wheel are composite, so the bound
	// can drop to the last represented value.
	n = w.PrevCoprime(n)
	card := w.Cardinality(n)

	sqrtBound := w.NextCoprime(isqrt(n) + 1)
	practical := w.Forward(segmentSize)
	if sqrtBound < practical {
		practical = sqrtBound
	}
	practical = w.PrevCoprime(practical)

	started := time.Now()
	e.log.DebugContext(ctx, "segmented sieve started",
		"bound", n,
		"wheel", w.Period(),
		"cardinality", card,
		"segment_size", segmentSize,
		"practical", practical,
		"workers", e.workers,
	)

	base := make([]uint64, 0, estimateCount(sqrtBound))
	if err := e.Sieve(ctx, practical, func(p uint64) {
		emit(p)
		if w.Coprime(p) {
			base = append(base, p)
		}
	}); err != nil {
		return err
	}

	windowBytes := marksFootprint(segmentSize)
	if err := e.rc.AcquireMemory(ctx, windowBytes); err != nil {
		return err
	}
	defer e.rc.ReleaseMemory(windowBytes)
	window := newMarks(segmentSize)

	pool := dispatch.NewPool(e.workers)
	defer pool.Close()

	for lo := w.Backward(practical) + 1; lo <= card; lo += segmentSize {
		hi := lo + segmentSize - 1
		if hi > card {
			hi = card
		}
		hiVal := w.Forward(hi)

		window.reset()

		for _, p := range base {
			if p > hiVal/p {
				break
			}
			p := p
			pool.Dispatch(func() { markWindow(w, window, p, lo, hiVal) })
		}
		pool.Finish()
		if err := ctx.Err(); err != nil {
			return err
		}

		for j := uint64(0); j <= hi-lo; j++ {
			if window.test(j) {
				continue
			}
			p := w.Forward(lo + j)
			emit(p)
			if p <= sqrtBound {
				base = append(base, p)
			}
		}
	}

	e.log.DebugContext(ctx, "segmented sieve completed",
		"bound", n,
		"base_primes", len(base),
		"elapsed", time.Since(started),
	)

	return nil
}

// CountSegmented returns the number of primes ≤ n using windowed marking.
func (e *Engine) CountSegmented(ctx context.Context, n, segmentSize uint64) (uint64, error) {
	var count uint64
	if err := e.SieveSegmented(ctx, n, segmentSize, func(uint64) { count++ }); err != nil {
		return 0, err
	}
	return count, nil
}

// PrimesSegmented returns every prime ≤ n using windowed marking.
func (e *Engine) PrimesSegmented(ctx context.Context, n, segmentSize uint64) ([]uint64, error) {
	primes := make([]uint64, 0, estimateCount(n))
	if err := e.SieveSegmented(ctx, n, segmentSize, func(p uint64) { primes = append(primes, p) }); err != nil {
		return nil, err
	}
	return primes, nil
}

// markWindow flags the represented multiples of p inside one window, given
// the window's first dense index and last value. The multiplier walks the
// odd numbers from the first one reaching the window; residue checks against
// the wheel primes past 2 skip multiples outside the index space. The first
// product is computed at full width so windows near 2^64 cannot wrap.
func markWindow(w *wheel.Wheel, window *marks, p, loIdx, hiVal uint64) {
	loVal := w.Forward(loIdx)
	guards := w.Primes()[1:]

	m := loVal / p
	if m*p < loVal {
		m++
	}
	if m%2 == 0 {
		m++
	}

	carry, v := bits.Mul64(m, p)
	if carry != 0 {
		return
	}

	step := 2 * p
	for v <= hiVal {
		represented := true
		for _, q := range guards {
			if m%q == 0 {
				represented = false
				break
			}
		}
		if represented {
			window.set(w.Backward(v) - loIdx)
		}

		m += 2
		next := v + step
		if next < v {
			return
		}
		v = next
	}
}
