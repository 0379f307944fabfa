package sieve

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/vm6502q/Eratosthenes/internal/dispatch"
)

// Sieve streams every prime ≤ n to emit in increasing order: first the
// wheel's excluded primes, then the coprime primes found by marking.
//
// The candidate scan is serial; composite marking for each discovered prime
// runs as a pool task, flagging bits with atomic OR so tasks sharing a flag
// word never lose a write. Synchronization follows a squaring schedule: a
// barrier runs whenever the scan reaches the boundary t, after which every
// composite below t² is marked, and the boundary advances to t². Between
// barriers, in-flight tasks belong to primes p at or above the previous
// boundary and only flag values ≥ p², which the scan has not reached yet, so
// every flag the scan tests is already complete.
func (e *Engine) Sieve(ctx context.Context, n uint64, emit func(uint64)) error {
	w := e.wheel

	for _, p := range w.Primes() {
		if p <= n {
			emit(p)
		}
	}

	f := w.Forward(2) // smallest candidate above 1
	if n < f {
		return nil
	}

	card := w.Cardinality(n)
	markBytes := marksFootprint(card + 1)
	if err := e.rc.AcquireMemory(ctx, markBytes); err != nil {
		return err
	}
	defer e.rc.ReleaseMemory(markBytes)

	started := time.Now()
	e.log.DebugContext(ctx, "sieve started",
		"bound", n,
		"wheel", w.Period(),
		"cardinality", card,
		"marking_bytes", humanize.IBytes(uint64(markBytes)),
		"workers", e.workers,
	)

	// One flag per dense index, 1-based to match the wheel mapping. Index 1
	// is the value 1, never scanned.
	notPrime := newMarks(card + 1)

	pool := dispatch.NewPool(e.workers)
	defer pool.Close()

	var found uint64
	st := w.NewStepper()
	o := uint64(1)
	prev := uint64(1)
	threshold := f * f

	for {
		o += st.Next()
		p := st.Forward(o)
		if p > n || p < prev {
			break
		}
		prev = p

		if p >= threshold {
			pool.Finish()
			threshold = squareSaturate(threshold)
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		if notPrime.test(w.Backward(p)) {
			continue
		}

		found++
		emit(p)

		if p <= n/p {
			p := p
			pool.Dispatch(func() { e.mark(notPrime, p, n) })
		}
	}
	pool.Finish()

	e.log.DebugContext(ctx, "sieve completed",
		"bound", n,
		"primes", found+uint64(len(w.Primes())),
		"elapsed", time.Since(started),
	)

	return nil
}

// mark flags every represented multiple of the prime p, starting at p². The
// multiplier walks the values coprime to the first wheel primes (odd when
// only 2 is excluded, the 2-4 alternation mod 6 otherwise); residue checks
// against the remaining wheel primes skip multiples the index space does not
// contain. Increments wrap-check so bounds close to 2^64 terminate cleanly.
func (e *Engine) mark(notPrime *marks, p, n uint64) {
	w := e.wheel
	primes := w.Primes()
	guards := primes[min(len(primes), 2):]

	// Alternating steps over multipliers coprime to 6: from m ≡ 1 (mod 6)
	// the gaps run 4, 2, 4, 2, ...; from m ≡ 5 they run 2, 4, 2, 4, ...
	incA, incB := uint64(4), uint64(2)
	if p%3 == 2 {
		incA, incB = 2, 4
	}

	m := p
	v := p * p // p ≤ n/p, so this cannot wrap
	useA := true
	for {
		represented := true
		for _, q := range guards {
			if m%q == 0 {
				represented = false
				break
			}
		}
		if represented {
			notPrime.set(w.Backward(v))
		}

		inc := uint64(2)
		if len(primes) > 1 {
			if useA {
				inc = incA
			} else {
				inc = incB
			}
			useA = !useA
		}

		m += inc
		next := v + inc*p
		if next < v || next > n {
			return
		}
		v = next
	}
}

// Count returns the number of primes ≤ n.
func (e *Engine) Count(ctx context.Context, n uint64) (uint64, error) {
	var count uint64
	if err := e.Sieve(ctx, n, func(uint64) { count++ }); err != nil {
		return 0, err
	}
	return count, nil
}

// Primes returns every prime ≤ n in increasing order. Capacity is reserved
// from the logarithmic-integral estimate, so appends rarely reallocate.
func (e *Engine) Primes(ctx context.Context, n uint64) ([]uint64, error) {
	primes := make([]uint64, 0, estimateCount(n))
	if err := e.Sieve(ctx, n, func(p uint64) { primes = append(primes, p) }); err != nil {
		return nil, err
	}
	return primes, nil
}
