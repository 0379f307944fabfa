// Package eratosthenes generates primes with a wheel-factorized sieve of
// Eratosthenes that marks composites concurrently across a worker pool.
//
// The plain operations hold one flag per wheel-compressed candidate up to
// the bound. The segmented operations sieve fixed-size windows against a
// base prime list instead, bounding memory for large ranges. Both agree on
// their output for any bound; the segmented variants trade a constant factor
// of speed for the working-set guarantee.
//
// Bounds are uint64 values or decimal strings. String bounds are parsed
// through fixed-width arithmetic wide enough for the input, so an oversized
// bound is reported as ErrBoundTooLarge rather than silently truncated.
package eratosthenes

import (
	"context"
	"io"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/vm6502q/Eratosthenes/bigint"
	"github.com/vm6502q/Eratosthenes/internal/sieve"
	"github.com/vm6502q/Eratosthenes/resource"
	"github.com/vm6502q/Eratosthenes/snapshot"
	"github.com/vm6502q/Eratosthenes/wheel"
)

// Generator runs sieves over one wheel configuration. It holds no per-run
// state, so a single Generator may serve concurrent calls.
type Generator struct {
	engine      *sieve.Engine
	rc          *resource.Controller
	segmentSize uint64
	bigIntBits  int
	compression snapshot.Compression
	logger      *Logger
}

// New creates a Generator. The zero-option default excludes multiples of
// 2, 3, 5 and 7, sizes the worker pool to the logical core count and logs
// nothing.
func New(optFns ...Option) *Generator {
	o := applyOptions(optFns)

	rc := o.controller
	if rc == nil {
		rc = resource.NewController(o.resources)
	}

	return &Generator{
		engine: sieve.NewEngine(sieve.Config{
			Wheel:     wheel.New(o.exclusion),
			Workers:   o.workers,
			Logger:    o.logger.Logger,
			Resources: rc,
		}),
		rc:          rc,
		segmentSize: o.segmentSize,
		bigIntBits:  o.bigIntBits,
		compression: o.compression,
		logger:      o.logger,
	}
}

// Sieve returns every prime ≤ n in increasing order.
func (g *Generator) Sieve(ctx context.Context, n uint64) ([]uint64, error) {
	started := time.Now()
	primes, err := g.engine.Primes(ctx, n)
	g.logger.LogSieve(ctx, "sieve", n, uint64(len(primes)), time.Since(started), err)
	return primes, err
}

// CountPrimes returns the number of primes ≤ n.
func (g *Generator) CountPrimes(ctx context.Context, n uint64) (uint64, error) {
	started := time.Now()
	count, err := g.engine.Count(ctx, n)
	g.logger.LogSieve(ctx, "count", n, count, time.Since(started), err)
	return count, err
}

// SegmentedSieve returns every prime ≤ n in increasing order while holding
// at most one window of marking flags.
func (g *Generator) SegmentedSieve(ctx context.Context, n uint64) ([]uint64, error) {
	started := time.Now()
	primes, err := g.engine.PrimesSegmented(ctx, n, g.segmentSize)
	g.logger.LogSieve(ctx, "segmented sieve", n, uint64(len(primes)), time.Since(started), err)
	return primes, err
}

// SegmentedCountPrimes returns the number of primes ≤ n while holding at
// most one window of marking flags.
func (g *Generator) SegmentedCountPrimes(ctx context.Context, n uint64) (uint64, error) {
	started := time.Now()
	count, err := g.engine.CountSegmented(ctx, n, g.segmentSize)
	g.logger.LogSieve(ctx, "segmented count", n, count, time.Since(started), err)
	return count, err
}

// SieveBitmap returns the primes ≤ n as a compressed bitmap. The bitmap is
// filled as primes stream out of the segmented sieve, so the peak memory is
// the window plus the bitmap itself.
func (g *Generator) SieveBitmap(ctx context.Context, n uint64) (*roaring64.Bitmap, error) {
	bm := roaring64.New()
	err := g.engine.SieveSegmented(ctx, n, g.segmentSize, bm.Add)
	if err != nil {
		return nil, err
	}
	return bm, nil
}

// WriteSnapshot sieves up to n and writes the result as a snapshot to w,
// applying the configured compression and IO limit.
func (g *Generator) WriteSnapshot(ctx context.Context, w io.Writer, n uint64) error {
	primes, err := g.engine.PrimesSegmented(ctx, n, g.segmentSize)
	if err != nil {
		return err
	}

	err = snapshot.Write(resource.NewThrottledWriter(ctx, w, g.rc), primes, g.compression)
	g.logger.LogSnapshot(ctx, "write", len(primes), err)
	return err
}

// ReadSnapshot loads a prime list written by WriteSnapshot, applying the
// configured IO limit.
func (g *Generator) ReadSnapshot(ctx context.Context, r io.Reader) ([]uint64, error) {
	primes, err := snapshot.Read(resource.NewThrottledReader(ctx, r, g.rc))
	g.logger.LogSnapshot(ctx, "read", len(primes), err)
	return primes, err
}

// SieveString is Sieve with a decimal bound.
func (g *Generator) SieveString(ctx context.Context, bound string) ([]uint64, error) {
	n, err := g.parseBound(bound)
	if err != nil {
		return nil, err
	}
	return g.Sieve(ctx, n)
}

// CountPrimesString is CountPrimes with a decimal bound.
func (g *Generator) CountPrimesString(ctx context.Context, bound string) (uint64, error) {
	n, err := g.parseBound(bound)
	if err != nil {
		return 0, err
	}
	return g.CountPrimes(ctx, n)
}

// SegmentedSieveString is SegmentedSieve with a decimal bound.
func (g *Generator) SegmentedSieveString(ctx context.Context, bound string) ([]uint64, error) {
	n, err := g.parseBound(bound)
	if err != nil {
		return nil, err
	}
	return g.SegmentedSieve(ctx, n)
}

// SegmentedCountPrimesString is SegmentedCountPrimes with a decimal bound.
func (g *Generator) SegmentedCountPrimesString(ctx context.Context, bound string) (uint64, error) {
	n, err := g.parseBound(bound)
	if err != nil {
		return 0, err
	}
	return g.SegmentedCountPrimes(ctx, n)
}

// parseBound converts a decimal bound to uint64. Unless WithBigIntBits fixed
// a width, the intermediate width grows with the input length, so long
// bounds cannot wrap into the accepted range.
func (g *Generator) parseBound(bound string) (uint64, error) {
	width := g.bigIntBits
	if width <= 0 {
		width = 4 * len(bound)
	}

	b, err := bigint.New(width).SetString(bound)
	if err != nil {
		return 0, &ErrInvalidBound{Bound: bound, cause: err}
	}
	if !b.IsUint64() {
		return 0, ErrBoundTooLarge
	}
	return b.Uint64(), nil
}

var defaultGenerator = New()

// Sieve returns every prime ≤ n using the default Generator.
func Sieve(n uint64) ([]uint64, error) {
	return defaultGenerator.Sieve(context.Background(), n)
}

// CountPrimes returns the number of primes ≤ n using the default Generator.
func CountPrimes(n uint64) (uint64, error) {
	return defaultGenerator.CountPrimes(context.Background(), n)
}

// SegmentedSieve returns every prime ≤ n with bounded memory using the
// default Generator.
func SegmentedSieve(n uint64) ([]uint64, error) {
	return defaultGenerator.SegmentedSieve(context.Background(), n)
}

// SegmentedCountPrimes returns the number of primes ≤ n with bounded memory
// using the default Generator.
func SegmentedCountPrimes(n uint64) (uint64, error) {
	return defaultGenerator.SegmentedCountPrimes(context.Background(), n)
}
