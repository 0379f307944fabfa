// Package sieve implements the wheel-factorized sieve of Eratosthenes behind
// the public API: a plain engine that marks composites across a worker pool,
// and a segmented engine that bounds memory by sieving fixed-size windows
// against a growing list of base primes.
package sieve

import (
	"log/slog"
	"math"

	"github.com/vm6502q/Eratosthenes/internal/dispatch"
	"github.com/vm6502q/Eratosthenes/resource"
	"github.com/vm6502q/Eratosthenes/wheel"
)

// DefaultSegmentSize is the window length, in dense indices, used when the
// caller does not set one. At one flag byte per index a window costs 8 MiB.
const DefaultSegmentSize uint64 = 1 << 23

// minSegmentSize is the smallest accepted window length.
const minSegmentSize uint64 = 1 << 10

// Config assembles an Engine. Zero values select the defaults.
type Config struct {
	// Wheel is the index-compression wheel. nil means wheel7 (excluding
	// multiples of 2, 3, 5 and 7).
	Wheel *wheel.Wheel

	// Workers sets the marking pool size. 0 means one per logical core.
	Workers int

	// Logger receives structured progress events. nil discards them.
	Logger *slog.Logger

	// Resources meters marking storage and is consulted before every
	// allocation. nil means unmetered.
	Resources *resource.Controller
}

// Engine runs sieves over one wheel configuration. It holds no per-run
// state, so a single Engine may serve concurrent calls.
type Engine struct {
	wheel   *wheel.Wheel
	workers int
	log     *slog.Logger
	rc      *resource.Controller
}

// NewEngine creates an engine from cfg.
func NewEngine(cfg Config) *Engine {
	w := cfg.Wheel
	if w == nil {
		w = wheel.New(wheel.Exclude2357)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = dispatch.DefaultWorkers()
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Engine{
		wheel:   w,
		workers: workers,
		log:     log,
		rc:      cfg.Resources,
	}
}

// Wheel returns the engine's wheel.
func (e *Engine) Wheel() *wheel.Wheel { return e.wheel }

// squareSaturate advances the synchronization boundary. Once the boundary
// exceeds 32 bits its square leaves the uint64 range, at which point no
// further barrier is needed: every composite below 2^64 is already covered.
func squareSaturate(t uint64) uint64 {
	if t > math.MaxUint32 {
		return math.MaxUint64
	}
	return t * t
}
