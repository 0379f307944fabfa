package eratosthenes

import (
	"log/slog"

	"github.com/vm6502q/Eratosthenes/resource"
	"github.com/vm6502q/Eratosthenes/snapshot"
	"github.com/vm6502q/Eratosthenes/wheel"
)

type options struct {
	exclusion   wheel.Exclusion
	workers     int
	segmentSize uint64
	bigIntBits  int
	logger      *Logger
	resources   resource.Config
	controller  *resource.Controller
	compression snapshot.Compression
}

// Option configures a Generator.
type Option func(*options)

// WithWheel selects which prefix of small primes the index-compression wheel
// excludes. Larger wheels shrink marking storage at the cost of larger
// residue tables; the default excludes 2, 3, 5 and 7.
func WithWheel(e wheel.Exclusion) Option {
	return func(o *options) {
		o.exclusion = e
	}
}

// WithWorkers sets the composite-marking pool size. The default is one
// worker per logical core.
func WithWorkers(workers int) Option {
	return func(o *options) {
		o.workers = workers
	}
}

// WithSegmentSize sets the window length, in dense indices, used by the
// segmented operations. Flags are bit-packed, so the segmented sieve's
// working set is an eighth of the window length.
func WithSegmentSize(size uint64) Option {
	return func(o *options) {
		o.segmentSize = size
	}
}

// WithMemoryLimit caps the bytes of marking storage held at once. Sieves
// block while the budget is exhausted. 0 means unmetered.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.resources.MemoryLimitBytes = bytes
	}
}

// WithIOLimit throttles snapshot reads and writes to the given rate. 0 means
// unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.resources.IOLimitBytesPerSec = bytesPerSec
	}
}

// WithResourceController shares an existing controller between generators,
// so several of them draw on one memory budget. It overrides WithMemoryLimit
// and WithIOLimit.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithBigIntBits fixes the arithmetic width used to parse decimal bounds.
// Inputs wider than the configured width wrap, per the fixed-width contract,
// before the range check. The default sizes the width to the input, so no
// bound can wrap into the accepted range.
func WithBigIntBits(bits int) Option {
	return func(o *options) {
		o.bigIntBits = bits
	}
}

// WithSnapshotCompression selects the payload encoding for WriteSnapshot.
// The default is ZSTD.
func WithSnapshotCompression(c snapshot.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithLogger configures structured logging. Pass nil to disable.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger at the given level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		exclusion:   wheel.Exclude2357,
		compression: snapshot.ZSTD,
		logger:      NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
