// Package testutil provides testing utilities for the sieve packages.
//
// This package is intended for use in tests and benchmarks only. It provides
// a seeded random source and slow-but-certain primality oracles to check
// sieve output against.
//
// # Random Bounds
//
//	rng := testutil.NewRNG(seed)
//	n := rng.Uint64n(1_000_000)
//
// # Ground Truth
//
//	primes := testutil.TrialDivision(bound)
//	ok := testutil.IsPrime(1_000_003)
package testutil
