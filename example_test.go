package eratosthenes_test

import (
	"context"
	"fmt"

	eratosthenes "github.com/vm6502q/Eratosthenes"
	"github.com/vm6502q/Eratosthenes/wheel"
)

func Example() {
	primes, err := eratosthenes.Sieve(30)
	if err != nil {
		panic(err)
	}
	fmt.Println(primes)
	// Output: [2 3 5 7 11 13 17 19 23 29]
}

func ExampleGenerator_CountPrimes() {
	g := eratosthenes.New(eratosthenes.WithWheel(wheel.Exclude235711))

	count, err := g.CountPrimes(context.Background(), 1000000)
	if err != nil {
		panic(err)
	}
	fmt.Println(count)
	// Output: 78498
}

func ExampleGenerator_SegmentedCountPrimes() {
	g := eratosthenes.New(eratosthenes.WithSegmentSize(1 << 16))

	count, err := g.SegmentedCountPrimes(context.Background(), 10000000)
	if err != nil {
		panic(err)
	}
	fmt.Println(count)
	// Output: 664579
}

func ExampleGenerator_CountPrimesString() {
	g := eratosthenes.New()

	count, err := g.CountPrimesString(context.Background(), "1000000")
	if err != nil {
		panic(err)
	}
	fmt.Println(count)
	// Output: 78498
}
