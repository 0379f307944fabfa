package sieve

import "sync/atomic"

// marks is a dense composite-flag set shared between the marking workers and
// the candidate scan. Flags are packed 64 per word; setters use atomic OR and
// readers atomic loads, because tasks for different primes flag neighboring
// indices in the same word, and the scan can share a word with in-flight
// writes to later bits.
type marks struct {
	words []atomic.Uint64
}

// newMarks creates a set holding n flags, all clear.
func newMarks(n uint64) *marks {
	return &marks{words: make([]atomic.Uint64, (n+63)/64)}
}

// marksFootprint returns the backing bytes for n flags, for memory metering.
func marksFootprint(n uint64) int64 {
	return int64((n + 63) / 64 * 8)
}

func (m *marks) set(i uint64) {
	m.words[i>>6].Or(1 << (i & 63))
}

func (m *marks) test(i uint64) bool {
	return m.words[i>>6].Load()&(1<<(i&63)) != 0
}

// reset clears every flag. Callers quiesce the pool first.
func (m *marks) reset() {
	clear(m.words)
}
